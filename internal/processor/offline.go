package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly/gatherly-api/internal/domain"
)

// OfflineProcessor confirms payments settled outside any gateway, such as
// bank transfers reconciled by the organizer or cash at the door. Confirmation
// is immediate and the reference is generated locally.
type OfflineProcessor struct {
	prefix string
}

func NewOfflineProcessor(prefix string) *OfflineProcessor {
	return &OfflineProcessor{
		prefix: prefix,
	}
}

func (p *OfflineProcessor) ProcessPayment(_ context.Context, payment domain.Payment) (domain.Payment, error) {
	payment.ProviderPaymentID = fmt.Sprintf("%v-%v-%v", p.prefix, payment.ID, time.Now().Unix())

	return payment, nil
}

func (p *OfflineProcessor) RefundPayment(_ context.Context, payment domain.Payment, _ string) (domain.Payment, error) {
	// Money moves outside the system; the refund is recorded only.
	return payment, nil
}

func (p *OfflineProcessor) CheckPaymentStatus(_ context.Context, payment domain.Payment) (domain.PaymentStatus, error) {
	return payment.Status, nil
}

func (p *OfflineProcessor) CancelPayment(_ context.Context, _ domain.Payment) error {
	return nil
}
