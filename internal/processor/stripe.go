package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	"github.com/gatherly/gatherly-api/internal/domain"
)

var centsPerUnit = decimal.NewFromInt(100)

// StripeProcessor confirms payments through Stripe payment intents. The
// payment metadata key "payment_method_id" carries the Stripe payment method
// collected by the client.
type StripeProcessor struct {
	api *client.API
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeProcessor{
		api: api,
	}
}

func (p *StripeProcessor) ProcessPayment(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(payment.Amount.Mul(centsPerUnit).Round(0).IntPart()),
		Currency:    stripe.String(strings.ToLower(string(payment.Currency))),
		Description: stripe.String(payment.Description),
		Confirm:     stripe.Bool(true),
	}
	params.Context = ctx

	if methodID, ok := payment.Metadata["payment_method_id"]; ok {
		params.PaymentMethod = stripe.String(methodID)
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("stripe payment intent create -> %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return domain.Payment{}, fmt.Errorf("stripe payment intent %v not confirmed: %v", intent.ID, intent.Status)
	}

	payment.ProviderPaymentID = intent.ID

	return payment, nil
}

func (p *StripeProcessor) RefundPayment(ctx context.Context, payment domain.Payment, reason string) (domain.Payment, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(payment.ProviderPaymentID),
	}
	params.Context = ctx
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	if _, err := p.api.Refunds.New(params); err != nil {
		return domain.Payment{}, fmt.Errorf("stripe refund create -> %w", err)
	}

	return payment, nil
}

func (p *StripeProcessor) CheckPaymentStatus(ctx context.Context, payment domain.Payment) (domain.PaymentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := p.api.PaymentIntents.Get(payment.ProviderPaymentID, params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent get -> %w", err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.PaymentCompleted, nil
	case stripe.PaymentIntentStatusCanceled:
		return domain.PaymentCancelled, nil
	default:
		return domain.PaymentPending, nil
	}
}

func (p *StripeProcessor) CancelPayment(ctx context.Context, payment domain.Payment) error {
	if payment.ProviderPaymentID == "" {
		// Nothing was ever created on the Stripe side.
		return nil
	}

	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := p.api.PaymentIntents.Cancel(payment.ProviderPaymentID, params); err != nil {
		return fmt.Errorf("stripe payment intent cancel -> %w", err)
	}

	return nil
}
