// Package processor holds the payment-processor adapters. Each provider is an
// adapter behind a shared interface; the registry dispatches on the payment's
// provider so the service layer stays provider-agnostic.
package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/gatherly-api/internal/domain"
)

var ErrUnsupportedProvider = errors.New("unsupported payment provider")

type Processor interface {
	ProcessPayment(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	RefundPayment(ctx context.Context, payment domain.Payment, reason string) (domain.Payment, error)
	CheckPaymentStatus(ctx context.Context, payment domain.Payment) (domain.PaymentStatus, error)
	CancelPayment(ctx context.Context, payment domain.Payment) error
}

// Registry routes each call to the adapter registered for the payment's
// provider. It satisfies the same interface as the adapters it wraps.
type Registry struct {
	adapters map[domain.PaymentProvider]Processor
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[domain.PaymentProvider]Processor),
	}
}

func (r *Registry) Register(provider domain.PaymentProvider, adapter Processor) {
	r.adapters[provider] = adapter
}

func (r *Registry) forProvider(provider domain.PaymentProvider) (Processor, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	return adapter, nil
}

func (r *Registry) ProcessPayment(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	adapter, err := r.forProvider(payment.Provider)
	if err != nil {
		return domain.Payment{}, err
	}

	return adapter.ProcessPayment(ctx, payment)
}

func (r *Registry) RefundPayment(ctx context.Context, payment domain.Payment, reason string) (domain.Payment, error) {
	adapter, err := r.forProvider(payment.Provider)
	if err != nil {
		return domain.Payment{}, err
	}

	return adapter.RefundPayment(ctx, payment, reason)
}

func (r *Registry) CheckPaymentStatus(ctx context.Context, payment domain.Payment) (domain.PaymentStatus, error) {
	adapter, err := r.forProvider(payment.Provider)
	if err != nil {
		return "", err
	}

	return adapter.CheckPaymentStatus(ctx, payment)
}

func (r *Registry) CancelPayment(ctx context.Context, payment domain.Payment) error {
	adapter, err := r.forProvider(payment.Provider)
	if err != nil {
		return err
	}

	return adapter.CancelPayment(ctx, payment)
}
