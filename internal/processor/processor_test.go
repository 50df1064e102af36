package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-api/internal/domain"
)

func TestRegistry_DispatchesByProvider(t *testing.T) {
	ctx := context.Background()

	registry := NewRegistry()
	registry.Register(domain.ProviderCash, NewOfflineProcessor("cash"))
	registry.Register(domain.ProviderBankTransfer, NewOfflineProcessor("bank"))

	processed, err := registry.ProcessPayment(ctx, domain.Payment{
		ID:       7,
		Provider: domain.ProviderCash,
		Status:   domain.PaymentPending,
	})

	require.NoError(t, err)
	assert.Contains(t, processed.ProviderPaymentID, "cash-7-")
}

func TestRegistry_UnsupportedProvider(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()

	_, err := registry.ProcessPayment(ctx, domain.Payment{Provider: domain.ProviderPayPal})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = registry.RefundPayment(ctx, domain.Payment{Provider: domain.ProviderPayPal}, "reason")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = registry.CheckPaymentStatus(ctx, domain.Payment{Provider: domain.ProviderPayPal})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	err = registry.CancelPayment(ctx, domain.Payment{Provider: domain.ProviderPayPal})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestOfflineProcessor(t *testing.T) {
	ctx := context.Background()
	proc := NewOfflineProcessor("bank")

	t.Run("confirmation is immediate with a local reference", func(t *testing.T) {
		processed, err := proc.ProcessPayment(ctx, domain.Payment{ID: 12, Status: domain.PaymentPending})

		require.NoError(t, err)
		assert.Contains(t, processed.ProviderPaymentID, "bank-12-")
	})

	t.Run("refund and cancel never fail", func(t *testing.T) {
		_, err := proc.RefundPayment(ctx, domain.Payment{ID: 12}, "reason")
		assert.NoError(t, err)

		assert.NoError(t, proc.CancelPayment(ctx, domain.Payment{ID: 12}))
	})

	t.Run("status check reports the stored status", func(t *testing.T) {
		status, err := proc.CheckPaymentStatus(ctx, domain.Payment{Status: domain.PaymentCompleted})

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, status)
	})
}
