package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"pending to completed", PaymentPending, PaymentCompleted, true},
		{"pending to failed", PaymentPending, PaymentFailed, true},
		{"pending to cancelled", PaymentPending, PaymentCancelled, true},
		{"pending to refunded", PaymentPending, PaymentRefunded, false},
		{"completed to refunded", PaymentCompleted, PaymentRefunded, true},
		{"completed to pending", PaymentCompleted, PaymentPending, false},
		{"failed to completed", PaymentFailed, PaymentCompleted, false},
		{"refunded to completed", PaymentRefunded, PaymentCompleted, false},
		{"cancelled to pending", PaymentCancelled, PaymentPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	assert.False(t, PaymentPending.IsTerminal())
	assert.False(t, PaymentCompleted.IsTerminal())
	assert.True(t, PaymentFailed.IsTerminal())
	assert.True(t, PaymentRefunded.IsTerminal())
	assert.True(t, PaymentCancelled.IsTerminal())
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus("completed")
	assert.NoError(t, err)
	assert.Equal(t, PaymentCompleted, got)

	_, err = ParsePaymentStatus("SETTLED")
	assert.Error(t, err)
}

func TestParseCurrency(t *testing.T) {
	got, err := ParseCurrency(" eur ")
	assert.NoError(t, err)
	assert.Equal(t, CurrencyEUR, got)

	_, err = ParseCurrency("JPY")
	assert.Error(t, err)
}

func TestParsePaymentProvider(t *testing.T) {
	got, err := ParsePaymentProvider("mercado_pago")
	assert.NoError(t, err)
	assert.Equal(t, ProviderMercadoPago, got)

	_, err = ParsePaymentProvider("SQUARE")
	assert.Error(t, err)
}

func TestParsePaymentMethod(t *testing.T) {
	got, err := ParsePaymentMethod("credit_card")
	assert.NoError(t, err)
	assert.Equal(t, MethodCreditCard, got)

	_, err = ParsePaymentMethod("CHEQUE")
	assert.Error(t, err)
}
