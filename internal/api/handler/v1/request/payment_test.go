package request

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-api/internal/domain"
)

func validCreatePaymentRequest() CreatePaymentRequest {
	return CreatePaymentRequest{
		EventID:  1,
		Amount:   "49.90",
		Currency: "USD",
		Provider: "STRIPE",
		Method:   "CREDIT_CARD",
	}
}

func TestCreatePaymentRequest_Validate(t *testing.T) {
	req := validCreatePaymentRequest()
	assert.NoError(t, req.Validate())

	req = validCreatePaymentRequest()
	req.EventID = 0
	assert.Error(t, req.Validate())

	req = validCreatePaymentRequest()
	req.Amount = ""
	assert.Error(t, req.Validate())
}

func TestCreatePaymentRequest_ToPayment(t *testing.T) {
	t.Run("parses the amount and enums", func(t *testing.T) {
		req := validCreatePaymentRequest()

		payment, err := req.ToPayment(42)

		require.NoError(t, err)
		assert.Equal(t, uint(42), payment.UserID)
		assert.True(t, payment.Amount.Equal(decimal.NewFromFloat(49.90)))
		assert.Equal(t, domain.CurrencyUSD, payment.Currency)
		assert.Equal(t, domain.ProviderStripe, payment.Provider)
		assert.Equal(t, domain.MethodCreditCard, payment.Method)
	})

	t.Run("rejects a malformed amount", func(t *testing.T) {
		req := validCreatePaymentRequest()
		req.Amount = "forty nine"

		_, err := req.ToPayment(42)

		assert.Error(t, err)
	})

	t.Run("rejects unknown enum values", func(t *testing.T) {
		req := validCreatePaymentRequest()
		req.Currency = "JPY"
		_, err := req.ToPayment(42)
		assert.Error(t, err)

		req = validCreatePaymentRequest()
		req.Provider = "SQUARE"
		_, err = req.ToPayment(42)
		assert.Error(t, err)

		req = validCreatePaymentRequest()
		req.Method = "CHEQUE"
		_, err = req.ToPayment(42)
		assert.Error(t, err)
	})
}
