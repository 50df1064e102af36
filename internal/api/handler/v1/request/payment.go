package request

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/gatherly/gatherly-api/internal/domain"
)

type CreatePaymentRequest struct {
	EventID     uint              `json:"event_id"`
	TicketID    uint              `json:"ticket_id"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Provider    string            `json:"provider"`
	Method      string            `json:"payment_method"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

func (req *CreatePaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.Amount, validation.Required),
		validation.Field(&req.Currency, validation.Required),
		validation.Field(&req.Provider, validation.Required),
		validation.Field(&req.Method, validation.Required),
		validation.Field(&req.Description, validation.Length(0, 200)),
	)
}

// ToPayment converts the request to a domain payment, parsing the amount and
// every enum strictly; unknown values are errors, not defaults.
func (req *CreatePaymentRequest) ToPayment(userID uint) (domain.Payment, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("invalid amount %q", req.Amount)
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return domain.Payment{}, err
	}

	provider, err := domain.ParsePaymentProvider(req.Provider)
	if err != nil {
		return domain.Payment{}, err
	}

	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		return domain.Payment{}, err
	}

	return domain.Payment{
		UserID:      userID,
		EventID:     req.EventID,
		TicketID:    req.TicketID,
		Amount:      amount,
		Currency:    currency,
		Provider:    provider,
		Method:      method,
		Description: req.Description,
		Metadata:    req.Metadata,
	}, nil
}

type RefundPaymentRequest struct {
	Reason string `json:"reason"`
}

func (req *RefundPaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reason, validation.Length(0, 200)),
	)
}
