package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// paymentTransitions maps each status to the statuses it may move to.
// FAILED, REFUNDED and CANCELLED are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed, PaymentCancelled},
	PaymentCompleted: {PaymentRefunded},
	PaymentFailed:    {},
	PaymentRefunded:  {},
	PaymentCancelled: {},
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded, PaymentCancelled:
		return status, nil
	}

	return "", fmt.Errorf("unknown payment status %q", s)
}

func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyBRL Currency = "BRL"
	CurrencyARS Currency = "ARS"
	CurrencyMXN Currency = "MXN"
)

func ParseCurrency(s string) (Currency, error) {
	currency := Currency(strings.ToUpper(strings.TrimSpace(s)))
	switch currency {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyBRL, CurrencyARS, CurrencyMXN:
		return currency, nil
	}

	return "", fmt.Errorf("unknown currency %q", s)
}

func (c Currency) IsValid() bool {
	_, err := ParseCurrency(string(c))
	return err == nil
}

type PaymentProvider string

const (
	ProviderStripe       PaymentProvider = "STRIPE"
	ProviderPayPal       PaymentProvider = "PAYPAL"
	ProviderMercadoPago  PaymentProvider = "MERCADO_PAGO"
	ProviderBankTransfer PaymentProvider = "BANK_TRANSFER"
	ProviderCash         PaymentProvider = "CASH"
	ProviderOther        PaymentProvider = "OTHER"
)

func ParsePaymentProvider(s string) (PaymentProvider, error) {
	provider := PaymentProvider(strings.ToUpper(strings.TrimSpace(s)))
	switch provider {
	case ProviderStripe, ProviderPayPal, ProviderMercadoPago, ProviderBankTransfer, ProviderCash, ProviderOther:
		return provider, nil
	}

	return "", fmt.Errorf("unknown payment provider %q", s)
}

func (p PaymentProvider) IsValid() bool {
	_, err := ParsePaymentProvider(string(p))
	return err == nil
}

type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
	MethodDebitCard    PaymentMethod = "DEBIT_CARD"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodWallet       PaymentMethod = "WALLET"
	MethodCash         PaymentMethod = "CASH"
	MethodOther        PaymentMethod = "OTHER"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch method {
	case MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodWallet, MethodCash, MethodOther:
		return method, nil
	}

	return "", fmt.Errorf("unknown payment method %q", s)
}

func (m PaymentMethod) IsValid() bool {
	_, err := ParsePaymentMethod(string(m))
	return err == nil
}

// Metadata keys written by the refund path.
const (
	MetadataRefundReason = "refund_reason"
	MetadataRefundedAt   = "refunded_at"
)

// Payment is a monetary transaction tied to a user, an event and a ticket.
type Payment struct {
	ID                uint              `json:"id"`
	UserID            uint              `json:"user_id"`
	EventID           uint              `json:"event_id"`
	TicketID          uint              `json:"ticket_id,omitempty"`
	Amount            decimal.Decimal   `json:"amount"`
	Currency          Currency          `json:"currency"`
	Status            PaymentStatus     `json:"status"`
	Provider          PaymentProvider   `json:"provider"`
	ProviderPaymentID string            `json:"provider_payment_id,omitempty"`
	Method            PaymentMethod     `json:"payment_method"`
	Description       string            `json:"description,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// PaymentFilter narrows payment listings. Nil fields are ignored.
type PaymentFilter struct {
	UserID   *uint
	EventID  *uint
	Status   *PaymentStatus
	Provider *PaymentProvider
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}
