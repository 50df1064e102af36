package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/repository"
)

var (
	ErrPaymentNotFound     = repository.ErrPaymentNotFound
	ErrAlreadyRefunded     = errors.New("payment already refunded")
	ErrPaymentNotCompleted = errors.New("only completed payments may be refunded")
	ErrInvalidPaymentState = errors.New("payment is not in a valid state for this operation")
)

type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	Save(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	Delete(ctx context.Context, id uint) error
	UpdateStatus(ctx context.Context, id uint, status domain.PaymentStatus) error
	FindByID(ctx context.Context, id uint) (domain.Payment, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Payment, error)
	FindByEventID(ctx context.Context, eventID uint) ([]domain.Payment, error)
	FindAll(ctx context.Context) ([]domain.Payment, error)
	FindWithFilters(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int64, error)
	GetPaymentStats(ctx context.Context, start, end *time.Time) (domain.PaymentStats, error)
}

// PaymentProcessor is the external confirmation collaborator. All calls may
// fail; cancellation and timeouts are its concern, the service only reacts to
// the resolved outcome.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	RefundPayment(ctx context.Context, payment domain.Payment, reason string) (domain.Payment, error)
	CheckPaymentStatus(ctx context.Context, payment domain.Payment) (domain.PaymentStatus, error)
	CancelPayment(ctx context.Context, payment domain.Payment) error
}

type PaymentService struct {
	repo      PaymentRepository
	processor PaymentProcessor
}

func NewPaymentService(repo PaymentRepository, processor PaymentProcessor) *PaymentService {
	return &PaymentService{
		repo:      repo,
		processor: processor,
	}
}

// Create validates the command and persists a PENDING payment. Enum fields
// must already hold known values; unknown ones are rejected, never defaulted.
func (s *PaymentService) Create(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	if payment.UserID == 0 {
		return domain.Payment{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if payment.EventID == 0 {
		return domain.Payment{}, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if !payment.Amount.IsPositive() {
		return domain.Payment{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !payment.Currency.IsValid() {
		return domain.Payment{}, fmt.Errorf("%w: unknown currency %q", ErrValidation, payment.Currency)
	}
	if !payment.Provider.IsValid() {
		return domain.Payment{}, fmt.Errorf("%w: unknown payment provider %q", ErrValidation, payment.Provider)
	}
	if !payment.Method.IsValid() {
		return domain.Payment{}, fmt.Errorf("%w: unknown payment method %q", ErrValidation, payment.Method)
	}

	payment.Status = domain.PaymentPending
	payment.ProviderPaymentID = ""

	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Process delegates confirmation to the processor. On success the payment
// moves PENDING -> COMPLETED and records the provider reference. On processor
// failure the payment moves PENDING -> FAILED before the error is returned;
// that write is part of the contract, and if it fails too the two errors are
// joined so the processor error is never masked.
func (s *PaymentService) Process(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	if payment.Status != domain.PaymentPending {
		return domain.Payment{}, ErrInvalidPaymentState
	}

	processed, procErr := s.processor.ProcessPayment(ctx, payment)
	if procErr != nil {
		if updErr := s.repo.UpdateStatus(ctx, payment.ID, domain.PaymentFailed); updErr != nil {
			zap.L().Error("failed to persist FAILED status after processor error",
				zap.Uint("payment_id", payment.ID),
				zap.Error(updErr))

			return domain.Payment{}, errors.Join(procErr, updErr)
		}

		return domain.Payment{}, procErr
	}

	payment.Status = domain.PaymentCompleted
	payment.ProviderPaymentID = processed.ProviderPaymentID

	saved, err := s.repo.Save(ctx, payment)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	return saved, nil
}

// Refund moves COMPLETED to REFUNDED and records the reason and timestamp in
// the payment metadata. Refunding anything but a COMPLETED payment is illegal;
// a second refund of the same payment fails with ErrAlreadyRefunded.
func (s *PaymentService) Refund(ctx context.Context, paymentID uint, reason string) (domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return domain.Payment{}, ErrPaymentNotFound
		}

		return domain.Payment{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if payment.Status == domain.PaymentRefunded {
		return domain.Payment{}, ErrAlreadyRefunded
	}
	if payment.Status != domain.PaymentCompleted {
		return domain.Payment{}, ErrPaymentNotCompleted
	}

	if _, err = s.processor.RefundPayment(ctx, payment, reason); err != nil {
		return domain.Payment{}, fmt.Errorf("s.processor.RefundPayment -> %w", err)
	}

	payment.Status = domain.PaymentRefunded
	if payment.Metadata == nil {
		payment.Metadata = make(map[string]string)
	}
	payment.Metadata[domain.MetadataRefundReason] = reason
	payment.Metadata[domain.MetadataRefundedAt] = time.Now().UTC().Format(time.RFC3339)

	saved, err := s.repo.Save(ctx, payment)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	return saved, nil
}

// Cancel abandons a purchase before processor confirmation. Only PENDING
// payments can be cancelled.
func (s *PaymentService) Cancel(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	if payment.Status != domain.PaymentPending {
		return domain.Payment{}, ErrInvalidPaymentState
	}

	if err := s.processor.CancelPayment(ctx, payment); err != nil {
		return domain.Payment{}, fmt.Errorf("s.processor.CancelPayment -> %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, payment.ID, domain.PaymentCancelled); err != nil {
		return domain.Payment{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	payment.Status = domain.PaymentCancelled

	return payment, nil
}

func (s *PaymentService) Get(ctx context.Context, id uint) (domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return domain.Payment{}, ErrPaymentNotFound
		}

		return domain.Payment{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	payments, total, err := s.repo.FindWithFilters(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.FindWithFilters -> %w", err)
	}

	return payments, total, nil
}

func (s *PaymentService) Stats(ctx context.Context, start, end *time.Time) (domain.PaymentStats, error) {
	stats, err := s.repo.GetPaymentStats(ctx, start, end)
	if err != nil {
		return domain.PaymentStats{}, fmt.Errorf("s.repo.GetPaymentStats -> %w", err)
	}

	return stats, nil
}
