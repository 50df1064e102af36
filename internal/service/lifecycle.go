package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gatherly/gatherly-api/internal/domain"
)

// CancellationResult reports the outcome of the cancel-and-refund saga. The
// attendance and payment machines are independent; when the refund leg fails
// after the attendance was cancelled, the partial failure is carried here
// instead of being rolled back or dropped.
type CancellationResult struct {
	Attendance          domain.Attendance `json:"attendance"`
	RefundedPaymentID   uint              `json:"refunded_payment_id,omitempty"`
	RefundFailureReason string            `json:"refund_failure_reason,omitempty"`
}

type attendanceCanceller interface {
	Cancel(ctx context.Context, eventID, userID uint) (domain.Attendance, error)
}

type paymentRefunder interface {
	Refund(ctx context.Context, paymentID uint, reason string) (domain.Payment, error)
}

type completedPaymentFinder interface {
	FindWithFilters(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int64, error)
}

// LifecycleService orchestrates the two state machines for cross-cutting
// commands. There is no cross-entity transaction; each leg runs on its own.
type LifecycleService struct {
	attendances attendanceCanceller
	payments    paymentRefunder
	paymentRepo completedPaymentFinder
}

func NewLifecycleService(attendances attendanceCanceller, payments paymentRefunder, paymentRepo completedPaymentFinder) *LifecycleService {
	return &LifecycleService{
		attendances: attendances,
		payments:    payments,
		paymentRepo: paymentRepo,
	}
}

// CancelWithRefund cancels the attendance and then refunds the user's
// COMPLETED payment for the event, if any. An attendance failure aborts the
// saga; a refund failure after the cancellation is logged and reported in the
// result.
func (s *LifecycleService) CancelWithRefund(ctx context.Context, eventID, userID uint) (CancellationResult, error) {
	cancelled, err := s.attendances.Cancel(ctx, eventID, userID)
	if err != nil {
		return CancellationResult{}, err
	}

	result := CancellationResult{Attendance: cancelled}

	completed := domain.PaymentCompleted
	payments, _, err := s.paymentRepo.FindWithFilters(ctx, domain.PaymentFilter{
		UserID:  &userID,
		EventID: &eventID,
		Status:  &completed,
	})
	if err != nil {
		zap.L().Warn("attendance cancelled but payment lookup failed",
			zap.Uint("event_id", eventID),
			zap.Uint("user_id", userID),
			zap.Error(err))
		result.RefundFailureReason = fmt.Sprintf("payment lookup failed: %v", err)

		return result, nil
	}

	if len(payments) == 0 {
		return result, nil
	}

	refunded, err := s.payments.Refund(ctx, payments[0].ID, "attendance cancelled")
	if err != nil {
		zap.L().Warn("attendance cancelled but refund failed",
			zap.Uint("event_id", eventID),
			zap.Uint("user_id", userID),
			zap.Uint("payment_id", payments[0].ID),
			zap.Error(err))
		result.RefundFailureReason = fmt.Sprintf("refund failed: %v", err)

		return result, nil
	}

	result.RefundedPaymentID = refunded.ID

	return result, nil
}
