package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-api/internal/domain"
)

type stubCanceller struct {
	attendance domain.Attendance
	err        error
}

func (s *stubCanceller) Cancel(ctx context.Context, eventID, userID uint) (domain.Attendance, error) {
	if s.err != nil {
		return domain.Attendance{}, s.err
	}

	return s.attendance, nil
}

type stubRefunder struct {
	refunded domain.Payment
	err      error
	calls    int
}

func (s *stubRefunder) Refund(ctx context.Context, paymentID uint, reason string) (domain.Payment, error) {
	s.calls++
	if s.err != nil {
		return domain.Payment{}, s.err
	}

	return s.refunded, nil
}

type stubPaymentFinder struct {
	payments []domain.Payment
	err      error
}

func (s *stubPaymentFinder) FindWithFilters(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}

	return s.payments, int64(len(s.payments)), nil
}

func TestLifecycleService_CancelWithRefund(t *testing.T) {
	ctx := context.Background()
	cancelled := domain.Attendance{ID: 7, Status: domain.AttendanceCancelled}

	t.Run("cancels and refunds the completed payment", func(t *testing.T) {
		refunder := &stubRefunder{refunded: domain.Payment{ID: 3, Status: domain.PaymentRefunded}}
		svc := NewLifecycleService(
			&stubCanceller{attendance: cancelled},
			refunder,
			&stubPaymentFinder{payments: []domain.Payment{{ID: 3, Status: domain.PaymentCompleted}}},
		)

		result, err := svc.CancelWithRefund(ctx, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, cancelled, result.Attendance)
		assert.Equal(t, uint(3), result.RefundedPaymentID)
		assert.Empty(t, result.RefundFailureReason)
		assert.Equal(t, 1, refunder.calls)
	})

	t.Run("no completed payment means nothing to refund", func(t *testing.T) {
		refunder := &stubRefunder{}
		svc := NewLifecycleService(
			&stubCanceller{attendance: cancelled},
			refunder,
			&stubPaymentFinder{},
		)

		result, err := svc.CancelWithRefund(ctx, 1, 2)

		require.NoError(t, err)
		assert.Zero(t, result.RefundedPaymentID)
		assert.Empty(t, result.RefundFailureReason)
		assert.Zero(t, refunder.calls)
	})

	t.Run("an attendance failure aborts the saga", func(t *testing.T) {
		refunder := &stubRefunder{}
		svc := NewLifecycleService(
			&stubCanceller{err: ErrAlreadyCancelled},
			refunder,
			&stubPaymentFinder{payments: []domain.Payment{{ID: 3, Status: domain.PaymentCompleted}}},
		)

		_, err := svc.CancelWithRefund(ctx, 1, 2)

		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.Zero(t, refunder.calls)
	})

	t.Run("a refund failure is reported, not rolled back", func(t *testing.T) {
		svc := NewLifecycleService(
			&stubCanceller{attendance: cancelled},
			&stubRefunder{err: errors.New("gateway timeout")},
			&stubPaymentFinder{payments: []domain.Payment{{ID: 3, Status: domain.PaymentCompleted}}},
		)

		result, err := svc.CancelWithRefund(ctx, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, cancelled, result.Attendance)
		assert.Zero(t, result.RefundedPaymentID)
		assert.Contains(t, result.RefundFailureReason, "refund failed")
	})

	t.Run("a payment lookup failure is reported, not rolled back", func(t *testing.T) {
		svc := NewLifecycleService(
			&stubCanceller{attendance: cancelled},
			&stubRefunder{},
			&stubPaymentFinder{err: errors.New("connection reset")},
		)

		result, err := svc.CancelWithRefund(ctx, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, cancelled, result.Attendance)
		assert.Contains(t, result.RefundFailureReason, "payment lookup failed")
	})
}
