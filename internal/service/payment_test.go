package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/repository"
)

type mockPaymentRepository struct {
	nextID          uint
	payments        map[uint]domain.Payment
	updateStatusErr error
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{
		payments: make(map[uint]domain.Payment),
	}
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	m.nextID++
	payment.ID = m.nextID
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	m.payments[payment.ID] = payment

	return payment, nil
}

func (m *mockPaymentRepository) Save(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	if _, ok := m.payments[payment.ID]; !ok {
		return domain.Payment{}, repository.ErrPaymentNotFound
	}
	payment.UpdatedAt = time.Now()
	m.payments[payment.ID] = payment

	return payment, nil
}

func (m *mockPaymentRepository) Delete(ctx context.Context, id uint) error {
	if _, ok := m.payments[id]; !ok {
		return repository.ErrPaymentNotFound
	}
	delete(m.payments, id)

	return nil
}

func (m *mockPaymentRepository) UpdateStatus(ctx context.Context, id uint, status domain.PaymentStatus) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}

	p, ok := m.payments[id]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	p.Status = status
	m.payments[id] = p

	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id uint) (domain.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return domain.Payment{}, repository.ErrPaymentNotFound
	}

	return p, nil
}

func (m *mockPaymentRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Payment, error) {
	var result []domain.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			result = append(result, p)
		}
	}

	return result, nil
}

func (m *mockPaymentRepository) FindByEventID(ctx context.Context, eventID uint) ([]domain.Payment, error) {
	var result []domain.Payment
	for _, p := range m.payments {
		if p.EventID == eventID {
			result = append(result, p)
		}
	}

	return result, nil
}

func (m *mockPaymentRepository) FindAll(ctx context.Context) ([]domain.Payment, error) {
	var result []domain.Payment
	for _, p := range m.payments {
		result = append(result, p)
	}

	return result, nil
}

func (m *mockPaymentRepository) FindWithFilters(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int64, error) {
	var result []domain.Payment
	for _, p := range m.payments {
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		if filter.EventID != nil && p.EventID != *filter.EventID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		result = append(result, p)
	}

	return result, int64(len(result)), nil
}

func (m *mockPaymentRepository) GetPaymentStats(ctx context.Context, start, end *time.Time) (domain.PaymentStats, error) {
	return domain.PaymentStats{}, nil
}

// mockProcessor confirms or fails every call depending on its error fields.
type mockProcessor struct {
	processErr   error
	refundErr    error
	cancelErr    error
	refundCalls  int
	processCalls int
}

func (m *mockProcessor) ProcessPayment(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	m.processCalls++
	if m.processErr != nil {
		return domain.Payment{}, m.processErr
	}
	payment.ProviderPaymentID = "prov_123"

	return payment, nil
}

func (m *mockProcessor) RefundPayment(ctx context.Context, payment domain.Payment, reason string) (domain.Payment, error) {
	m.refundCalls++
	if m.refundErr != nil {
		return domain.Payment{}, m.refundErr
	}

	return payment, nil
}

func (m *mockProcessor) CheckPaymentStatus(ctx context.Context, payment domain.Payment) (domain.PaymentStatus, error) {
	return payment.Status, nil
}

func (m *mockProcessor) CancelPayment(ctx context.Context, payment domain.Payment) error {
	return m.cancelErr
}

func validPayment() domain.Payment {
	return domain.Payment{
		UserID:   1,
		EventID:  2,
		Amount:   decimal.NewFromFloat(49.90),
		Currency: domain.CurrencyUSD,
		Provider: domain.ProviderStripe,
		Method:   domain.MethodCreditCard,
	}
}

func TestPaymentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a PENDING payment", func(t *testing.T) {
		svc := NewPaymentService(newMockPaymentRepository(), &mockProcessor{})

		payment := validPayment()
		payment.Status = domain.PaymentCompleted // must be ignored
		payment.ProviderPaymentID = "spoofed"

		created, err := svc.Create(ctx, payment)

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPending, created.Status)
		assert.Empty(t, created.ProviderPaymentID)
		assert.NotZero(t, created.ID)
	})

	t.Run("rejects invalid commands", func(t *testing.T) {
		svc := NewPaymentService(newMockPaymentRepository(), &mockProcessor{})

		tests := []struct {
			name   string
			mutate func(*domain.Payment)
		}{
			{"zero user id", func(p *domain.Payment) { p.UserID = 0 }},
			{"zero event id", func(p *domain.Payment) { p.EventID = 0 }},
			{"zero amount", func(p *domain.Payment) { p.Amount = decimal.Zero }},
			{"negative amount", func(p *domain.Payment) { p.Amount = decimal.NewFromInt(-5) }},
			{"unknown currency", func(p *domain.Payment) { p.Currency = "JPY" }},
			{"unknown provider", func(p *domain.Payment) { p.Provider = "SQUARE" }},
			{"unknown method", func(p *domain.Payment) { p.Method = "CHEQUE" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				payment := validPayment()
				tt.mutate(&payment)

				_, err := svc.Create(ctx, payment)

				assert.ErrorIs(t, err, ErrValidation)
			})
		}
	})
}

func TestPaymentService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("moves PENDING to COMPLETED with the provider reference", func(t *testing.T) {
		repo := newMockPaymentRepository()
		svc := NewPaymentService(repo, &mockProcessor{})

		created, err := svc.Create(ctx, validPayment())
		require.NoError(t, err)

		processed, err := svc.Process(ctx, created)

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, processed.Status)
		assert.Equal(t, "prov_123", processed.ProviderPaymentID)

		stored, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, stored.Status)
	})

	t.Run("persists FAILED and surfaces the processor error", func(t *testing.T) {
		repo := newMockPaymentRepository()
		procErr := errors.New("card declined")
		svc := NewPaymentService(repo, &mockProcessor{processErr: procErr})

		created, err := svc.Create(ctx, validPayment())
		require.NoError(t, err)

		_, err = svc.Process(ctx, created)

		assert.ErrorIs(t, err, procErr)

		stored, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentFailed, stored.Status)
	})

	t.Run("a failing status write never masks the processor error", func(t *testing.T) {
		repo := newMockPaymentRepository()
		procErr := errors.New("card declined")
		updErr := errors.New("connection reset")
		svc := NewPaymentService(repo, &mockProcessor{processErr: procErr})

		created, err := svc.Create(ctx, validPayment())
		require.NoError(t, err)
		repo.updateStatusErr = updErr

		_, err = svc.Process(ctx, created)

		assert.ErrorIs(t, err, procErr)
		assert.ErrorIs(t, err, updErr)
	})

	t.Run("only PENDING payments can be processed", func(t *testing.T) {
		svc := NewPaymentService(newMockPaymentRepository(), &mockProcessor{})

		payment := validPayment()
		payment.Status = domain.PaymentCompleted

		_, err := svc.Process(ctx, payment)

		assert.ErrorIs(t, err, ErrInvalidPaymentState)
	})
}

func TestPaymentService_Refund(t *testing.T) {
	ctx := context.Background()

	completedPayment := func(t *testing.T, svc *PaymentService) domain.Payment {
		t.Helper()
		created, err := svc.Create(ctx, validPayment())
		require.NoError(t, err)
		processed, err := svc.Process(ctx, created)
		require.NoError(t, err)

		return processed
	}

	t.Run("moves COMPLETED to REFUNDED and records the reason", func(t *testing.T) {
		repo := newMockPaymentRepository()
		proc := &mockProcessor{}
		svc := NewPaymentService(repo, proc)
		payment := completedPayment(t, svc)

		refunded, err := svc.Refund(ctx, payment.ID, "event cancelled")

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentRefunded, refunded.Status)
		assert.Equal(t, "event cancelled", refunded.Metadata[domain.MetadataRefundReason])
		assert.NotEmpty(t, refunded.Metadata[domain.MetadataRefundedAt])
		assert.Equal(t, 1, proc.refundCalls)
	})

	t.Run("second refund fails without touching the processor", func(t *testing.T) {
		proc := &mockProcessor{}
		svc := NewPaymentService(newMockPaymentRepository(), proc)
		payment := completedPayment(t, svc)

		_, err := svc.Refund(ctx, payment.ID, "first")
		require.NoError(t, err)

		_, err = svc.Refund(ctx, payment.ID, "second")

		assert.ErrorIs(t, err, ErrAlreadyRefunded)
		assert.Equal(t, 1, proc.refundCalls)
	})

	t.Run("only COMPLETED payments can be refunded", func(t *testing.T) {
		svc := NewPaymentService(newMockPaymentRepository(), &mockProcessor{})
		created, err := svc.Create(ctx, validPayment())
		require.NoError(t, err)

		_, err = svc.Refund(ctx, created.ID, "too early")

		assert.ErrorIs(t, err, ErrPaymentNotCompleted)
	})

	t.Run("processor failure leaves the payment COMPLETED", func(t *testing.T) {
		repo := newMockPaymentRepository()
		svc := NewPaymentService(repo, &mockProcessor{})
		payment := completedPayment(t, svc)

		failing := NewPaymentService(repo, &mockProcessor{refundErr: errors.New("gateway timeout")})
		_, err := failing.Refund(ctx, payment.ID, "reason")
		assert.Error(t, err)

		stored, err := repo.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, stored.Status)
	})

	t.Run("unknown payment", func(t *testing.T) {
		svc := NewPaymentService(newMockPaymentRepository(), &mockProcessor{})

		_, err := svc.Refund(ctx, 42, "reason")

		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestPaymentService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("moves PENDING to CANCELLED", func(t *testing.T) {
		repo := newMockPaymentRepository()
		svc := NewPaymentService(repo, &mockProcessor{})

		created, err := svc.Create(ctx, validPayment())
		require.NoError(t, err)

		cancelled, err := svc.Cancel(ctx, created)

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCancelled, cancelled.Status)

		stored, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCancelled, stored.Status)
	})

	t.Run("only PENDING payments can be cancelled", func(t *testing.T) {
		svc := NewPaymentService(newMockPaymentRepository(), &mockProcessor{})

		payment := validPayment()
		payment.Status = domain.PaymentCompleted

		_, err := svc.Cancel(ctx, payment)

		assert.ErrorIs(t, err, ErrInvalidPaymentState)
	})
}
