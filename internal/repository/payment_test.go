package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/repository/dao"
)

type stubPaymentDAO struct {
	payments []dao.Payment
}

func (s *stubPaymentDAO) Insert(ctx context.Context, payment dao.Payment) (dao.Payment, error) {
	return payment, nil
}

func (s *stubPaymentDAO) Update(ctx context.Context, payment dao.Payment) (dao.Payment, error) {
	return payment, nil
}

func (s *stubPaymentDAO) Delete(ctx context.Context, id uint) error {
	return nil
}

func (s *stubPaymentDAO) UpdateStatus(ctx context.Context, id uint, status string) error {
	return nil
}

func (s *stubPaymentDAO) FindByID(ctx context.Context, id uint) (dao.Payment, error) {
	for _, p := range s.payments {
		if p.ID == id {
			return p, nil
		}
	}

	return dao.Payment{}, dao.ErrPaymentNotFound
}

func (s *stubPaymentDAO) FindByUserID(ctx context.Context, userID uint) ([]dao.Payment, error) {
	return s.payments, nil
}

func (s *stubPaymentDAO) FindByEventID(ctx context.Context, eventID uint) ([]dao.Payment, error) {
	return s.payments, nil
}

func (s *stubPaymentDAO) FindAll(ctx context.Context) ([]dao.Payment, error) {
	return s.payments, nil
}

func (s *stubPaymentDAO) FindBetween(ctx context.Context, start, end *time.Time) ([]dao.Payment, error) {
	var result []dao.Payment
	for _, p := range s.payments {
		if start != nil && p.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && !p.CreatedAt.Before(*end) {
			continue
		}
		result = append(result, p)
	}

	return result, nil
}

func (s *stubPaymentDAO) FindWithFilters(ctx context.Context, filter dao.PaymentFilter) ([]dao.Payment, int64, error) {
	return s.payments, int64(len(s.payments)), nil
}

func daoPayment(id uint, amount int64, status string, createdAt time.Time) dao.Payment {
	return dao.Payment{
		ID:        id,
		UserID:    1,
		EventID:   1,
		Amount:    decimal.NewFromInt(amount),
		Currency:  "USD",
		Status:    status,
		CreatedAt: createdAt,
	}
}

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func TestPaymentRepository_GetPaymentStats(t *testing.T) {
	ctx := context.Background()

	t.Run("revenue only counts completed payments", func(t *testing.T) {
		repo := NewPaymentRepository(&stubPaymentDAO{payments: []dao.Payment{
			daoPayment(1, 100, "COMPLETED", date("2024-05-01")),
			daoPayment(2, 50, "PENDING", date("2024-05-02")),
			daoPayment(3, 30, "FAILED", date("2024-05-03")),
		}})

		stats, err := repo.GetPaymentStats(ctx, nil, nil)

		require.NoError(t, err)
		assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(100)), "got %v", stats.TotalRevenue)
		assert.EqualValues(t, 3, stats.TotalCount)
		assert.EqualValues(t, 1, stats.CountByStatus[domain.PaymentCompleted])
		assert.EqualValues(t, 1, stats.CountByStatus[domain.PaymentPending])
		assert.EqualValues(t, 1, stats.CountByStatus[domain.PaymentFailed])
	})

	t.Run("revenue by month sorts chronologically", func(t *testing.T) {
		repo := NewPaymentRepository(&stubPaymentDAO{payments: []dao.Payment{
			daoPayment(1, 70, "COMPLETED", date("2024-02-10")),
			daoPayment(2, 100, "COMPLETED", date("2023-12-31")),
			daoPayment(3, 25, "COMPLETED", date("2024-02-20")),
		}})

		stats, err := repo.GetPaymentStats(ctx, nil, nil)

		require.NoError(t, err)
		require.Len(t, stats.RevenueByMonth, 2)
		assert.Equal(t, "2023-12", stats.RevenueByMonth[0].Month)
		assert.True(t, stats.RevenueByMonth[0].Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "2024-02", stats.RevenueByMonth[1].Month)
		assert.True(t, stats.RevenueByMonth[1].Amount.Equal(decimal.NewFromInt(95)))
	})

	t.Run("the window excludes its end", func(t *testing.T) {
		repo := NewPaymentRepository(&stubPaymentDAO{payments: []dao.Payment{
			daoPayment(1, 10, "COMPLETED", date("2024-01-15")),
			daoPayment(2, 20, "COMPLETED", date("2024-02-01")),
		}})

		start := date("2024-01-01")
		end := date("2024-02-01")
		stats, err := repo.GetPaymentStats(ctx, &start, &end)

		require.NoError(t, err)
		assert.EqualValues(t, 1, stats.TotalCount)
		assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(10)))
	})

	t.Run("empty collection", func(t *testing.T) {
		repo := NewPaymentRepository(&stubPaymentDAO{})

		stats, err := repo.GetPaymentStats(ctx, nil, nil)

		require.NoError(t, err)
		assert.True(t, stats.TotalRevenue.IsZero())
		assert.Zero(t, stats.TotalCount)
		assert.Empty(t, stats.RevenueByMonth)
	})
}

func TestPaymentRepository_MetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(&stubPaymentDAO{})

	payment := domain.Payment{
		ID:       1,
		UserID:   1,
		EventID:  1,
		Amount:   decimal.NewFromInt(10),
		Currency: domain.CurrencyUSD,
		Status:   domain.PaymentRefunded,
		Metadata: map[string]string{
			domain.MetadataRefundReason: "event cancelled",
		},
	}

	saved, err := repo.Save(ctx, payment)

	require.NoError(t, err)
	assert.Equal(t, "event cancelled", saved.Metadata[domain.MetadataRefundReason])
}
