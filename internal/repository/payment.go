package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/repository/dao"
)

var ErrPaymentNotFound = dao.ErrPaymentNotFound

type PaymentDAO interface {
	Insert(ctx context.Context, payment dao.Payment) (dao.Payment, error)
	Update(ctx context.Context, payment dao.Payment) (dao.Payment, error)
	Delete(ctx context.Context, id uint) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	FindByID(ctx context.Context, id uint) (dao.Payment, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Payment, error)
	FindByEventID(ctx context.Context, eventID uint) ([]dao.Payment, error)
	FindAll(ctx context.Context) ([]dao.Payment, error)
	FindBetween(ctx context.Context, start, end *time.Time) ([]dao.Payment, error)
	FindWithFilters(ctx context.Context, filter dao.PaymentFilter) ([]dao.Payment, int64, error)
}

type PaymentRepository struct {
	dao PaymentDAO
}

func NewPaymentRepository(dao PaymentDAO) *PaymentRepository {
	return &PaymentRepository{
		dao: dao,
	}
}

func (r *PaymentRepository) domainToDao(p domain.Payment) (dao.Payment, error) {
	var metadata []byte
	if len(p.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(p.Metadata)
		if err != nil {
			return dao.Payment{}, fmt.Errorf("json.Marshal metadata -> %w", err)
		}
	}

	return dao.Payment{
		ID:                p.ID,
		UserID:            p.UserID,
		EventID:           p.EventID,
		TicketID:          p.TicketID,
		Amount:            p.Amount,
		Currency:          string(p.Currency),
		Status:            string(p.Status),
		Provider:          string(p.Provider),
		ProviderPaymentID: p.ProviderPaymentID,
		Method:            string(p.Method),
		Description:       p.Description,
		Metadata:          metadata,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}, nil
}

func (r *PaymentRepository) daoToDomain(p dao.Payment) domain.Payment {
	var metadata map[string]string
	if len(p.Metadata) > 0 {
		// Metadata was marshalled by this layer; a decode failure means the
		// column was corrupted outside the application, so it is dropped.
		_ = json.Unmarshal(p.Metadata, &metadata)
	}

	return domain.Payment{
		ID:                p.ID,
		UserID:            p.UserID,
		EventID:           p.EventID,
		TicketID:          p.TicketID,
		Amount:            p.Amount,
		Currency:          domain.Currency(p.Currency),
		Status:            domain.PaymentStatus(p.Status),
		Provider:          domain.PaymentProvider(p.Provider),
		ProviderPaymentID: p.ProviderPaymentID,
		Method:            domain.PaymentMethod(p.Method),
		Description:       p.Description,
		Metadata:          metadata,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (r *PaymentRepository) daosToDomain(payments []dao.Payment) []domain.Payment {
	domainPayments := make([]domain.Payment, len(payments))
	for i, p := range payments {
		domainPayments[i] = r.daoToDomain(p)
	}

	return domainPayments
}

func (r *PaymentRepository) Create(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	daoPayment, err := r.domainToDao(payment)
	if err != nil {
		return domain.Payment{}, err
	}

	created, err := r.dao.Insert(ctx, daoPayment)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *PaymentRepository) Save(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	daoPayment, err := r.domainToDao(payment)
	if err != nil {
		return domain.Payment{}, err
	}
	daoPayment.UpdatedAt = time.Now()

	saved, err := r.dao.Update(ctx, daoPayment)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(saved), nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uint, status domain.PaymentStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(status)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint) (domain.Payment, error) {
	payment, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(payment), nil
}

func (r *PaymentRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Payment, error) {
	payments, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daosToDomain(payments), nil
}

func (r *PaymentRepository) FindByEventID(ctx context.Context, eventID uint) ([]domain.Payment, error) {
	payments, err := r.dao.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	return r.daosToDomain(payments), nil
}

func (r *PaymentRepository) FindAll(ctx context.Context) ([]domain.Payment, error) {
	payments, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daosToDomain(payments), nil
}

func (r *PaymentRepository) FindWithFilters(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int64, error) {
	daoFilter := dao.PaymentFilter{
		UserID:  filter.UserID,
		EventID: filter.EventID,
		From:    filter.From,
		To:      filter.To,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}
	if filter.Status != nil {
		status := string(*filter.Status)
		daoFilter.Status = &status
	}
	if filter.Provider != nil {
		provider := string(*filter.Provider)
		daoFilter.Provider = &provider
	}

	payments, total, err := r.dao.FindWithFilters(ctx, daoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.FindWithFilters -> %w", err)
	}

	return r.daosToDomain(payments), total, nil
}

// GetPaymentStats aggregates the payment collection inside the window.
// Revenue sums count COMPLETED payments only; PENDING, FAILED, REFUNDED and
// CANCELLED rows contribute to the per-status counts but never to revenue.
func (r *PaymentRepository) GetPaymentStats(ctx context.Context, start, end *time.Time) (domain.PaymentStats, error) {
	payments, err := r.dao.FindBetween(ctx, start, end)
	if err != nil {
		return domain.PaymentStats{}, fmt.Errorf("r.dao.FindBetween -> %w", err)
	}

	stats := domain.PaymentStats{
		TotalRevenue:  decimal.Zero,
		TotalCount:    int64(len(payments)),
		CountByStatus: make(map[domain.PaymentStatus]int64),
	}

	revenueByMonth := make(map[string]decimal.Decimal)
	for _, p := range payments {
		status := domain.PaymentStatus(p.Status)
		stats.CountByStatus[status]++

		if status != domain.PaymentCompleted {
			continue
		}

		stats.TotalRevenue = stats.TotalRevenue.Add(p.Amount)
		month := p.CreatedAt.Format("2006-01")
		revenueByMonth[month] = revenueByMonth[month].Add(p.Amount)
	}

	months := make([]string, 0, len(revenueByMonth))
	for month := range revenueByMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	stats.RevenueByMonth = make([]domain.MonthlyAmount, len(months))
	for i, month := range months {
		stats.RevenueByMonth[i] = domain.MonthlyAmount{Month: month, Amount: revenueByMonth[month]}
	}

	return stats, nil
}
