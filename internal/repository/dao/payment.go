package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Payment struct {
	ID uint `gorm:"primaryKey"`

	UserID   uint `gorm:"not null;index"`
	EventID  uint `gorm:"not null;index"`
	TicketID uint

	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency string          `gorm:"not null"`
	Status   string          `gorm:"not null;index"`

	Provider          string `gorm:"not null"`
	ProviderPaymentID string
	Method            string `gorm:"not null"`
	Description       string
	Metadata          []byte `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type PaymentDAO struct {
	db *gorm.DB
}

func NewPaymentDAO(db *gorm.DB) *PaymentDAO {
	return &PaymentDAO{
		db: db,
	}
}

func (d *PaymentDAO) Insert(ctx context.Context, payment Payment) (Payment, error) {
	result := d.db.WithContext(ctx).Create(&payment)
	if result.Error != nil {
		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *PaymentDAO) Update(ctx context.Context, payment Payment) (Payment, error) {
	result := d.db.WithContext(ctx).Save(&payment)
	if result.Error != nil {
		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *PaymentDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Payment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

func (d *PaymentDAO) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := d.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

func (d *PaymentDAO) FindByID(ctx context.Context, id uint) (Payment, error) {
	var payment Payment
	result := d.db.WithContext(ctx).First(&payment, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}

		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *PaymentDAO) FindByUserID(ctx context.Context, userID uint) ([]Payment, error) {
	var payments []Payment
	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&payments)
	if result.Error != nil {
		return nil, result.Error
	}

	return payments, nil
}

func (d *PaymentDAO) FindByEventID(ctx context.Context, eventID uint) ([]Payment, error) {
	var payments []Payment
	result := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&payments)
	if result.Error != nil {
		return nil, result.Error
	}

	return payments, nil
}

func (d *PaymentDAO) FindAll(ctx context.Context) ([]Payment, error) {
	var payments []Payment
	result := d.db.WithContext(ctx).Order("id").Find(&payments)
	if result.Error != nil {
		return nil, result.Error
	}

	return payments, nil
}

// FindBetween returns every payment created inside the half-open window.
// Nil bounds are left open.
func (d *PaymentDAO) FindBetween(ctx context.Context, start, end *time.Time) ([]Payment, error) {
	query := d.db.WithContext(ctx).Model(&Payment{})
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at < ?", *end)
	}

	var payments []Payment
	if err := query.Order("id").Find(&payments).Error; err != nil {
		return nil, err
	}

	return payments, nil
}

// PaymentFilter mirrors domain.PaymentFilter at the storage layer.
type PaymentFilter struct {
	UserID   *uint
	EventID  *uint
	Status   *string
	Provider *string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

func (d *PaymentDAO) FindWithFilters(ctx context.Context, filter PaymentFilter) ([]Payment, int64, error) {
	query := d.db.WithContext(ctx).Model(&Payment{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Provider != nil {
		query = query.Where("provider = ?", *filter.Provider)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.Limit)
	}

	var payments []Payment
	if err := query.Order("id").Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}
