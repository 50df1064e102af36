package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAttendanceNotFound = errors.New("attendance not found")
	ErrAlreadyRegistered  = errors.New("user already registered for event")
)

// Attendance rows are never deleted; cancellation clears the Active flag and
// sets the status. Active is true for every non-cancelled row and NULL for
// cancelled ones, so the composite unique index admits any number of cancelled
// rows per (event, user) pair but at most one live one. This makes the
// register-after-cancel and cancel-race cases a database-level conflict rather
// than a read-then-write hazard.
type Attendance struct {
	ID uint `gorm:"primaryKey"`

	EventID uint  `gorm:"not null;uniqueIndex:uniq_active_attendance"`
	UserID  uint  `gorm:"not null;uniqueIndex:uniq_active_attendance"`
	Active  *bool `gorm:"uniqueIndex:uniq_active_attendance"`

	Status       string `gorm:"not null"`
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Notes        string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type AttendanceDAO struct {
	db *gorm.DB
}

func NewAttendanceDAO(db *gorm.DB) *AttendanceDAO {
	return &AttendanceDAO{
		db: db,
	}
}

func (d *AttendanceDAO) Insert(ctx context.Context, attendance Attendance) (Attendance, error) {
	result := d.db.WithContext(ctx).Create(&attendance)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return Attendance{}, ErrAlreadyRegistered
		}

		return Attendance{}, result.Error
	}

	return attendance, nil
}

func (d *AttendanceDAO) Update(ctx context.Context, attendance Attendance) (Attendance, error) {
	result := d.db.WithContext(ctx).Save(&attendance)
	if result.Error != nil {
		return Attendance{}, result.Error
	}

	return attendance, nil
}

func (d *AttendanceDAO) FindByID(ctx context.Context, id uint) (Attendance, error) {
	var attendance Attendance
	result := d.db.WithContext(ctx).First(&attendance, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Attendance{}, ErrAttendanceNotFound
		}

		return Attendance{}, result.Error
	}

	return attendance, nil
}

func (d *AttendanceDAO) FindByEventID(ctx context.Context, eventID uint) ([]Attendance, error) {
	var attendances []Attendance
	result := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&attendances)
	if result.Error != nil {
		return nil, result.Error
	}

	return attendances, nil
}

func (d *AttendanceDAO) FindByUserID(ctx context.Context, userID uint) ([]Attendance, error) {
	var attendances []Attendance
	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&attendances)
	if result.Error != nil {
		return nil, result.Error
	}

	return attendances, nil
}

// FindActive returns the single non-cancelled row for the pair.
func (d *AttendanceDAO) FindActive(ctx context.Context, eventID, userID uint) (Attendance, error) {
	var attendance Attendance
	result := d.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ? AND active IS TRUE", eventID, userID).
		First(&attendance)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Attendance{}, ErrAttendanceNotFound
		}

		return Attendance{}, result.Error
	}

	return attendance, nil
}

// FindLatest returns the most recent row for the pair regardless of status.
func (d *AttendanceDAO) FindLatest(ctx context.Context, eventID, userID uint) (Attendance, error) {
	var attendance Attendance
	result := d.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Order("id DESC").
		First(&attendance)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Attendance{}, ErrAttendanceNotFound
		}

		return Attendance{}, result.Error
	}

	return attendance, nil
}

func (d *AttendanceDAO) IsRegistered(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	result := d.db.WithContext(ctx).Model(&Attendance{}).
		Where("event_id = ? AND user_id = ? AND active IS TRUE", eventID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *AttendanceDAO) FindWithPagination(ctx context.Context, page, limit int, eventID, userID *uint) ([]Attendance, int64, error) {
	query := d.db.WithContext(ctx).Model(&Attendance{})
	if eventID != nil {
		query = query.Where("event_id = ?", *eventID)
	}
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attendances []Attendance
	offset := (page - 1) * limit
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&attendances).Error; err != nil {
		return nil, 0, err
	}

	return attendances, total, nil
}
