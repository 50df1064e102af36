package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/repository/dao"
)

var (
	ErrAttendanceNotFound = dao.ErrAttendanceNotFound
	ErrAlreadyRegistered  = dao.ErrAlreadyRegistered
)

type AttendanceDAO interface {
	Insert(ctx context.Context, attendance dao.Attendance) (dao.Attendance, error)
	Update(ctx context.Context, attendance dao.Attendance) (dao.Attendance, error)
	FindByID(ctx context.Context, id uint) (dao.Attendance, error)
	FindByEventID(ctx context.Context, eventID uint) ([]dao.Attendance, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Attendance, error)
	FindActive(ctx context.Context, eventID, userID uint) (dao.Attendance, error)
	FindLatest(ctx context.Context, eventID, userID uint) (dao.Attendance, error)
	IsRegistered(ctx context.Context, eventID, userID uint) (bool, error)
	FindWithPagination(ctx context.Context, page, limit int, eventID, userID *uint) ([]dao.Attendance, int64, error)
}

type AttendanceRepository struct {
	dao AttendanceDAO
}

func NewAttendanceRepository(dao AttendanceDAO) *AttendanceRepository {
	return &AttendanceRepository{
		dao: dao,
	}
}

func (r *AttendanceRepository) domainToDao(a domain.Attendance) dao.Attendance {
	daoAttendance := dao.Attendance{
		ID:           a.ID,
		EventID:      a.EventID,
		UserID:       a.UserID,
		Status:       string(a.Status),
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}

	// The Active flag backs the one-live-row-per-pair unique index.
	if a.Status != domain.AttendanceCancelled {
		active := true
		daoAttendance.Active = &active
	}

	return daoAttendance
}

func (r *AttendanceRepository) daoToDomain(a dao.Attendance) domain.Attendance {
	return domain.Attendance{
		ID:           a.ID,
		EventID:      a.EventID,
		UserID:       a.UserID,
		Status:       domain.AttendanceStatus(a.Status),
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r *AttendanceRepository) daosToDomain(attendances []dao.Attendance) []domain.Attendance {
	domainAttendances := make([]domain.Attendance, len(attendances))
	for i, a := range attendances {
		domainAttendances[i] = r.daoToDomain(a)
	}

	return domainAttendances
}

func (r *AttendanceRepository) Save(ctx context.Context, attendance domain.Attendance) (domain.Attendance, error) {
	daoAttendance := r.domainToDao(attendance)
	daoAttendance.UpdatedAt = time.Now()

	var (
		saved dao.Attendance
		err   error
	)
	if daoAttendance.ID == 0 {
		saved, err = r.dao.Insert(ctx, daoAttendance)
	} else {
		saved, err = r.dao.Update(ctx, daoAttendance)
	}
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("r.dao.Save -> %w", err)
	}

	return r.daoToDomain(saved), nil
}

func (r *AttendanceRepository) FindByID(ctx context.Context, id uint) (domain.Attendance, error) {
	attendance, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(attendance), nil
}

func (r *AttendanceRepository) FindByEventID(ctx context.Context, eventID uint) ([]domain.Attendance, error) {
	attendances, err := r.dao.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	return r.daosToDomain(attendances), nil
}

func (r *AttendanceRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Attendance, error) {
	attendances, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daosToDomain(attendances), nil
}

// FindActive returns the single non-cancelled attendance for the pair.
func (r *AttendanceRepository) FindActive(ctx context.Context, eventID, userID uint) (domain.Attendance, error) {
	attendance, err := r.dao.FindActive(ctx, eventID, userID)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	return r.daoToDomain(attendance), nil
}

func (r *AttendanceRepository) IsRegistered(ctx context.Context, eventID, userID uint) (bool, error) {
	registered, err := r.dao.IsRegistered(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("r.dao.IsRegistered -> %w", err)
	}

	return registered, nil
}

// GetAttendanceStatus reports the status of the most recent attendance for the
// pair, cancelled or not.
func (r *AttendanceRepository) GetAttendanceStatus(ctx context.Context, eventID, userID uint) (domain.AttendanceStatus, error) {
	attendance, err := r.dao.FindLatest(ctx, eventID, userID)
	if err != nil {
		return "", fmt.Errorf("r.dao.FindLatest -> %w", err)
	}

	return domain.AttendanceStatus(attendance.Status), nil
}

// CancelAttendance moves the live row for the pair to CANCELLED and releases
// the active slot so the user may register again later.
func (r *AttendanceRepository) CancelAttendance(ctx context.Context, eventID, userID uint) (domain.Attendance, error) {
	attendance, err := r.dao.FindActive(ctx, eventID, userID)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	attendance.Status = string(domain.AttendanceCancelled)
	attendance.Active = nil
	attendance.UpdatedAt = time.Now()

	updated, err := r.dao.Update(ctx, attendance)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

// CheckOut writes the CHECKED_OUT status and returns the written row, so
// callers observe their own write without a second fetch.
func (r *AttendanceRepository) CheckOut(ctx context.Context, eventID, userID uint) (domain.Attendance, error) {
	attendance, err := r.dao.FindActive(ctx, eventID, userID)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	now := time.Now()
	attendance.Status = string(domain.AttendanceCheckedOut)
	attendance.CheckOutTime = &now
	attendance.UpdatedAt = now

	updated, err := r.dao.Update(ctx, attendance)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *AttendanceRepository) FindWithPagination(ctx context.Context, page, limit int, eventID, userID *uint) ([]domain.Attendance, int64, error) {
	attendances, total, err := r.dao.FindWithPagination(ctx, page, limit, eventID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.FindWithPagination -> %w", err)
	}

	return r.daosToDomain(attendances), total, nil
}
