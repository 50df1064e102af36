package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/repository"
)

var (
	ErrAttendanceNotFound     = repository.ErrAttendanceNotFound
	ErrAlreadyRegistered      = repository.ErrAlreadyRegistered
	ErrAlreadyCancelled       = errors.New("attendance already cancelled")
	ErrInvalidAttendanceState = errors.New("attendance is not in a valid state for this operation")
	ErrValidation             = errors.New("validation failed")
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type AttendanceRepository interface {
	Save(ctx context.Context, attendance domain.Attendance) (domain.Attendance, error)
	FindByID(ctx context.Context, id uint) (domain.Attendance, error)
	FindByEventID(ctx context.Context, eventID uint) ([]domain.Attendance, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Attendance, error)
	FindActive(ctx context.Context, eventID, userID uint) (domain.Attendance, error)
	IsRegistered(ctx context.Context, eventID, userID uint) (bool, error)
	GetAttendanceStatus(ctx context.Context, eventID, userID uint) (domain.AttendanceStatus, error)
	CancelAttendance(ctx context.Context, eventID, userID uint) (domain.Attendance, error)
	CheckOut(ctx context.Context, eventID, userID uint) (domain.Attendance, error)
	FindWithPagination(ctx context.Context, page, limit int, eventID, userID *uint) ([]domain.Attendance, int64, error)
}

// AttendanceService owns the legality of attendance transitions. Persistence
// belongs to the repository; only transition checks live here.
type AttendanceService struct {
	repo AttendanceRepository
}

func NewAttendanceService(repo AttendanceRepository) *AttendanceService {
	return &AttendanceService{
		repo: repo,
	}
}

func validateAttendanceIDs(eventID, userID uint) error {
	if eventID == 0 {
		return fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if userID == 0 {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}

	return nil
}

func validateNotes(notes string) error {
	if len(notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrValidation, domain.MaxNotesLength)
	}

	return nil
}

// Register creates a REGISTERED attendance for the pair. A live (non-cancelled)
// attendance for the same pair is a conflict; the check is backed by a unique
// index at the storage layer, so a concurrent double-register still fails.
func (s *AttendanceService) Register(ctx context.Context, eventID, userID uint, notes string) (domain.Attendance, error) {
	if err := validateAttendanceIDs(eventID, userID); err != nil {
		return domain.Attendance{}, err
	}
	if err := validateNotes(notes); err != nil {
		return domain.Attendance{}, err
	}

	registered, err := s.repo.IsRegistered(ctx, eventID, userID)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("s.repo.IsRegistered -> %w", err)
	}
	if registered {
		return domain.Attendance{}, ErrAlreadyRegistered
	}

	attendance := domain.Attendance{
		EventID: eventID,
		UserID:  userID,
		Status:  domain.AttendanceRegistered,
		Notes:   notes,
	}

	created, err := s.repo.Save(ctx, attendance)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return domain.Attendance{}, ErrAlreadyRegistered
		}

		return domain.Attendance{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	return created, nil
}

// CheckIn moves REGISTERED to CHECKED_IN and stamps the check-in time.
func (s *AttendanceService) CheckIn(ctx context.Context, eventID, userID uint) (domain.Attendance, error) {
	if err := validateAttendanceIDs(eventID, userID); err != nil {
		return domain.Attendance{}, err
	}

	attendance, err := s.repo.FindActive(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return domain.Attendance{}, ErrAttendanceNotFound
		}

		return domain.Attendance{}, fmt.Errorf("s.repo.FindActive -> %w", err)
	}

	if attendance.Status != domain.AttendanceRegistered {
		return domain.Attendance{}, ErrInvalidAttendanceState
	}

	now := time.Now()
	attendance.Status = domain.AttendanceCheckedIn
	attendance.CheckInTime = &now

	updated, err := s.repo.Save(ctx, attendance)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	return updated, nil
}

// CheckOut moves CHECKED_IN to CHECKED_OUT. The repository returns the row it
// wrote, so the result always reflects the checkout.
func (s *AttendanceService) CheckOut(ctx context.Context, eventID, userID uint) (domain.Attendance, error) {
	if err := validateAttendanceIDs(eventID, userID); err != nil {
		return domain.Attendance{}, err
	}

	attendance, err := s.repo.FindActive(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return domain.Attendance{}, ErrAttendanceNotFound
		}

		return domain.Attendance{}, fmt.Errorf("s.repo.FindActive -> %w", err)
	}

	if attendance.Status != domain.AttendanceCheckedIn {
		return domain.Attendance{}, ErrInvalidAttendanceState
	}

	updated, err := s.repo.CheckOut(ctx, eventID, userID)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("s.repo.CheckOut -> %w", err)
	}

	return updated, nil
}

// Cancel moves any non-cancelled attendance to CANCELLED, including
// checked-out ones; callers use the post-checkout case as a refund trigger.
func (s *AttendanceService) Cancel(ctx context.Context, eventID, userID uint) (domain.Attendance, error) {
	if err := validateAttendanceIDs(eventID, userID); err != nil {
		return domain.Attendance{}, err
	}

	status, err := s.repo.GetAttendanceStatus(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return domain.Attendance{}, ErrAttendanceNotFound
		}

		return domain.Attendance{}, fmt.Errorf("s.repo.GetAttendanceStatus -> %w", err)
	}

	if status == domain.AttendanceCancelled {
		return domain.Attendance{}, ErrAlreadyCancelled
	}

	cancelled, err := s.repo.CancelAttendance(ctx, eventID, userID)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("s.repo.CancelAttendance -> %w", err)
	}

	return cancelled, nil
}

// ForceUpdate is an explicit administrative override that bypasses the
// transition table. A provided status must still parse; unknown values are
// rejected rather than defaulted. The guarded operations above remain the
// only lifecycle path for regular callers.
func (s *AttendanceService) ForceUpdate(ctx context.Context, id uint, status, notes *string) (domain.Attendance, error) {
	if id == 0 {
		return domain.Attendance{}, fmt.Errorf("%w: attendance id is required", ErrValidation)
	}

	attendance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return domain.Attendance{}, ErrAttendanceNotFound
		}

		return domain.Attendance{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if status != nil {
		parsed, err := domain.ParseAttendanceStatus(*status)
		if err != nil {
			return domain.Attendance{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		attendance.Status = parsed
	}

	if notes != nil {
		if err := validateNotes(*notes); err != nil {
			return domain.Attendance{}, err
		}
		attendance.Notes = *notes
	}

	updated, err := s.repo.Save(ctx, attendance)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	return updated, nil
}

func (s *AttendanceService) Status(ctx context.Context, eventID, userID uint) (domain.AttendanceStatus, error) {
	if err := validateAttendanceIDs(eventID, userID); err != nil {
		return "", err
	}

	status, err := s.repo.GetAttendanceStatus(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return "", ErrAttendanceNotFound
		}

		return "", fmt.Errorf("s.repo.GetAttendanceStatus -> %w", err)
	}

	return status, nil
}

func (s *AttendanceService) List(ctx context.Context, page, limit int, eventID, userID *uint) ([]domain.Attendance, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	attendances, total, err := s.repo.FindWithPagination(ctx, page, limit, eventID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.FindWithPagination -> %w", err)
	}

	return attendances, total, nil
}
