package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/repository/dao"
)

type stubAttendanceDAO struct {
	inserted  *dao.Attendance
	updated   *dao.Attendance
	active    dao.Attendance
	activeErr error
}

func (s *stubAttendanceDAO) Insert(ctx context.Context, attendance dao.Attendance) (dao.Attendance, error) {
	s.inserted = &attendance
	attendance.ID = 1

	return attendance, nil
}

func (s *stubAttendanceDAO) Update(ctx context.Context, attendance dao.Attendance) (dao.Attendance, error) {
	s.updated = &attendance

	return attendance, nil
}

func (s *stubAttendanceDAO) FindByID(ctx context.Context, id uint) (dao.Attendance, error) {
	return s.active, s.activeErr
}

func (s *stubAttendanceDAO) FindByEventID(ctx context.Context, eventID uint) ([]dao.Attendance, error) {
	return nil, nil
}

func (s *stubAttendanceDAO) FindByUserID(ctx context.Context, userID uint) ([]dao.Attendance, error) {
	return nil, nil
}

func (s *stubAttendanceDAO) FindActive(ctx context.Context, eventID, userID uint) (dao.Attendance, error) {
	return s.active, s.activeErr
}

func (s *stubAttendanceDAO) FindLatest(ctx context.Context, eventID, userID uint) (dao.Attendance, error) {
	return s.active, s.activeErr
}

func (s *stubAttendanceDAO) IsRegistered(ctx context.Context, eventID, userID uint) (bool, error) {
	return s.activeErr == nil, nil
}

func (s *stubAttendanceDAO) FindWithPagination(ctx context.Context, page, limit int, eventID, userID *uint) ([]dao.Attendance, int64, error) {
	return nil, 0, nil
}

func TestAttendanceRepository_Save_ActiveFlag(t *testing.T) {
	ctx := context.Background()

	t.Run("live statuses occupy the active slot", func(t *testing.T) {
		stub := &stubAttendanceDAO{}
		repo := NewAttendanceRepository(stub)

		_, err := repo.Save(ctx, domain.Attendance{
			EventID: 1,
			UserID:  2,
			Status:  domain.AttendanceRegistered,
		})

		require.NoError(t, err)
		require.NotNil(t, stub.inserted)
		require.NotNil(t, stub.inserted.Active)
		assert.True(t, *stub.inserted.Active)
	})

	t.Run("cancelled rows release the active slot", func(t *testing.T) {
		stub := &stubAttendanceDAO{}
		repo := NewAttendanceRepository(stub)

		_, err := repo.Save(ctx, domain.Attendance{
			ID:      3,
			EventID: 1,
			UserID:  2,
			Status:  domain.AttendanceCancelled,
		})

		require.NoError(t, err)
		require.NotNil(t, stub.updated)
		assert.Nil(t, stub.updated.Active)
	})
}

func TestAttendanceRepository_CancelAttendance(t *testing.T) {
	ctx := context.Background()
	active := true
	stub := &stubAttendanceDAO{active: dao.Attendance{
		ID:      5,
		EventID: 1,
		UserID:  2,
		Status:  string(domain.AttendanceCheckedOut),
		Active:  &active,
	}}
	repo := NewAttendanceRepository(stub)

	cancelled, err := repo.CancelAttendance(ctx, 1, 2)

	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceCancelled, cancelled.Status)
	require.NotNil(t, stub.updated)
	assert.Nil(t, stub.updated.Active)
}
