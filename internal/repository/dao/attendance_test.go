package dao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeAttendance(eventID, userID uint, status string) Attendance {
	active := true

	return Attendance{
		EventID: eventID,
		UserID:  userID,
		Active:  &active,
		Status:  status,
	}
}

func TestAttendanceDAO_Insert_UniqueActiveRow(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	d := NewAttendanceDAO(testDB)

	first, err := d.Insert(ctx, activeAttendance(1, 2, "REGISTERED"))
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	t.Run("a second live row for the pair violates the index", func(t *testing.T) {
		_, err := d.Insert(ctx, activeAttendance(1, 2, "REGISTERED"))

		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("other pairs are unaffected", func(t *testing.T) {
		_, err := d.Insert(ctx, activeAttendance(1, 3, "REGISTERED"))
		assert.NoError(t, err)

		_, err = d.Insert(ctx, activeAttendance(2, 2, "REGISTERED"))
		assert.NoError(t, err)
	})

	t.Run("cancelling releases the slot for a new registration", func(t *testing.T) {
		first.Status = "CANCELLED"
		first.Active = nil
		_, err := d.Update(ctx, first)
		require.NoError(t, err)

		_, err = d.Insert(ctx, activeAttendance(1, 2, "REGISTERED"))
		assert.NoError(t, err)
	})

	t.Run("multiple cancelled rows per pair may coexist", func(t *testing.T) {
		second, err := d.FindActive(ctx, 1, 2)
		require.NoError(t, err)

		second.Status = "CANCELLED"
		second.Active = nil
		_, err = d.Update(ctx, second)
		require.NoError(t, err)

		_, err = d.Insert(ctx, activeAttendance(1, 2, "REGISTERED"))
		assert.NoError(t, err)
	})
}

func TestAttendanceDAO_FindActive(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	d := NewAttendanceDAO(testDB)

	_, err := d.FindActive(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrAttendanceNotFound)

	inserted, err := d.Insert(ctx, activeAttendance(1, 2, "CHECKED_IN"))
	require.NoError(t, err)

	found, err := d.FindActive(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, found.ID)
	assert.Equal(t, "CHECKED_IN", found.Status)

	found.Status = "CANCELLED"
	found.Active = nil
	_, err = d.Update(ctx, found)
	require.NoError(t, err)

	_, err = d.FindActive(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrAttendanceNotFound)
}

func TestAttendanceDAO_FindLatest(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	d := NewAttendanceDAO(testDB)

	first, err := d.Insert(ctx, activeAttendance(1, 2, "REGISTERED"))
	require.NoError(t, err)

	first.Status = "CANCELLED"
	first.Active = nil
	_, err = d.Update(ctx, first)
	require.NoError(t, err)

	second, err := d.Insert(ctx, activeAttendance(1, 2, "REGISTERED"))
	require.NoError(t, err)

	latest, err := d.FindLatest(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "REGISTERED", latest.Status)

	// After cancelling the latest row too, the latest status is CANCELLED.
	second.Status = "CANCELLED"
	second.Active = nil
	_, err = d.Update(ctx, second)
	require.NoError(t, err)

	latest, err = d.FindLatest(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", latest.Status)
}

func TestAttendanceDAO_IsRegistered(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	d := NewAttendanceDAO(testDB)

	registered, err := d.IsRegistered(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, registered)

	inserted, err := d.Insert(ctx, activeAttendance(1, 2, "REGISTERED"))
	require.NoError(t, err)

	registered, err = d.IsRegistered(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, registered)

	inserted.Status = "CANCELLED"
	inserted.Active = nil
	_, err = d.Update(ctx, inserted)
	require.NoError(t, err)

	registered, err = d.IsRegistered(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestAttendanceDAO_FindWithPagination(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	d := NewAttendanceDAO(testDB)

	for userID := uint(1); userID <= 5; userID++ {
		_, err := d.Insert(ctx, activeAttendance(1, userID, "REGISTERED"))
		require.NoError(t, err)
	}
	_, err := d.Insert(ctx, activeAttendance(2, 1, "REGISTERED"))
	require.NoError(t, err)

	eventID := uint(1)
	attendances, total, err := d.FindWithPagination(ctx, 1, 3, &eventID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, attendances, 3)

	attendances, total, err = d.FindWithPagination(ctx, 2, 3, &eventID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, attendances, 2)

	userID := uint(1)
	attendances, total, err = d.FindWithPagination(ctx, 1, 10, nil, &userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, attendances, 2)
}
