package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxNotesLength is the longest notes string accepted on an attendance.
const MaxNotesLength = 500

type AttendanceStatus string

const (
	AttendanceRegistered AttendanceStatus = "REGISTERED"
	AttendanceCheckedIn  AttendanceStatus = "CHECKED_IN"
	AttendanceCheckedOut AttendanceStatus = "CHECKED_OUT"
	AttendanceCancelled  AttendanceStatus = "CANCELLED"
)

// attendanceTransitions maps each status to the statuses it may move to.
// Cancellation is reachable from every non-cancelled status, including
// CHECKED_OUT, so that a post-event cancellation can trigger a refund.
var attendanceTransitions = map[AttendanceStatus][]AttendanceStatus{
	AttendanceRegistered: {AttendanceCheckedIn, AttendanceCancelled},
	AttendanceCheckedIn:  {AttendanceCheckedOut, AttendanceCancelled},
	AttendanceCheckedOut: {AttendanceCancelled},
	AttendanceCancelled:  {},
}

// ParseAttendanceStatus rejects unknown input instead of substituting a default.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	status := AttendanceStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case AttendanceRegistered, AttendanceCheckedIn, AttendanceCheckedOut, AttendanceCancelled:
		return status, nil
	}

	return "", fmt.Errorf("unknown attendance status %q", s)
}

func (s AttendanceStatus) IsValid() bool {
	_, ok := attendanceTransitions[s]
	return ok
}

func (s AttendanceStatus) IsTerminal() bool {
	return len(attendanceTransitions[s]) == 0
}

func (s AttendanceStatus) CanTransitionTo(next AttendanceStatus) bool {
	for _, allowed := range attendanceTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Attendance is one user's relationship to one event. Records are never
// deleted; cancellation is a status change.
type Attendance struct {
	ID           uint              `json:"id"`
	EventID      uint              `json:"event_id"`
	UserID       uint              `json:"user_id"`
	Status       AttendanceStatus  `json:"status"`
	CheckInTime  *time.Time        `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time        `json:"check_out_time,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
