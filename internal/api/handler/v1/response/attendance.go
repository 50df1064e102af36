package response

import "github.com/gatherly/gatherly-api/internal/domain"

type PaginatedAttendances struct {
	Attendances []domain.Attendance `json:"attendances"`
	Total       int64               `json:"total"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
}

type PaginatedPayments struct {
	Payments []domain.Payment `json:"payments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

type AttendanceStatusResponse struct {
	EventID uint   `json:"event_id"`
	UserID  uint   `json:"user_id"`
	Status  string `json:"status"`
}
