package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/gatherly/gatherly-api/internal/domain"
)

var errEmptyForceUpdate = errors.New("at least one of status or notes is required")

type RegisterAttendanceRequest struct {
	Notes string `json:"notes"`
}

func (req *RegisterAttendanceRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Notes, validation.Length(0, domain.MaxNotesLength)),
	)
}

// ForceUpdateAttendanceRequest carries the admin override. Nil fields are
// untouched; a provided status is parsed strictly by the service.
type ForceUpdateAttendanceRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (req *ForceUpdateAttendanceRequest) Validate() error {
	if req.Status == nil && req.Notes == nil {
		return errEmptyForceUpdate
	}

	if req.Notes != nil {
		if err := validation.Validate(*req.Notes, validation.Length(0, domain.MaxNotesLength)); err != nil {
			return err
		}
	}

	return nil
}
