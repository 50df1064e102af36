package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly-api/internal/api/handler/v1/request"
	"github.com/gatherly/gatherly-api/internal/api/handler/v1/response"
	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/service"
)

type AttendanceService interface {
	Register(ctx context.Context, eventID, userID uint, notes string) (domain.Attendance, error)
	CheckIn(ctx context.Context, eventID, userID uint) (domain.Attendance, error)
	CheckOut(ctx context.Context, eventID, userID uint) (domain.Attendance, error)
	Cancel(ctx context.Context, eventID, userID uint) (domain.Attendance, error)
	ForceUpdate(ctx context.Context, id uint, status, notes *string) (domain.Attendance, error)
	Status(ctx context.Context, eventID, userID uint) (domain.AttendanceStatus, error)
	List(ctx context.Context, page, limit int, eventID, userID *uint) ([]domain.Attendance, int64, error)
}

type LifecycleService interface {
	CancelWithRefund(ctx context.Context, eventID, userID uint) (service.CancellationResult, error)
}

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type AttendanceHandler struct {
	svc       AttendanceService
	lifecycle LifecycleService
	uSvc      UserService
}

func NewAttendanceHandler(svc AttendanceService, lifecycle LifecycleService, uSvc UserService) *AttendanceHandler {
	return &AttendanceHandler{
		svc:       svc,
		lifecycle: lifecycle,
		uSvc:      uSvc,
	}
}

// HandleRegister godoc
// @Summary      Register for an event
// @Tags         attendances
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                                true  "event ID"
// @Param        input    body      request.RegisterAttendanceRequest  true  "attendance details"
// @Success      201      {object}  domain.Attendance
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendances [post]
// @Security BearerAuth
func (h *AttendanceHandler) HandleRegister(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	// The body is optional; registration without notes is the common case.
	var input request.RegisterAttendanceRequest
	if err = ctx.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	attendance, err := h.svc.Register(ctx.Request.Context(), eventID, userID, input.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrAlreadyRegistered):
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyRegistered))
		default:
			err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, attendance)
}

// HandleCheckIn godoc
// @Summary      Check in to an event
// @Tags         attendances
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  domain.Attendance
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendances/check-in [post]
// @Security BearerAuth
func (h *AttendanceHandler) HandleCheckIn(ctx *gin.Context) {
	h.handleTransition(ctx, h.svc.CheckIn)
}

// HandleCheckOut godoc
// @Summary      Check out of an event
// @Tags         attendances
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  domain.Attendance
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendances/check-out [post]
// @Security BearerAuth
func (h *AttendanceHandler) HandleCheckOut(ctx *gin.Context) {
	h.handleTransition(ctx, h.svc.CheckOut)
}

// HandleCancel godoc
// @Summary      Cancel an attendance
// @Tags         attendances
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  domain.Attendance
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendances/cancel [post]
// @Security BearerAuth
func (h *AttendanceHandler) HandleCancel(ctx *gin.Context) {
	h.handleTransition(ctx, h.svc.Cancel)
}

func (h *AttendanceHandler) handleTransition(ctx *gin.Context, op func(context.Context, uint, uint) (domain.Attendance, error)) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	attendance, err := op(ctx.Request.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrAttendanceNotFound):
			response.RenderErr(ctx, response.ErrNotFound("attendance", "eventID", eventID))
		case errors.Is(err, service.ErrAlreadyCancelled):
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyCancelled))
		case errors.Is(err, service.ErrInvalidAttendanceState):
			response.RenderErr(ctx, response.ErrConflict(service.ErrInvalidAttendanceState))
		default:
			err = fmt.Errorf("v1.handleTransition -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, attendance)
}

// HandleCancelWithRefund godoc
// @Summary      Cancel an attendance and refund its payment
// @Description  Cancels the attendance and refunds the user's completed payment for the event, if any. A refund failure after the cancellation is reported in the response, not rolled back.
// @Tags         attendances
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  service.CancellationResult
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendances/cancel-with-refund [post]
// @Security BearerAuth
func (h *AttendanceHandler) HandleCancelWithRefund(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.lifecycle.CancelWithRefund(ctx.Request.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrAttendanceNotFound):
			response.RenderErr(ctx, response.ErrNotFound("attendance", "eventID", eventID))
		case errors.Is(err, service.ErrAlreadyCancelled):
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyCancelled))
		default:
			err = fmt.Errorf("v1.HandleCancelWithRefund -> h.lifecycle.CancelWithRefund -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleStatus godoc
// @Summary      Get the caller's attendance status for an event
// @Tags         attendances
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  response.AttendanceStatusResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendances/status [get]
// @Security BearerAuth
func (h *AttendanceHandler) HandleStatus(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	status, err := h.svc.Status(ctx.Request.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttendanceNotFound):
			response.RenderErr(ctx, response.ErrNotFound("attendance", "eventID", eventID))
		default:
			err = fmt.Errorf("v1.HandleStatus -> h.svc.Status -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.AttendanceStatusResponse{
		EventID: eventID,
		UserID:  userID,
		Status:  string(status),
	})
}

// HandleList godoc
// @Summary      List attendances
// @Tags         attendances
// @Produce      json
// @Param        page      query     int  false  "page"
// @Param        limit     query     int  false  "limit"
// @Param        event_id  query     int  false  "filter by event"
// @Param        user_id   query     int  false  "filter by user"
// @Success      200       {object}  response.PaginatedAttendances
// @Failure      400       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /attendances [get]
// @Security BearerAuth
func (h *AttendanceHandler) HandleList(ctx *gin.Context) {
	page := parseIntQuery(ctx, "page", 1)
	limit := parseIntQuery(ctx, "limit", 20)

	eventID, err := parseUintQuery(ctx, "event_id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	userID, err := parseUintQuery(ctx, "user_id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	attendances, total, err := h.svc.List(ctx.Request.Context(), page, limit, eventID, userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleList -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.PaginatedAttendances{
		Attendances: attendances,
		Total:       total,
		Page:        page,
		Limit:       limit,
	})
}

// HandleForceUpdate godoc
// @Summary      Force-update an attendance (admin)
// @Description  Administrative override that bypasses the lifecycle guards. The status must still be a known value.
// @Tags         attendances
// @Accept       json
// @Produce      json
// @Param        attendanceID  path      int                                   true  "attendance ID"
// @Param        input         body      request.ForceUpdateAttendanceRequest  true  "fields to update"
// @Success      200           {object}  domain.Attendance
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /attendances/{attendanceID} [patch]
// @Security BearerAuth
func (h *AttendanceHandler) HandleForceUpdate(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleForceUpdate -> h.uSvc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if user.Role != "admin" {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID)))
		return
	}

	attendanceID, err := parseUintParam(ctx, "attendanceID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var input request.ForceUpdateAttendanceRequest
	if err = ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	attendance, err := h.svc.ForceUpdate(ctx.Request.Context(), attendanceID, input.Status, input.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrAttendanceNotFound):
			response.RenderErr(ctx, response.ErrNotFound("attendance", "id", attendanceID))
		default:
			err = fmt.Errorf("v1.HandleForceUpdate -> h.svc.ForceUpdate -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, attendance)
}
