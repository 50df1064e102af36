package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly-api/internal/api/handler/v1/request"
	"github.com/gatherly/gatherly-api/internal/api/handler/v1/response"
	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/service"
)

type PaymentService interface {
	Create(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	Process(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	Refund(ctx context.Context, paymentID uint, reason string) (domain.Payment, error)
	Cancel(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	Get(ctx context.Context, id uint) (domain.Payment, error)
	List(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int64, error)
	Stats(ctx context.Context, start, end *time.Time) (domain.PaymentStats, error)
}

type PaymentHandler struct {
	svc PaymentService
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc: svc,
	}
}

// HandleCreate godoc
// @Summary      Create a pending payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreatePaymentRequest  true  "payment details"
// @Success      201    {object}  domain.Payment
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /payments [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleCreate(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	payment, err := input.ToPayment(userID)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Create(ctx.Request.Context(), payment)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreate -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleProcess godoc
// @Summary      Process a pending payment
// @Description  Sends the payment to its provider for confirmation. A provider failure leaves the payment FAILED and is reported as a gateway error.
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      int  true  "payment ID"
// @Success      200        {object}  domain.Payment
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      502        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /payments/{paymentID}/process [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleProcess(ctx *gin.Context) {
	payment, respErr := h.fetchOwnedPayment(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	processed, err := h.svc.Process(ctx.Request.Context(), payment)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPaymentState) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrInvalidPaymentState))
			return
		}

		// The FAILED status is already persisted; surface the processor error.
		response.RenderErr(ctx, response.ErrBadGateway(err))
		return
	}

	ctx.JSON(http.StatusOK, processed)
}

// HandleRefund godoc
// @Summary      Refund a completed payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        paymentID  path      int                           true   "payment ID"
// @Param        input      body      request.RefundPaymentRequest  false  "refund reason"
// @Success      200        {object}  domain.Payment
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /payments/{paymentID}/refund [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleRefund(ctx *gin.Context) {
	payment, respErr := h.fetchOwnedPayment(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.RefundPaymentRequest
	if err := ctx.ShouldBindJSON(&input); err != nil && ctx.Request.ContentLength > 0 {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	refunded, err := h.svc.Refund(ctx.Request.Context(), payment.ID, input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyRefunded):
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyRefunded))
		case errors.Is(err, service.ErrPaymentNotCompleted):
			response.RenderErr(ctx, response.ErrConflict(service.ErrPaymentNotCompleted))
		default:
			err = fmt.Errorf("v1.HandleRefund -> h.svc.Refund -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, refunded)
}

// HandleCancel godoc
// @Summary      Cancel a pending payment
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      int  true  "payment ID"
// @Success      200        {object}  domain.Payment
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /payments/{paymentID}/cancel [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleCancel(ctx *gin.Context) {
	payment, respErr := h.fetchOwnedPayment(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cancelled, err := h.svc.Cancel(ctx.Request.Context(), payment)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPaymentState) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrInvalidPaymentState))
			return
		}

		err = fmt.Errorf("v1.HandleCancel -> h.svc.Cancel -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, cancelled)
}

// HandleList godoc
// @Summary      List the caller's payments
// @Tags         payments
// @Produce      json
// @Param        page      query     int     false  "page"
// @Param        limit     query     int     false  "limit"
// @Param        event_id  query     int     false  "filter by event"
// @Param        status    query     string  false  "filter by status"
// @Success      200       {object}  response.PaginatedPayments
// @Failure      400       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /payments [get]
// @Security BearerAuth
func (h *PaymentHandler) HandleList(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.PaymentFilter{
		UserID: &userID,
		Page:   parseIntQuery(ctx, "page", 1),
		Limit:  parseIntQuery(ctx, "limit", 20),
	}

	eventID, err := parseUintQuery(ctx, "event_id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	filter.EventID = eventID

	if raw := ctx.Query("status"); raw != "" {
		status, err := domain.ParsePaymentStatus(raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		filter.Status = &status
	}

	payments, total, err := h.svc.List(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleList -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.PaginatedPayments{
		Payments: payments,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
}

// HandleStats godoc
// @Summary      Payment statistics
// @Description  Aggregates the payment collection. Revenue only counts completed payments.
// @Tags         payments
// @Produce      json
// @Param        start  query     string  false  "window start (RFC 3339 date)"
// @Param        end    query     string  false  "window end (RFC 3339 date)"
// @Success      200    {object}  domain.PaymentStats
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /payments/stats [get]
// @Security BearerAuth
func (h *PaymentHandler) HandleStats(ctx *gin.Context) {
	start, err := parseDateQuery(ctx, "start")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	end, err := parseDateQuery(ctx, "end")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	stats, err := h.svc.Stats(ctx.Request.Context(), start, end)
	if err != nil {
		err = fmt.Errorf("v1.HandleStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func (h *PaymentHandler) fetchOwnedPayment(ctx *gin.Context) (domain.Payment, *response.Err) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		return domain.Payment{}, respErr
	}

	paymentID, err := parseUintParam(ctx, "paymentID")
	if err != nil {
		return domain.Payment{}, response.ErrBadRequest(err)
	}

	payment, err := h.svc.Get(ctx.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return domain.Payment{}, response.ErrNotFound("payment", "id", paymentID)
		}

		return domain.Payment{}, response.ErrInternalServerError(fmt.Errorf("v1.fetchOwnedPayment -> h.svc.Get -> %w", err))
	}

	if payment.UserID != userID {
		return domain.Payment{}, response.ErrPermissionDenied(fmt.Errorf("payment %v does not belong to user %v", paymentID, userID))
	}

	return payment, nil
}

func parseDateQuery(ctx *gin.Context, name string) (*time.Time, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %v date: %v", name, err)
	}

	return &parsed, nil
}
