package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly-api/internal/api/handler/v1/response"
	"github.com/gatherly/gatherly-api/internal/domain"
)

type DashboardService interface {
	Stats(ctx context.Context, topOrganizerLimit int) (domain.DashboardStats, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{
		svc: svc,
	}
}

// HandleStats godoc
// @Summary      Platform dashboard statistics
// @Description  Registration and revenue trends, top organizers by revenue, and event category distribution.
// @Tags         dashboard
// @Produce      json
// @Param        top_organizers  query     int  false  "number of top organizers to return"
// @Success      200             {object}  domain.DashboardStats
// @Failure      401             {object}  response.Err
// @Failure      500             {object}  response.Err
// @Router       /dashboard/stats [get]
// @Security BearerAuth
func (h *DashboardHandler) HandleStats(ctx *gin.Context) {
	limit := parseIntQuery(ctx, "top_organizers", 0)

	stats, err := h.svc.Stats(ctx.Request.Context(), limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
