package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/dto"
	"github.com/noah-isme/gym-core-api/internal/middleware"
	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context, month string) (*dto.DashboardOverview, bool, error)
	Trainer(ctx context.Context, trainerID, month string) (*dto.TrainerDashboard, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview godoc
// @Summary Gym overview dashboard
// @Tags Dashboard
// @Produce json
// @Param month query string false "Month (YYYY-MM). Defaults to current month"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	month := strings.TrimSpace(c.Query("month"))

	start := time.Now()
	overview, cacheHit, err := h.service.Overview(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, overview, nil, meta)
}

// Trainer godoc
// @Summary Trainer dashboard
// @Tags Dashboard
// @Produce json
// @Param trainerId query string false "Trainer ID. Defaults to the caller's profile"
// @Param month query string false "Month (YYYY-MM). Defaults to current month"
// @Success 200 {object} response.Envelope
// @Router /dashboard/trainer [get]
func (h *DashboardHandler) Trainer(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	actor := actorFromContext(c)
	trainerID := strings.TrimSpace(c.Query("trainerId"))
	if actor.Role == models.RoleTrainer {
		if actor.TrainerID == nil {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		trainerID = *actor.TrainerID
	}
	if trainerID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "trainerId is required"))
		return
	}

	start := time.Now()
	dashboard, cacheHit, err := h.service.Trainer(c.Request.Context(), trainerID, strings.TrimSpace(c.Query("month")))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, dashboard, nil, meta)
}
