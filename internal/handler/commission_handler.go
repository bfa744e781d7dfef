package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/service"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

// CommissionHandler exposes commission configuration and calculation.
type CommissionHandler struct {
	commissions *service.CommissionService
}

// NewCommissionHandler constructs CommissionHandler.
func NewCommissionHandler(commissions *service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissions: commissions}
}

// Config godoc
// @Summary Get commission configuration
// @Tags Commissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /commissions/config [get]
func (h *CommissionHandler) Config(c *gin.Context) {
	config, err := h.commissions.Config(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}

// UpdateTiers godoc
// @Summary Replace the revenue tier table
// @Tags Commissions
// @Accept json
// @Produce json
// @Param payload body []models.CommissionTier true "Tier table"
// @Success 204
// @Router /commissions/tiers [put]
func (h *CommissionHandler) UpdateTiers(c *gin.Context) {
	var tiers []models.CommissionTier
	if err := c.ShouldBindJSON(&tiers); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.commissions.UpdateTiers(c.Request.Context(), tiers); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Calculate godoc
// @Summary Calculate a trainer's commission breakdown for a month
// @Tags Commissions
// @Produce json
// @Param trainerId path string true "Trainer ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /commissions/{trainerId} [get]
func (h *CommissionHandler) Calculate(c *gin.Context) {
	breakdown, err := h.commissions.CalculateDetailedCommission(c.Request.Context(), c.Param("trainerId"), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, breakdown, nil)
}
