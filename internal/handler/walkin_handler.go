package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/service"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

// WalkInHandler exposes single-visit pass endpoints.
type WalkInHandler struct {
	walkins *service.WalkInService
}

// NewWalkInHandler constructs WalkInHandler.
func NewWalkInHandler(walkins *service.WalkInService) *WalkInHandler {
	return &WalkInHandler{walkins: walkins}
}

// List godoc
// @Summary List walk-in passes
// @Tags WalkIns
// @Produce json
// @Param from query string false "Date from (YYYY-MM-DD)"
// @Param to query string false "Date to (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /walkins [get]
func (h *WalkInHandler) List(c *gin.Context) {
	var filter models.WalkInFilter
	filter.DateFrom = dateQuery(c, "from")
	filter.DateTo = dateQuery(c, "to")
	filter.Page, filter.PageSize = pageQuery(c)

	walkins, pagination, err := h.walkins.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, walkins, pagination)
}

// Create godoc
// @Summary Sell a single-visit pass
// @Tags WalkIns
// @Accept json
// @Produce json
// @Param payload body service.CreateWalkInRequest true "Walk-in payload"
// @Success 201 {object} response.Envelope
// @Router /walkins [post]
func (h *WalkInHandler) Create(c *gin.Context) {
	var req service.CreateWalkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ClientIP = c.ClientIP()

	result, err := h.walkins.CreateWalkIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
