package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/service"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

// PromoHandler exposes promotion endpoints.
type PromoHandler struct {
	promos *service.PromoService
}

// NewPromoHandler constructs PromoHandler.
func NewPromoHandler(promos *service.PromoService) *PromoHandler {
	return &PromoHandler{promos: promos}
}

// List godoc
// @Summary List promotions
// @Tags Promotions
// @Produce json
// @Param search query string false "Search by code"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /promos [get]
func (h *PromoHandler) List(c *gin.Context) {
	var filter models.PromoFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Active = boolQuery(c, "active")
	filter.Page, filter.PageSize = pageQuery(c)

	promos, pagination, err := h.promos.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promos, pagination)
}

// Get godoc
// @Summary Get promotion by code
// @Tags Promotions
// @Produce json
// @Param code path string true "Promo code"
// @Success 200 {object} response.Envelope
// @Router /promos/{code} [get]
func (h *PromoHandler) Get(c *gin.Context) {
	promo, err := h.promos.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promo, nil)
}

// Create godoc
// @Summary Create promotion
// @Tags Promotions
// @Accept json
// @Produce json
// @Param payload body service.UpsertPromoRequest true "Promotion payload"
// @Success 201 {object} response.Envelope
// @Router /promos [post]
func (h *PromoHandler) Create(c *gin.Context) {
	var req service.UpsertPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	promo, err := h.promos.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, promo)
}

// Update godoc
// @Summary Update promotion
// @Tags Promotions
// @Accept json
// @Produce json
// @Param code path string true "Promo code"
// @Param payload body service.UpsertPromoRequest true "Promotion payload"
// @Success 200 {object} response.Envelope
// @Router /promos/{code} [put]
func (h *PromoHandler) Update(c *gin.Context) {
	var req service.UpsertPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	promo, err := h.promos.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promo, nil)
}

// Delete godoc
// @Summary Deactivate promotion
// @Tags Promotions
// @Produce json
// @Param code path string true "Promo code"
// @Success 204
// @Router /promos/{code} [delete]
func (h *PromoHandler) Delete(c *gin.Context) {
	if err := h.promos.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
