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

// TrainerHandler exposes trainer endpoints.
type TrainerHandler struct {
	trainers *service.TrainerService
}

// NewTrainerHandler constructs TrainerHandler.
func NewTrainerHandler(trainers *service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainers: trainers}
}

// List godoc
// @Summary List trainers
// @Tags Trainers
// @Produce json
// @Param search query string false "Search by name or email"
// @Param specialty query string false "Filter by specialty"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /trainers [get]
func (h *TrainerHandler) List(c *gin.Context) {
	var filter models.TrainerFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Specialty = c.Query("specialty")
	filter.Active = boolQuery(c, "active")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	trainers, pagination, err := h.trainers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainers, pagination)
}

// Get godoc
// @Summary Get trainer detail
// @Tags Trainers
// @Produce json
// @Param id path string true "Trainer ID"
// @Success 200 {object} response.Envelope
// @Router /trainers/{id} [get]
func (h *TrainerHandler) Get(c *gin.Context) {
	trainer, err := h.trainers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainer, nil)
}

// Create godoc
// @Summary Create trainer
// @Tags Trainers
// @Accept json
// @Produce json
// @Param payload body service.CreateTrainerRequest true "Trainer payload"
// @Success 201 {object} response.Envelope
// @Router /trainers [post]
func (h *TrainerHandler) Create(c *gin.Context) {
	var req service.CreateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	trainer, err := h.trainers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, trainer)
}

// Update godoc
// @Summary Update trainer
// @Tags Trainers
// @Accept json
// @Produce json
// @Param id path string true "Trainer ID"
// @Param payload body service.UpdateTrainerRequest true "Trainer payload"
// @Success 200 {object} response.Envelope
// @Router /trainers/{id} [put]
func (h *TrainerHandler) Update(c *gin.Context) {
	var req service.UpdateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	trainer, err := h.trainers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainer, nil)
}

// Delete godoc
// @Summary Deactivate trainer
// @Tags Trainers
// @Produce json
// @Param id path string true "Trainer ID"
// @Success 204
// @Router /trainers/{id} [delete]
func (h *TrainerHandler) Delete(c *gin.Context) {
	if err := h.trainers.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
