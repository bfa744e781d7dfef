package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/service"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

// SalaryHandler exposes trainer payroll endpoints.
type SalaryHandler struct {
	salaries *service.SalaryService
	access   *service.AccessService
}

// NewSalaryHandler constructs SalaryHandler.
func NewSalaryHandler(salaries *service.SalaryService, access *service.AccessService) *SalaryHandler {
	return &SalaryHandler{salaries: salaries, access: access}
}

// List godoc
// @Summary List salary records
// @Tags Salaries
// @Produce json
// @Param trainerId query string false "Filter by trainer"
// @Param month query string false "Month (YYYY-MM)"
// @Param unpaid query bool false "Only unpaid records"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /salaries [get]
func (h *SalaryHandler) List(c *gin.Context) {
	var filter models.SalaryFilter
	filter.TrainerID = c.Query("trainerId")
	filter.Month = c.Query("month")
	filter.Unpaid = boolQuery(c, "unpaid")
	filter.Page, filter.PageSize = pageQuery(c)

	// Trainers only see their own payroll.
	actor := actorFromContext(c)
	if actor.Role == models.RoleTrainer {
		if actor.TrainerID == nil {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		filter.TrainerID = *actor.TrainerID
	}

	salaries, pagination, err := h.salaries.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, salaries, pagination)
}

// Get godoc
// @Summary Get a trainer's salary for a month
// @Tags Salaries
// @Produce json
// @Param id path string true "Trainer ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /salaries/{id} [get]
func (h *SalaryHandler) Get(c *gin.Context) {
	trainerID := c.Param("id")
	if !h.access.CanViewSalary(c.Request.Context(), actorFromContext(c), trainerID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	salary, err := h.salaries.GetSalary(c.Request.Context(), trainerID, c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, salary, nil)
}

// Generate godoc
// @Summary Generate a trainer's salary for a month
// @Tags Salaries
// @Accept json
// @Produce json
// @Param payload body object true "Trainer and month"
// @Success 201 {object} response.Envelope
// @Router /salaries/generate [post]
func (h *SalaryHandler) Generate(c *gin.Context) {
	var payload struct {
		TrainerID string `json:"trainer_id" binding:"required"`
		Month     string `json:"month" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	salary, err := h.salaries.GenerateSalary(c.Request.Context(), payload.TrainerID, payload.Month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, salary)
}

// GeneratePayroll godoc
// @Summary Generate payroll for all active trainers
// @Description Trainers that already have a record for the month are skipped.
// @Tags Salaries
// @Accept json
// @Produce json
// @Param payload body object true "Month"
// @Success 200 {object} response.Envelope
// @Router /salaries/payroll [post]
func (h *SalaryHandler) GeneratePayroll(c *gin.Context) {
	var payload struct {
		Month string `json:"month" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	generated, err := h.salaries.GenerateMonthlyPayroll(c.Request.Context(), payload.Month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"generated": generated}, nil)
}

// MarkPaid godoc
// @Summary Mark a salary record as paid
// @Tags Salaries
// @Produce json
// @Param id path string true "Salary record ID"
// @Success 200 {object} response.Envelope
// @Router /salaries/{id}/pay [post]
func (h *SalaryHandler) MarkPaid(c *gin.Context) {
	paid, err := h.salaries.MarkSalaryPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"paid": paid}, nil)
}

// Slip godoc
// @Summary Download a salary slip PDF
// @Tags Salaries
// @Produce application/pdf
// @Param id path string true "Trainer ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {file} file
// @Router /salaries/{id}/slip [get]
func (h *SalaryHandler) Slip(c *gin.Context) {
	trainerID := c.Param("id")
	month := c.Query("month")
	if !h.access.CanViewSalary(c.Request.Context(), actorFromContext(c), trainerID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	slip, err := h.salaries.RenderSlip(c.Request.Context(), trainerID, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=salary-slip-%s.pdf", month))
	c.Data(http.StatusOK, "application/pdf", slip)
}
