package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/service"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

// RegistrationHandler exposes registration endpoints. Lifecycle
// transitions go through the payment service since they are driven by
// settlement.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	payments      *service.PaymentService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService, payments *service.PaymentService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, payments: payments}
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param memberId query string false "Filter by member"
// @Param kind query string false "Filter by kind"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	var filter models.RegistrationFilter
	filter.MemberID = c.Query("memberId")
	filter.Kind = models.RegistrationKind(c.Query("kind"))
	filter.Status = models.RegistrationStatus(c.Query("status"))
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	// Members only ever see their own registrations.
	actor := actorFromContext(c)
	if actor.Role == models.RoleMember {
		if actor.MemberID == nil {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		filter.MemberID = *actor.MemberID
	}

	registrations, pagination, err := h.registrations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, pagination)
}

// Get godoc
// @Summary Get registration detail
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	registration, err := h.registrations.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// Cancel godoc
// @Summary Cancel a pending registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body map[string]string false "Cancellation reason"
// @Success 200 {object} response.Envelope
// @Router /registrations/{id}/cancel [post]
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	var payload struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&payload)

	canceled, err := h.payments.CancelRegistration(c.Request.Context(), c.Param("id"), payload.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"canceled": canceled}, nil)
}

// Expire godoc
// @Summary Expire overdue active registrations
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /registrations/expire [post]
func (h *RegistrationHandler) Expire(c *gin.Context) {
	expired, err := h.payments.ExpireRegistrations(c.Request.Context(), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"expired": expired}, nil)
}
