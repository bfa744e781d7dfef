package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/service"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

// BookingHandler exposes session booking endpoints.
type BookingHandler struct {
	bookings *service.BookingService
	metrics  *service.MetricsService
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(bookings *service.BookingService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, metrics: metrics}
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param memberId query string false "Filter by member"
// @Param sessionId query string false "Filter by session"
// @Param classId query string false "Filter by class"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var filter models.BookingFilter
	filter.MemberID = c.Query("memberId")
	filter.SessionID = c.Query("sessionId")
	filter.ClassID = c.Query("classId")
	filter.Status = models.BookingStatus(c.Query("status"))
	filter.Page, filter.PageSize = pageQuery(c)

	actor := actorFromContext(c)
	if actor.Role == models.RoleMember {
		if actor.MemberID == nil {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		filter.MemberID = *actor.MemberID
	}

	bookings, pagination, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Book godoc
// @Summary Book a slot in a class session
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body object true "Session and member"
// @Success 201 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Book(c *gin.Context) {
	var payload struct {
		SessionID string `json:"session_id" binding:"required"`
		MemberID  string `json:"member_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	// Members book for themselves; staff pass the member explicitly.
	actor := actorFromContext(c)
	memberID := payload.MemberID
	if actor.Role == models.RoleMember {
		if actor.MemberID == nil {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		memberID = *actor.MemberID
	}
	if memberID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "member_id is required"))
		return
	}

	booking, err := h.bookings.BookSession(c.Request.Context(), memberID, payload.SessionID)
	if err != nil {
		if outcome := bookingOutcome(err); outcome != "" {
			h.metrics.RecordBooking(outcome)
		}
		response.Error(c, err)
		return
	}
	h.metrics.RecordBooking("confirmed")
	response.Created(c, booking)
}

func bookingOutcome(err error) string {
	var typed *appErrors.Error
	if !errors.As(err, &typed) {
		return ""
	}
	switch typed.Code {
	case appErrors.ErrClassFull.Code:
		return "full"
	case appErrors.ErrDuplicateBooking.Code:
		return "duplicate"
	default:
		return ""
	}
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	canceled, err := h.bookings.CancelBooking(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"canceled": canceled}, nil)
}
