package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/service"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

// CheckInHandler exposes gym entry endpoints.
type CheckInHandler struct {
	checkins *service.CheckInService
	metrics  *service.MetricsService
}

// NewCheckInHandler constructs CheckInHandler.
func NewCheckInHandler(checkins *service.CheckInService, metrics *service.MetricsService) *CheckInHandler {
	return &CheckInHandler{checkins: checkins, metrics: metrics}
}

// List godoc
// @Summary List check-ins
// @Tags CheckIns
// @Produce json
// @Param memberId query string false "Filter by member"
// @Param source query string false "Filter by source"
// @Param from query string false "Date from (YYYY-MM-DD)"
// @Param to query string false "Date to (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /checkins [get]
func (h *CheckInHandler) List(c *gin.Context) {
	var filter models.CheckInFilter
	filter.MemberID = c.Query("memberId")
	filter.Source = models.CheckInSource(c.Query("source"))
	filter.DateFrom = dateQuery(c, "from")
	filter.DateTo = dateQuery(c, "to")
	filter.Page, filter.PageSize = pageQuery(c)

	checkins, pagination, err := h.checkins.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, checkins, pagination)
}

// Manual godoc
// @Summary Check a member in at the front desk
// @Tags CheckIns
// @Accept json
// @Produce json
// @Param payload body object true "Member and optional session"
// @Success 201 {object} response.Envelope
// @Router /checkins/manual [post]
func (h *CheckInHandler) Manual(c *gin.Context) {
	var payload struct {
		MemberID  string  `json:"member_id" binding:"required"`
		SessionID *string `json:"session_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	checkin, err := h.checkins.ManualCheckIn(c.Request.Context(), payload.MemberID, payload.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCheckIn(string(models.CheckInSourceManual))
	response.Created(c, checkin)
}

// Face godoc
// @Summary Check a member in by face descriptor
// @Description Matches the captured descriptor against enrolled profiles.
// @Tags CheckIns
// @Accept json
// @Produce json
// @Param payload body object true "Descriptor and optional session"
// @Success 201 {object} response.Envelope
// @Router /checkins/face [post]
func (h *CheckInHandler) Face(c *gin.Context) {
	var payload struct {
		Descriptor []float64 `json:"descriptor" binding:"required"`
		SessionID  *string   `json:"session_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	checkin, err := h.checkins.FaceCheckIn(c.Request.Context(), payload.Descriptor, payload.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCheckIn(string(models.CheckInSourceFace))
	response.Created(c, checkin)
}

// WalkIn godoc
// @Summary Admit a walk-in pass holder
// @Tags CheckIns
// @Produce json
// @Param id path string true "Walk-in ID"
// @Success 201 {object} response.Envelope
// @Router /checkins/walkin/{id} [post]
func (h *CheckInHandler) WalkIn(c *gin.Context) {
	checkin, err := h.checkins.WalkInCheckIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCheckIn("WALK_IN")
	response.Created(c, checkin)
}

// EnrollFace godoc
// @Summary Enroll a face descriptor for a member
// @Tags CheckIns
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param payload body object true "Descriptor"
// @Success 204
// @Router /members/{id}/face [put]
func (h *CheckInHandler) EnrollFace(c *gin.Context) {
	var payload struct {
		Descriptor []float64 `json:"descriptor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.checkins.EnrollFace(c.Request.Context(), c.Param("id"), payload.Descriptor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveFace godoc
// @Summary Remove a member's face descriptor
// @Tags CheckIns
// @Produce json
// @Param id path string true "Member ID"
// @Success 204
// @Router /members/{id}/face [delete]
func (h *CheckInHandler) RemoveFace(c *gin.Context) {
	if err := h.checkins.RemoveFace(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
