package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/service"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/response"
)

// PaymentHandler exposes payment and registration lifecycle endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param memberId query string false "Filter by member"
// @Param status query string false "Filter by status"
// @Param method query string false "Filter by method"
// @Param from query string false "Date from (YYYY-MM-DD)"
// @Param to query string false "Date to (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var filter models.PaymentFilter
	filter.MemberID = c.Query("memberId")
	filter.Status = models.PaymentStatus(c.Query("status"))
	filter.Method = models.PaymentMethod(c.Query("method"))
	filter.DateFrom = dateQuery(c, "from")
	filter.DateTo = dateQuery(c, "to")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	actor := actorFromContext(c)
	if actor.Role == models.RoleMember {
		if actor.MemberID == nil {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		filter.MemberID = *actor.MemberID
	}

	payments, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Get godoc
// @Summary Get payment detail
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// CreatePackagePayment godoc
// @Summary Register a member for a package and open the payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreateRegistrationPaymentRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /payments/package [post]
func (h *PaymentHandler) CreatePackagePayment(c *gin.Context) {
	var req service.CreateRegistrationPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ClientIP = c.ClientIP()

	intent, err := h.payments.CreatePackagePayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, intent)
}

// CreateClassPayment godoc
// @Summary Register a member for a class and open the payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreateRegistrationPaymentRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /payments/class [post]
func (h *PaymentHandler) CreateClassPayment(c *gin.Context) {
	var req service.CreateRegistrationPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ClientIP = c.ClientIP()

	intent, err := h.payments.CreateClassPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, intent)
}

// ProcessCash godoc
// @Summary Settle a cash payment at the front desk
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/cash [post]
func (h *PaymentHandler) ProcessCash(c *gin.Context) {
	settled, err := h.payments.ProcessCashPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"settled": settled}, nil)
}

// GatewayReturn godoc
// @Summary VNPay return endpoint
// @Description Verifies the gateway signature and settles or fails the payment. Public route.
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/vnpay/return [get]
func (h *PaymentHandler) GatewayReturn(c *gin.Context) {
	payment, settled, err := h.payments.HandleGatewayReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"payment": payment, "settled": settled}, nil)
}

// Refund godoc
// @Summary Refund a settled payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body map[string]string false "Refund reason"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	var payload struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&payload)

	refunded, err := h.payments.RefundPayment(c.Request.Context(), c.Param("id"), payload.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"refunded": refunded}, nil)
}
