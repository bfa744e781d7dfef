package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/vnpay"
)

type walkInRepository interface {
	Create(ctx context.Context, walkIn *models.WalkIn) error
	List(ctx context.Context, filter models.WalkInFilter) ([]models.WalkIn, int, error)
}

type walkInPaymentWriter interface {
	Create(ctx context.Context, payment *models.Payment) error
}

// CreateWalkInRequest sells a single-visit pass.
type CreateWalkInRequest struct {
	FullName string               `json:"full_name" validate:"required"`
	Phone    string               `json:"phone" validate:"required"`
	Method   models.PaymentMethod `json:"method" validate:"required"`
	ClientIP string               `json:"-"`
}

// WalkInResult pairs the created pass with its payment intent.
type WalkInResult struct {
	WalkIn      models.WalkIn  `json:"walk_in"`
	Payment     models.Payment `json:"payment"`
	RedirectURL string         `json:"redirect_url,omitempty"`
}

// WalkInService sells single-visit passes at a fixed price.
type WalkInService struct {
	repo       walkInRepository
	payments   walkInPaymentWriter
	gateway    *vnpay.Client
	visitPrice int64
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewWalkInService constructs WalkInService.
func NewWalkInService(repo walkInRepository, payments walkInPaymentWriter, gateway *vnpay.Client, visitPrice int64, validate *validator.Validate, logger *zap.Logger) *WalkInService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalkInService{
		repo:       repo,
		payments:   payments,
		gateway:    gateway,
		visitPrice: visitPrice,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns walk-in passes with pagination metadata.
func (s *WalkInService) List(ctx context.Context, filter models.WalkInFilter) ([]models.WalkIn, *models.Pagination, error) {
	walkIns, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list walk-ins")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return walkIns, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// CreateWalkIn sells a pass for today. Cash settles on the spot; the
// gateway method issues a redirect and the pass activates once the
// return callback settles the payment.
func (s *WalkInService) CreateWalkIn(ctx context.Context, req CreateWalkInRequest) (*WalkInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid walk-in payload")
	}
	if !req.Method.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported payment method")
	}
	if s.visitPrice <= 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "walk-in price is not configured")
	}

	now := s.now().UTC()
	payment := &models.Payment{
		Amount: s.visitPrice,
		Method: req.Method,
		Status: models.PaymentStatusPending,
		Note:   "walk-in single visit",
	}
	if req.Method == models.PaymentMethodCash {
		payment.Status = models.PaymentStatusSuccess
		payment.PaidAt = &now
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create walk-in payment")
	}

	walkIn := &models.WalkIn{
		FullName:  req.FullName,
		Phone:     req.Phone,
		PaymentID: payment.ID,
		VisitDate: now,
	}
	if err := s.repo.Create(ctx, walkIn); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create walk-in pass")
	}

	result := &WalkInResult{WalkIn: *walkIn, Payment: *payment}
	if req.Method == models.PaymentMethodVNPay {
		if s.gateway == nil {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "payment gateway is not configured")
		}
		redirect, err := s.gateway.BuildPaymentURL(vnpay.PaymentRequest{
			TxnRef:    payment.ID,
			Amount:    payment.Amount,
			OrderInfo: "walk-in single visit",
			ClientIP:  req.ClientIP,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build payment redirect")
		}
		result.RedirectURL = redirect
	}
	return result, nil
}
