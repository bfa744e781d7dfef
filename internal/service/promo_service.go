package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type promoRepository interface {
	List(ctx context.Context, filter models.PromoFilter) ([]models.Promotion, int, error)
	FindByCode(ctx context.Context, code string) (*models.Promotion, error)
	Create(ctx context.Context, promo *models.Promotion) error
	Update(ctx context.Context, promo *models.Promotion) error
	SetActive(ctx context.Context, id string, active bool) error
}

// UpsertPromoRequest holds payload for creating or updating promotions.
type UpsertPromoRequest struct {
	Code        string    `json:"code" validate:"required,alphanum,min=3,max=32"`
	Description string    `json:"description"`
	PercentOff  int       `json:"percent_off" validate:"required,min=1,max=100"`
	ValidFrom   time.Time `json:"valid_from" validate:"required"`
	ValidUntil  time.Time `json:"valid_until" validate:"required"`
	UsageLimit  int       `json:"usage_limit" validate:"min=0"`
	Active      bool      `json:"active"`
}

// PromoService handles promotion use-cases.
type PromoService struct {
	repo      promoRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPromoService constructs the promo service.
func NewPromoService(repo promoRepository, validate *validator.Validate, logger *zap.Logger) *PromoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromoService{repo: repo, validator: validate, logger: logger}
}

// List returns promotions and pagination metadata.
func (s *PromoService) List(ctx context.Context, filter models.PromoFilter) ([]models.Promotion, *models.Pagination, error) {
	promos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list promotions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return promos, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetByCode returns a promotion by its code.
func (s *PromoService) GetByCode(ctx context.Context, code string) (*models.Promotion, error) {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "promotion not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promotion")
	}
	return promo, nil
}

// Create registers a new promotion.
func (s *PromoService) Create(ctx context.Context, req UpsertPromoRequest) (*models.Promotion, error) {
	if err := s.validateWindow(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "promo code already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate promo code")
	}
	promo := &models.Promotion{
		Code:        req.Code,
		Description: req.Description,
		PercentOff:  req.PercentOff,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
		UsageLimit:  req.UsageLimit,
		Active:      req.Active,
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create promotion")
	}
	return promo, nil
}

// Update replaces a promotion's mutable fields, keeping its usage count.
func (s *PromoService) Update(ctx context.Context, code string, req UpsertPromoRequest) (*models.Promotion, error) {
	if err := s.validateWindow(req); err != nil {
		return nil, err
	}
	promo, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	promo.Code = req.Code
	promo.Description = req.Description
	promo.PercentOff = req.PercentOff
	promo.ValidFrom = req.ValidFrom
	promo.ValidUntil = req.ValidUntil
	promo.UsageLimit = req.UsageLimit
	promo.Active = req.Active
	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update promotion")
	}
	return promo, nil
}

// Deactivate withdraws a promotion from further use.
func (s *PromoService) Deactivate(ctx context.Context, code string) error {
	promo, err := s.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, promo.ID, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate promotion")
	}
	return nil
}

func (s *PromoService) validateWindow(req UpsertPromoRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion payload")
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		return appErrors.Clone(appErrors.ErrValidation, "validity window must end after it starts")
	}
	return nil
}
