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

type trainerRepository interface {
	List(ctx context.Context, filter models.TrainerFilter) ([]models.Trainer, int, error)
	FindByID(ctx context.Context, id string) (*models.Trainer, error)
	Create(ctx context.Context, trainer *models.Trainer) error
	Update(ctx context.Context, trainer *models.Trainer) error
	SetActive(ctx context.Context, id string, active bool) error
}

// CreateTrainerRequest holds payload for creating trainers.
type CreateTrainerRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Specialty  string `json:"specialty"`
	BaseSalary int64  `json:"base_salary" validate:"min=0"`
}

// UpdateTrainerRequest holds payload for updating trainers.
type UpdateTrainerRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Specialty  string `json:"specialty"`
	BaseSalary int64  `json:"base_salary" validate:"min=0"`
	Active     bool   `json:"active"`
}

// TrainerService handles trainer profile use-cases.
type TrainerService struct {
	repo      trainerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTrainerService constructs the trainer service.
func NewTrainerService(repo trainerRepository, validate *validator.Validate, logger *zap.Logger) *TrainerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainerService{repo: repo, validator: validate, logger: logger}
}

// List returns trainers and pagination metadata.
func (s *TrainerService) List(ctx context.Context, filter models.TrainerFilter) ([]models.Trainer, *models.Pagination, error) {
	trainers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return trainers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a trainer profile.
func (s *TrainerService) Get(ctx context.Context, id string) (*models.Trainer, error) {
	trainer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}
	return trainer, nil
}

// Create registers a new trainer.
func (s *TrainerService) Create(ctx context.Context, req CreateTrainerRequest) (*models.Trainer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid trainer payload")
	}
	trainer := &models.Trainer{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		Specialty:  req.Specialty,
		BaseSalary: req.BaseSalary,
		HiredAt:    time.Now().UTC(),
		Active:     true,
	}
	if err := s.repo.Create(ctx, trainer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create trainer")
	}
	return trainer, nil
}

// Update replaces a trainer's mutable fields.
func (s *TrainerService) Update(ctx context.Context, id string, req UpdateTrainerRequest) (*models.Trainer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid trainer payload")
	}
	trainer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	trainer.FullName = req.FullName
	trainer.Phone = req.Phone
	trainer.Email = req.Email
	trainer.Specialty = req.Specialty
	trainer.BaseSalary = req.BaseSalary
	trainer.Active = req.Active
	if err := s.repo.Update(ctx, trainer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update trainer")
	}
	return trainer, nil
}

// Deactivate flips a trainer inactive.
func (s *TrainerService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate trainer")
	}
	return nil
}
