package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type packageRepository interface {
	List(ctx context.Context, filter models.PackageFilter) ([]models.MembershipPackage, int, error)
	FindByID(ctx context.Context, id string) (*models.MembershipPackage, error)
	Create(ctx context.Context, pkg *models.MembershipPackage) error
	Update(ctx context.Context, pkg *models.MembershipPackage) error
	SetActive(ctx context.Context, id string, active bool) error
}

// CreatePackageRequest holds payload for creating packages.
type CreatePackageRequest struct {
	Name             string  `json:"name" validate:"required"`
	Description      string  `json:"description"`
	MonthlyRate      int64   `json:"monthly_rate" validate:"required,min=1"`
	DurationMonths   int     `json:"duration_months" validate:"required,min=1,max=36"`
	ListPrice        int64   `json:"list_price" validate:"min=0"`
	TrainerID        *string `json:"trainer_id"`
	PersonalTraining bool    `json:"personal_training"`
}

// UpdatePackageRequest holds payload for updating packages.
type UpdatePackageRequest struct {
	Name             string  `json:"name" validate:"required"`
	Description      string  `json:"description"`
	MonthlyRate      int64   `json:"monthly_rate" validate:"required,min=1"`
	DurationMonths   int     `json:"duration_months" validate:"required,min=1,max=36"`
	ListPrice        int64   `json:"list_price" validate:"min=0"`
	TrainerID        *string `json:"trainer_id"`
	PersonalTraining bool    `json:"personal_training"`
	Active           bool    `json:"active"`
}

// PackageService handles membership package use-cases. Personal
// training packages must name their trainer so commission attribution
// has an owner.
type PackageService struct {
	repo      packageRepository
	trainers  trainerReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPackageService constructs the package service.
func NewPackageService(repo packageRepository, trainers trainerReader, validate *validator.Validate, logger *zap.Logger) *PackageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageService{repo: repo, trainers: trainers, validator: validate, logger: logger}
}

// List returns packages and pagination metadata.
func (s *PackageService) List(ctx context.Context, filter models.PackageFilter) ([]models.MembershipPackage, *models.Pagination, error) {
	packages, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list packages")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return packages, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a package.
func (s *PackageService) Get(ctx context.Context, id string) (*models.MembershipPackage, error) {
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package")
	}
	return pkg, nil
}

// Create registers a new package.
func (s *PackageService) Create(ctx context.Context, req CreatePackageRequest) (*models.MembershipPackage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid package payload")
	}
	if err := s.checkTrainer(ctx, req.PersonalTraining, req.TrainerID); err != nil {
		return nil, err
	}
	pkg := &models.MembershipPackage{
		Name:             req.Name,
		Description:      req.Description,
		MonthlyRate:      req.MonthlyRate,
		DurationMonths:   req.DurationMonths,
		ListPrice:        req.ListPrice,
		TrainerID:        req.TrainerID,
		PersonalTraining: req.PersonalTraining,
		Active:           true,
	}
	if err := s.repo.Create(ctx, pkg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create package")
	}
	return pkg, nil
}

// Update replaces a package's mutable fields.
func (s *PackageService) Update(ctx context.Context, id string, req UpdatePackageRequest) (*models.MembershipPackage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid package payload")
	}
	if err := s.checkTrainer(ctx, req.PersonalTraining, req.TrainerID); err != nil {
		return nil, err
	}
	pkg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pkg.Name = req.Name
	pkg.Description = req.Description
	pkg.MonthlyRate = req.MonthlyRate
	pkg.DurationMonths = req.DurationMonths
	pkg.ListPrice = req.ListPrice
	pkg.TrainerID = req.TrainerID
	pkg.PersonalTraining = req.PersonalTraining
	pkg.Active = req.Active
	if err := s.repo.Update(ctx, pkg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update package")
	}
	return pkg, nil
}

// Deactivate flips a package inactive, hiding it from new registrations.
func (s *PackageService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate package")
	}
	return nil
}

func (s *PackageService) checkTrainer(ctx context.Context, personalTraining bool, trainerID *string) error {
	if personalTraining && trainerID == nil {
		return appErrors.Clone(appErrors.ErrValidation, "personal training packages require a trainer")
	}
	if trainerID == nil {
		return nil
	}
	if _, err := s.trainers.FindByID(ctx, *trainerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}
	return nil
}
