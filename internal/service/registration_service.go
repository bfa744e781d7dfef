package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type registrationListRepository interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
}

// RegistrationService exposes read access to registrations. Lifecycle
// transitions live on PaymentService because they are settlement
// driven.
type RegistrationService struct {
	repo   registrationListRepository
	logger *zap.Logger
}

// NewRegistrationService constructs the registration service.
func NewRegistrationService(repo registrationListRepository, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, logger: logger}
}

// List returns registrations and pagination metadata.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, *models.Pagination, error) {
	registrations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return registrations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one registration. Members may only read their own.
func (s *RegistrationService) Get(ctx context.Context, actor models.Actor, id string) (*models.Registration, error) {
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if actor.Role == models.RoleMember {
		if actor.MemberID == nil || *actor.MemberID != registration.MemberID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "members may only view their own registrations")
		}
	}
	return registration, nil
}
