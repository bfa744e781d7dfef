package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type commissionRepository interface {
	CommissionConfig(ctx context.Context) (*models.CommissionConfig, error)
	ReplaceCommissionTiers(ctx context.Context, tiers []models.CommissionTier) error
	TrainerRevenue(ctx context.Context, trainerID string, from, to time.Time) (packageRevenue, classRevenue, personalRevenue int64, err error)
	TrainerStudentCount(ctx context.Context, trainerID string, from, to time.Time) (int, error)
	TrainerAttendance(ctx context.Context, trainerID string, from, to time.Time) (attended, total int, err error)
}

// CommissionService computes monthly trainer commission from settled
// revenue, the tier table and the bonus thresholds.
type CommissionService struct {
	repo     commissionRepository
	fallback models.CommissionConfig
	logger   *zap.Logger
}

// NewCommissionService constructs CommissionService. The fallback
// config applies until an admin stores a configuration row.
func NewCommissionService(repo commissionRepository, fallback models.CommissionConfig, logger *zap.Logger) *CommissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommissionService{repo: repo, fallback: fallback, logger: logger}
}

// Config returns the effective commission configuration.
func (s *CommissionService) Config(ctx context.Context) (*models.CommissionConfig, error) {
	config, err := s.repo.CommissionConfig(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fallback := s.fallback
			return &fallback, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load commission config")
	}
	return config, nil
}

// UpdateTiers validates and replaces the tier table. Tiers must start at
// zero, ascend without gaps or overlaps, and end with an unbounded band.
func (s *CommissionService) UpdateTiers(ctx context.Context, tiers []models.CommissionTier) error {
	if err := validateTiers(tiers); err != nil {
		return err
	}
	if err := s.repo.ReplaceCommissionTiers(ctx, tiers); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store commission tiers")
	}
	return nil
}

// CalculateDetailedCommission itemises a trainer's commission for a
// yyyy-MM month.
func (s *CommissionService) CalculateDetailedCommission(ctx context.Context, trainerID, month string) (*models.CommissionBreakdown, error) {
	start, err := models.ParseMonthKey(month)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	end := start.AddDate(0, 1, 0)

	config, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}

	packageRevenue, classRevenue, personalRevenue, err := s.repo.TrainerRevenue(ctx, trainerID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate trainer revenue")
	}

	breakdown := &models.CommissionBreakdown{
		TrainerID:       trainerID,
		Month:           month,
		PackageRevenue:  packageRevenue,
		ClassRevenue:    classRevenue,
		PersonalRevenue: personalRevenue,
	}

	totalRevenue := packageRevenue + classRevenue + personalRevenue
	if totalRevenue == 0 {
		return breakdown, nil
	}

	packageRate := config.PackageRate
	classRate := config.ClassRate
	personalRate := config.PersonalTrainingRate
	if tier := config.TierFor(totalRevenue); tier != nil {
		// A qualifying tier lifts the revenue-component rates, it
		// never lowers a better base rate.
		breakdown.AppliedRate = tier.Rate
		if tier.Rate > packageRate {
			packageRate = tier.Rate
		}
		if tier.Rate > classRate {
			classRate = tier.Rate
		}
		if tier.Rate > personalRate {
			personalRate = tier.Rate
		}
	}

	breakdown.Package = int64(float64(packageRevenue) * packageRate)
	breakdown.Class = int64(float64(classRevenue) * classRate)
	breakdown.PersonalTraining = int64(float64(personalRevenue) * personalRate)

	students, err := s.repo.TrainerStudentCount(ctx, trainerID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count trainer students")
	}
	breakdown.StudentCount = students
	if config.MinStudentsForBonus > 0 && students >= config.MinStudentsForBonus {
		breakdown.PerformanceBonus = config.PerformanceBonus
	}

	attended, total, err := s.repo.TrainerAttendance(ctx, trainerID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}
	if total > 0 {
		breakdown.AttendanceRate = float64(attended) / float64(total)
		if breakdown.AttendanceRate >= config.MinAttendanceForBonus {
			breakdown.AttendanceBonus = config.AttendanceBonus
		}
	}

	breakdown.Total = breakdown.Package + breakdown.Class + breakdown.PersonalTraining +
		breakdown.PerformanceBonus + breakdown.AttendanceBonus
	breakdown.Capped = breakdown.Total
	if config.MaxCommissionPerMonth > 0 && breakdown.Capped > config.MaxCommissionPerMonth {
		breakdown.Capped = config.MaxCommissionPerMonth
	}
	return breakdown, nil
}

func validateTiers(tiers []models.CommissionTier) error {
	if len(tiers) == 0 {
		return appErrors.Clone(appErrors.ErrInvalidTiers, "at least one tier is required")
	}
	sorted := make([]models.CommissionTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinRevenue < sorted[j].MinRevenue })

	if sorted[0].MinRevenue != 0 {
		return appErrors.Clone(appErrors.ErrInvalidTiers, "the first tier must start at zero")
	}
	for i := range sorted {
		if sorted[i].Rate < 0 || sorted[i].Rate > 1 {
			return appErrors.Clone(appErrors.ErrInvalidTiers, "tier rates must be within [0, 1]")
		}
		last := i == len(sorted)-1
		if last {
			if sorted[i].MaxRevenue != nil {
				return appErrors.Clone(appErrors.ErrInvalidTiers, "the final tier must be unbounded")
			}
			continue
		}
		if sorted[i].MaxRevenue == nil {
			return appErrors.Clone(appErrors.ErrInvalidTiers, "only the final tier may be unbounded")
		}
		if *sorted[i].MaxRevenue <= sorted[i].MinRevenue {
			return appErrors.Clone(appErrors.ErrInvalidTiers, "tier bounds must ascend")
		}
		if *sorted[i].MaxRevenue != sorted[i+1].MinRevenue {
			return appErrors.Clone(appErrors.ErrInvalidTiers, "tiers must not leave gaps or overlap")
		}
	}
	return nil
}
