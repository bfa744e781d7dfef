package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/dto"
	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type dashboardRevenueRepository interface {
	SumRevenueBetween(ctx context.Context, from, to time.Time) (int64, error)
	RevenueByMethod(ctx context.Context, from, to time.Time) ([]dto.RevenueSlice, error)
	RevenueByKind(ctx context.Context, from, to time.Time) ([]dto.RevenueSlice, error)
}

type dashboardMemberRepository interface {
	CountJoinedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type dashboardRegistrationRepository interface {
	CountActive(ctx context.Context, at time.Time) (int, error)
	CountExpiringBetween(ctx context.Context, from, to time.Time) (int, error)
}

type dashboardCheckInCounter interface {
	CountBetween(ctx context.Context, from, to time.Time) (int, error)
}

type dashboardSessionRepository interface {
	CountSessionsBetween(ctx context.Context, from, to time.Time) (int, error)
	ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.ClassSessionDetail, int, error)
}

type dashboardTrainerStats interface {
	TrainerRevenue(ctx context.Context, trainerID string, from, to time.Time) (packageRevenue, classRevenue, personalRevenue int64, err error)
	TrainerStudentCount(ctx context.Context, trainerID string, from, to time.Time) (int, error)
	TrainerAttendance(ctx context.Context, trainerID string, from, to time.Time) (attended, total int, err error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL         time.Duration
	ExpiryHorizon    time.Duration
	UpcomingSessions time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Payments      dashboardRevenueRepository
	Members       dashboardMemberRepository
	Registrations dashboardRegistrationRepository
	CheckIns      dashboardCheckInCounter
	WalkIns       dashboardCheckInCounter
	Sessions      dashboardSessionRepository
	TrainerStats  dashboardTrainerStats
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes landing page payloads for admins and
// trainers. Overviews are cached because they fan out across most of
// the schema.
type DashboardService struct {
	payments      dashboardRevenueRepository
	members       dashboardMemberRepository
	registrations dashboardRegistrationRepository
	checkIns      dashboardCheckInCounter
	walkIns       dashboardCheckInCounter
	sessions      dashboardSessionRepository
	trainerStats  dashboardTrainerStats
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.ExpiryHorizon <= 0 {
		cfg.ExpiryHorizon = 7 * 24 * time.Hour
	}
	if cfg.UpcomingSessions <= 0 {
		cfg.UpcomingSessions = 7 * 24 * time.Hour
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		payments:      params.Payments,
		members:       params.Members,
		registrations: params.Registrations,
		checkIns:      params.CheckIns,
		walkIns:       params.WalkIns,
		sessions:      params.Sessions,
		trainerStats:  params.TrainerStats,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// Overview returns the admin landing payload for a month and indicates
// cache utilisation. An empty month defaults to the current one.
func (s *DashboardService) Overview(ctx context.Context, month string) (*dto.DashboardOverview, bool, error) {
	now := s.now().UTC()
	if month == "" {
		month = now.Format("2006-01")
	}
	monthStart, err := models.ParseMonthKey(month)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}

	cacheKey := fmt.Sprintf("dash:overview:%s", month)
	if s.cache != nil {
		var cached dto.DashboardOverview
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	overview, err := s.composeOverview(ctx, month, monthStart, now)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, overview)
	return overview, false, nil
}

// Trainer returns a trainer's landing payload for a month.
func (s *DashboardService) Trainer(ctx context.Context, trainerID, month string) (*dto.TrainerDashboard, bool, error) {
	if trainerID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "trainer id is required")
	}
	now := s.now().UTC()
	if month == "" {
		month = now.Format("2006-01")
	}
	monthStart, err := models.ParseMonthKey(month)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}

	cacheKey := fmt.Sprintf("dash:trainer:%s:%s", trainerID, month)
	if s.cache != nil {
		var cached dto.TrainerDashboard
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	dashboard, err := s.composeTrainer(ctx, trainerID, month, monthStart, now)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, dashboard)
	return dashboard, false, nil
}

// InvalidateOverview drops cached overviews after settlement-affecting writes.
func (s *DashboardService) InvalidateOverview(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) composeOverview(ctx context.Context, month string, monthStart, now time.Time) (*dto.DashboardOverview, error) {
	monthEnd := monthStart.AddDate(0, 1, 0)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	totalRevenue, err := s.payments.SumRevenueBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate revenue")
	}
	byMethod, err := s.payments.RevenueByMethod(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate revenue by method")
	}
	byKind, err := s.payments.RevenueByKind(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate revenue by kind")
	}
	newMembers, err := s.members.CountJoinedBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count new members")
	}
	activeRegs, err := s.registrations.CountActive(ctx, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active registrations")
	}
	expiring, err := s.registrations.CountExpiringBetween(ctx, now, now.Add(s.cfg.ExpiryHorizon))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count expiring registrations")
	}
	checkIns, err := s.checkIns.CountBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count check-ins")
	}
	walkIns, err := s.walkIns.CountBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count walk-ins")
	}
	sessionsToday, err := s.sessions.CountSessionsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sessions")
	}

	return &dto.DashboardOverview{
		Month:               month,
		TotalRevenue:        totalRevenue,
		RevenueByMethod:     byMethod,
		RevenueByKind:       byKind,
		NewMembers:          newMembers,
		ActiveRegistrations: activeRegs,
		CheckInsToday:       checkIns,
		WalkInsToday:        walkIns,
		SessionsToday:       sessionsToday,
		ExpiringSoon:        expiring,
		GeneratedAt:         now,
	}, nil
}

func (s *DashboardService) composeTrainer(ctx context.Context, trainerID, month string, monthStart, now time.Time) (*dto.TrainerDashboard, error) {
	monthEnd := monthStart.AddDate(0, 1, 0)

	horizon := now.Add(s.cfg.UpcomingSessions)
	_, upcoming, err := s.sessions.ListSessions(ctx, models.SessionFilter{
		TrainerID: trainerID,
		DateFrom:  &now,
		DateTo:    &horizon,
		PageSize:  1,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count upcoming sessions")
	}

	packageRevenue, classRevenue, personalRevenue, err := s.trainerStats.TrainerRevenue(ctx, trainerID, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate trainer revenue")
	}
	students, err := s.trainerStats.TrainerStudentCount(ctx, trainerID, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count trainer students")
	}
	attended, total, err := s.trainerStats.TrainerAttendance(ctx, trainerID, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}
	var attendanceRate float64
	if total > 0 {
		attendanceRate = float64(attended) / float64(total)
	}

	return &dto.TrainerDashboard{
		TrainerID:        trainerID,
		Month:            month,
		UpcomingSessions: upcoming,
		DistinctStudents: students,
		AttendanceRate:   attendanceRate,
		MonthRevenue: []dto.RevenueSlice{
			{Label: "PACKAGE", Amount: packageRevenue},
			{Label: "CLASS", Amount: classRevenue},
			{Label: "PERSONAL_TRAINING", Amount: personalRevenue},
		},
		GeneratedAt: now,
	}, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
