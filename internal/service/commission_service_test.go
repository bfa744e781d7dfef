package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type mockCommissionRepo struct {
	config          *models.CommissionConfig
	packageRevenue  int64
	classRevenue    int64
	personalRevenue int64
	students        int
	attended        int
	total           int
	storedTiers     []models.CommissionTier
}

func (m *mockCommissionRepo) CommissionConfig(ctx context.Context) (*models.CommissionConfig, error) {
	if m.config == nil {
		return nil, sql.ErrNoRows
	}
	return m.config, nil
}

func (m *mockCommissionRepo) ReplaceCommissionTiers(ctx context.Context, tiers []models.CommissionTier) error {
	m.storedTiers = tiers
	return nil
}

func (m *mockCommissionRepo) TrainerRevenue(ctx context.Context, trainerID string, from, to time.Time) (int64, int64, int64, error) {
	return m.packageRevenue, m.classRevenue, m.personalRevenue, nil
}

func (m *mockCommissionRepo) TrainerStudentCount(ctx context.Context, trainerID string, from, to time.Time) (int, error) {
	return m.students, nil
}

func (m *mockCommissionRepo) TrainerAttendance(ctx context.Context, trainerID string, from, to time.Time) (int, int, error) {
	return m.attended, m.total, nil
}

func testCommissionConfig() *models.CommissionConfig {
	upper := int64(50000000)
	return &models.CommissionConfig{
		PackageRate:           0.05,
		ClassRate:             0.08,
		PersonalTrainingRate:  0.15,
		MinStudentsForBonus:   10,
		PerformanceBonus:      500000,
		MinAttendanceForBonus: 0.8,
		AttendanceBonus:       300000,
		MaxCommissionPerMonth: 20000000,
		Tiers: []models.CommissionTier{
			{MinRevenue: 0, MaxRevenue: &upper, Rate: 0},
			{MinRevenue: 50000000, Rate: 0.1},
		},
	}
}

func TestCalculateCommissionZeroRevenue(t *testing.T) {
	repo := &mockCommissionRepo{config: testCommissionConfig(), students: 20, attended: 9, total: 10}
	svc := NewCommissionService(repo, models.CommissionConfig{}, nil)

	breakdown, err := svc.CalculateDetailedCommission(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)
	assert.Zero(t, breakdown.Total)
	assert.Zero(t, breakdown.Capped)
	assert.Zero(t, breakdown.PerformanceBonus)
	assert.Zero(t, breakdown.AttendanceBonus)
}

func TestCalculateCommissionBaseRatesAndBonuses(t *testing.T) {
	repo := &mockCommissionRepo{
		config:          testCommissionConfig(),
		packageRevenue:  10000000,
		classRevenue:    5000000,
		personalRevenue: 4000000,
		students:        12,
		attended:        17,
		total:           20,
	}
	svc := NewCommissionService(repo, models.CommissionConfig{}, nil)

	breakdown, err := svc.CalculateDetailedCommission(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)
	// 10M*5% + 5M*8% + 4M*15% = 500k + 400k + 600k
	assert.Equal(t, int64(500000), breakdown.Package)
	assert.Equal(t, int64(400000), breakdown.Class)
	assert.Equal(t, int64(600000), breakdown.PersonalTraining)
	assert.Equal(t, int64(500000), breakdown.PerformanceBonus)
	assert.Equal(t, int64(300000), breakdown.AttendanceBonus)
	assert.Equal(t, int64(2300000), breakdown.Total)
	assert.Equal(t, breakdown.Total, breakdown.Capped)
}

func TestCalculateCommissionTierLiftsLowRatesOnly(t *testing.T) {
	repo := &mockCommissionRepo{
		config:          testCommissionConfig(),
		packageRevenue:  40000000,
		classRevenue:    10000000,
		personalRevenue: 10000000,
	}
	svc := NewCommissionService(repo, models.CommissionConfig{}, nil)

	breakdown, err := svc.CalculateDetailedCommission(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)
	assert.Equal(t, 0.1, breakdown.AppliedRate)
	// Package and class lift to the 10% tier rate; personal keeps its 15% base.
	assert.Equal(t, int64(4000000), breakdown.Package)
	assert.Equal(t, int64(1000000), breakdown.Class)
	assert.Equal(t, int64(1500000), breakdown.PersonalTraining)
}

func TestCalculateCommissionTierBoundaryIsInclusive(t *testing.T) {
	repo := &mockCommissionRepo{
		config:         testCommissionConfig(),
		packageRevenue: 50000000,
	}
	svc := NewCommissionService(repo, models.CommissionConfig{}, nil)

	breakdown, err := svc.CalculateDetailedCommission(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)
	assert.Equal(t, 0.1, breakdown.AppliedRate)
	assert.Equal(t, int64(5000000), breakdown.Package)
}

func TestCalculateCommissionAppliesCap(t *testing.T) {
	config := testCommissionConfig()
	config.MaxCommissionPerMonth = 1000000
	repo := &mockCommissionRepo{
		config:          config,
		personalRevenue: 20000000,
	}
	svc := NewCommissionService(repo, models.CommissionConfig{}, nil)

	breakdown, err := svc.CalculateDetailedCommission(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)
	assert.Equal(t, int64(3000000), breakdown.Total)
	assert.Equal(t, int64(1000000), breakdown.Capped)
}

func TestCalculateCommissionFallsBackWithoutConfigRow(t *testing.T) {
	repo := &mockCommissionRepo{personalRevenue: 1000000}
	svc := NewCommissionService(repo, models.CommissionConfig{PersonalTrainingRate: 0.2}, nil)

	breakdown, err := svc.CalculateDetailedCommission(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)
	assert.Equal(t, int64(200000), breakdown.PersonalTraining)
}

func TestCalculateCommissionRejectsBadMonth(t *testing.T) {
	svc := NewCommissionService(&mockCommissionRepo{}, models.CommissionConfig{}, nil)

	_, err := svc.CalculateDetailedCommission(context.Background(), "trainer-1", "June 2025")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateTiersValidation(t *testing.T) {
	svc := NewCommissionService(&mockCommissionRepo{}, models.CommissionConfig{}, nil)
	mid := int64(1000000)

	cases := []struct {
		name  string
		tiers []models.CommissionTier
	}{
		{name: "empty", tiers: nil},
		{name: "first tier not zero", tiers: []models.CommissionTier{{MinRevenue: 100, Rate: 0.1}}},
		{name: "final tier bounded", tiers: []models.CommissionTier{{MinRevenue: 0, MaxRevenue: &mid, Rate: 0.1}}},
		{name: "gap between tiers", tiers: []models.CommissionTier{
			{MinRevenue: 0, MaxRevenue: &mid, Rate: 0.1},
			{MinRevenue: 2000000, Rate: 0.2},
		}},
		{name: "rate above one", tiers: []models.CommissionTier{{MinRevenue: 0, Rate: 1.5}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.UpdateTiers(context.Background(), tc.tiers)
			require.Error(t, err)
			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, appErrors.ErrInvalidTiers.Code, appErr.Code)
		})
	}
}

func TestUpdateTiersStoresValidTable(t *testing.T) {
	repo := &mockCommissionRepo{}
	svc := NewCommissionService(repo, models.CommissionConfig{}, nil)
	mid := int64(50000000)

	err := svc.UpdateTiers(context.Background(), []models.CommissionTier{
		{MinRevenue: 0, MaxRevenue: &mid, Rate: 0.05},
		{MinRevenue: 50000000, Rate: 0.1},
	})
	require.NoError(t, err)
	require.Len(t, repo.storedTiers, 2)
}
