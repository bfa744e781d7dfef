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

type mockSalaryRepo struct {
	byID      map[string]models.SalaryRecord
	byTrainer map[string]models.SalaryRecord // trainerID+month
	upserted  []models.SalaryRecord
	paidOK    bool
}

func (m *mockSalaryRepo) FindByID(ctx context.Context, id string) (*models.SalaryRecord, error) {
	if record, ok := m.byID[id]; ok {
		return &record, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSalaryRepo) FindByTrainerMonth(ctx context.Context, trainerID, month string) (*models.SalaryRecord, error) {
	if record, ok := m.byTrainer[trainerID+month]; ok {
		return &record, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSalaryRepo) List(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryDetail, int, error) {
	return nil, 0, nil
}

func (m *mockSalaryRepo) Upsert(ctx context.Context, record *models.SalaryRecord) error {
	if record.ID == "" {
		record.ID = "new-salary"
	}
	m.upserted = append(m.upserted, *record)
	return nil
}

func (m *mockSalaryRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	return m.paidOK, nil
}

type mockTrainerReader struct {
	trainers map[string]*models.Trainer
}

func (m *mockTrainerReader) FindByID(ctx context.Context, id string) (*models.Trainer, error) {
	if trainer, ok := m.trainers[id]; ok {
		return trainer, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTrainerReader) ListActive(ctx context.Context) ([]models.Trainer, error) {
	var active []models.Trainer
	for _, trainer := range m.trainers {
		if trainer.Active {
			active = append(active, *trainer)
		}
	}
	return active, nil
}

type mockCommissionCalculator struct {
	breakdown *models.CommissionBreakdown
}

func (m *mockCommissionCalculator) CalculateDetailedCommission(ctx context.Context, trainerID, month string) (*models.CommissionBreakdown, error) {
	breakdown := *m.breakdown
	breakdown.TrainerID = trainerID
	breakdown.Month = month
	return &breakdown, nil
}

type mockSalaryNotifier struct {
	paid []string
}

func (m *mockSalaryNotifier) SalaryPaid(ctx context.Context, trainerID, month string, amount int64) {
	m.paid = append(m.paid, trainerID)
}

func testTrainers() *mockTrainerReader {
	return &mockTrainerReader{trainers: map[string]*models.Trainer{
		"trainer-1": {ID: "trainer-1", FullName: "Le Van Cuong", BaseSalary: 8000000, Active: true},
	}}
}

func TestGenerateSalaryStoresCappedCommission(t *testing.T) {
	repo := &mockSalaryRepo{}
	commission := &mockCommissionCalculator{breakdown: &models.CommissionBreakdown{Total: 3000000, Capped: 2000000}}

	svc := NewSalaryService(repo, testTrainers(), commission, &mockSalaryNotifier{}, nil, nil)

	record, err := svc.GenerateSalary(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)
	assert.Equal(t, int64(8000000), record.BaseSalary)
	assert.Equal(t, int64(2000000), record.Commission)
	assert.NotEmpty(t, record.Breakdown)
	require.Len(t, repo.upserted, 1)
}

func TestGenerateSalaryExistingMonthConflicts(t *testing.T) {
	repo := &mockSalaryRepo{byTrainer: map[string]models.SalaryRecord{
		"trainer-12025-06": {ID: "sal-1", TrainerID: "trainer-1", Month: "2025-06"},
	}}
	commission := &mockCommissionCalculator{breakdown: &models.CommissionBreakdown{}}

	svc := NewSalaryService(repo, testTrainers(), commission, &mockSalaryNotifier{}, nil, nil)

	_, err := svc.GenerateSalary(context.Background(), "trainer-1", "2025-06")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestGenerateMonthlyPayrollSkipsExistingRows(t *testing.T) {
	trainers := testTrainers()
	trainers.trainers["trainer-2"] = &models.Trainer{ID: "trainer-2", FullName: "Pham Thi Dao", BaseSalary: 9000000, Active: true}
	repo := &mockSalaryRepo{byTrainer: map[string]models.SalaryRecord{
		"trainer-12025-06": {ID: "sal-1", TrainerID: "trainer-1", Month: "2025-06"},
	}}
	commission := &mockCommissionCalculator{breakdown: &models.CommissionBreakdown{Capped: 100000}}

	svc := NewSalaryService(repo, trainers, commission, &mockSalaryNotifier{}, nil, nil)

	generated, err := svc.GenerateMonthlyPayroll(context.Background(), "2025-06")
	require.NoError(t, err)
	assert.Equal(t, 1, generated)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "trainer-2", repo.upserted[0].TrainerID)
}

func TestGetSalaryMissingRowIsNotFound(t *testing.T) {
	svc := NewSalaryService(&mockSalaryRepo{}, testTrainers(), &mockCommissionCalculator{breakdown: &models.CommissionBreakdown{}}, &mockSalaryNotifier{}, nil, nil)

	_, err := svc.GetSalary(context.Background(), "trainer-1", "2025-06")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestMarkSalaryPaidNotifiesOnce(t *testing.T) {
	repo := &mockSalaryRepo{
		byID: map[string]models.SalaryRecord{
			"sal-1": {ID: "sal-1", TrainerID: "trainer-1", Month: "2025-06", BaseSalary: 8000000, Commission: 2000000},
		},
		paidOK: true,
	}
	notifier := &mockSalaryNotifier{}

	svc := NewSalaryService(repo, testTrainers(), &mockCommissionCalculator{breakdown: &models.CommissionBreakdown{}}, notifier, nil, nil)

	paid, err := svc.MarkSalaryPaid(context.Background(), "sal-1")
	require.NoError(t, err)
	assert.True(t, paid)
	assert.Equal(t, []string{"trainer-1"}, notifier.paid)
}

func TestMarkSalaryPaidAlreadyPaidIsNoop(t *testing.T) {
	paidAt := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockSalaryRepo{
		byID: map[string]models.SalaryRecord{
			"sal-1": {ID: "sal-1", TrainerID: "trainer-1", Month: "2025-06", PaidAt: &paidAt},
		},
		paidOK: false,
	}
	notifier := &mockSalaryNotifier{}

	svc := NewSalaryService(repo, testTrainers(), &mockCommissionCalculator{breakdown: &models.CommissionBreakdown{}}, notifier, nil, nil)

	paid, err := svc.MarkSalaryPaid(context.Background(), "sal-1")
	require.NoError(t, err)
	assert.False(t, paid)
	assert.Empty(t, notifier.paid)
}

func TestRenderSlipIncludesComponents(t *testing.T) {
	breakdown := &models.CommissionBreakdown{Package: 500000, Class: 400000, PersonalTraining: 600000, Capped: 1500000}
	repo := &mockSalaryRepo{}
	commission := &mockCommissionCalculator{breakdown: breakdown}
	svc := NewSalaryService(repo, testTrainers(), commission, &mockSalaryNotifier{}, nil, nil)

	record, err := svc.GenerateSalary(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)

	repo.byTrainer = map[string]models.SalaryRecord{"trainer-12025-06": *record}

	slip, err := svc.RenderSlip(context.Background(), "trainer-1", "2025-06")
	require.NoError(t, err)
	assert.NotEmpty(t, slip)
}
