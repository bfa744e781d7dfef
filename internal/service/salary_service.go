package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/export"
)

type salaryRepository interface {
	FindByID(ctx context.Context, id string) (*models.SalaryRecord, error)
	FindByTrainerMonth(ctx context.Context, trainerID, month string) (*models.SalaryRecord, error)
	List(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryDetail, int, error)
	Upsert(ctx context.Context, record *models.SalaryRecord) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (bool, error)
}

type trainerReader interface {
	FindByID(ctx context.Context, id string) (*models.Trainer, error)
	ListActive(ctx context.Context) ([]models.Trainer, error)
}

type commissionCalculator interface {
	CalculateDetailedCommission(ctx context.Context, trainerID, month string) (*models.CommissionBreakdown, error)
}

type salaryNotifier interface {
	SalaryPaid(ctx context.Context, trainerID, month string, amount int64)
}

// SalaryService generates and serves monthly trainer payroll.
type SalaryService struct {
	repo       salaryRepository
	trainers   trainerReader
	commission commissionCalculator
	notifier   salaryNotifier
	pdf        *export.PDFExporter
	logger     *zap.Logger
	now        func() time.Time
}

// NewSalaryService constructs SalaryService.
func NewSalaryService(repo salaryRepository, trainers trainerReader, commission commissionCalculator, notifier salaryNotifier, pdf *export.PDFExporter, logger *zap.Logger) *SalaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &SalaryService{
		repo:       repo,
		trainers:   trainers,
		commission: commission,
		notifier:   notifier,
		pdf:        pdf,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns salary rows with pagination metadata, decoding the
// stored breakdown for each row.
func (s *SalaryService) List(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryDetail, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list salaries")
	}
	for i := range records {
		records[i].Components = decodeBreakdown(records[i].Breakdown)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GenerateSalary computes and stores the payroll row for one trainer.
// A row that already exists for the month is a conflict, regeneration
// goes through deletion by an operator, not silent overwrite.
func (s *SalaryService) GenerateSalary(ctx context.Context, trainerID, month string) (*models.SalaryRecord, error) {
	if _, err := models.ParseMonthKey(month); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}

	trainer, err := s.trainers.FindByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}

	if _, err := s.repo.FindByTrainerMonth(ctx, trainerID, month); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "salary already generated for this month")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing salary")
	}

	breakdown, err := s.commission.CalculateDetailedCommission(ctx, trainerID, month)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(breakdown)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode commission breakdown")
	}

	record := &models.SalaryRecord{
		TrainerID:  trainerID,
		Month:      month,
		BaseSalary: trainer.BaseSalary,
		Commission: breakdown.Capped,
		Breakdown:  encoded,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store salary")
	}
	return record, nil
}

// GenerateMonthlyPayroll generates salaries for every active trainer,
// skipping trainers whose row already exists.
func (s *SalaryService) GenerateMonthlyPayroll(ctx context.Context, month string) (int, error) {
	if _, err := models.ParseMonthKey(month); err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	trainers, err := s.trainers.ListActive(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainers")
	}

	generated := 0
	for _, trainer := range trainers {
		if _, err := s.GenerateSalary(ctx, trainer.ID, month); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrConflict.Code {
				continue
			}
			return generated, err
		}
		generated++
	}
	return generated, nil
}

// GetSalary returns the payroll row for a trainer and month. A missing
// row is NOT_FOUND, never an implicit zero record.
func (s *SalaryService) GetSalary(ctx context.Context, trainerID, month string) (*models.SalaryDetail, error) {
	if _, err := models.ParseMonthKey(month); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	record, err := s.repo.FindByTrainerMonth(ctx, trainerID, month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "salary not yet generated for this month")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load salary")
	}

	trainer, err := s.trainers.FindByID(ctx, trainerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}

	detail := &models.SalaryDetail{SalaryRecord: *record, Components: decodeBreakdown(record.Breakdown)}
	if trainer != nil {
		detail.TrainerName = trainer.FullName
	}
	return detail, nil
}

// MarkSalaryPaid stamps the payout time once. An already-paid row
// reports false without error and emits no duplicate notification.
func (s *SalaryService) MarkSalaryPaid(ctx context.Context, salaryID string) (bool, error) {
	record, err := s.repo.FindByID(ctx, salaryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "salary not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load salary")
	}

	paid, err := s.repo.MarkPaid(ctx, salaryID, s.now().UTC())
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark salary paid")
	}
	if !paid {
		return false, nil
	}

	if s.notifier != nil {
		s.notifier.SalaryPaid(ctx, record.TrainerID, record.Month, record.BaseSalary+record.Commission)
	}
	return true, nil
}

// RenderSlip produces the PDF salary slip for a trainer's month.
func (s *SalaryService) RenderSlip(ctx context.Context, trainerID, month string) ([]byte, error) {
	detail, err := s.GetSalary(ctx, trainerID, month)
	if err != nil {
		return nil, err
	}

	lines := []export.SlipLine{
		{Label: "Trainer", Value: detail.TrainerName},
		{Label: "Month", Value: detail.Month},
		{Label: "Base salary", Value: formatVND(detail.BaseSalary)},
	}
	if c := detail.Components; c != nil {
		lines = append(lines,
			export.SlipLine{Label: "Package commission", Value: formatVND(c.Package)},
			export.SlipLine{Label: "Class commission", Value: formatVND(c.Class)},
			export.SlipLine{Label: "Personal training commission", Value: formatVND(c.PersonalTraining)},
			export.SlipLine{Label: "Performance bonus", Value: formatVND(c.PerformanceBonus)},
			export.SlipLine{Label: "Attendance bonus", Value: formatVND(c.AttendanceBonus)},
		)
	}
	lines = append(lines,
		export.SlipLine{Label: "Commission total", Value: formatVND(detail.Commission)},
		export.SlipLine{Label: "Payout", Value: formatVND(detail.BaseSalary + detail.Commission)},
	)
	status := "unpaid"
	if detail.PaidAt != nil {
		status = "paid " + detail.PaidAt.Format("2006-01-02")
	}
	lines = append(lines, export.SlipLine{Label: "Status", Value: status})

	slip, err := s.pdf.RenderSlip("Salary slip", fmt.Sprintf("%s (%s)", detail.TrainerName, detail.Month), lines)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render salary slip")
	}
	return slip, nil
}

func decodeBreakdown(raw []byte) *models.CommissionBreakdown {
	if len(raw) == 0 {
		return nil
	}
	var breakdown models.CommissionBreakdown
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		return nil
	}
	return &breakdown
}

func formatVND(amount int64) string {
	return fmt.Sprintf("%d VND", amount)
}
