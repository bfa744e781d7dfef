package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/dto"
	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/export"
)

type reportRepository interface {
	RevenueRows(ctx context.Context, from, to time.Time) ([]dto.RevenueReportRow, error)
	CommissionRows(ctx context.Context, month string) ([]dto.CommissionReportRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportService builds financial datasets and renders them for
// download.
type ReportService struct {
	repo   reportRepository
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, csv: csv, pdf: pdf, logger: logger}
}

// RevenueReport renders per-day settled revenue over [from, to].
func (s *ReportService) RevenueReport(ctx context.Context, from, to time.Time, format dto.ReportFormat) (*dto.ReportFile, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range must end on or after its start")
	}
	if to.Sub(from) > 370*24*time.Hour {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range cannot exceed one year")
	}
	rows, err := s.repo.RevenueRows(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build revenue report")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Cash", "VNPay", "Refunds", "Net"},
	}
	var totalNet int64
	for _, row := range rows {
		totalNet += row.Net
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    row.Date.Format("2006-01-02"),
			"Cash":    strconv.FormatInt(row.CashAmount, 10),
			"VNPay":   strconv.FormatInt(row.VNPayAmount, 10),
			"Refunds": strconv.FormatInt(row.Refunds, 10),
			"Net":     strconv.FormatInt(row.Net, 10),
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Date": "TOTAL",
		"Net":  strconv.FormatInt(totalNet, 10),
	})

	title := fmt.Sprintf("Revenue %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	name := fmt.Sprintf("revenue_%s_%s", from.Format("20060102"), to.Format("20060102"))
	return s.render(dataset, title, name, format)
}

// CommissionReport renders per-trainer salary and commission totals
// for one month.
func (s *ReportService) CommissionReport(ctx context.Context, month string, format dto.ReportFormat) (*dto.ReportFile, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if _, err := models.ParseMonthKey(month); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be yyyy-MM")
	}
	rows, err := s.repo.CommissionRows(ctx, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build commission report")
	}

	dataset := export.Dataset{
		Headers: []string{"Trainer", "Month", "Base salary", "Commission", "Payout", "Paid"},
	}
	for _, row := range rows {
		paid := "no"
		if row.Paid {
			paid = "yes"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Trainer":     row.TrainerName,
			"Month":       row.Month,
			"Base salary": strconv.FormatInt(row.BaseSalary, 10),
			"Commission":  strconv.FormatInt(row.Commission, 10),
			"Payout":      strconv.FormatInt(row.BaseSalary+row.Commission, 10),
			"Paid":        paid,
		})
	}

	title := fmt.Sprintf("Trainer commissions %s", month)
	name := fmt.Sprintf("commissions_%s", month)
	return s.render(dataset, title, name, format)
}

func (s *ReportService) render(dataset export.Dataset, title, name string, format dto.ReportFormat) (*dto.ReportFile, error) {
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case dto.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case dto.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.logger.Info("report rendered", zap.String("name", name), zap.String("format", string(format)), zap.Int("bytes", len(payload)))
	return &dto.ReportFile{
		Name:        fmt.Sprintf("%s.%s", name, format),
		ContentType: contentType,
		Content:     payload,
	}, nil
}
