package dto

import "time"

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// RevenueReportRow is one day of settled revenue.
type RevenueReportRow struct {
	Date        time.Time `db:"date" json:"date"`
	CashAmount  int64     `db:"cash_amount" json:"cash_amount"`
	VNPayAmount int64     `db:"vnpay_amount" json:"vnpay_amount"`
	Refunds     int64     `db:"refunds" json:"refunds"`
	Net         int64     `db:"net" json:"net"`
}

// CommissionReportRow is one trainer's monthly commission summary.
type CommissionReportRow struct {
	TrainerID   string `db:"trainer_id" json:"trainer_id"`
	TrainerName string `db:"trainer_name" json:"trainer_name"`
	Month       string `db:"month" json:"month"`
	BaseSalary  int64  `db:"base_salary" json:"base_salary"`
	Commission  int64  `db:"commission" json:"commission"`
	Paid        bool   `db:"paid" json:"paid"`
}

// ReportFile is a rendered export returned to the caller.
type ReportFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}
