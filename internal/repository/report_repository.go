package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-core-api/internal/dto"
)

// ReportRepository runs the read-only aggregation queries behind
// exported reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// RevenueRows returns per-day revenue split by method, with refunds
// netted out, for the given window.
func (r *ReportRepository) RevenueRows(ctx context.Context, from, to time.Time) ([]dto.RevenueReportRow, error) {
	const query = `SELECT
        DATE(COALESCE(paid_at, updated_at)) AS date,
        COALESCE(SUM(amount) FILTER (WHERE status = 'SUCCESS' AND method = 'CASH'), 0) AS cash_amount,
        COALESCE(SUM(amount) FILTER (WHERE status = 'SUCCESS' AND method = 'VNPAY'), 0) AS vnpay_amount,
        COALESCE(SUM(amount) FILTER (WHERE status = 'REFUND'), 0) AS refunds,
        COALESCE(SUM(amount) FILTER (WHERE status = 'SUCCESS'), 0)
          - COALESCE(SUM(amount) FILTER (WHERE status = 'REFUND'), 0) AS net
        FROM payments
        WHERE status IN ('SUCCESS', 'REFUND')
          AND COALESCE(paid_at, updated_at) >= $1 AND COALESCE(paid_at, updated_at) < $2
        GROUP BY DATE(COALESCE(paid_at, updated_at))
        ORDER BY date ASC`
	var rows []dto.RevenueReportRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("revenue report rows: %w", err)
	}
	return rows, nil
}

// CommissionRows returns every trainer's salary summary for a month.
func (r *ReportRepository) CommissionRows(ctx context.Context, month string) ([]dto.CommissionReportRow, error) {
	const query = `SELECT s.trainer_id, t.full_name AS trainer_name, s.month, s.base_salary, s.commission,
        (s.paid_at IS NOT NULL) AS paid
        FROM salaries s
        JOIN trainers t ON t.id = s.trainer_id
        WHERE s.month = $1
        ORDER BY t.full_name ASC`
	var rows []dto.CommissionReportRow
	if err := r.db.SelectContext(ctx, &rows, query, month); err != nil {
		return nil, fmt.Errorf("commission report rows: %w", err)
	}
	return rows, nil
}
