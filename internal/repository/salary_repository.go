package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-core-api/internal/models"
)

// SalaryRepository handles payroll rows, the commission rate table and
// the monthly revenue aggregates feeding commission calculation.
type SalaryRepository struct {
	db *sqlx.DB
}

// NewSalaryRepository constructs the repository.
func NewSalaryRepository(db *sqlx.DB) *SalaryRepository {
	return &SalaryRepository{db: db}
}

// FindByTrainerMonth returns the salary row for a trainer and month.
func (r *SalaryRepository) FindByTrainerMonth(ctx context.Context, trainerID, month string) (*models.SalaryRecord, error) {
	const query = `SELECT id, trainer_id, month, base_salary, commission, breakdown, paid_at, created_at, updated_at
        FROM salaries WHERE trainer_id = $1 AND month = $2`
	var record models.SalaryRecord
	if err := r.db.GetContext(ctx, &record, query, trainerID, month); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns salary rows with trainer context.
func (r *SalaryRepository) List(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryDetail, int, error) {
	base := `FROM salaries s JOIN trainers t ON t.id = s.trainer_id`
	var conditions []string
	var args []interface{}

	if filter.TrainerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.trainer_id = $%d", len(args)+1))
		args = append(args, filter.TrainerID)
	}
	if filter.Month != "" {
		conditions = append(conditions, fmt.Sprintf("s.month = $%d", len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Unpaid != nil {
		if *filter.Unpaid {
			conditions = append(conditions, "s.paid_at IS NULL")
		} else {
			conditions = append(conditions, "s.paid_at IS NOT NULL")
		}
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT s.id, s.trainer_id, s.month, s.base_salary, s.commission, s.breakdown,
        s.paid_at, s.created_at, s.updated_at, t.full_name AS trainer_name
        %s%s ORDER BY s.month DESC, t.full_name ASC LIMIT %d OFFSET %d`,
		base, clause, size, (page-1)*size)

	var records []models.SalaryDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list salaries: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count salaries: %w", err)
	}
	return records, total, nil
}

// Upsert writes the salary row for (trainer, month). Regeneration is an
// overwrite until the row is marked paid.
func (r *SalaryRepository) Upsert(ctx context.Context, record *models.SalaryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO salaries (id, trainer_id, month, base_salary, commission, breakdown, paid_at, created_at, updated_at)
        VALUES (:id, :trainer_id, :month, :base_salary, :commission, :breakdown, :paid_at, :created_at, :updated_at)
        ON CONFLICT (trainer_id, month) DO UPDATE SET
            base_salary = EXCLUDED.base_salary,
            commission = EXCLUDED.commission,
            breakdown = EXCLUDED.breakdown,
            updated_at = EXCLUDED.updated_at
        WHERE salaries.paid_at IS NULL`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert salary: %w", err)
	}
	return nil
}

// FindByID returns a salary row by its ID.
func (r *SalaryRepository) FindByID(ctx context.Context, id string) (*models.SalaryRecord, error) {
	const query = `SELECT id, trainer_id, month, base_salary, commission, breakdown, paid_at, created_at, updated_at
        FROM salaries WHERE id = $1`
	var record models.SalaryRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkPaid stamps the payout time. Returns false when the row is
// missing or already paid.
func (r *SalaryRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	const query = `UPDATE salaries SET paid_at = $2, updated_at = $3
        WHERE id = $1 AND paid_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, paidAt, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark salary paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark salary paid: %w", err)
	}
	return affected > 0, nil
}

// CommissionConfig loads the rate table and its tiers, ordered by
// ascending minimum revenue.
func (r *SalaryRepository) CommissionConfig(ctx context.Context) (*models.CommissionConfig, error) {
	const configQuery = `SELECT package_rate, class_rate, personal_training_rate, min_students_for_bonus,
        performance_bonus, min_attendance_for_bonus, attendance_bonus, max_commission_per_month
        FROM commission_config LIMIT 1`
	var config models.CommissionConfig
	if err := r.db.GetContext(ctx, &config, configQuery); err != nil {
		return nil, err
	}

	const tierQuery = `SELECT id, min_revenue, max_revenue, rate FROM commission_tiers ORDER BY min_revenue ASC`
	if err := r.db.SelectContext(ctx, &config.Tiers, tierQuery); err != nil {
		return nil, fmt.Errorf("load commission tiers: %w", err)
	}
	return &config, nil
}

// ReplaceCommissionTiers swaps the tier table atomically.
func (r *SalaryRepository) ReplaceCommissionTiers(ctx context.Context, tiers []models.CommissionTier) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tiers: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM commission_tiers`); err != nil {
		return fmt.Errorf("clear commission tiers: %w", err)
	}
	const query = `INSERT INTO commission_tiers (id, min_revenue, max_revenue, rate) VALUES ($1, $2, $3, $4)`
	for i := range tiers {
		if tiers[i].ID == "" {
			tiers[i].ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, tiers[i].ID, tiers[i].MinRevenue, tiers[i].MaxRevenue, tiers[i].Rate); err != nil {
			return fmt.Errorf("insert commission tier: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tiers: %w", err)
	}
	return nil
}

// TrainerRevenue aggregates settled payment amounts attributable to a
// trainer inside a window, split by registration kind. Personal
// training packages count separately from regular packages.
func (r *SalaryRepository) TrainerRevenue(ctx context.Context, trainerID string, from, to time.Time) (packageRevenue, classRevenue, personalRevenue int64, err error) {
	const query = `SELECT
        COALESCE(SUM(p.amount) FILTER (WHERE r.kind = 'PACKAGE' AND NOT pk.personal_training), 0) AS package_revenue,
        COALESCE(SUM(p.amount) FILTER (WHERE r.kind = 'CLASS'), 0) AS class_revenue,
        COALESCE(SUM(p.amount) FILTER (WHERE r.kind = 'PACKAGE' AND pk.personal_training), 0) AS personal_revenue
        FROM payments p
        JOIN registrations r ON r.id = p.registration_id
        LEFT JOIN packages pk ON pk.id = r.package_id
        LEFT JOIN classes c ON c.id = r.class_id
        WHERE p.status = 'SUCCESS' AND p.paid_at >= $2 AND p.paid_at < $3
          AND (pk.trainer_id = $1 OR c.trainer_id = $1)`
	row := r.db.QueryRowxContext(ctx, query, trainerID, from, to)
	if err := row.Scan(&packageRevenue, &classRevenue, &personalRevenue); err != nil {
		return 0, 0, 0, fmt.Errorf("trainer revenue: %w", err)
	}
	return packageRevenue, classRevenue, personalRevenue, nil
}

// TrainerStudentCount returns distinct members holding a registration
// with the trainer that was ACTIVE at any point inside the window.
func (r *SalaryRepository) TrainerStudentCount(ctx context.Context, trainerID string, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(DISTINCT r.member_id)
        FROM registrations r
        LEFT JOIN packages pk ON pk.id = r.package_id
        LEFT JOIN classes c ON c.id = r.class_id
        WHERE r.status IN ('ACTIVE', 'EXPIRED') AND r.start_date < $3 AND r.end_date >= $2
          AND (pk.trainer_id = $1 OR c.trainer_id = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, trainerID, from, to); err != nil {
		return 0, fmt.Errorf("trainer student count: %w", err)
	}
	return count, nil
}

// TrainerAttendance returns attended and total non-cancelled bookings
// across the trainer's class sessions inside the window.
func (r *SalaryRepository) TrainerAttendance(ctx context.Context, trainerID string, from, to time.Time) (attended, total int, err error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE b.status = 'ATTENDED') AS attended,
        COUNT(*) AS total
        FROM bookings b
        JOIN class_sessions s ON s.id = b.session_id
        JOIN classes c ON c.id = s.class_id
        WHERE c.trainer_id = $1 AND b.status <> 'CANCELLED' AND s.starts_at >= $2 AND s.starts_at < $3`
	row := r.db.QueryRowxContext(ctx, query, trainerID, from, to)
	if err := row.Scan(&attended, &total); err != nil {
		return 0, 0, fmt.Errorf("trainer attendance: %w", err)
	}
	return attended, total, nil
}
