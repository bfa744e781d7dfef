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

// WalkInRepository handles single-visit guest passes.
type WalkInRepository struct {
	db *sqlx.DB
}

// NewWalkInRepository constructs the repository.
func NewWalkInRepository(db *sqlx.DB) *WalkInRepository {
	return &WalkInRepository{db: db}
}

// Create persists a walk-in pass. The payment row is created by the
// payment repository; this only links to it.
func (r *WalkInRepository) Create(ctx context.Context, walkIn *models.WalkIn) error {
	if walkIn.ID == "" {
		walkIn.ID = uuid.NewString()
	}
	walkIn.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO walk_ins (id, full_name, phone, payment_id, visit_date, created_at)
        VALUES (:id, :full_name, :phone, :payment_id, :visit_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, walkIn); err != nil {
		return fmt.Errorf("create walk-in: %w", err)
	}
	return nil
}

// FindByID returns a walk-in pass.
func (r *WalkInRepository) FindByID(ctx context.Context, id string) (*models.WalkIn, error) {
	const query = `SELECT id, full_name, phone, payment_id, visit_date, created_at FROM walk_ins WHERE id = $1`
	var walkIn models.WalkIn
	if err := r.db.GetContext(ctx, &walkIn, query, id); err != nil {
		return nil, err
	}
	return &walkIn, nil
}

// List returns walk-in passes in a window.
func (r *WalkInRepository) List(ctx context.Context, filter models.WalkInFilter) ([]models.WalkIn, int, error) {
	var conditions []string
	var args []interface{}

	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("visit_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("visit_date < $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT id, full_name, phone, payment_id, visit_date, created_at
        FROM walk_ins%s ORDER BY visit_date DESC LIMIT %d OFFSET %d`, clause, size, (page-1)*size)

	var walkIns []models.WalkIn
	if err := r.db.SelectContext(ctx, &walkIns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list walk-ins: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM walk_ins"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count walk-ins: %w", err)
	}
	return walkIns, total, nil
}

// CountBetween returns walk-in passes sold inside a window.
func (r *WalkInRepository) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM walk_ins WHERE visit_date >= $1 AND visit_date < $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("count walk-ins: %w", err)
	}
	return count, nil
}
