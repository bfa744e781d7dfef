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

// PromoRepository handles persistence of promotions.
type PromoRepository struct {
	db *sqlx.DB
}

// NewPromoRepository constructs the repository.
func NewPromoRepository(db *sqlx.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

const promoColumns = `id, code, description, percent_off, valid_from, valid_until, usage_limit, used_count, active, created_at, updated_at`

// List returns promotions matching the filter.
func (r *PromoRepository) List(ctx context.Context, filter models.PromoFilter) ([]models.Promotion, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("code ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM promotions%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		promoColumns, clause, size, (page-1)*size)

	var promos []models.Promotion
	if err := r.db.SelectContext(ctx, &promos, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list promotions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM promotions"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count promotions: %w", err)
	}
	return promos, total, nil
}

// FindByCode looks up a promotion by its code, case-insensitively.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*models.Promotion, error) {
	query := fmt.Sprintf(`SELECT %s FROM promotions WHERE UPPER(code) = UPPER($1)`, promoColumns)
	var promo models.Promotion
	if err := r.db.GetContext(ctx, &promo, query, code); err != nil {
		return nil, err
	}
	return &promo, nil
}

// Create persists a new promotion.
func (r *PromoRepository) Create(ctx context.Context, promo *models.Promotion) error {
	if promo.ID == "" {
		promo.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	promo.CreatedAt = now
	promo.UpdatedAt = now
	const query = `INSERT INTO promotions (id, code, description, percent_off, valid_from, valid_until, usage_limit, used_count, active, created_at, updated_at)
        VALUES (:id, :code, :description, :percent_off, :valid_from, :valid_until, :usage_limit, :used_count, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, promo); err != nil {
		return fmt.Errorf("create promotion: %w", err)
	}
	return nil
}

// Update replaces mutable promotion fields.
func (r *PromoRepository) Update(ctx context.Context, promo *models.Promotion) error {
	promo.UpdatedAt = time.Now().UTC()
	const query = `UPDATE promotions SET code = :code, description = :description, percent_off = :percent_off,
        valid_from = :valid_from, valid_until = :valid_until, usage_limit = :usage_limit, active = :active,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, promo); err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (r *PromoRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE promotions SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set promotion active: %w", err)
	}
	return nil
}
