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

// PackageRepository handles persistence of membership packages.
type PackageRepository struct {
	db *sqlx.DB
}

// NewPackageRepository constructs the repository.
func NewPackageRepository(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageColumns = `id, name, description, monthly_rate, duration_months, list_price, trainer_id, personal_training, active, created_at, updated_at`

// List returns packages matching the filter.
func (r *PackageRepository) List(ctx context.Context, filter models.PackageFilter) ([]models.MembershipPackage, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.PersonalTraining != nil {
		conditions = append(conditions, fmt.Sprintf("personal_training = $%d", len(args)+1))
		args = append(args, *filter.PersonalTraining)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM packages%s ORDER BY name ASC LIMIT %d OFFSET %d`,
		packageColumns, clause, size, (page-1)*size)

	var packages []models.MembershipPackage
	if err := r.db.SelectContext(ctx, &packages, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list packages: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM packages"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count packages: %w", err)
	}
	return packages, total, nil
}

// FindByID returns a package by its ID.
func (r *PackageRepository) FindByID(ctx context.Context, id string) (*models.MembershipPackage, error) {
	query := fmt.Sprintf(`SELECT %s FROM packages WHERE id = $1`, packageColumns)
	var pkg models.MembershipPackage
	if err := r.db.GetContext(ctx, &pkg, query, id); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Create persists a new package.
func (r *PackageRepository) Create(ctx context.Context, pkg *models.MembershipPackage) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	const query = `INSERT INTO packages (id, name, description, monthly_rate, duration_months, list_price, trainer_id, personal_training, active, created_at, updated_at)
        VALUES (:id, :name, :description, :monthly_rate, :duration_months, :list_price, :trainer_id, :personal_training, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pkg); err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	return nil
}

// Update replaces mutable package fields. Prices on existing
// registrations are unaffected: fees are fixed at registration time.
func (r *PackageRepository) Update(ctx context.Context, pkg *models.MembershipPackage) error {
	pkg.UpdatedAt = time.Now().UTC()
	const query = `UPDATE packages SET name = :name, description = :description, monthly_rate = :monthly_rate,
        duration_months = :duration_months, list_price = :list_price, trainer_id = :trainer_id,
        personal_training = :personal_training, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, pkg); err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (r *PackageRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE packages SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set package active: %w", err)
	}
	return nil
}
