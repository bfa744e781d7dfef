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

// TrainerRepository handles persistence of trainer profiles.
type TrainerRepository struct {
	db *sqlx.DB
}

// NewTrainerRepository constructs the repository.
func NewTrainerRepository(db *sqlx.DB) *TrainerRepository {
	return &TrainerRepository{db: db}
}

const trainerColumns = `id, user_id, full_name, phone, email, specialty, base_salary, hired_at, active, created_at, updated_at`

// List returns trainers matching the filter.
func (r *TrainerRepository) List(ctx context.Context, filter models.TrainerFilter) ([]models.Trainer, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Specialty != "" {
		conditions = append(conditions, fmt.Sprintf("specialty = $%d", len(args)+1))
		args = append(args, filter.Specialty)
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
	query := fmt.Sprintf(`SELECT %s FROM trainers%s ORDER BY full_name ASC LIMIT %d OFFSET %d`,
		trainerColumns, clause, size, (page-1)*size)

	var trainers []models.Trainer
	if err := r.db.SelectContext(ctx, &trainers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list trainers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM trainers"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count trainers: %w", err)
	}
	return trainers, total, nil
}

// FindByID returns a trainer by its ID.
func (r *TrainerRepository) FindByID(ctx context.Context, id string) (*models.Trainer, error) {
	query := fmt.Sprintf(`SELECT %s FROM trainers WHERE id = $1`, trainerColumns)
	var trainer models.Trainer
	if err := r.db.GetContext(ctx, &trainer, query, id); err != nil {
		return nil, err
	}
	return &trainer, nil
}

// Create persists a new trainer.
func (r *TrainerRepository) Create(ctx context.Context, trainer *models.Trainer) error {
	if trainer.ID == "" {
		trainer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if trainer.HiredAt.IsZero() {
		trainer.HiredAt = now
	}
	trainer.CreatedAt = now
	trainer.UpdatedAt = now
	const query = `INSERT INTO trainers (id, user_id, full_name, phone, email, specialty, base_salary, hired_at, active, created_at, updated_at)
        VALUES (:id, :user_id, :full_name, :phone, :email, :specialty, :base_salary, :hired_at, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, trainer); err != nil {
		return fmt.Errorf("create trainer: %w", err)
	}
	return nil
}

// Update replaces mutable profile fields.
func (r *TrainerRepository) Update(ctx context.Context, trainer *models.Trainer) error {
	trainer.UpdatedAt = time.Now().UTC()
	const query = `UPDATE trainers SET full_name = :full_name, phone = :phone, email = :email,
        specialty = :specialty, base_salary = :base_salary, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, trainer); err != nil {
		return fmt.Errorf("update trainer: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (r *TrainerRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE trainers SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set trainer active: %w", err)
	}
	return nil
}

// ListActive returns all active trainers, used by payroll generation.
func (r *TrainerRepository) ListActive(ctx context.Context) ([]models.Trainer, error) {
	query := fmt.Sprintf(`SELECT %s FROM trainers WHERE active ORDER BY full_name ASC`, trainerColumns)
	var trainers []models.Trainer
	if err := r.db.SelectContext(ctx, &trainers, query); err != nil {
		return nil, fmt.Errorf("list active trainers: %w", err)
	}
	return trainers, nil
}
