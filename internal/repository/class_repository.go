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

// ClassRepository handles persistence of classes, schedule slots and
// dated sessions.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `c.id, c.name, c.description, c.trainer_id, c.capacity, c.monthly_fee, c.fixed_schedule,
        c.term_price, c.start_date, c.end_date, c.active, c.created_at, c.updated_at`

// List returns classes with trainer context.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	base := `FROM classes c LEFT JOIN trainers t ON t.id = c.trainer_id`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("c.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.TrainerID != "" {
		conditions = append(conditions, fmt.Sprintf("c.trainer_id = $%d", len(args)+1))
		args = append(args, filter.TrainerID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("c.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Fixed != nil {
		conditions = append(conditions, fmt.Sprintf("c.fixed_schedule = $%d", len(args)+1))
		args = append(args, *filter.Fixed)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s, t.full_name AS trainer_name %s%s ORDER BY c.name ASC LIMIT %d OFFSET %d`,
		classColumns, base, clause, size, (page-1)*size)

	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID returns a class by its ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.GymClass, error) {
	const query = `SELECT id, name, description, trainer_id, capacity, monthly_fee, fixed_schedule,
        term_price, start_date, end_date, active, created_at, updated_at FROM classes WHERE id = $1`
	var class models.GymClass
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create persists a new class together with its weekly schedule slots.
func (r *ClassRepository) Create(ctx context.Context, class *models.GymClass, slots []models.ClassScheduleSlot) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create class: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const classQuery = `INSERT INTO classes (id, name, description, trainer_id, capacity, monthly_fee, fixed_schedule, term_price, start_date, end_date, active, created_at, updated_at)
        VALUES (:id, :name, :description, :trainer_id, :capacity, :monthly_fee, :fixed_schedule, :term_price, :start_date, :end_date, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, classQuery, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	const slotQuery = `INSERT INTO class_schedule_slots (id, class_id, weekday, start_time, end_time)
        VALUES ($1, $2, $3, $4, $5)`
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		slots[i].ClassID = class.ID
		if _, err := tx.ExecContext(ctx, slotQuery, slots[i].ID, slots[i].ClassID, slots[i].Weekday, slots[i].StartTime, slots[i].EndTime); err != nil {
			return fmt.Errorf("create schedule slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create class: %w", err)
	}
	return nil
}

// Update replaces mutable class fields.
func (r *ClassRepository) Update(ctx context.Context, class *models.GymClass) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, description = :description, trainer_id = :trainer_id,
        capacity = :capacity, monthly_fee = :monthly_fee, fixed_schedule = :fixed_schedule, term_price = :term_price,
        start_date = :start_date, end_date = :end_date, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (r *ClassRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE classes SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set class active: %w", err)
	}
	return nil
}

// Slots returns the weekly schedule of a class.
func (r *ClassRepository) Slots(ctx context.Context, classID string) ([]models.ClassScheduleSlot, error) {
	const query = `SELECT id, class_id, weekday, start_time, end_time FROM class_schedule_slots
        WHERE class_id = $1 ORDER BY weekday, start_time`
	var slots []models.ClassScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}

// CreateSessions inserts dated sessions, skipping duplicates on
// (class_id, starts_at).
func (r *ClassRepository) CreateSessions(ctx context.Context, sessions []models.ClassSession) (int, error) {
	const query = `INSERT INTO class_sessions (id, class_id, starts_at, ends_at, capacity, booked, canceled, created_at)
        VALUES ($1, $2, $3, $4, $5, 0, FALSE, $6)
        ON CONFLICT (class_id, starts_at) DO NOTHING`
	created := 0
	now := time.Now().UTC()
	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = uuid.NewString()
		}
		res, err := r.db.ExecContext(ctx, query, sessions[i].ID, sessions[i].ClassID, sessions[i].StartsAt, sessions[i].EndsAt, sessions[i].Capacity, now)
		if err != nil {
			return created, fmt.Errorf("create session: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			created++
		}
	}
	return created, nil
}

// FindSessionByID returns a session with class context.
func (r *ClassRepository) FindSessionByID(ctx context.Context, id string) (*models.ClassSessionDetail, error) {
	const query = `SELECT s.id, s.class_id, s.starts_at, s.ends_at, s.capacity, s.booked, s.canceled, s.created_at,
        c.name AS class_name, c.trainer_id, t.full_name AS trainer_name
        FROM class_sessions s
        JOIN classes c ON c.id = s.class_id
        LEFT JOIN trainers t ON t.id = c.trainer_id
        WHERE s.id = $1`
	var session models.ClassSessionDetail
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns sessions matching the filter.
func (r *ClassRepository) ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.ClassSessionDetail, int, error) {
	base := `FROM class_sessions s
        JOIN classes c ON c.id = s.class_id
        LEFT JOIN trainers t ON t.id = c.trainer_id`
	var conditions []string
	var args []interface{}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.TrainerID != "" {
		conditions = append(conditions, fmt.Sprintf("c.trainer_id = $%d", len(args)+1))
		args = append(args, filter.TrainerID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("s.starts_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("s.starts_at < $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT s.id, s.class_id, s.starts_at, s.ends_at, s.capacity, s.booked, s.canceled, s.created_at,
        c.name AS class_name, c.trainer_id, t.full_name AS trainer_name %s%s ORDER BY s.starts_at ASC LIMIT %d OFFSET %d`,
		base, clause, size, (page-1)*size)

	var sessions []models.ClassSessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// CountSessionsBetween returns the number of non-canceled sessions in a window.
func (r *ClassRepository) CountSessionsBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM class_sessions WHERE NOT canceled AND starts_at >= $1 AND starts_at < $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}
