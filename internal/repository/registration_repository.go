package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-core-api/internal/models"
)

// RegistrationRepository handles persistence of registrations. Status
// transitions run through conditional updates so concurrent writers can
// never move a row out of order.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `r.id, r.member_id, r.kind, r.package_id, r.class_id, r.start_date, r.end_date,
        r.months, r.fee, r.status, r.status_note, r.promo_id, r.created_at, r.updated_at`

// List returns registrations with member and target context.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error) {
	base := `FROM registrations r
        JOIN members m ON m.id = r.member_id
        LEFT JOIN packages p ON p.id = r.package_id
        LEFT JOIN classes c ON c.id = r.class_id`
	var conditions []string
	var args []interface{}

	if filter.MemberID != "" {
		conditions = append(conditions, fmt.Sprintf("r.member_id = $%d", len(args)+1))
		args = append(args, filter.MemberID)
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("r.kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "r.created_at",
		"start_date": "r.start_date",
		"fee":        "r.fee",
	}
	orderBy := "r.created_at"
	if col, ok := allowedSorts[filter.SortBy]; ok {
		orderBy = col
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s, m.full_name AS member_name, p.name AS package_name, c.name AS class_name
        %s%s ORDER BY %s %s LIMIT %d OFFSET %d`,
		registrationColumns, base, clause, orderBy, order, size, (page-1)*size)

	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

// FindByID returns a registration by its ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	const query = `SELECT id, member_id, kind, package_id, class_id, start_date, end_date, months, fee,
        status, status_note, promo_id, created_at, updated_at FROM registrations WHERE id = $1`
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// HasActiveForMember reports whether the member holds any ACTIVE
// registration covering the given instant.
func (r *RegistrationRepository) HasActiveForMember(ctx context.Context, memberID string, at time.Time) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM registrations
        WHERE member_id = $1 AND status = $2 AND start_date <= $3 AND end_date >= $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, memberID, models.RegistrationStatusActive, at); err != nil {
		return false, fmt.Errorf("check active registration: %w", err)
	}
	return exists, nil
}

// HasOpen reports whether the member already holds a PENDING_PAYMENT or
// ACTIVE registration of the given kind. A non-empty targetID narrows
// the check to one package or class.
func (r *RegistrationRepository) HasOpen(ctx context.Context, memberID string, kind models.RegistrationKind, targetID string) (bool, error) {
	query := `SELECT EXISTS (
        SELECT 1 FROM registrations
        WHERE member_id = $1 AND kind = $2 AND status IN ('PENDING_PAYMENT', 'ACTIVE')`
	args := []interface{}{memberID, kind}
	if targetID != "" {
		if kind == models.RegistrationKindClass {
			query += " AND class_id = $3"
		} else {
			query += " AND package_id = $3"
		}
		args = append(args, targetID)
	}
	query += ")"

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check open registration: %w", err)
	}
	return exists, nil
}

// FindActiveClassRegistration returns the ACTIVE registration linking a
// member to a class, if any.
func (r *RegistrationRepository) FindActiveClassRegistration(ctx context.Context, memberID, classID string, at time.Time) (*models.Registration, error) {
	const query = `SELECT id, member_id, kind, package_id, class_id, start_date, end_date, months, fee,
        status, status_note, promo_id, created_at, updated_at FROM registrations
        WHERE member_id = $1 AND class_id = $2 AND status = $3 AND start_date <= $4 AND end_date >= $4
        LIMIT 1`
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, memberID, classID, models.RegistrationStatusActive, at); err != nil {
		return nil, err
	}
	return &registration, nil
}

// Cancel moves a registration to CANCELED with a note. Only rows still
// in one of the provided statuses transition; the return reports whether
// a row changed.
func (r *RegistrationRepository) Cancel(ctx context.Context, id, note string, from ...models.RegistrationStatus) (bool, error) {
	if len(from) == 0 {
		from = []models.RegistrationStatus{models.RegistrationStatusPendingPayment, models.RegistrationStatusActive}
	}
	placeholders := make([]string, len(from))
	args := []interface{}{id, note, time.Now().UTC()}
	for i, status := range from {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, status)
	}
	query := fmt.Sprintf(`UPDATE registrations SET status = 'CANCELED', status_note = $2, updated_at = $3
        WHERE id = $1 AND status IN (%s)`, strings.Join(placeholders, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("cancel registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel registration: %w", err)
	}
	return affected > 0, nil
}

// ExpireDue moves ACTIVE registrations whose end date has passed to
// EXPIRED and returns the affected IDs.
func (r *RegistrationRepository) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	const query = `UPDATE registrations SET status = 'EXPIRED', updated_at = $2
        WHERE status = 'ACTIVE' AND end_date < $1 RETURNING id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, now, now.UTC()); err != nil {
		return nil, fmt.Errorf("expire registrations: %w", err)
	}
	return ids, nil
}

// CountActive returns the number of ACTIVE registrations covering the instant.
func (r *RegistrationRepository) CountActive(ctx context.Context, at time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE status = 'ACTIVE' AND start_date <= $1 AND end_date >= $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, at); err != nil {
		return 0, fmt.Errorf("count active registrations: %w", err)
	}
	return count, nil
}

// CountExpiringBetween returns ACTIVE registrations ending inside the window.
func (r *RegistrationRepository) CountExpiringBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE status = 'ACTIVE' AND end_date >= $1 AND end_date < $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("count expiring registrations: %w", err)
	}
	return count, nil
}
