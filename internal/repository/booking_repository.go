package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/pkg/errors"
)

// BookingRepository handles seat reservations on class sessions. Seats
// are taken with a single conditional update on the session row so two
// concurrent bookings can never oversell a class.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `b.id, b.member_id, b.session_id, b.status, b.booked_at, b.cancelled_at`

// List returns bookings with member and session context.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	base := `FROM bookings b
        JOIN members m ON m.id = b.member_id
        JOIN class_sessions s ON s.id = b.session_id
        JOIN classes c ON c.id = s.class_id`
	var conditions []string
	var args []interface{}

	if filter.MemberID != "" {
		conditions = append(conditions, fmt.Sprintf("b.member_id = $%d", len(args)+1))
		args = append(args, filter.MemberID)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("b.session_id = $%d", len(args)+1))
		args = append(args, filter.SessionID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s, m.full_name AS member_name, s.class_id, c.name AS class_name, s.starts_at
        %s%s ORDER BY s.starts_at DESC, b.booked_at DESC LIMIT %d OFFSET %d`,
		bookingColumns, base, clause, size, (page-1)*size)

	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// FindByID returns a booking by its ID.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	const query = `SELECT id, member_id, session_id, status, booked_at, cancelled_at FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Book takes one seat on the session and records the booking in a
// single transaction. The seat take is a conditional update that only
// succeeds while booked < capacity; failure surfaces ErrClassFull. A
// duplicate live booking for the (member, session) pair surfaces
// ErrDuplicateBooking.
func (r *BookingRepository) Book(ctx context.Context, memberID, sessionID string) (*models.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE member_id = $1 AND session_id = $2 AND status <> 'CANCELLED')`,
		memberID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate booking: %w", err)
	}
	if exists {
		return nil, errors.ErrDuplicateBooking
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE class_sessions SET booked = booked + 1
         WHERE id = $1 AND NOT canceled AND booked < capacity`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("take seat: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("take seat: %w", err)
	}
	if affected == 0 {
		return nil, errors.ErrClassFull
	}

	booking := &models.Booking{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		SessionID: sessionID,
		Status:    models.BookingStatusBooked,
		BookedAt:  time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (id, member_id, session_id, status, booked_at) VALUES ($1, $2, $3, $4, $5)`,
		booking.ID, booking.MemberID, booking.SessionID, booking.Status, booking.BookedAt); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}
	return booking, nil
}

// Cancel releases the seat and marks the booking CANCELLED in one
// transaction. Returns false when the booking is not in BOOKED.
func (r *BookingRepository) Cancel(ctx context.Context, bookingID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin cancel booking: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var sessionID string
	err = tx.QueryRowxContext(ctx,
		`UPDATE bookings SET status = 'CANCELLED', cancelled_at = $2
         WHERE id = $1 AND status = 'BOOKED' RETURNING session_id`,
		bookingID, time.Now().UTC()).Scan(&sessionID)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("cancel booking: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE class_sessions SET booked = booked - 1 WHERE id = $1 AND booked > 0`, sessionID); err != nil {
		return false, fmt.Errorf("release seat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit cancel booking: %w", err)
	}
	return true, nil
}

// MarkAttended moves a BOOKED booking to ATTENDED. Returns false when
// no live booking matched.
func (r *BookingRepository) MarkAttended(ctx context.Context, memberID, sessionID string) (bool, error) {
	const query = `UPDATE bookings SET status = 'ATTENDED'
        WHERE member_id = $1 AND session_id = $2 AND status = 'BOOKED'`
	res, err := r.db.ExecContext(ctx, query, memberID, sessionID)
	if err != nil {
		return false, fmt.Errorf("mark attended: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark attended: %w", err)
	}
	return affected > 0, nil
}

// CountAttendedForClass returns attended and total non-cancelled
// bookings for a trainer's class sessions inside a window.
func (r *BookingRepository) CountAttendedForClass(ctx context.Context, classID string, from, to time.Time) (attended, total int, err error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE b.status = 'ATTENDED') AS attended,
        COUNT(*) AS total
        FROM bookings b
        JOIN class_sessions s ON s.id = b.session_id
        WHERE s.class_id = $1 AND b.status <> 'CANCELLED' AND s.starts_at >= $2 AND s.starts_at < $3`
	row := r.db.QueryRowxContext(ctx, query, classID, from, to)
	if err := row.Scan(&attended, &total); err != nil {
		return 0, 0, fmt.Errorf("count class attendance: %w", err)
	}
	return attended, total, nil
}
