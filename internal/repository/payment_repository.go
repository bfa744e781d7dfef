package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-core-api/internal/dto"
	"github.com/noah-isme/gym-core-api/internal/models"
)

// PaymentRepository handles persistence of payments. Settlement writes
// the payment row and the linked registration row inside one
// transaction so they can never disagree.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `p.id, p.registration_id, p.member_id, p.amount, p.method, p.status, p.note,
        p.gateway_txn_no, p.paid_at, p.created_at, p.updated_at`

const insertRegistrationQuery = `INSERT INTO registrations (id, member_id, kind, package_id, class_id, start_date, end_date, months, fee, status, status_note, promo_id, created_at, updated_at)
        VALUES (:id, :member_id, :kind, :package_id, :class_id, :start_date, :end_date, :months, :fee, :status, :status_note, :promo_id, :created_at, :updated_at)`

const insertPaymentQuery = `INSERT INTO payments (id, registration_id, member_id, amount, method, status, note, gateway_txn_no, paid_at, created_at, updated_at)
        VALUES (:id, :registration_id, :member_id, :amount, :method, :status, :note, :gateway_txn_no, :paid_at, :created_at, :updated_at)`

// List returns payments with member and registration context.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	base := `FROM payments p
        LEFT JOIN members m ON m.id = p.member_id
        LEFT JOIN registrations r ON r.id = p.registration_id`
	var conditions []string
	var args []interface{}

	if filter.MemberID != "" {
		conditions = append(conditions, fmt.Sprintf("p.member_id = $%d", len(args)+1))
		args = append(args, filter.MemberID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Method != "" {
		conditions = append(conditions, fmt.Sprintf("p.method = $%d", len(args)+1))
		args = append(args, filter.Method)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_at < $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "p.created_at",
		"amount":     "p.amount",
		"paid_at":    "p.paid_at",
	}
	orderBy := "p.created_at"
	if col, ok := allowedSorts[filter.SortBy]; ok {
		orderBy = col
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s, m.full_name AS member_name, r.status AS registration_status
        %s%s ORDER BY %s %s LIMIT %d OFFSET %d`,
		paymentColumns, base, clause, orderBy, order, size, (page-1)*size)

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// FindByID returns a payment by its ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	const query = `SELECT id, registration_id, member_id, amount, method, status, note, gateway_txn_no,
        paid_at, created_at, updated_at FROM payments WHERE id = $1`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create inserts a standalone payment (walk-in passes settle without a
// registration).
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, insertPaymentQuery, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// CreateWithRegistration inserts a new registration and its pending
// payment atomically. An optional promo usage increment runs in the same
// transaction; a promo that hit its cap fails the whole creation.
func (r *PaymentRepository) CreateWithRegistration(ctx context.Context, registration *models.Registration, payment *models.Payment) error {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	registration.CreatedAt = now
	registration.UpdatedAt = now
	payment.RegistrationID = &registration.ID
	payment.CreatedAt = now
	payment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create registration payment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.NamedExecContext(ctx, insertRegistrationQuery, registration); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx, insertPaymentQuery, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	if registration.PromoID != nil {
		res, err := tx.ExecContext(ctx,
			`UPDATE promotions SET used_count = used_count + 1
             WHERE id = $1 AND (usage_limit = 0 OR used_count < usage_limit)`, *registration.PromoID)
		if err != nil {
			return fmt.Errorf("consume promotion: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("consume promotion: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("consume promotion: usage limit reached")
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create registration payment: %w", err)
	}
	return nil
}

// Settle marks a PENDING payment SUCCESS and activates its registration
// in the same transaction. Returns false without error when the payment
// is not PENDING, so repeated gateway callbacks stay idempotent.
func (r *PaymentRepository) Settle(ctx context.Context, paymentID string, gatewayTxnNo *string, paidAt time.Time, note string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin settle payment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var registrationID *string
	err = tx.QueryRowxContext(ctx,
		`UPDATE payments SET status = 'SUCCESS', gateway_txn_no = COALESCE($2, gateway_txn_no), paid_at = $3, updated_at = $4
         WHERE id = $1 AND status = 'PENDING' RETURNING registration_id`,
		paymentID, gatewayTxnNo, paidAt, time.Now().UTC()).Scan(&registrationID)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("settle payment: %w", err)
	}

	if registrationID != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE registrations SET status = 'ACTIVE', status_note = $2, updated_at = $3
             WHERE id = $1 AND status = 'PENDING_PAYMENT'`, *registrationID, note, time.Now().UTC()); err != nil {
			return false, fmt.Errorf("activate registration: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit settle payment: %w", err)
	}
	return true, nil
}

// Refund marks a SUCCESS payment REFUND. The registration is left
// untouched; cancellation is a separate decision. Returns false when
// the payment is not in SUCCESS.
func (r *PaymentRepository) Refund(ctx context.Context, paymentID, note string) (bool, error) {
	const query = `UPDATE payments SET status = 'REFUND', note = $2, updated_at = $3
        WHERE id = $1 AND status = 'SUCCESS'`
	res, err := r.db.ExecContext(ctx, query, paymentID, note, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("refund payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("refund payment: %w", err)
	}
	return affected > 0, nil
}

// SumRevenueBetween totals settled amounts net of refunds in a window.
func (r *PaymentRepository) SumRevenueBetween(ctx context.Context, from, to time.Time) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments
        WHERE status = 'SUCCESS' AND paid_at >= $1 AND paid_at < $2`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, from, to); err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

// RevenueByMethod aggregates settled revenue per payment method.
func (r *PaymentRepository) RevenueByMethod(ctx context.Context, from, to time.Time) ([]dto.RevenueSlice, error) {
	const query = `SELECT method AS label, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count
        FROM payments
        WHERE status = 'SUCCESS' AND paid_at >= $1 AND paid_at < $2
        GROUP BY method ORDER BY amount DESC`
	var slices []dto.RevenueSlice
	if err := r.db.SelectContext(ctx, &slices, query, from, to); err != nil {
		return nil, fmt.Errorf("revenue by method: %w", err)
	}
	return slices, nil
}

// RevenueByKind aggregates settled revenue per registration kind.
// Payments with no registration are walk-in visits.
func (r *PaymentRepository) RevenueByKind(ctx context.Context, from, to time.Time) ([]dto.RevenueSlice, error) {
	const query = `SELECT COALESCE(reg.kind, 'WALK_IN') AS label, COALESCE(SUM(p.amount), 0) AS amount, COUNT(*) AS count
        FROM payments p
        LEFT JOIN registrations reg ON reg.id = p.registration_id
        WHERE p.status = 'SUCCESS' AND p.paid_at >= $1 AND p.paid_at < $2
        GROUP BY COALESCE(reg.kind, 'WALK_IN') ORDER BY amount DESC`
	var slices []dto.RevenueSlice
	if err := r.db.SelectContext(ctx, &slices, query, from, to); err != nil {
		return nil, fmt.Errorf("revenue by kind: %w", err)
	}
	return slices, nil
}

// RevenueByDay returns per-day settled totals inside a window, ordered
// by day ascending.
func (r *PaymentRepository) RevenueByDay(ctx context.Context, from, to time.Time) ([]models.RevenuePoint, error) {
	const query = `SELECT DATE(paid_at) AS day, COALESCE(SUM(amount), 0) AS amount FROM payments
        WHERE status = 'SUCCESS' AND paid_at >= $1 AND paid_at < $2
        GROUP BY DATE(paid_at) ORDER BY day ASC`
	var points []models.RevenuePoint
	if err := r.db.SelectContext(ctx, &points, query, from, to); err != nil {
		return nil, fmt.Errorf("revenue by day: %w", err)
	}
	return points, nil
}
