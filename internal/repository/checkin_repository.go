package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-core-api/internal/models"
)

// CheckInRepository handles gym entry events and the face descriptors
// used to identify members at the door.
type CheckInRepository struct {
	db *sqlx.DB
}

// NewCheckInRepository constructs the repository.
func NewCheckInRepository(db *sqlx.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Create persists an entry event.
func (r *CheckInRepository) Create(ctx context.Context, checkIn *models.CheckIn) error {
	if checkIn.ID == "" {
		checkIn.ID = uuid.NewString()
	}
	if checkIn.CheckedAt.IsZero() {
		checkIn.CheckedAt = time.Now().UTC()
	}
	const query = `INSERT INTO check_ins (id, member_id, walkin_id, session_id, source, checked_at)
        VALUES (:id, :member_id, :walkin_id, :session_id, :source, :checked_at)`
	if _, err := r.db.NamedExecContext(ctx, query, checkIn); err != nil {
		return fmt.Errorf("create check-in: %w", err)
	}
	return nil
}

// List returns entry events with member context.
func (r *CheckInRepository) List(ctx context.Context, filter models.CheckInFilter) ([]models.CheckInDetail, int, error) {
	base := `FROM check_ins ci LEFT JOIN members m ON m.id = ci.member_id`
	var conditions []string
	var args []interface{}

	if filter.MemberID != "" {
		conditions = append(conditions, fmt.Sprintf("ci.member_id = $%d", len(args)+1))
		args = append(args, filter.MemberID)
	}
	if filter.Source != "" {
		conditions = append(conditions, fmt.Sprintf("ci.source = $%d", len(args)+1))
		args = append(args, filter.Source)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("ci.checked_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("ci.checked_at < $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT ci.id, ci.member_id, ci.walkin_id, ci.session_id, ci.source, ci.checked_at,
        m.full_name AS member_name %s%s ORDER BY ci.checked_at DESC LIMIT %d OFFSET %d`,
		base, clause, size, (page-1)*size)

	var checkIns []models.CheckInDetail
	if err := r.db.SelectContext(ctx, &checkIns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list check-ins: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count check-ins: %w", err)
	}
	return checkIns, total, nil
}

// CountBetween returns entry events inside a window.
func (r *CheckInRepository) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM check_ins WHERE checked_at >= $1 AND checked_at < $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("count check-ins: %w", err)
	}
	return count, nil
}

// UpsertFaceProfile stores or replaces the descriptor for a member. The
// vector is serialised as JSON so dimensionality stays flexible.
func (r *CheckInRepository) UpsertFaceProfile(ctx context.Context, profile *models.FaceProfile) error {
	raw, err := json.Marshal(profile.Descriptor)
	if err != nil {
		return fmt.Errorf("encode face descriptor: %w", err)
	}
	profile.RawDescriptor = raw
	profile.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO face_profiles (member_id, descriptor, updated_at)
        VALUES (:member_id, :descriptor, :updated_at)
        ON CONFLICT (member_id) DO UPDATE SET descriptor = EXCLUDED.descriptor, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert face profile: %w", err)
	}
	return nil
}

// ListFaceProfiles loads every stored descriptor for matching.
func (r *CheckInRepository) ListFaceProfiles(ctx context.Context) ([]models.FaceProfile, error) {
	const query = `SELECT member_id, descriptor, updated_at FROM face_profiles`
	var profiles []models.FaceProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list face profiles: %w", err)
	}
	for i := range profiles {
		if len(profiles[i].RawDescriptor) == 0 {
			continue
		}
		if err := json.Unmarshal(profiles[i].RawDescriptor, &profiles[i].Descriptor); err != nil {
			return nil, fmt.Errorf("decode face descriptor for %s: %w", profiles[i].MemberID, err)
		}
	}
	return profiles, nil
}

// DeleteFaceProfile removes the stored descriptor for a member.
func (r *CheckInRepository) DeleteFaceProfile(ctx context.Context, memberID string) error {
	const query = `DELETE FROM face_profiles WHERE member_id = $1`
	if _, err := r.db.ExecContext(ctx, query, memberID); err != nil {
		return fmt.Errorf("delete face profile: %w", err)
	}
	return nil
}
