package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type checkInRepository interface {
	Create(ctx context.Context, checkIn *models.CheckIn) error
	List(ctx context.Context, filter models.CheckInFilter) ([]models.CheckInDetail, int, error)
	UpsertFaceProfile(ctx context.Context, profile *models.FaceProfile) error
	ListFaceProfiles(ctx context.Context) ([]models.FaceProfile, error)
	DeleteFaceProfile(ctx context.Context, memberID string) error
}

type activeRegistrationReader interface {
	HasActiveForMember(ctx context.Context, memberID string, at time.Time) (bool, error)
}

type attendanceMarker interface {
	MarkAttended(ctx context.Context, memberID, sessionID string) (bool, error)
}

type walkInReader interface {
	FindByID(ctx context.Context, id string) (*models.WalkIn, error)
}

// CheckInService records gym entries, identified manually or by a face
// descriptor supplied by the capture device.
type CheckInService struct {
	repo          checkInRepository
	registrations activeRegistrationReader
	bookings      attendanceMarker
	walkIns       walkInReader
	faceEnabled   bool
	faceThreshold float64
	logger        *zap.Logger
	now           func() time.Time
}

// NewCheckInService constructs CheckInService. faceThreshold is the
// maximum squared-Euclidean distance accepted as a match.
func NewCheckInService(repo checkInRepository, registrations activeRegistrationReader, bookings attendanceMarker, walkIns walkInReader, faceEnabled bool, faceThreshold float64, logger *zap.Logger) *CheckInService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInService{
		repo:          repo,
		registrations: registrations,
		bookings:      bookings,
		walkIns:       walkIns,
		faceEnabled:   faceEnabled,
		faceThreshold: faceThreshold,
		logger:        logger,
		now:           time.Now,
	}
}

// List returns entry events with pagination metadata.
func (s *CheckInService) List(ctx context.Context, filter models.CheckInFilter) ([]models.CheckInDetail, *models.Pagination, error) {
	checkIns, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list check-ins")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return checkIns, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ManualCheckIn admits a member identified at the desk. The member must
// hold an ACTIVE registration covering now; a session ID additionally
// flips the member's booking to ATTENDED.
func (s *CheckInService) ManualCheckIn(ctx context.Context, memberID string, sessionID *string) (*models.CheckIn, error) {
	return s.admitMember(ctx, memberID, sessionID, models.CheckInSourceManual)
}

// FaceCheckIn admits the member whose stored descriptor is nearest to
// the captured one, provided the distance clears the threshold.
func (s *CheckInService) FaceCheckIn(ctx context.Context, descriptor []float64, sessionID *string) (*models.CheckIn, error) {
	if !s.faceEnabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "face check-in is disabled")
	}
	if len(descriptor) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "descriptor is required")
	}

	memberID, err := s.matchFace(ctx, descriptor)
	if err != nil {
		return nil, err
	}
	return s.admitMember(ctx, memberID, sessionID, models.CheckInSourceFace)
}

// WalkInCheckIn admits a guest holding a same-day walk-in pass.
func (s *CheckInService) WalkInCheckIn(ctx context.Context, walkInID string) (*models.CheckIn, error) {
	walkIn, err := s.walkIns.FindByID(ctx, walkInID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "walk-in pass not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load walk-in pass")
	}

	now := s.now().UTC()
	if !sameDay(walkIn.VisitDate, now) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "walk-in pass is not valid today")
	}

	checkIn := &models.CheckIn{
		WalkInID:  &walkIn.ID,
		Source:    models.CheckInSourceManual,
		CheckedAt: now,
	}
	if err := s.repo.Create(ctx, checkIn); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-in")
	}
	return checkIn, nil
}

// EnrollFace stores or replaces a member's face descriptor.
func (s *CheckInService) EnrollFace(ctx context.Context, memberID string, descriptor []float64) error {
	if len(descriptor) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "descriptor is required")
	}
	profile := &models.FaceProfile{MemberID: memberID, Descriptor: descriptor}
	if err := s.repo.UpsertFaceProfile(ctx, profile); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store face profile")
	}
	return nil
}

// RemoveFace deletes a member's stored descriptor.
func (s *CheckInService) RemoveFace(ctx context.Context, memberID string) error {
	if err := s.repo.DeleteFaceProfile(ctx, memberID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete face profile")
	}
	return nil
}

func (s *CheckInService) admitMember(ctx context.Context, memberID string, sessionID *string, source models.CheckInSource) (*models.CheckIn, error) {
	now := s.now().UTC()
	active, err := s.registrations.HasActiveForMember(ctx, memberID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if !active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "member has no active registration")
	}

	checkIn := &models.CheckIn{
		MemberID:  &memberID,
		SessionID: sessionID,
		Source:    source,
		CheckedAt: now,
	}
	if err := s.repo.Create(ctx, checkIn); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-in")
	}

	if sessionID != nil {
		marked, err := s.bookings.MarkAttended(ctx, memberID, *sessionID)
		if err != nil {
			s.logger.Warn("failed to mark booking attended",
				zap.String("member_id", memberID),
				zap.String("session_id", *sessionID),
				zap.Error(err))
		} else if !marked {
			s.logger.Info("check-in without a live booking",
				zap.String("member_id", memberID),
				zap.String("session_id", *sessionID))
		}
	}
	return checkIn, nil
}

func (s *CheckInService) matchFace(ctx context.Context, descriptor []float64) (string, error) {
	profiles, err := s.repo.ListFaceProfiles(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load face profiles")
	}

	best := ""
	bestDistance := math.MaxFloat64
	for _, profile := range profiles {
		if len(profile.Descriptor) != len(descriptor) {
			continue
		}
		distance := squaredDistance(profile.Descriptor, descriptor)
		if distance < bestDistance {
			bestDistance = distance
			best = profile.MemberID
		}
	}

	if best == "" || bestDistance > s.faceThreshold {
		return "", appErrors.Clone(appErrors.ErrFaceNotRecognized, "")
	}
	return best, nil
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
