package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Book(ctx context.Context, memberID, sessionID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string) (bool, error)
}

type sessionReader interface {
	FindSessionByID(ctx context.Context, id string) (*models.ClassSessionDetail, error)
}

type classRegistrationReader interface {
	FindActiveClassRegistration(ctx context.Context, memberID, classID string, at time.Time) (*models.Registration, error)
}

type bookingNotifier interface {
	BookingConfirmed(ctx context.Context, memberID, className string, startsAt time.Time)
}

// BookingService reserves and releases class session seats.
type BookingService struct {
	bookings      bookingRepository
	sessions      sessionReader
	registrations classRegistrationReader
	notifier      bookingNotifier
	cancelCutoff  time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewBookingService constructs BookingService. cancelCutoff is how close
// to the session start a booking may still be cancelled.
func NewBookingService(bookings bookingRepository, sessions sessionReader, registrations classRegistrationReader, notifier bookingNotifier, cancelCutoff time.Duration, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:      bookings,
		sessions:      sessions,
		registrations: registrations,
		notifier:      notifier,
		cancelCutoff:  cancelCutoff,
		logger:        logger,
		now:           time.Now,
	}
}

// List returns bookings with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, *models.Pagination, error) {
	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// BookSession reserves a seat for a member holding an ACTIVE
// registration covering the session's class. All capacity arbitration
// happens in the storage layer's conditional update.
func (s *BookingService) BookSession(ctx context.Context, memberID, sessionID string) (*models.Booking, error) {
	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Canceled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session is cancelled")
	}
	if session.StartsAt.Before(s.now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session already started")
	}

	if _, err := s.registrations.FindActiveClassRegistration(ctx, memberID, session.ClassID, session.StartsAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "member has no active registration for this class")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}

	booking, err := s.bookings.Book(ctx, memberID, sessionID)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to book session")
	}

	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, memberID, session.ClassName, session.StartsAt)
	}
	return booking, nil
}

// CancelBooking releases the seat when the booking is still BOOKED and
// the session has not reached the cancellation cutoff.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, actor models.Actor) (bool, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	if actor.Role == models.RoleMember {
		if actor.MemberID == nil || *actor.MemberID != booking.MemberID {
			return false, appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another member")
		}
	}

	session, err := s.sessions.FindSessionByID(ctx, booking.SessionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session != nil && s.cancelCutoff > 0 && s.now().UTC().After(session.StartsAt.Add(-s.cancelCutoff)) {
		return false, appErrors.Clone(appErrors.ErrPreconditionFailed, "too close to session start to cancel")
	}

	cancelled, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
	}
	return cancelled, nil
}
