package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type mockBookingRepo struct {
	bookings  map[string]models.Booking
	bookErr   error
	cancelled []string
	cancelOK  bool
}

func (m *mockBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	return nil, 0, nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if booking, ok := m.bookings[id]; ok {
		return &booking, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingRepo) Book(ctx context.Context, memberID, sessionID string) (*models.Booking, error) {
	if m.bookErr != nil {
		return nil, m.bookErr
	}
	return &models.Booking{ID: "new-booking", MemberID: memberID, SessionID: sessionID, Status: models.BookingStatusBooked}, nil
}

func (m *mockBookingRepo) Cancel(ctx context.Context, bookingID string) (bool, error) {
	m.cancelled = append(m.cancelled, bookingID)
	return m.cancelOK, nil
}

type mockSessionReader struct {
	sessions map[string]*models.ClassSessionDetail
}

func (m *mockSessionReader) FindSessionByID(ctx context.Context, id string) (*models.ClassSessionDetail, error) {
	if session, ok := m.sessions[id]; ok {
		return session, nil
	}
	return nil, sql.ErrNoRows
}

type mockClassRegistrationReader struct {
	registered map[string]bool // memberID+classID
}

func (m *mockClassRegistrationReader) FindActiveClassRegistration(ctx context.Context, memberID, classID string, at time.Time) (*models.Registration, error) {
	if m.registered[memberID+classID] {
		return &models.Registration{ID: "reg-1", MemberID: memberID, Status: models.RegistrationStatusActive}, nil
	}
	return nil, sql.ErrNoRows
}

type mockBookingNotifier struct {
	confirmed []string
}

func (m *mockBookingNotifier) BookingConfirmed(ctx context.Context, memberID, className string, startsAt time.Time) {
	m.confirmed = append(m.confirmed, memberID)
}

func futureSession(id string) *models.ClassSessionDetail {
	return &models.ClassSessionDetail{
		ClassSession: models.ClassSession{
			ID:       id,
			ClassID:  "class-1",
			StartsAt: time.Date(2025, 6, 16, 18, 0, 0, 0, time.UTC),
			Capacity: 20,
		},
		ClassName: "Yoga",
	}
}

func newBookingServiceForTest(repo *mockBookingRepo, sessions *mockSessionReader, regs *mockClassRegistrationReader, notifier *mockBookingNotifier) *BookingService {
	svc := NewBookingService(repo, sessions, regs, notifier, 2*time.Hour, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestBookSessionConfirmsAndNotifies(t *testing.T) {
	sessions := &mockSessionReader{sessions: map[string]*models.ClassSessionDetail{"session-1": futureSession("session-1")}}
	regs := &mockClassRegistrationReader{registered: map[string]bool{"member-1class-1": true}}
	notifier := &mockBookingNotifier{}

	svc := newBookingServiceForTest(&mockBookingRepo{}, sessions, regs, notifier)

	booking, err := svc.BookSession(context.Background(), "member-1", "session-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusBooked, booking.Status)
	assert.Equal(t, []string{"member-1"}, notifier.confirmed)
}

func TestBookSessionRequiresClassRegistration(t *testing.T) {
	sessions := &mockSessionReader{sessions: map[string]*models.ClassSessionDetail{"session-1": futureSession("session-1")}}
	regs := &mockClassRegistrationReader{}

	svc := newBookingServiceForTest(&mockBookingRepo{}, sessions, regs, &mockBookingNotifier{})

	_, err := svc.BookSession(context.Background(), "member-1", "session-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestBookSessionPassesThroughFullError(t *testing.T) {
	sessions := &mockSessionReader{sessions: map[string]*models.ClassSessionDetail{"session-1": futureSession("session-1")}}
	regs := &mockClassRegistrationReader{registered: map[string]bool{"member-1class-1": true}}
	repo := &mockBookingRepo{bookErr: appErrors.Clone(appErrors.ErrClassFull, "")}
	notifier := &mockBookingNotifier{}

	svc := newBookingServiceForTest(repo, sessions, regs, notifier)

	_, err := svc.BookSession(context.Background(), "member-1", "session-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrClassFull.Code, appErr.Code)
	assert.Empty(t, notifier.confirmed)
}

func TestBookSessionRejectsStartedSession(t *testing.T) {
	past := futureSession("session-1")
	past.StartsAt = time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	sessions := &mockSessionReader{sessions: map[string]*models.ClassSessionDetail{"session-1": past}}
	regs := &mockClassRegistrationReader{registered: map[string]bool{"member-1class-1": true}}

	svc := newBookingServiceForTest(&mockBookingRepo{}, sessions, regs, &mockBookingNotifier{})

	_, err := svc.BookSession(context.Background(), "member-1", "session-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestCancelBookingOwnBookingOnly(t *testing.T) {
	repo := &mockBookingRepo{
		bookings: map[string]models.Booking{
			"booking-1": {ID: "booking-1", MemberID: "member-1", SessionID: "session-1", Status: models.BookingStatusBooked},
		},
		cancelOK: true,
	}
	sessions := &mockSessionReader{sessions: map[string]*models.ClassSessionDetail{"session-1": futureSession("session-1")}}

	svc := newBookingServiceForTest(repo, sessions, &mockClassRegistrationReader{}, &mockBookingNotifier{})

	otherMember := "member-2"
	_, err := svc.CancelBooking(context.Background(), "booking-1", models.Actor{Role: models.RoleMember, MemberID: &otherMember})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	owner := "member-1"
	cancelled, err := svc.CancelBooking(context.Background(), "booking-1", models.Actor{Role: models.RoleMember, MemberID: &owner})
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestCancelBookingRejectsInsideCutoff(t *testing.T) {
	soon := futureSession("session-1")
	soon.StartsAt = time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{
		bookings: map[string]models.Booking{
			"booking-1": {ID: "booking-1", MemberID: "member-1", SessionID: "session-1", Status: models.BookingStatusBooked},
		},
	}
	sessions := &mockSessionReader{sessions: map[string]*models.ClassSessionDetail{"session-1": soon}}

	svc := newBookingServiceForTest(repo, sessions, &mockClassRegistrationReader{}, &mockBookingNotifier{})

	_, err := svc.CancelBooking(context.Background(), "booking-1", models.Actor{Role: models.RoleAdmin})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Empty(t, repo.cancelled)
}
