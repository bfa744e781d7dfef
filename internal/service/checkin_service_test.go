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

type mockCheckInRepo struct {
	profiles []models.FaceProfile
	created  []models.CheckIn
}

func (m *mockCheckInRepo) Create(ctx context.Context, checkIn *models.CheckIn) error {
	if checkIn.ID == "" {
		checkIn.ID = "new-checkin"
	}
	m.created = append(m.created, *checkIn)
	return nil
}

func (m *mockCheckInRepo) List(ctx context.Context, filter models.CheckInFilter) ([]models.CheckInDetail, int, error) {
	return nil, 0, nil
}

func (m *mockCheckInRepo) UpsertFaceProfile(ctx context.Context, profile *models.FaceProfile) error {
	m.profiles = append(m.profiles, *profile)
	return nil
}

func (m *mockCheckInRepo) ListFaceProfiles(ctx context.Context) ([]models.FaceProfile, error) {
	return m.profiles, nil
}

func (m *mockCheckInRepo) DeleteFaceProfile(ctx context.Context, memberID string) error {
	return nil
}

type mockActiveRegistrationReader struct {
	active map[string]bool
}

func (m *mockActiveRegistrationReader) HasActiveForMember(ctx context.Context, memberID string, at time.Time) (bool, error) {
	return m.active[memberID], nil
}

type mockAttendanceMarker struct {
	marked []string
	ok     bool
}

func (m *mockAttendanceMarker) MarkAttended(ctx context.Context, memberID, sessionID string) (bool, error) {
	m.marked = append(m.marked, memberID+":"+sessionID)
	return m.ok, nil
}

type mockWalkInReader struct {
	walkIns map[string]*models.WalkIn
}

func (m *mockWalkInReader) FindByID(ctx context.Context, id string) (*models.WalkIn, error) {
	if w, ok := m.walkIns[id]; ok {
		return w, nil
	}
	return nil, sql.ErrNoRows
}

func newCheckInServiceForTest(repo *mockCheckInRepo, regs *mockActiveRegistrationReader, bookings *mockAttendanceMarker, walkIns *mockWalkInReader) *CheckInService {
	svc := NewCheckInService(repo, regs, bookings, walkIns, true, 0.36, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestManualCheckInRequiresActiveRegistration(t *testing.T) {
	repo := &mockCheckInRepo{}
	regs := &mockActiveRegistrationReader{active: map[string]bool{}}

	svc := newCheckInServiceForTest(repo, regs, &mockAttendanceMarker{}, &mockWalkInReader{})

	_, err := svc.ManualCheckIn(context.Background(), "member-1", nil)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestManualCheckInMarksBookingAttended(t *testing.T) {
	repo := &mockCheckInRepo{}
	regs := &mockActiveRegistrationReader{active: map[string]bool{"member-1": true}}
	bookings := &mockAttendanceMarker{ok: true}
	sessionID := "session-1"

	svc := newCheckInServiceForTest(repo, regs, bookings, &mockWalkInReader{})

	checkIn, err := svc.ManualCheckIn(context.Background(), "member-1", &sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.CheckInSourceManual, checkIn.Source)
	assert.Equal(t, []string{"member-1:session-1"}, bookings.marked)
	require.Len(t, repo.created, 1)
}

func TestFaceCheckInMatchesNearestProfile(t *testing.T) {
	repo := &mockCheckInRepo{profiles: []models.FaceProfile{
		{MemberID: "member-1", Descriptor: []float64{0.1, 0.2, 0.3}},
		{MemberID: "member-2", Descriptor: []float64{0.9, 0.8, 0.7}},
	}}
	regs := &mockActiveRegistrationReader{active: map[string]bool{"member-2": true}}

	svc := newCheckInServiceForTest(repo, regs, &mockAttendanceMarker{}, &mockWalkInReader{})

	checkIn, err := svc.FaceCheckIn(context.Background(), []float64{0.88, 0.79, 0.72}, nil)
	require.NoError(t, err)
	require.NotNil(t, checkIn.MemberID)
	assert.Equal(t, "member-2", *checkIn.MemberID)
	assert.Equal(t, models.CheckInSourceFace, checkIn.Source)
}

func TestFaceCheckInRejectsDistantDescriptor(t *testing.T) {
	repo := &mockCheckInRepo{profiles: []models.FaceProfile{
		{MemberID: "member-1", Descriptor: []float64{0.1, 0.2, 0.3}},
	}}
	regs := &mockActiveRegistrationReader{active: map[string]bool{"member-1": true}}

	svc := newCheckInServiceForTest(repo, regs, &mockAttendanceMarker{}, &mockWalkInReader{})

	_, err := svc.FaceCheckIn(context.Background(), []float64{0.9, 0.9, 0.9}, nil)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrFaceNotRecognized.Code, appErr.Code)
}

func TestFaceCheckInSkipsMismatchedDescriptorLength(t *testing.T) {
	repo := &mockCheckInRepo{profiles: []models.FaceProfile{
		{MemberID: "member-1", Descriptor: []float64{0.1, 0.2}},
	}}
	regs := &mockActiveRegistrationReader{active: map[string]bool{"member-1": true}}

	svc := newCheckInServiceForTest(repo, regs, &mockAttendanceMarker{}, &mockWalkInReader{})

	_, err := svc.FaceCheckIn(context.Background(), []float64{0.1, 0.2, 0.3}, nil)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrFaceNotRecognized.Code, appErr.Code)
}

func TestWalkInCheckInSameDayOnly(t *testing.T) {
	repo := &mockCheckInRepo{}
	walkIns := &mockWalkInReader{walkIns: map[string]*models.WalkIn{
		"walkin-1": {ID: "walkin-1", FullName: "Guest", VisitDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		"walkin-2": {ID: "walkin-2", FullName: "Guest", VisitDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)},
	}}

	svc := newCheckInServiceForTest(repo, &mockActiveRegistrationReader{}, &mockAttendanceMarker{}, walkIns)

	checkIn, err := svc.WalkInCheckIn(context.Background(), "walkin-1")
	require.NoError(t, err)
	require.NotNil(t, checkIn.WalkInID)
	assert.Equal(t, "walkin-1", *checkIn.WalkInID)

	_, err = svc.WalkInCheckIn(context.Background(), "walkin-2")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}
