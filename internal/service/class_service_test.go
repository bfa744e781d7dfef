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

type mockClassRepo struct {
	classes  map[string]*models.GymClass
	slots    map[string][]models.ClassScheduleSlot
	created  []models.ClassSession
	skip     int
	updated  *models.GymClass
	sessions []models.ClassSessionDetail
}

func (m *mockClassRepo) List(_ context.Context, _ models.ClassFilter) ([]models.ClassDetail, int, error) {
	return nil, 0, nil
}

func (m *mockClassRepo) FindByID(_ context.Context, id string) (*models.GymClass, error) {
	class, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *class
	return &copied, nil
}

func (m *mockClassRepo) Create(_ context.Context, class *models.GymClass, slots []models.ClassScheduleSlot) error {
	class.ID = "new-class"
	if m.classes == nil {
		m.classes = map[string]*models.GymClass{}
	}
	m.classes[class.ID] = class
	if m.slots == nil {
		m.slots = map[string][]models.ClassScheduleSlot{}
	}
	m.slots[class.ID] = slots
	return nil
}

func (m *mockClassRepo) Update(_ context.Context, class *models.GymClass) error {
	m.updated = class
	return nil
}

func (m *mockClassRepo) SetActive(_ context.Context, id string, active bool) error {
	if class, ok := m.classes[id]; ok {
		class.Active = active
	}
	return nil
}

func (m *mockClassRepo) Slots(_ context.Context, classID string) ([]models.ClassScheduleSlot, error) {
	return m.slots[classID], nil
}

func (m *mockClassRepo) CreateSessions(_ context.Context, sessions []models.ClassSession) (int, error) {
	m.created = append(m.created, sessions...)
	return len(sessions) - m.skip, nil
}

func (m *mockClassRepo) FindSessionByID(_ context.Context, _ string) (*models.ClassSessionDetail, error) {
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) ListSessions(_ context.Context, _ models.SessionFilter) ([]models.ClassSessionDetail, int, error) {
	return m.sessions, len(m.sessions), nil
}

type mockClassAccess struct {
	allow bool
}

func (m *mockClassAccess) CanManageClass(_ context.Context, _ models.Actor, _ string) bool {
	return m.allow
}

type mockClassTrainerReader struct {
	trainers map[string]*models.Trainer
}

func (m *mockClassTrainerReader) FindByID(_ context.Context, id string) (*models.Trainer, error) {
	trainer, ok := m.trainers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return trainer, nil
}

func yogaClass() *models.GymClass {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	return &models.GymClass{
		ID:            "class-1",
		Name:          "Yoga",
		TrainerID:     "trainer-1",
		Capacity:      20,
		FixedSchedule: true,
		TermPrice:     2000000,
		StartDate:     &start,
		EndDate:       &end,
		Active:        true,
	}
}

func TestGenerateSessionsExpandsWeeklySlots(t *testing.T) {
	repo := &mockClassRepo{
		classes: map[string]*models.GymClass{"class-1": yogaClass()},
		slots: map[string][]models.ClassScheduleSlot{
			"class-1": {
				{Weekday: time.Monday, StartTime: "18:00", EndTime: "19:30"},
				{Weekday: time.Wednesday, StartTime: "18:00", EndTime: "19:30"},
			},
		},
	}
	svc := NewClassService(repo, &mockClassTrainerReader{}, &mockClassAccess{}, nil, nil)

	// 2025-06-02 is a Monday, so two full weeks yield 2 Mondays and 2 Wednesdays.
	created, err := svc.GenerateSessions(context.Background(), "class-1", GenerateSessionsRequest{
		From: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, 4, created)
	require.Len(t, repo.created, 4)
	first := repo.created[0]
	assert.Equal(t, "class-1", first.ClassID)
	assert.Equal(t, time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC), first.StartsAt)
	assert.Equal(t, time.Date(2025, 6, 2, 19, 30, 0, 0, time.UTC), first.EndsAt)
	assert.Equal(t, 20, first.Capacity)
}

func TestGenerateSessionsClampsToClassDates(t *testing.T) {
	repo := &mockClassRepo{
		classes: map[string]*models.GymClass{"class-1": yogaClass()},
		slots: map[string][]models.ClassScheduleSlot{
			"class-1": {{Weekday: time.Monday, StartTime: "18:00", EndTime: "19:30"}},
		},
	}
	svc := NewClassService(repo, &mockClassTrainerReader{}, &mockClassAccess{}, nil, nil)

	// The request reaches past the class end date; only Mondays up to
	// 2025-08-31 may be produced. September Mondays must not appear.
	created, err := svc.GenerateSessions(context.Background(), "class-1", GenerateSessionsRequest{
		From: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, created)
	for _, session := range repo.created {
		assert.True(t, session.StartsAt.Before(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
	}
}

func TestGenerateSessionsRejectsInactiveClass(t *testing.T) {
	class := yogaClass()
	class.Active = false
	repo := &mockClassRepo{classes: map[string]*models.GymClass{"class-1": class}}
	svc := NewClassService(repo, &mockClassTrainerReader{}, &mockClassAccess{}, nil, nil)

	_, err := svc.GenerateSessions(context.Background(), "class-1", GenerateSessionsRequest{
		From: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGenerateSessionsRejectsOversizedRange(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]*models.GymClass{"class-1": yogaClass()}}
	svc := NewClassService(repo, &mockClassTrainerReader{}, &mockClassAccess{}, nil, nil)

	_, err := svc.GenerateSessions(context.Background(), "class-1", GenerateSessionsRequest{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateClassRequiresTermPriceWhenFixed(t *testing.T) {
	trainers := &mockClassTrainerReader{trainers: map[string]*models.Trainer{
		"8f14e45f-ceea-4e67-b2c8-1f0d5a4b9c01": {ID: "8f14e45f-ceea-4e67-b2c8-1f0d5a4b9c01", Active: true},
	}}
	svc := NewClassService(&mockClassRepo{}, trainers, &mockClassAccess{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateClassRequest{
		Name:          "Boxing",
		TrainerID:     "8f14e45f-ceea-4e67-b2c8-1f0d5a4b9c01",
		Capacity:      15,
		FixedSchedule: true,
		Slots:         []ScheduleSlotRequest{{Weekday: 2, StartTime: "07:00", EndTime: "08:00"}},
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateClassDeniesForeignTrainer(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]*models.GymClass{"class-1": yogaClass()}}
	svc := NewClassService(repo, &mockClassTrainerReader{}, &mockClassAccess{allow: false}, nil, nil)

	name := "Hot Yoga"
	trainerID := "trainer-2"
	actor := models.Actor{UserID: "user-2", Role: models.RoleTrainer, TrainerID: &trainerID}
	_, err := svc.Update(context.Background(), actor, "class-1", UpdateClassRequest{Name: &name})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Nil(t, repo.updated)
}
