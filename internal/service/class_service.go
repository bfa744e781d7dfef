package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.GymClass, error)
	Create(ctx context.Context, class *models.GymClass, slots []models.ClassScheduleSlot) error
	Update(ctx context.Context, class *models.GymClass) error
	SetActive(ctx context.Context, id string, active bool) error
	Slots(ctx context.Context, classID string) ([]models.ClassScheduleSlot, error)
	CreateSessions(ctx context.Context, sessions []models.ClassSession) (int, error)
	FindSessionByID(ctx context.Context, id string) (*models.ClassSessionDetail, error)
	ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.ClassSessionDetail, int, error)
}

type classAccessChecker interface {
	CanManageClass(ctx context.Context, actor models.Actor, classTrainerID string) bool
}

type classTrainerReader interface {
	FindByID(ctx context.Context, id string) (*models.Trainer, error)
}

// ScheduleSlotRequest describes one weekly timetable entry.
type ScheduleSlotRequest struct {
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,len=5"`
	EndTime   string `json:"end_time" validate:"required,len=5"`
}

// CreateClassRequest holds payload for registering a class.
type CreateClassRequest struct {
	Name          string                `json:"name" validate:"required,min=2,max=120"`
	Description   string                `json:"description"`
	TrainerID     string                `json:"trainer_id" validate:"required,uuid4"`
	Capacity      int                   `json:"capacity" validate:"required,min=1,max=500"`
	MonthlyFee    int64                 `json:"monthly_fee" validate:"min=0"`
	FixedSchedule bool                  `json:"fixed_schedule"`
	TermPrice     int64                 `json:"term_price" validate:"min=0"`
	StartDate     *time.Time            `json:"start_date,omitempty"`
	EndDate       *time.Time            `json:"end_date,omitempty"`
	Slots         []ScheduleSlotRequest `json:"slots" validate:"required,min=1,dive"`
}

// UpdateClassRequest holds mutable class fields.
type UpdateClassRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Description *string    `json:"description,omitempty"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
	MonthlyFee  *int64     `json:"monthly_fee,omitempty" validate:"omitempty,min=0"`
	TermPrice   *int64     `json:"term_price,omitempty" validate:"omitempty,min=0"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// GenerateSessionsRequest asks for dated sessions to be rolled out from
// the weekly timetable over an inclusive date range.
type GenerateSessionsRequest struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required"`
}

// ClassService handles group class and session use-cases.
type ClassService struct {
	repo      classRepository
	trainers  classTrainerReader
	access    classAccessChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs the class service.
func NewClassService(repo classRepository, trainers classTrainerReader, access classAccessChecker, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, trainers: trainers, access: access, validator: validate, logger: logger}
}

// List returns classes and pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return classes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a class with its weekly timetable.
func (s *ClassService) Get(ctx context.Context, id string) (*models.GymClass, []models.ClassScheduleSlot, error) {
	class, err := s.findClass(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	slots, err := s.repo.Slots(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedule")
	}
	return class, slots, nil
}

// Create registers a class together with its weekly timetable.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.GymClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	trainer, err := s.trainers.FindByID(ctx, req.TrainerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}
	if !trainer.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "trainer is not active")
	}
	if req.FixedSchedule {
		if req.TermPrice <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fixed-schedule classes require a term price")
		}
		if req.StartDate == nil || req.EndDate == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fixed-schedule classes require start and end dates")
		}
	} else if req.MonthlyFee <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "open classes require a monthly fee")
	}

	slots := make([]models.ClassScheduleSlot, 0, len(req.Slots))
	for _, slot := range req.Slots {
		if err := validateSlotTimes(slot); err != nil {
			return nil, err
		}
		slots = append(slots, models.ClassScheduleSlot{
			Weekday:   time.Weekday(slot.Weekday),
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}

	class := &models.GymClass{
		Name:          req.Name,
		Description:   req.Description,
		TrainerID:     req.TrainerID,
		Capacity:      req.Capacity,
		MonthlyFee:    req.MonthlyFee,
		FixedSchedule: req.FixedSchedule,
		TermPrice:     req.TermPrice,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Active:        true,
	}
	if err := s.repo.Create(ctx, class, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update patches a class. Trainers may only update classes they own.
func (s *ClassService) Update(ctx context.Context, actor models.Actor, id string, req UpdateClassRequest) (*models.GymClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.findClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTrainer && !s.access.CanManageClass(ctx, actor, class.TrainerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "trainers can only manage their own classes")
	}
	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Description != nil {
		class.Description = *req.Description
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.MonthlyFee != nil {
		class.MonthlyFee = *req.MonthlyFee
	}
	if req.TermPrice != nil {
		class.TermPrice = *req.TermPrice
	}
	if req.EndDate != nil {
		class.EndDate = req.EndDate
	}
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Deactivate withdraws a class from new registrations and bookings.
func (s *ClassService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.findClass(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate class")
	}
	return nil
}

// GenerateSessions rolls dated sessions out of the weekly timetable for
// every matching weekday inside [from, to]. Days that already carry a
// session for the class are skipped, so the call is safe to repeat.
func (s *ClassService) GenerateSessions(ctx context.Context, id string, req GenerateSessionsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session range")
	}
	if req.To.Before(req.From) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "range must end on or after its start")
	}
	if req.To.Sub(req.From) > 370*24*time.Hour {
		return 0, appErrors.Clone(appErrors.ErrValidation, "range cannot exceed one year")
	}
	class, err := s.findClass(ctx, id)
	if err != nil {
		return 0, err
	}
	if !class.Active {
		return 0, appErrors.Clone(appErrors.ErrValidation, "class is not active")
	}
	slots, err := s.repo.Slots(ctx, id)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedule")
	}
	if len(slots) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "class has no weekly schedule")
	}

	from, to := req.From, req.To
	if class.StartDate != nil && class.StartDate.After(from) {
		from = *class.StartDate
	}
	if class.EndDate != nil && class.EndDate.Before(to) {
		to = *class.EndDate
	}

	var sessions []models.ClassSession
	for day := startOfDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, slot := range slots {
			if day.Weekday() != slot.Weekday {
				continue
			}
			startsAt, err := combineDayTime(day, slot.StartTime)
			if err != nil {
				return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed schedule slot")
			}
			endsAt, err := combineDayTime(day, slot.EndTime)
			if err != nil {
				return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed schedule slot")
			}
			sessions = append(sessions, models.ClassSession{
				ClassID:  class.ID,
				StartsAt: startsAt,
				EndsAt:   endsAt,
				Capacity: class.Capacity,
			})
		}
	}
	if len(sessions) == 0 {
		return 0, nil
	}
	created, err := s.repo.CreateSessions(ctx, sessions)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sessions")
	}
	s.logger.Info("generated class sessions",
		zap.String("class_id", class.ID),
		zap.Int("created", created),
		zap.Int("skipped", len(sessions)-created))
	return created, nil
}

// ListSessions returns dated sessions and pagination metadata.
func (s *ClassService) ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.ClassSessionDetail, *models.Pagination, error) {
	sessions, total, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetSession returns one session with its class and trainer context.
func (s *ClassService) GetSession(ctx context.Context, id string) (*models.ClassSessionDetail, error) {
	session, err := s.repo.FindSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *ClassService) findClass(ctx context.Context, id string) (*models.GymClass, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func validateSlotTimes(slot ScheduleSlotRequest) error {
	start, err := parseClockTime(slot.StartTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "slot start time must be HH:MM")
	}
	end, err := parseClockTime(slot.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "slot end time must be HH:MM")
	}
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrValidation, "slot must end after it starts")
	}
	return nil
}

func parseClockTime(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}

func combineDayTime(day time.Time, clock string) (time.Time, error) {
	t, err := parseClockTime(clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
