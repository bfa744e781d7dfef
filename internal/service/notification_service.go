package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationUserResolver interface {
	FindByMemberID(ctx context.Context, memberID string) (*models.User, error)
	FindByTrainerID(ctx context.Context, trainerID string) (*models.User, error)
}

// NotificationService persists per-user messages. Domain events are
// delivered through a background queue so callers never block on or
// fail because of notification writes.
type NotificationService struct {
	repo   notificationRepository
	users  notificationUserResolver
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the notification service. Call
// StartQueue before dispatching events.
func NewNotificationService(repo notificationRepository, users notificationUserResolver, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, users: users, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.handleJob, jobs.Options{
		Workers:    2,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Logger:     logger,
	})
	return s
}

// StartQueue begins background delivery workers.
func (s *NotificationService) StartQueue(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopQueue drains the delivery workers.
func (s *NotificationService) StopQueue() {
	s.queue.Stop()
}

// List returns a user's notifications and pagination metadata.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	notifications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return notifications, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// MarkRead flags one notification read. Only the owner may do so.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	updated, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead flags every unread notification for a user.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// PaymentSettled notifies a member that a payment went through.
func (s *NotificationService) PaymentSettled(ctx context.Context, memberID string, amount int64) {
	s.dispatchToMember(ctx, memberID, models.NotificationPaymentSettled,
		"Payment received",
		fmt.Sprintf("Your payment of %s was confirmed and your registration is now active.", formatVND(amount)))
}

// PaymentRefunded notifies a member that a payment was refunded.
func (s *NotificationService) PaymentRefunded(ctx context.Context, memberID string, amount int64, reason string) {
	body := fmt.Sprintf("Your payment of %s was refunded.", formatVND(amount))
	if reason != "" {
		body = fmt.Sprintf("%s Reason: %s.", body, reason)
	}
	s.dispatchToMember(ctx, memberID, models.NotificationPaymentRefunded, "Payment refunded", body)
}

// BookingConfirmed notifies a member their session seat is held.
func (s *NotificationService) BookingConfirmed(ctx context.Context, memberID, className string, startsAt time.Time) {
	s.dispatchToMember(ctx, memberID, models.NotificationBookingConfirmed,
		"Booking confirmed",
		fmt.Sprintf("Your seat in %s on %s is confirmed.", className, startsAt.Format("Mon 02 Jan 15:04")))
}

// RegistrationExpired tells a member their registration lapsed.
func (s *NotificationService) RegistrationExpired(ctx context.Context, memberID string) {
	s.dispatchToMember(ctx, memberID, models.NotificationRegistrationEnds,
		"Registration expired",
		"Your registration has ended. Renew at the front desk or online to keep training.")
}

// SalaryPaid notifies a trainer their monthly salary was paid out.
func (s *NotificationService) SalaryPaid(ctx context.Context, trainerID, month string, amount int64) {
	user, err := s.users.FindByTrainerID(ctx, trainerID)
	if err != nil {
		s.logMissingUser("trainer", trainerID, err)
		return
	}
	s.enqueue(models.Notification{
		UserID: user.ID,
		Type:   models.NotificationSalaryPaid,
		Title:  "Salary paid",
		Body:   fmt.Sprintf("Your salary for %s (%s) has been paid.", month, formatVND(amount)),
	})
}

func (s *NotificationService) dispatchToMember(ctx context.Context, memberID string, kind models.NotificationType, title, body string) {
	user, err := s.users.FindByMemberID(ctx, memberID)
	if err != nil {
		s.logMissingUser("member", memberID, err)
		return
	}
	s.enqueue(models.Notification{UserID: user.ID, Type: kind, Title: title, Body: body})
}

func (s *NotificationService) enqueue(notification models.Notification) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Kind:    string(notification.Type),
		Payload: notification,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("type", string(notification.Type)),
			zap.String("user_id", notification.UserID),
			zap.Error(err))
	}
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		s.logger.Error("dropping notification job with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := s.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	return nil
}

func (s *NotificationService) logMissingUser(profile, id string, err error) {
	// Walk-in visitors and imported profiles have no account; skip quietly.
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("no user account for profile", zap.String("profile", profile), zap.String("id", id))
		return
	}
	s.logger.Warn("failed to resolve notification recipient",
		zap.String("profile", profile), zap.String("id", id), zap.Error(err))
}
