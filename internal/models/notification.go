package models

import "time"

// NotificationType classifies persisted notifications.
type NotificationType string

const (
	NotificationPaymentSettled   NotificationType = "PAYMENT_SETTLED"
	NotificationPaymentRefunded  NotificationType = "PAYMENT_REFUNDED"
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationSalaryPaid       NotificationType = "SALARY_PAID"
	NotificationRegistrationEnds NotificationType = "REGISTRATION_EXPIRED"
)

// Notification is a persisted per-user message.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Body      string           `db:"body" json:"body"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter captures list criteria for notifications.
type NotificationFilter struct {
	UserID   string
	Unread   *bool
	Page     int
	PageSize int
}
