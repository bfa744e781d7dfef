package models

import "time"

// BookingStatus enumerates class-session booking states.
type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusAttended  BookingStatus = "ATTENDED"
)

// Booking reserves a seat for a member in a class session. At most one
// non-cancelled booking per (member, session).
type Booking struct {
	ID          string        `db:"id" json:"id"`
	MemberID    string        `db:"member_id" json:"member_id"`
	SessionID   string        `db:"session_id" json:"session_id"`
	Status      BookingStatus `db:"status" json:"status"`
	BookedAt    time.Time     `db:"booked_at" json:"booked_at"`
	CancelledAt *time.Time    `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// BookingDetail adds session and member context.
type BookingDetail struct {
	Booking
	MemberName string    `db:"member_name" json:"member_name"`
	ClassID    string    `db:"class_id" json:"class_id"`
	ClassName  string    `db:"class_name" json:"class_name"`
	StartsAt   time.Time `db:"starts_at" json:"starts_at"`
}

// BookingFilter captures list criteria for bookings.
type BookingFilter struct {
	MemberID  string
	SessionID string
	ClassID   string
	Status    BookingStatus
	Page      int
	PageSize  int
}
