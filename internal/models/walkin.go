package models

import "time"

// WalkIn is a non-member guest purchasing a single-visit pass at a fixed
// price. The linked payment has no registration.
type WalkIn struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     string    `db:"phone" json:"phone"`
	PaymentID string    `db:"payment_id" json:"payment_id"`
	VisitDate time.Time `db:"visit_date" json:"visit_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WalkInFilter captures list criteria for walk-in passes.
type WalkInFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}
