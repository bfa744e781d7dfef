package models

import "time"

// RegistrationStatus enumerates the registration lifecycle. Transitions
// are monotonic: PENDING_PAYMENT -> ACTIVE -> (EXPIRED | CANCELED), and
// PENDING_PAYMENT -> CANCELED when payment never settles.
type RegistrationStatus string

const (
	RegistrationStatusPendingPayment RegistrationStatus = "PENDING_PAYMENT"
	RegistrationStatusActive         RegistrationStatus = "ACTIVE"
	RegistrationStatusExpired        RegistrationStatus = "EXPIRED"
	RegistrationStatusCanceled       RegistrationStatus = "CANCELED"
)

// Valid reports whether the status is a supported value.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusPendingPayment, RegistrationStatusActive, RegistrationStatusExpired, RegistrationStatusCanceled:
		return true
	default:
		return false
	}
}

// RegistrationKind distinguishes what the member registered for.
type RegistrationKind string

const (
	RegistrationKindPackage RegistrationKind = "PACKAGE"
	RegistrationKindClass   RegistrationKind = "CLASS"
)

// Registration links a member to either a package or a class. Exactly one
// of PackageID and ClassID is set. Fee is fixed at creation and never
// recomputed after activation.
type Registration struct {
	ID         string             `db:"id" json:"id"`
	MemberID   string             `db:"member_id" json:"member_id"`
	Kind       RegistrationKind   `db:"kind" json:"kind"`
	PackageID  *string            `db:"package_id" json:"package_id,omitempty"`
	ClassID    *string            `db:"class_id" json:"class_id,omitempty"`
	StartDate  time.Time          `db:"start_date" json:"start_date"`
	EndDate    time.Time          `db:"end_date" json:"end_date"`
	Months     int                `db:"months" json:"months"`
	Fee        int64              `db:"fee" json:"fee"`
	Status     RegistrationStatus `db:"status" json:"status"`
	StatusNote string             `db:"status_note" json:"status_note"`
	PromoID    *string            `db:"promo_id" json:"promo_id,omitempty"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `db:"updated_at" json:"updated_at"`
}

// RegistrationDetail adds member/package/class context for list views.
type RegistrationDetail struct {
	Registration
	MemberName  string  `db:"member_name" json:"member_name"`
	PackageName *string `db:"package_name" json:"package_name,omitempty"`
	ClassName   *string `db:"class_name" json:"class_name,omitempty"`
}

// RegistrationFilter captures list criteria for registrations.
type RegistrationFilter struct {
	MemberID  string
	Kind      RegistrationKind
	Status    RegistrationStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
