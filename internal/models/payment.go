package models

import "time"

// PaymentStatus enumerates payment settlement states. A payment moves
// PENDING -> SUCCESS on settlement and SUCCESS -> REFUND on refund,
// never backward.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusRefund  PaymentStatus = "REFUND"
)

// PaymentMethod enumerates supported settlement channels.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "CASH"
	PaymentMethodVNPay PaymentMethod = "VNPAY"
)

// Valid reports whether the method is supported.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodVNPay
}

// Payment is a settlement attempt. RegistrationID is nullable: walk-in
// passes settle without a registration. Amount is whole VND.
type Payment struct {
	ID             string        `db:"id" json:"id"`
	RegistrationID *string       `db:"registration_id" json:"registration_id,omitempty"`
	MemberID       *string       `db:"member_id" json:"member_id,omitempty"`
	Amount         int64         `db:"amount" json:"amount"`
	Method         PaymentMethod `db:"method" json:"method"`
	Status         PaymentStatus `db:"status" json:"status"`
	Note           string        `db:"note" json:"note"`
	GatewayTxnNo   *string       `db:"gateway_txn_no" json:"gateway_txn_no,omitempty"`
	PaidAt         *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentDetail adds member and registration context.
type PaymentDetail struct {
	Payment
	MemberName         *string             `db:"member_name" json:"member_name,omitempty"`
	RegistrationStatus *RegistrationStatus `db:"registration_status" json:"registration_status,omitempty"`
}

// PaymentFilter captures list criteria for payments.
type PaymentFilter struct {
	MemberID  string
	Status    PaymentStatus
	Method    PaymentMethod
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// RevenuePoint is one day of settled revenue.
type RevenuePoint struct {
	Day    time.Time `db:"day" json:"day"`
	Amount int64     `db:"amount" json:"amount"`
}

// PaymentIntent is returned on payment creation; RedirectURL is set for
// gateway methods only.
type PaymentIntent struct {
	Payment      Payment       `json:"payment"`
	Registration *Registration `json:"registration,omitempty"`
	RedirectURL  string        `json:"redirect_url,omitempty"`
}
