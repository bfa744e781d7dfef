package models

import "time"

// CheckInSource records how a member was identified at the door.
type CheckInSource string

const (
	CheckInSourceManual CheckInSource = "MANUAL"
	CheckInSourceFace   CheckInSource = "FACE"
)

// CheckIn is a single gym entry event. SessionID is set when the entry
// was tied to a booked class session.
type CheckIn struct {
	ID        string        `db:"id" json:"id"`
	MemberID  *string       `db:"member_id" json:"member_id,omitempty"`
	WalkInID  *string       `db:"walkin_id" json:"walkin_id,omitempty"`
	SessionID *string       `db:"session_id" json:"session_id,omitempty"`
	Source    CheckInSource `db:"source" json:"source"`
	CheckedAt time.Time     `db:"checked_at" json:"checked_at"`
}

// CheckInDetail adds member context for list views.
type CheckInDetail struct {
	CheckIn
	MemberName *string `db:"member_name" json:"member_name,omitempty"`
}

// CheckInFilter captures list criteria for check-ins.
type CheckInFilter struct {
	MemberID string
	Source   CheckInSource
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// FaceProfile stores the descriptor vector captured for a member. The
// descriptor itself comes from an external recognition model; this
// service only stores and compares vectors.
type FaceProfile struct {
	MemberID   string    `db:"member_id" json:"member_id"`
	Descriptor []float64 `db:"-" json:"descriptor"`
	RawDescriptor []byte `db:"descriptor" json:"-"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
