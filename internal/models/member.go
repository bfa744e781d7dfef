package models

import "time"

// Member represents a gym member profile.
type Member struct {
	ID        string     `db:"id" json:"id"`
	UserID    *string    `db:"user_id" json:"user_id,omitempty"`
	FullName  string     `db:"full_name" json:"full_name"`
	Phone     string     `db:"phone" json:"phone"`
	Email     string     `db:"email" json:"email"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	JoinedAt  time.Time  `db:"joined_at" json:"joined_at"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// MemberFilter captures list criteria for members.
type MemberFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
