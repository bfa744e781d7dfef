package models

import "time"

// Trainer represents a trainer profile with the base salary used by
// monthly payroll generation.
type Trainer struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	FullName   string    `db:"full_name" json:"full_name"`
	Phone      string    `db:"phone" json:"phone"`
	Email      string    `db:"email" json:"email"`
	Specialty  string    `db:"specialty" json:"specialty"`
	BaseSalary int64     `db:"base_salary" json:"base_salary"`
	HiredAt    time.Time `db:"hired_at" json:"hired_at"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TrainerFilter captures list criteria for trainers.
type TrainerFilter struct {
	Search    string
	Specialty string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
