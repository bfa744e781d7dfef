package models

import "time"

// MembershipPackage is a sellable gym package. ListPrice applies when a
// member registers for exactly DurationMonths; any other duration is
// billed at MonthlyRate per month.
type MembershipPackage struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	MonthlyRate    int64     `db:"monthly_rate" json:"monthly_rate"`
	DurationMonths int       `db:"duration_months" json:"duration_months"`
	ListPrice      int64     `db:"list_price" json:"list_price"`
	TrainerID      *string   `db:"trainer_id" json:"trainer_id,omitempty"`
	PersonalTraining bool    `db:"personal_training" json:"personal_training"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PackageFilter captures list criteria for packages.
type PackageFilter struct {
	Search           string
	Active           *bool
	PersonalTraining *bool
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}
