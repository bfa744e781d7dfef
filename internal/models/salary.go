package models

import (
	"time"
)

// MonthKeyLayout is the canonical format of monthly salary keys.
const MonthKeyLayout = "2006-01"

// ParseMonthKey validates a yyyy-MM month key.
func ParseMonthKey(raw string) (time.Time, error) {
	return time.Parse(MonthKeyLayout, raw)
}

// SalaryRecord is the monthly payroll row for a trainer. At most one
// record exists per (trainer, month). A missing row means the salary has
// not been generated yet, which is distinct from a zero commission.
type SalaryRecord struct {
	ID         string     `db:"id" json:"id"`
	TrainerID  string     `db:"trainer_id" json:"trainer_id"`
	Month      string     `db:"month" json:"month"` // yyyy-MM
	BaseSalary int64      `db:"base_salary" json:"base_salary"`
	Commission int64      `db:"commission" json:"commission"`
	Breakdown  []byte     `db:"breakdown" json:"-"`
	PaidAt     *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// SalaryDetail adds trainer context and the decoded breakdown.
type SalaryDetail struct {
	SalaryRecord
	TrainerName string               `db:"trainer_name" json:"trainer_name"`
	Components  *CommissionBreakdown `db:"-" json:"components,omitempty"`
}

// SalaryFilter captures list criteria for salary records.
type SalaryFilter struct {
	TrainerID string
	Month     string
	Unpaid    *bool
	Page      int
	PageSize  int
}

// CommissionTier is a revenue band with an associated rate. MaxRevenue
// nil marks the final, unbounded tier. Bands are [MinRevenue, MaxRevenue).
type CommissionTier struct {
	ID         string  `db:"id" json:"id"`
	MinRevenue int64   `db:"min_revenue" json:"min_revenue"`
	MaxRevenue *int64  `db:"max_revenue" json:"max_revenue,omitempty"`
	Rate       float64 `db:"rate" json:"rate"`
}

// CommissionConfig is the rate table driving trainer commission.
type CommissionConfig struct {
	PackageRate           float64          `db:"package_rate" json:"package_rate"`
	ClassRate             float64          `db:"class_rate" json:"class_rate"`
	PersonalTrainingRate  float64          `db:"personal_training_rate" json:"personal_training_rate"`
	MinStudentsForBonus   int              `db:"min_students_for_bonus" json:"min_students_for_bonus"`
	PerformanceBonus      int64            `db:"performance_bonus" json:"performance_bonus"`
	MinAttendanceForBonus float64          `db:"min_attendance_for_bonus" json:"min_attendance_for_bonus"`
	AttendanceBonus       int64            `db:"attendance_bonus" json:"attendance_bonus"`
	MaxCommissionPerMonth int64            `db:"max_commission_per_month" json:"max_commission_per_month"`
	Tiers                 []CommissionTier `db:"-" json:"tiers"`
}

// TierFor returns the tier whose [Min, Max) band contains the revenue.
// Tiers are checked in ascending MinRevenue order, first match wins.
func (c *CommissionConfig) TierFor(revenue int64) *CommissionTier {
	for i := range c.Tiers {
		tier := &c.Tiers[i]
		if revenue < tier.MinRevenue {
			continue
		}
		if tier.MaxRevenue == nil || revenue < *tier.MaxRevenue {
			return tier
		}
	}
	return nil
}

// CommissionBreakdown itemises a trainer's monthly commission. Total is
// the raw component sum; Capped applies MaxCommissionPerMonth.
type CommissionBreakdown struct {
	TrainerID        string  `json:"trainer_id"`
	Month            string  `json:"month"`
	PackageRevenue   int64   `json:"package_revenue"`
	ClassRevenue     int64   `json:"class_revenue"`
	PersonalRevenue  int64   `json:"personal_revenue"`
	AppliedRate      float64 `json:"applied_rate,omitempty"`
	Package          int64   `json:"package_commission"`
	Class            int64   `json:"class_commission"`
	PersonalTraining int64   `json:"personal_training_commission"`
	PerformanceBonus int64   `json:"performance_bonus"`
	AttendanceBonus  int64   `json:"attendance_bonus"`
	StudentCount     int     `json:"student_count"`
	AttendanceRate   float64 `json:"attendance_rate"`
	Total            int64   `json:"total"`
	Capped           int64   `json:"capped"`
}
