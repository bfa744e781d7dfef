package models

import "time"

// GymClass is a recurring group class led by a trainer. Fixed-schedule
// classes carry a term price covering the whole schedule; open classes
// are billed per month.
type GymClass struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	TrainerID     string    `db:"trainer_id" json:"trainer_id"`
	Capacity      int       `db:"capacity" json:"capacity"`
	MonthlyFee    int64     `db:"monthly_fee" json:"monthly_fee"`
	FixedSchedule bool      `db:"fixed_schedule" json:"fixed_schedule"`
	TermPrice     int64     `db:"term_price" json:"term_price"`
	StartDate     *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends GymClass with trainer metadata for list views.
type ClassDetail struct {
	GymClass
	TrainerName string `db:"trainer_name" json:"trainer_name"`
}

// ClassScheduleSlot is one weekly occurrence in a class timetable.
type ClassScheduleSlot struct {
	ID        string       `db:"id" json:"id"`
	ClassID   string       `db:"class_id" json:"class_id"`
	Weekday   time.Weekday `db:"weekday" json:"weekday"`
	StartTime string       `db:"start_time" json:"start_time"` // HH:MM
	EndTime   string       `db:"end_time" json:"end_time"`     // HH:MM
}

// ClassSession is a dated occurrence of a class, the unit of booking
// and attendance. Booked is maintained by conditional updates at the
// storage layer so capacity can never oversell.
type ClassSession struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	EndsAt    time.Time `db:"ends_at" json:"ends_at"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Booked    int       `db:"booked" json:"booked"`
	Canceled  bool      `db:"canceled" json:"canceled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassSessionDetail includes class and trainer context.
type ClassSessionDetail struct {
	ClassSession
	ClassName   string `db:"class_name" json:"class_name"`
	TrainerID   string `db:"trainer_id" json:"trainer_id"`
	TrainerName string `db:"trainer_name" json:"trainer_name"`
}

// ClassFilter captures list criteria for classes.
type ClassFilter struct {
	Search    string
	TrainerID string
	Active    *bool
	Fixed     *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// SessionFilter captures list criteria for class sessions.
type SessionFilter struct {
	ClassID   string
	TrainerID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
