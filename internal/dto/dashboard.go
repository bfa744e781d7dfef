package dto

import "time"

// RevenueSlice is one aggregated revenue bucket.
type RevenueSlice struct {
	Label  string `db:"label" json:"label"`
	Amount int64  `db:"amount" json:"amount"`
	Count  int    `db:"count" json:"count"`
}

// DashboardOverview is the admin landing payload for one month.
type DashboardOverview struct {
	Month               string         `json:"month"`
	TotalRevenue        int64          `json:"total_revenue"`
	RevenueByMethod     []RevenueSlice `json:"revenue_by_method"`
	RevenueByKind       []RevenueSlice `json:"revenue_by_kind"`
	NewMembers          int            `json:"new_members"`
	ActiveRegistrations int            `json:"active_registrations"`
	CheckInsToday       int            `json:"check_ins_today"`
	WalkInsToday        int            `json:"walk_ins_today"`
	SessionsToday       int            `json:"sessions_today"`
	ExpiringSoon        int            `json:"expiring_soon"`
	GeneratedAt         time.Time      `json:"generated_at"`
}

// TrainerDashboard is the trainer landing payload.
type TrainerDashboard struct {
	TrainerID        string         `json:"trainer_id"`
	Month            string         `json:"month"`
	UpcomingSessions int            `json:"upcoming_sessions"`
	DistinctStudents int            `json:"distinct_students"`
	AttendanceRate   float64        `json:"attendance_rate"`
	MonthRevenue     []RevenueSlice `json:"month_revenue"`
	GeneratedAt      time.Time      `json:"generated_at"`
}
