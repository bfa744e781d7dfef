package models

import "time"

// Promotion is a percentage discount applied at registration time.
type Promotion struct {
	ID         string    `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	Description string   `db:"description" json:"description"`
	PercentOff int       `db:"percent_off" json:"percent_off"`
	ValidFrom  time.Time `db:"valid_from" json:"valid_from"`
	ValidUntil time.Time `db:"valid_until" json:"valid_until"`
	UsageLimit int       `db:"usage_limit" json:"usage_limit"` // 0 = unlimited
	UsedCount  int       `db:"used_count" json:"used_count"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Usable reports whether the promo can be applied at the given time.
func (p *Promotion) Usable(at time.Time) bool {
	if p == nil || !p.Active {
		return false
	}
	if at.Before(p.ValidFrom) || at.After(p.ValidUntil) {
		return false
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return false
	}
	return p.PercentOff > 0 && p.PercentOff <= 100
}

// Apply returns the fee after the percentage discount, rounded down to
// whole VND.
func (p *Promotion) Apply(fee int64) int64 {
	if p == nil {
		return fee
	}
	return fee - fee*int64(p.PercentOff)/100
}

// PromoFilter captures list criteria for promotions.
type PromoFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
