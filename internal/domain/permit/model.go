// Package permit is the permit log: building, trade and environmental permits
// with their fees, inspectors and expiration dates.
package permit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Module is the registry name of the permit log.
const Module = "permit"

// Status is the permit lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusExpired  Status = "expired"
	StatusRejected Status = "rejected"
	StatusRenewed  Status = "renewed"
)

// Statuses lists every status.
var Statuses = []Status{StatusPending, StatusApproved, StatusExpired, StatusRejected, StatusRenewed}

// Permit is one permit application.
type Permit struct {
	ID         string          `json:"id" validate:"required"`
	ProjectID  string          `json:"project_id" validate:"required"`
	Number     string          `json:"number,omitempty"`
	Type       string          `json:"type" validate:"required"`
	Authority  string          `json:"authority,omitempty"`
	Category   string          `json:"category" validate:"required"`
	Inspector  string          `json:"inspector,omitempty"`
	Status     Status          `json:"status" validate:"required,oneof=pending approved expired rejected renewed"`
	Fee        decimal.Decimal `json:"fee"`
	AppliedAt  time.Time       `json:"applied_at"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
}

// Active reports whether the permit currently authorises work.
func (p Permit) Active() bool {
	return p.Status == StatusApproved || p.Status == StatusRenewed
}

// Expiring reports whether an active permit expires within window of now.
// Permits already past expiration are not expiring.
func (p Permit) Expiring(now time.Time, window time.Duration) bool {
	if !p.Active() || p.ExpiresAt == nil {
		return false
	}
	left := p.ExpiresAt.Sub(now)
	return left > 0 && left <= window
}

// ExpiredActive reports whether the permit is past expiration but still marked active.
func (p Permit) ExpiredActive(now time.Time) bool {
	return p.Active() && p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// Granted reports whether the permit has been issued, including lapsed ones.
func (p Permit) Granted() bool {
	return p.Active() || p.Status == StatusExpired
}

// Compliant reports whether the permit is neither expired nor rejected.
func (p Permit) Compliant() bool {
	return p.Status != StatusExpired && p.Status != StatusRejected
}
