// Package procurement is the procurement log: purchase packages tracked from
// draft through bidding, award, order and delivery.
package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Module is the registry name of the procurement log.
const Module = "procurement"

// Status is the procurement workflow state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusBidding   Status = "bidding"
	StatusAwarded   Status = "awarded"
	StatusOrdered   Status = "ordered"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusDraft, StatusBidding, StatusAwarded, StatusOrdered, StatusDelivered, StatusCancelled}

// Entry is one purchase package.
type Entry struct {
	ID             string          `json:"id" validate:"required"`
	ProjectID      string          `json:"project_id" validate:"required"`
	CSICode        string          `json:"csi_code" validate:"omitempty,max=16"`
	Description    string          `json:"description" validate:"required"`
	Vendor         string          `json:"vendor,omitempty"`
	Category       string          `json:"category" validate:"required"`
	Buyer          string          `json:"buyer,omitempty"`
	Status         Status          `json:"status" validate:"required,oneof=draft bidding awarded ordered delivered cancelled"`
	ContractValue  decimal.Decimal `json:"contract_value"`
	CreatedAt      time.Time       `json:"created_at"`
	RequiredOnSite *time.Time      `json:"required_on_site,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
}

// Open reports whether the package still needs to reach site.
func (e Entry) Open() bool {
	return e.Status != StatusDelivered && e.Status != StatusCancelled
}

// Overdue reports whether the required-on-site date has passed for an open package.
func (e Entry) Overdue(now time.Time) bool {
	return e.Open() && e.RequiredOnSite != nil && e.RequiredOnSite.Before(now)
}

// Awarded reports whether a vendor has been selected.
func (e Entry) Awarded() bool {
	switch e.Status {
	case StatusAwarded, StatusOrdered, StatusDelivered:
		return true
	}
	return false
}
