// Package constraint is the constraints log: issues blocking field work,
// tracked until resolved.
package constraint

import "time"

// Module is the registry name of the constraints log.
const Module = "constraint"

// Status is the constraint workflow state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Constraint is one blocking issue.
type Constraint struct {
	ID           string     `json:"id" validate:"required"`
	ProjectID    string     `json:"project_id" validate:"required"`
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description,omitempty"`
	Category     string     `json:"category" validate:"required"`
	Assignee     string     `json:"assignee,omitempty"`
	Status       Status     `json:"status" validate:"required,oneof=open in_progress resolved closed"`
	IdentifiedAt time.Time  `json:"identified_at"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// Done reports whether the constraint no longer blocks work.
func (c Constraint) Done() bool {
	return c.Status == StatusResolved || c.Status == StatusClosed
}

// Overdue reports whether an unresolved constraint is past its due date.
func (c Constraint) Overdue(now time.Time) bool {
	return !c.Done() && c.DueAt != nil && c.DueAt.Before(now)
}

// DueSoon reports whether an unresolved constraint falls due within window.
func (c Constraint) DueSoon(now time.Time, window time.Duration) bool {
	if c.Done() || c.DueAt == nil {
		return false
	}
	left := c.DueAt.Sub(now)
	return left >= 0 && left <= window
}
