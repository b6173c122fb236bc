package constraint

import (
	"fmt"
	"time"

	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/pipeline"
)

const (
	FlagOverdue    = "overdue"
	FlagDueSoon    = "due_soon"
	RateCompletion = "completion_rate"
)

// Spec describes how the pipeline reads constraints. The date range applies
// to the due date.
func Spec() pipeline.Spec[Constraint] {
	return pipeline.Spec[Constraint]{
		Module:   Module,
		ID:       func(c Constraint) string { return c.ID },
		Project:  func(c Constraint) string { return c.ProjectID },
		Status:   func(c Constraint) string { return string(c.Status) },
		Category: func(c Constraint) string { return c.Category },
		Search: []func(Constraint) string{
			func(c Constraint) string { return c.Title },
			func(c Constraint) string { return c.Description },
			func(c Constraint) string { return c.Assignee },
		},
		Fields: map[string]func(Constraint) string{
			pipeline.FieldStatus:   func(c Constraint) string { return string(c.Status) },
			pipeline.FieldCategory: func(c Constraint) string { return c.Category },
			pipeline.FieldAssignee: func(c Constraint) string { return c.Assignee },
		},
		Date: func(c Constraint) (time.Time, bool) {
			if c.DueAt == nil {
				return time.Time{}, false
			}
			return *c.DueAt, true
		},
		Flags: map[string]func(Constraint, pipeline.FlagContext) bool{
			FlagOverdue: func(c Constraint, fc pipeline.FlagContext) bool { return c.Overdue(fc.Now) },
			FlagDueSoon: func(c Constraint, fc pipeline.FlagContext) bool {
				return c.DueSoon(fc.Now, fc.Window())
			},
		},
		Rates: map[string]func(Constraint) bool{
			RateCompletion: Constraint.Done,
		},
	}
}

// Columns are the exported columns in display order.
func Columns() []export.Column[Constraint] {
	return []export.Column[Constraint]{
		{Header: "Title", Value: func(c Constraint) string { return c.Title }},
		{Header: "Category", Value: func(c Constraint) string { return c.Category }},
		{Header: "Assignee", Value: func(c Constraint) string { return c.Assignee }},
		{Header: "Status", Value: func(c Constraint) string { return string(c.Status) }},
		{Header: "Identified", Value: func(c Constraint) string { return export.FormatDate(&c.IdentifiedAt) }},
		{Header: "Due", Value: func(c Constraint) string { return export.FormatDate(c.DueAt) }},
	}
}

// Approve signs off a constraint that is being worked.
func Approve(c *Constraint, now time.Time) error {
	if c.Status != StatusInProgress {
		return fmt.Errorf("%w: %s constraint cannot be resolved", record.ErrInvalidTransition, c.Status)
	}
	c.Status = StatusResolved
	c.ResolvedAt = &now
	return nil
}

// Config wires the constraints log into the record service.
func Config() record.Config[Constraint] {
	statuses := make([]string, len(Statuses))
	for i, s := range Statuses {
		statuses[i] = string(s)
	}
	return record.Config[Constraint]{
		Name:     Module,
		Title:    "Constraints Log",
		Statuses: statuses,
		Spec:     Spec(),
		Columns:  Columns(),
		Init: func(c *Constraint, id string, now time.Time) {
			c.ID = id
			if c.IdentifiedAt.IsZero() {
				c.IdentifiedAt = now
			}
			if c.Status == "" {
				c.Status = StatusOpen
			}
		},
		SetID: func(c *Constraint, id string) { c.ID = id },
		Preserve: func(existing Constraint, next *Constraint) {
			if next.IdentifiedAt.IsZero() {
				next.IdentifiedAt = existing.IdentifiedAt
			}
			if next.ResolvedAt == nil {
				next.ResolvedAt = existing.ResolvedAt
			}
		},
		Approve:  Approve,
		Approved: Constraint.Done,
	}
}
