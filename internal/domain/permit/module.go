package permit

import (
	"fmt"
	"time"

	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/shopspring/decimal"
)

const (
	FlagExpiring      = "expiring"
	FlagExpiredActive = "expired_active"
	RateApproval      = "approval_rate"
	RateCompliance    = "compliance_rate"
	AmountFee         = "fee"
)

// Spec describes how the pipeline reads permits. The date range applies to
// the expiration date.
func Spec() pipeline.Spec[Permit] {
	return pipeline.Spec[Permit]{
		Module:   Module,
		ID:       func(p Permit) string { return p.ID },
		Project:  func(p Permit) string { return p.ProjectID },
		Status:   func(p Permit) string { return string(p.Status) },
		Category: func(p Permit) string { return p.Category },
		Search: []func(Permit) string{
			func(p Permit) string { return p.Number },
			func(p Permit) string { return p.Type },
			func(p Permit) string { return p.Authority },
			func(p Permit) string { return p.Inspector },
		},
		Fields: map[string]func(Permit) string{
			pipeline.FieldStatus:   func(p Permit) string { return string(p.Status) },
			pipeline.FieldType:     func(p Permit) string { return p.Type },
			pipeline.FieldCategory: func(p Permit) string { return p.Category },
			pipeline.FieldAssignee: func(p Permit) string { return p.Inspector },
		},
		Date: func(p Permit) (time.Time, bool) {
			if p.ExpiresAt == nil {
				return time.Time{}, false
			}
			return *p.ExpiresAt, true
		},
		Amounts: map[string]func(Permit) decimal.Decimal{
			AmountFee: func(p Permit) decimal.Decimal { return p.Fee },
		},
		Flags: map[string]func(Permit, pipeline.FlagContext) bool{
			FlagExpiring: func(p Permit, c pipeline.FlagContext) bool {
				return p.Expiring(c.Now, c.Window())
			},
			FlagExpiredActive: func(p Permit, c pipeline.FlagContext) bool {
				return p.ExpiredActive(c.Now)
			},
		},
		Rates: map[string]func(Permit) bool{
			RateApproval:   Permit.Active,
			RateCompliance: Permit.Compliant,
		},
	}
}

// Columns are the exported columns in display order.
func Columns() []export.Column[Permit] {
	return []export.Column[Permit]{
		{Header: "Number", Value: func(p Permit) string { return p.Number }},
		{Header: "Type", Value: func(p Permit) string { return p.Type }},
		{Header: "Authority", Value: func(p Permit) string { return p.Authority }},
		{Header: "Category", Value: func(p Permit) string { return p.Category }},
		{Header: "Inspector", Value: func(p Permit) string { return p.Inspector }},
		{Header: "Status", Value: func(p Permit) string { return string(p.Status) }},
		{Header: "Fee", Value: func(p Permit) string { return p.Fee.StringFixed(2) }},
		{Header: "Applied", Value: func(p Permit) string { return export.FormatDate(&p.AppliedAt) }},
		{Header: "Expires", Value: func(p Permit) string { return export.FormatDate(p.ExpiresAt) }},
	}
}

// Approve approves a pending permit.
func Approve(p *Permit, now time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s permit cannot be approved", record.ErrInvalidTransition, p.Status)
	}
	p.Status = StatusApproved
	p.ApprovedAt = &now
	return nil
}

// Config wires the permit log into the record service.
func Config() record.Config[Permit] {
	statuses := make([]string, len(Statuses))
	for i, s := range Statuses {
		statuses[i] = string(s)
	}
	return record.Config[Permit]{
		Name:     Module,
		Title:    "Permit Log",
		Statuses: statuses,
		Spec:     Spec(),
		Columns:  Columns(),
		Init: func(p *Permit, id string, now time.Time) {
			p.ID = id
			if p.AppliedAt.IsZero() {
				p.AppliedAt = now
			}
			if p.Status == "" {
				p.Status = StatusPending
			}
		},
		SetID: func(p *Permit, id string) { p.ID = id },
		Preserve: func(existing Permit, next *Permit) {
			if next.AppliedAt.IsZero() {
				next.AppliedAt = existing.AppliedAt
			}
			if next.ApprovedAt == nil {
				next.ApprovedAt = existing.ApprovedAt
			}
		},
		Approve:  Approve,
		Approved: Permit.Granted,
	}
}
