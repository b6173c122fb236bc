package procurement

import (
	"fmt"
	"time"

	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/shopspring/decimal"
)

// Filter flags and rates.
const (
	FlagOverdue         = "overdue"
	RateAward           = "award_rate"
	RateCompletion      = "completion_rate"
	AmountContractValue = "contract_value"
)

// Spec describes how the pipeline reads entries.
func Spec() pipeline.Spec[Entry] {
	return pipeline.Spec[Entry]{
		Module:   Module,
		ID:       func(e Entry) string { return e.ID },
		Project:  func(e Entry) string { return e.ProjectID },
		Status:   func(e Entry) string { return string(e.Status) },
		Category: func(e Entry) string { return e.Category },
		Search: []func(Entry) string{
			func(e Entry) string { return e.Description },
			func(e Entry) string { return e.Vendor },
			func(e Entry) string { return e.CSICode },
			func(e Entry) string { return e.Buyer },
		},
		Fields: map[string]func(Entry) string{
			pipeline.FieldStatus:   func(e Entry) string { return string(e.Status) },
			pipeline.FieldCategory: func(e Entry) string { return e.Category },
			pipeline.FieldAssignee: func(e Entry) string { return e.Buyer },
			"vendor":               func(e Entry) string { return e.Vendor },
		},
		Date: func(e Entry) (time.Time, bool) {
			if e.RequiredOnSite == nil {
				return time.Time{}, false
			}
			return *e.RequiredOnSite, true
		},
		Amounts: map[string]func(Entry) decimal.Decimal{
			AmountContractValue: func(e Entry) decimal.Decimal { return e.ContractValue },
		},
		Flags: map[string]func(Entry, pipeline.FlagContext) bool{
			FlagOverdue: func(e Entry, c pipeline.FlagContext) bool { return e.Overdue(c.Now) },
		},
		Rates: map[string]func(Entry) bool{
			RateAward:      Entry.Awarded,
			RateCompletion: func(e Entry) bool { return e.Status == StatusDelivered },
		},
	}
}

// Columns are the exported columns in display order.
func Columns() []export.Column[Entry] {
	return []export.Column[Entry]{
		{Header: "CSI Code", Value: func(e Entry) string { return e.CSICode }},
		{Header: "Description", Value: func(e Entry) string { return e.Description }},
		{Header: "Vendor", Value: func(e Entry) string { return e.Vendor }},
		{Header: "Category", Value: func(e Entry) string { return e.Category }},
		{Header: "Buyer", Value: func(e Entry) string { return e.Buyer }},
		{Header: "Status", Value: func(e Entry) string { return string(e.Status) }},
		{Header: "Contract Value", Value: func(e Entry) string { return e.ContractValue.StringFixed(2) }},
		{Header: "Required On Site", Value: func(e Entry) string { return export.FormatDate(e.RequiredOnSite) }},
	}
}

// Approve awards a package that is still in draft or bidding.
func Approve(e *Entry, now time.Time) error {
	if e.Status != StatusDraft && e.Status != StatusBidding {
		return fmt.Errorf("%w: %s cannot be awarded", record.ErrInvalidTransition, e.Status)
	}
	e.Status = StatusAwarded
	e.ApprovedAt = &now
	return nil
}

// Config wires the procurement log into the record service.
func Config() record.Config[Entry] {
	statuses := make([]string, len(Statuses))
	for i, s := range Statuses {
		statuses[i] = string(s)
	}
	return record.Config[Entry]{
		Name:     Module,
		Title:    "Procurement Log",
		Statuses: statuses,
		Spec:     Spec(),
		Columns:  Columns(),
		Init: func(e *Entry, id string, now time.Time) {
			e.ID = id
			e.CreatedAt = now
			if e.Status == "" {
				e.Status = StatusDraft
			}
		},
		SetID: func(e *Entry, id string) { e.ID = id },
		Preserve: func(existing Entry, next *Entry) {
			next.CreatedAt = existing.CreatedAt
			if next.ApprovedAt == nil {
				next.ApprovedAt = existing.ApprovedAt
			}
		},
		Approve:  Approve,
		Approved: Entry.Awarded,
	}
}
