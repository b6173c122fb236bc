package mcp

import (
	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/domain/activity"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/rpggio/jobsite/internal/scope"
)

// FilterParams is the tool-facing form of pipeline.FilterState.
type FilterParams struct {
	Search     string                          `json:"search,omitempty"`
	Equals     map[string]string               `json:"equals,omitempty"`
	From       string                          `json:"from,omitempty"`
	To         string                          `json:"to,omitempty"`
	Amounts    map[string]pipeline.AmountRange `json:"amounts,omitempty"`
	Flags      []string                        `json:"flags,omitempty"`
	WithinDays int                             `json:"within_days,omitempty"`
}

// State converts the params. Unparseable dates are dropped.
func (p FilterParams) State() pipeline.FilterState {
	return pipeline.FilterState{
		Search:     p.Search,
		Equals:     p.Equals,
		From:       pipeline.ParseDate(p.From, false),
		To:         pipeline.ParseDate(p.To, true),
		Amounts:    p.Amounts,
		Flags:      p.Flags,
		WithinDays: p.WithinDays,
	}
}

type ModuleParams struct {
	Module string `json:"module"`
}

type QueryRecordsParams struct {
	Module  string       `json:"module"`
	Filters FilterParams `json:"filters,omitempty"`
}

type CreateRecordParams struct {
	Module string         `json:"module"`
	Record map[string]any `json:"record"`
}

type UpdateRecordParams struct {
	Module string         `json:"module"`
	ID     string         `json:"id"`
	Record map[string]any `json:"record"`
}

type ApproveRecordParams struct {
	Module string `json:"module"`
	ID     string `json:"id"`
}

type ExportRecordsParams struct {
	Module   string       `json:"module"`
	Format   string       `json:"format"`
	FileName string       `json:"file_name,omitempty"`
	Filters  FilterParams `json:"filters,omitempty"`
}

type GetRecentActivityParams struct {
	ProjectID string  `json:"project_id,omitempty"`
	Module    string  `json:"module,omitempty"`
	RecordID  *string `json:"record_id,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

type ScopeResponse struct {
	Principal auth.Principal `json:"principal"`
	Scope     scope.Scope    `json:"scope"`
}

type ListModulesResponse struct {
	Modules []record.Descriptor `json:"modules"`
}

type ExportRecordsResponse struct {
	export.Result
	Path string `json:"path"`
}

type GetRecentActivityResponse struct {
	Activity []activity.ActivityEntry `json:"activity"`
}
