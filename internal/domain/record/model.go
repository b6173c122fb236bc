package record

import (
	"time"

	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/rpggio/jobsite/internal/scope"
)

// Config binds a record type to the generic service.
type Config[T any] struct {
	Name     string
	Title    string
	Statuses []string
	Spec     pipeline.Spec[T]
	Columns  []export.Column[T]

	// Init prepares a new record: assigns id, timestamps and default status.
	Init func(rec *T, id string, now time.Time)
	// SetID forces the id of an update payload to the addressed record.
	SetID func(rec *T, id string)
	// Preserve carries fields an update must not clear.
	Preserve func(existing T, next *T)
	// Approve applies the module's approval transition.
	Approve func(rec *T, now time.Time) error
	// Approved reports whether a record is past approval. Only scopes that
	// can approve may create such a record or move one into that state.
	Approved func(rec T) bool
}

// Result is a filtered record list with its stats.
type Result[T any] struct {
	Module  string         `json:"module"`
	Scope   scope.Scope    `json:"scope"`
	Records []T            `json:"records"`
	Stats   pipeline.Stats `json:"stats"`
}

// SyncResult reports a completed module sync.
type SyncResult struct {
	Module   string    `json:"module"`
	Records  int       `json:"records"`
	SyncedAt time.Time `json:"synced_at"`
}

// Descriptor lists what a module can be filtered and summarised by.
type Descriptor struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Statuses []string `json:"statuses"`
	Fields   []string `json:"fields"`
	Amounts  []string `json:"amounts,omitempty"`
	Flags    []string `json:"flags,omitempty"`
	Rates    []string `json:"rates,omitempty"`
}
