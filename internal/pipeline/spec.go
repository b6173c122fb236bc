// Package pipeline narrows record lists by scope and ad hoc criteria and
// summarises them. It is generic over the record type; each module supplies a
// Spec describing how to read its records.
package pipeline

import (
	"time"

	"github.com/shopspring/decimal"
)

// Equality filter keys understood by every module that declares them.
const (
	FieldStatus   = "status"
	FieldType     = "type"
	FieldCategory = "category"
	FieldAssignee = "assignee"
)

// AllValues is the sentinel filter value meaning "no filter".
const AllValues = "all"

// DefaultWithinDays is the look-ahead used by date-window flags when none is set.
const DefaultWithinDays = 30

// FlagContext carries the evaluation inputs for derived-flag predicates.
type FlagContext struct {
	Now        time.Time
	WithinDays int
}

// Window returns the look-ahead duration.
func (c FlagContext) Window() time.Duration {
	return time.Duration(c.WithinDays) * 24 * time.Hour
}

// Spec is a module's accessor table.
type Spec[T any] struct {
	Module string

	ID       func(T) string
	Project  func(T) string
	Status   func(T) string
	Category func(T) string

	// Search lists the fields matched by free-text search.
	Search []func(T) string
	// Fields maps equality filter keys to accessors.
	Fields map[string]func(T) string
	// Date returns the field the date-range filter applies to.
	Date func(T) (time.Time, bool)
	// Amounts maps numeric fields to accessors; they feed range filters and totals.
	Amounts map[string]func(T) decimal.Decimal
	// Flags maps derived-flag names to predicates.
	Flags map[string]func(T, FlagContext) bool
	// Rates maps rate names to the predicate counted in the numerator.
	Rates map[string]func(T) bool
}

// FlagNames returns the declared flag names.
func (s Spec[T]) FlagNames() []string {
	names := make([]string, 0, len(s.Flags))
	for name := range s.Flags {
		names = append(names, name)
	}
	return names
}
