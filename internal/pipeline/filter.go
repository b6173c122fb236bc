package pipeline

import (
	"strings"
	"time"

	"github.com/rpggio/jobsite/internal/scope"
	"github.com/shopspring/decimal"
)

// AmountRange bounds a numeric field. Nil bounds are open.
type AmountRange struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// FilterState is the set of narrowing criteria currently applied.
type FilterState struct {
	Search     string                 `json:"search,omitempty"`
	Equals     map[string]string      `json:"equals,omitempty"`
	From       *time.Time             `json:"from,omitempty"`
	To         *time.Time             `json:"to,omitempty"`
	Amounts    map[string]AmountRange `json:"amounts,omitempty"`
	Flags      []string               `json:"flags,omitempty"`
	WithinDays int                    `json:"within_days,omitempty"`
	// Now pins the clock for derived flags; zero means wall clock.
	Now time.Time `json:"-"`
}

// IsZero reports whether no criteria are set.
func (f FilterState) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && len(f.Equals) == 0 && f.From == nil &&
		f.To == nil && len(f.Amounts) == 0 && len(f.Flags) == 0
}

func (f FilterState) flagContext() FlagContext {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	days := f.WithinDays
	if days <= 0 {
		days = DefaultWithinDays
	}
	return FlagContext{Now: now, WithinDays: days}
}

// Filter applies scope restriction, search, equality, range and flag filters in
// that order. The output keeps input order and never contains records the
// unfiltered pipeline would drop.
func Filter[T any](records []T, sc scope.Scope, f FilterState, spec Spec[T]) []T {
	out := make([]T, 0, len(records))

	search := strings.ToLower(strings.TrimSpace(f.Search))
	equals := activeEquals(f.Equals, spec)
	from, to, dated := dateRange(f)
	amounts := activeAmounts(f.Amounts, spec)
	flags := activeFlags(f.Flags, spec)
	fctx := f.flagContext()

	for _, rec := range records {
		if spec.Project != nil && !sc.Allows(spec.Project(rec)) {
			continue
		}
		if search != "" && !matchesSearch(rec, search, spec.Search) {
			continue
		}
		if !matchesEquals(rec, equals, spec.Fields) {
			continue
		}
		if dated && !inDateRange(rec, from, to, spec.Date) {
			continue
		}
		if !inAmountRanges(rec, amounts, spec.Amounts) {
			continue
		}
		if !matchesFlags(rec, flags, fctx) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func activeEquals[T any](equals map[string]string, spec Spec[T]) map[string]string {
	active := make(map[string]string, len(equals))
	for key, value := range equals {
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, AllValues) {
			continue
		}
		if _, ok := spec.Fields[key]; !ok {
			continue
		}
		active[key] = value
	}
	return active
}

func dateRange(f FilterState) (time.Time, time.Time, bool) {
	if f.From == nil && f.To == nil {
		return time.Time{}, time.Time{}, false
	}
	var from, to time.Time
	if f.From != nil {
		from = *f.From
	}
	if f.To != nil {
		to = *f.To
	}
	if f.From != nil && f.To != nil && from.After(to) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func activeAmounts[T any](ranges map[string]AmountRange, spec Spec[T]) map[string]AmountRange {
	active := make(map[string]AmountRange, len(ranges))
	for key, rng := range ranges {
		if _, ok := spec.Amounts[key]; !ok {
			continue
		}
		if rng.Min == nil && rng.Max == nil {
			continue
		}
		if rng.Min != nil && rng.Max != nil && rng.Min.GreaterThan(*rng.Max) {
			continue
		}
		active[key] = rng
	}
	return active
}

func activeFlags[T any](names []string, spec Spec[T]) []func(T, FlagContext) bool {
	var preds []func(T, FlagContext) bool
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		if pred, ok := spec.Flags[name]; ok {
			preds = append(preds, pred)
		}
	}
	return preds
}

func matchesSearch[T any](rec T, term string, fields []func(T) string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(rec)), term) {
			return true
		}
	}
	return false
}

func matchesEquals[T any](rec T, equals map[string]string, fields map[string]func(T) string) bool {
	for key, want := range equals {
		if fields[key](rec) != want {
			return false
		}
	}
	return true
}

func inDateRange[T any](rec T, from, to time.Time, date func(T) (time.Time, bool)) bool {
	if date == nil {
		return true
	}
	at, ok := date(rec)
	if !ok {
		return false
	}
	if !from.IsZero() && at.Before(from) {
		return false
	}
	if !to.IsZero() && at.After(to) {
		return false
	}
	return true
}

func inAmountRanges[T any](rec T, ranges map[string]AmountRange, amounts map[string]func(T) decimal.Decimal) bool {
	for key, rng := range ranges {
		value := amounts[key](rec)
		if rng.Min != nil && value.LessThan(*rng.Min) {
			return false
		}
		if rng.Max != nil && value.GreaterThan(*rng.Max) {
			return false
		}
	}
	return true
}

func matchesFlags[T any](rec T, preds []func(T, FlagContext) bool, fctx FlagContext) bool {
	for _, pred := range preds {
		if !pred(rec, fctx) {
			return false
		}
	}
	return true
}
