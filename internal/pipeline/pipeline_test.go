package pipeline_test

import (
	"math"
	"testing"
	"time"

	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/rpggio/jobsite/internal/scope"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID       string
	Project  string
	Title    string
	Vendor   string
	Status   string
	Category string
	Owner    string
	Due      time.Time
	Expires  time.Time
	Amount   decimal.Decimal
}

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func itemSpec() pipeline.Spec[item] {
	return pipeline.Spec[item]{
		Module:   "items",
		ID:       func(i item) string { return i.ID },
		Project:  func(i item) string { return i.Project },
		Status:   func(i item) string { return i.Status },
		Category: func(i item) string { return i.Category },
		Search: []func(item) string{
			func(i item) string { return i.Title },
			func(i item) string { return i.Vendor },
		},
		Fields: map[string]func(item) string{
			pipeline.FieldStatus:   func(i item) string { return i.Status },
			pipeline.FieldCategory: func(i item) string { return i.Category },
			pipeline.FieldAssignee: func(i item) string { return i.Owner },
		},
		Date: func(i item) (time.Time, bool) { return i.Due, !i.Due.IsZero() },
		Amounts: map[string]func(item) decimal.Decimal{
			"amount": func(i item) decimal.Decimal { return i.Amount },
		},
		Flags: map[string]func(item, pipeline.FlagContext) bool{
			"expiring": func(i item, c pipeline.FlagContext) bool {
				left := i.Expires.Sub(c.Now)
				return i.Status == "approved" && left > 0 && left <= c.Window()
			},
		},
		Rates: map[string]func(item) bool{
			"approval_rate": func(i item) bool { return i.Status == "approved" },
		},
	}
}

func fixture() []item {
	return []item{
		{ID: "1", Project: "p1", Title: "Steel framing", Vendor: "Acme Steel", Status: "approved", Category: "structural", Owner: "ana", Due: now.AddDate(0, 0, 5), Expires: now.AddDate(0, 0, 10), Amount: decimal.NewFromInt(1200)},
		{ID: "2", Project: "p2", Title: "Concrete pour", Vendor: "Rock Co", Status: "pending", Category: "civil", Owner: "ben", Due: now.AddDate(0, 1, 0), Amount: decimal.NewFromInt(800)},
		{ID: "3", Project: "p3", Title: "Electrical rough-in", Vendor: "Spark LLC", Status: "expired", Category: "mep", Owner: "ana", Expires: now.AddDate(0, 0, 10), Amount: decimal.NewFromInt(300)},
		{ID: "4", Project: "p1", Title: "HVAC ducts", Vendor: "Air Flow", Status: "approved", Category: "mep", Owner: "cy", Due: now.AddDate(0, 0, -3), Expires: now.AddDate(0, 2, 0), Amount: decimal.NewFromInt(450)},
		{ID: "5", Project: "p2", Title: "Steel stairs", Vendor: "Acme Steel", Status: "approved", Category: "structural", Owner: "ben", Amount: decimal.NewFromInt(50)},
	}
}

func enterprise() scope.Scope {
	return scope.Scope{Kind: scope.KindEnterprise}
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.ID)
	}
	return out
}

func TestFilter_NoCriteriaKeepsEverythingInOrder(t *testing.T) {
	got := pipeline.Filter(fixture(), enterprise(), pipeline.FilterState{}, itemSpec())
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(got))
}

func TestFilter_SingleProjectScope(t *testing.T) {
	sc := scope.Scope{Kind: scope.KindSingle, ProjectIDs: []string{"p1"}}
	got := pipeline.Filter(fixture(), sc, pipeline.FilterState{}, itemSpec())
	require.Equal(t, []string{"1", "4"}, ids(got))
}

func TestFilter_LimitedScopeSeesNothing(t *testing.T) {
	got := pipeline.Filter(fixture(), scope.Scope{Kind: scope.KindSingle}, pipeline.FilterState{}, itemSpec())
	require.Empty(t, got)
}

func TestFilter_SearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	got := pipeline.Filter(fixture(), enterprise(), pipeline.FilterState{Search: "  acme STEEL "}, itemSpec())
	require.Equal(t, []string{"1", "5"}, ids(got))

	got = pipeline.Filter(fixture(), enterprise(), pipeline.FilterState{Search: "rough"}, itemSpec())
	require.Equal(t, []string{"3"}, ids(got))
}

func TestFilter_SearchWithNoMatchGivesEmptyStats(t *testing.T) {
	spec := itemSpec()
	got := pipeline.Filter(fixture(), enterprise(), pipeline.FilterState{Search: "no such thing"}, spec)
	require.Empty(t, got)

	stats := pipeline.Aggregate(got, spec)
	require.Zero(t, stats.Total)
	for name, rate := range stats.Rates {
		require.Zero(t, rate, name)
	}
}

func TestFilter_EqualityAndSentinel(t *testing.T) {
	f := pipeline.FilterState{Equals: map[string]string{
		pipeline.FieldStatus:   "approved",
		pipeline.FieldCategory: "ALL",
		pipeline.FieldAssignee: "",
		"unknown":              "x",
	}}
	got := pipeline.Filter(fixture(), enterprise(), f, itemSpec())
	require.Equal(t, []string{"1", "4", "5"}, ids(got))

	f.Equals[pipeline.FieldAssignee] = "ana"
	got = pipeline.Filter(fixture(), enterprise(), f, itemSpec())
	require.Equal(t, []string{"1"}, ids(got))
}

func TestFilter_DateRangeIsInclusive(t *testing.T) {
	from := now.AddDate(0, 0, -3)
	to := now.AddDate(0, 0, 5)
	got := pipeline.Filter(fixture(), enterprise(), pipeline.FilterState{From: &from, To: &to}, itemSpec())
	require.Equal(t, []string{"1", "4"}, ids(got))
}

func TestFilter_InvertedDateRangeIsIgnored(t *testing.T) {
	from := now.AddDate(0, 1, 0)
	to := now
	got := pipeline.Filter(fixture(), enterprise(), pipeline.FilterState{From: &from, To: &to}, itemSpec())
	require.Len(t, got, 5)
}

func TestFilter_AmountRange(t *testing.T) {
	lo := decimal.NewFromInt(300)
	hi := decimal.NewFromInt(1000)
	f := pipeline.FilterState{Amounts: map[string]pipeline.AmountRange{"amount": {Min: &lo, Max: &hi}}}
	got := pipeline.Filter(fixture(), enterprise(), f, itemSpec())
	require.Equal(t, []string{"2", "3", "4"}, ids(got))

	f.Amounts["amount"] = pipeline.AmountRange{Min: &hi, Max: &lo}
	got = pipeline.Filter(fixture(), enterprise(), f, itemSpec())
	require.Len(t, got, 5)
}

func TestFilter_ExpiringFlag(t *testing.T) {
	f := pipeline.FilterState{Flags: []string{"expiring", "bogus"}, WithinDays: 30, Now: now}
	got := pipeline.Filter(fixture(), enterprise(), f, itemSpec())
	// item 3 expires in 10 days too but is already expired.
	require.Equal(t, []string{"1"}, ids(got))
}

func TestFilter_DefaultWindow(t *testing.T) {
	f := pipeline.FilterState{Flags: []string{"expiring"}, Now: now}
	got := pipeline.Filter(fixture(), enterprise(), f, itemSpec())
	require.Equal(t, []string{"1"}, ids(got))
}

func TestFilter_Properties(t *testing.T) {
	spec := itemSpec()
	from := now.AddDate(0, 0, -10)
	states := []pipeline.FilterState{
		{},
		{Search: "steel"},
		{Equals: map[string]string{pipeline.FieldStatus: "approved"}},
		{From: &from},
		{Flags: []string{"expiring"}, Now: now},
		{Search: "e", Equals: map[string]string{pipeline.FieldCategory: "mep"}},
	}
	scopes := []scope.Scope{
		enterprise(),
		{Kind: scope.KindPortfolio, ProjectIDs: []string{"p1", "p2"}},
		{Kind: scope.KindSingle, ProjectIDs: []string{"p3"}},
	}

	for _, sc := range scopes {
		base := pipeline.Filter(fixture(), sc, pipeline.FilterState{}, spec)
		baseIDs := map[string]bool{}
		for _, i := range base {
			baseIDs[i.ID] = true
		}
		for _, f := range states {
			once := pipeline.Filter(fixture(), sc, f, spec)
			twice := pipeline.Filter(once, sc, f, spec)
			require.Equal(t, once, twice, "idempotent")
			require.LessOrEqual(t, len(once), len(base), "narrowing")
			for _, i := range once {
				require.True(t, baseIDs[i.ID], "subset")
			}
		}
	}
}

func TestAggregate(t *testing.T) {
	stats := pipeline.Aggregate(fixture(), itemSpec())

	require.Equal(t, 5, stats.Total)
	require.Equal(t, map[string]int{"approved": 3, "pending": 1, "expired": 1}, stats.ByStatus)
	require.Equal(t, []pipeline.CategoryCount{
		{Category: "structural", Count: 2},
		{Category: "civil", Count: 1},
		{Category: "mep", Count: 2},
	}, stats.ByCategory)
	require.InDelta(t, 60.0, stats.Rates["approval_rate"], 1e-9)
	require.True(t, decimal.NewFromInt(2800).Equal(stats.Totals["amount"]))

	sum := 0
	for _, n := range stats.ByStatus {
		sum += n
	}
	require.Equal(t, stats.Total, sum)
}

func TestAggregate_EmptyHasNoNaN(t *testing.T) {
	stats := pipeline.Aggregate([]item{}, itemSpec())
	require.Zero(t, stats.Total)
	require.Contains(t, stats.Rates, "approval_rate")
	for _, rate := range stats.Rates {
		require.False(t, math.IsNaN(rate))
		require.Zero(t, rate)
	}
	require.True(t, stats.Totals["amount"].IsZero())
}

func TestRate(t *testing.T) {
	require.Zero(t, pipeline.Rate(0, 0))
	require.InDelta(t, 50.0, pipeline.Rate(1, 2), 1e-9)
}

func TestParseDate(t *testing.T) {
	require.Nil(t, pipeline.ParseDate("", false))
	require.Nil(t, pipeline.ParseDate("03/01/2025", false))

	from := pipeline.ParseDate("2025-03-01", false)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *from)

	to := pipeline.ParseDate("2025-03-01", true)
	require.Equal(t, time.Date(2025, 3, 1, 23, 59, 59, 999999999, time.UTC), *to)

	ts := pipeline.ParseDate("2025-03-01T08:30:00Z", true)
	require.Equal(t, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), *ts)
}

func TestParseAmount(t *testing.T) {
	require.Nil(t, pipeline.ParseAmount(" "))
	require.Nil(t, pipeline.ParseAmount("12k"))
	require.True(t, decimal.RequireFromString("1250.5").Equal(*pipeline.ParseAmount("1250.50")))
}
