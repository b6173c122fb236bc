package procurement_test

import (
	"testing"
	"time"

	"github.com/rpggio/jobsite/internal/domain/procurement"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/rpggio/jobsite/internal/scope"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func onSite(n int) *time.Time {
	t := now.AddDate(0, 0, n)
	return &t
}

func entries() []procurement.Entry {
	return []procurement.Entry{
		{ID: "1", ProjectID: "p1", Description: "Structural steel", Vendor: "Apex Steel", Category: "steel", Buyer: "kim", Status: procurement.StatusOrdered, ContractValue: decimal.RequireFromString("250000.00"), RequiredOnSite: onSite(-3)},
		{ID: "2", ProjectID: "p1", Description: "Curtain wall", Vendor: "Glassline", Category: "envelope", Buyer: "lee", Status: procurement.StatusBidding, ContractValue: decimal.RequireFromString("90000.50"), RequiredOnSite: onSite(20)},
		{ID: "3", ProjectID: "p2", Description: "Elevators", Vendor: "LiftCo", Category: "vertical", Buyer: "kim", Status: procurement.StatusDelivered, ContractValue: decimal.RequireFromString("120000"), RequiredOnSite: onSite(-30)},
	}
}

func TestOverdueFlag(t *testing.T) {
	got := pipeline.Filter(entries(), scope.Scope{Kind: scope.KindEnterprise},
		pipeline.FilterState{Flags: []string{procurement.FlagOverdue}, Now: now}, procurement.Spec())
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ID)
}

func TestContractValueRangeAndSearch(t *testing.T) {
	floor := decimal.NewFromInt(100000)
	got := pipeline.Filter(entries(), scope.Scope{Kind: scope.KindEnterprise}, pipeline.FilterState{
		Search:  "CO",
		Amounts: map[string]pipeline.AmountRange{procurement.AmountContractValue: {Min: &floor}},
	}, procurement.Spec())
	require.Len(t, got, 1)
	require.Equal(t, "3", got[0].ID)
}

func TestStats(t *testing.T) {
	stats := pipeline.Aggregate(entries(), procurement.Spec())
	require.Equal(t, 3, stats.Total)
	require.InDelta(t, 66.666, stats.Rates[procurement.RateAward], 0.01)
	require.InDelta(t, 33.333, stats.Rates[procurement.RateCompletion], 0.01)
	require.Equal(t, "460000.5", stats.Totals[procurement.AmountContractValue].String())
}

func TestApprove(t *testing.T) {
	e := procurement.Entry{Status: procurement.StatusBidding}
	require.NoError(t, procurement.Approve(&e, now))
	require.Equal(t, procurement.StatusAwarded, e.Status)

	delivered := procurement.Entry{Status: procurement.StatusDelivered}
	require.ErrorIs(t, procurement.Approve(&delivered, now), record.ErrInvalidTransition)
}

func TestValidation(t *testing.T) {
	e := entries()[0]
	require.NoError(t, record.Validate(e))

	e.Status = "shipped"
	require.ErrorIs(t, record.Validate(e), record.ErrInvalidInput)
}
