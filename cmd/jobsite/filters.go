package main

import (
	"strings"

	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/spf13/cobra"
)

type filterFlags struct {
	search     string
	equals     map[string]string
	from       string
	to         string
	flags      []string
	withinDays int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive text search")
	cmd.Flags().StringToStringVar(&f.equals, "where", nil, "Equality filters, e.g. --where status=approved,category=structural")
	cmd.Flags().StringVar(&f.from, "from", "", "Start of the date range (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&f.to, "to", "", "End of the date range, inclusive")
	cmd.Flags().StringSliceVar(&f.flags, "flag", nil, "Derived flags that must hold, e.g. expiring")
	cmd.Flags().IntVar(&f.withinDays, "within-days", 0, "Look-ahead window for date flags (default 30)")
}

func (f *filterFlags) state() pipeline.FilterState {
	equals := make(map[string]string, len(f.equals))
	for k, v := range f.equals {
		equals[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return pipeline.FilterState{
		Search:     f.search,
		Equals:     equals,
		From:       pipeline.ParseDate(f.from, false),
		To:         pipeline.ParseDate(f.to, true),
		Flags:      f.flags,
		WithinDays: f.withinDays,
	}
}
