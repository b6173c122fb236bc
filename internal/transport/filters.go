package transport

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/form"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/pipeline"
)

var decoder = form.NewDecoder()

type filterQuery struct {
	Search     string   `form:"search"`
	From       string   `form:"from"`
	To         string   `form:"to"`
	Flags      []string `form:"flag"`
	WithinDays string   `form:"within_days"`
}

// DecodeFilters reads a FilterState from query values. Equality keys and
// amount bounds are taken from the module descriptor; min_<amount> and
// max_<amount> bound an amount field. Values that fail to parse are dropped.
func DecodeFilters(values url.Values, desc record.Descriptor) pipeline.FilterState {
	var q filterQuery
	_ = decoder.Decode(&q, values)

	f := pipeline.FilterState{
		Search: strings.TrimSpace(q.Search),
		From:   pipeline.ParseDate(q.From, false),
		To:     pipeline.ParseDate(q.To, true),
	}

	for _, raw := range q.Flags {
		for _, flag := range strings.Split(raw, ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				f.Flags = append(f.Flags, flag)
			}
		}
	}
	if days, err := strconv.Atoi(q.WithinDays); err == nil && days > 0 {
		f.WithinDays = days
	}

	for _, key := range desc.Fields {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			if f.Equals == nil {
				f.Equals = make(map[string]string)
			}
			f.Equals[key] = v
		}
	}

	for _, name := range desc.Amounts {
		rng := pipeline.AmountRange{
			Min: pipeline.ParseAmount(values.Get("min_" + name)),
			Max: pipeline.ParseAmount(values.Get("max_" + name)),
		}
		if rng.Min == nil && rng.Max == nil {
			continue
		}
		if f.Amounts == nil {
			f.Amounts = make(map[string]pipeline.AmountRange)
		}
		f.Amounts[name] = rng
	}
	return f
}
