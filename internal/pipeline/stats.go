package pipeline

import "github.com/shopspring/decimal"

// CategoryCount is one category bucket.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats is a read-only summary of a record list.
type Stats struct {
	Total      int                        `json:"total"`
	ByStatus   map[string]int             `json:"by_status"`
	ByCategory []CategoryCount            `json:"by_category"`
	Rates      map[string]float64         `json:"rates"`
	Totals     map[string]decimal.Decimal `json:"totals"`
}

// CategoryCounts returns ByCategory as a map.
func (s Stats) CategoryCounts() map[string]int {
	out := make(map[string]int, len(s.ByCategory))
	for _, c := range s.ByCategory {
		out[c.Category] = c.Count
	}
	return out
}

// Rate returns matching as a percentage of total. A zero total yields 0, not NaN.
func Rate(matching, total int) float64 {
	return float64(matching) / float64(max(total, 1)) * 100
}

// Aggregate summarises records in a single pass.
func Aggregate[T any](records []T, spec Spec[T]) Stats {
	stats := Stats{
		Total:      len(records),
		ByStatus:   make(map[string]int),
		ByCategory: []CategoryCount{},
		Rates:      make(map[string]float64, len(spec.Rates)),
		Totals:     make(map[string]decimal.Decimal, len(spec.Amounts)),
	}

	categoryIndex := make(map[string]int)
	matches := make(map[string]int, len(spec.Rates))
	for name := range spec.Amounts {
		stats.Totals[name] = decimal.Zero
	}

	for _, rec := range records {
		if spec.Status != nil {
			stats.ByStatus[spec.Status(rec)]++
		}
		if spec.Category != nil {
			category := spec.Category(rec)
			if idx, ok := categoryIndex[category]; ok {
				stats.ByCategory[idx].Count++
			} else {
				categoryIndex[category] = len(stats.ByCategory)
				stats.ByCategory = append(stats.ByCategory, CategoryCount{Category: category, Count: 1})
			}
		}
		for name, pred := range spec.Rates {
			if pred(rec) {
				matches[name]++
			}
		}
		for name, amount := range spec.Amounts {
			stats.Totals[name] = stats.Totals[name].Add(amount(rec))
		}
	}

	for name := range spec.Rates {
		stats.Rates[name] = Rate(matches[name], stats.Total)
	}
	return stats
}
