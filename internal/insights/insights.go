// Package insights aggregates spending statistics over a batch of
// categorized transactions for the batch prediction response.
package insights

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Item is one categorized transaction amount.
type Item struct {
	Category string
	Amount   decimal.Decimal
}

// CategoryTotal is a category with its summed spending.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Summary holds aggregate spending figures for one batch.
type Summary struct {
	TotalSpent         decimal.Decimal            `json:"total_spent"`
	CategorySummary    map[string]decimal.Decimal `json:"category_summary"`
	TopCategories      []CategoryTotal            `json:"top_categories"`
	AverageTransaction decimal.Decimal            `json:"average_transaction"`
}

// topN is how many categories the top-spending list carries.
const topN = 3

// Summarize computes totals, per-category sums, the top spending
// categories, and the average transaction size. An empty input yields a
// zero-valued Summary.
func Summarize(items []Item) Summary {
	s := Summary{
		TotalSpent:      decimal.Zero,
		CategorySummary: make(map[string]decimal.Decimal),
	}
	if len(items) == 0 {
		return s
	}

	for _, it := range items {
		s.TotalSpent = s.TotalSpent.Add(it.Amount)
		s.CategorySummary[it.Category] = s.CategorySummary[it.Category].Add(it.Amount)
	}

	totals := make([]CategoryTotal, 0, len(s.CategorySummary))
	for cat, total := range s.CategorySummary {
		totals = append(totals, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].Category < totals[j].Category
	})
	if len(totals) > topN {
		totals = totals[:topN]
	}
	s.TopCategories = totals

	s.AverageTransaction = s.TotalSpent.Div(decimal.NewFromInt(int64(len(items)))).Round(2)
	return s
}
