// Package overview reduces a user's transactions and budgets into a
// month-keyed summary for charting.
package overview

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RecurringCategory is the category whose transactions are reported per
// subcategory instead of as a single total.
const RecurringCategory = "Recurring"

// BudgetKey is the month-entry key holding the month's budget ceiling.
const BudgetKey = "budget"

// MonthKeyLayout formats a date as its month key, e.g. "2025-01".
const MonthKeyLayout = "2006-01"

// Transaction is the slice of a transaction the aggregation needs.
type Transaction struct {
	Category    string
	Subcategory string
	Date        time.Time
	Amount      decimal.Decimal // canonical currency
}

// Budget is the slice of a budget the aggregation needs.
type Budget struct {
	StartDate time.Time
	Limit     decimal.Decimal
}

// MonthEntry is the summary of one month.
type MonthEntry struct {
	Budget     *decimal.Decimal
	Categories map[string]decimal.Decimal
	Recurring  map[string]decimal.Decimal
}

// Total returns everything spent in the month.
func (e *MonthEntry) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range e.Categories {
		total = total.Add(v)
	}
	for _, v := range e.Recurring {
		total = total.Add(v)
	}
	return total
}

// MarshalJSON renders the entry as a flat object: "budget", one key per
// category, and a nested "Recurring" object keyed by subcategory.
func (e *MonthEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Categories)+2)
	for name, v := range e.Categories {
		out[name] = number(v)
	}
	if len(e.Recurring) > 0 {
		rec := make(map[string]json.RawMessage, len(e.Recurring))
		for name, v := range e.Recurring {
			rec[name] = number(v)
		}
		out[RecurringCategory] = rec
	}
	if e.Budget != nil {
		out[BudgetKey] = number(*e.Budget)
	}
	return json.Marshal(out)
}

func number(d decimal.Decimal) json.RawMessage {
	return json.RawMessage(d.StringFixed(2))
}

// Overview is the aggregation result.
type Overview struct {
	MonthlyData        map[string]*MonthEntry `json:"monthly_data"`
	Months             []string               `json:"months"`
	FilteredCategories []string               `json:"filtered_categories"`
}

// MonthKey returns the month key of t.
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthKeyLayout)
}

// Aggregate builds the overview. Budgets starting in the same month are
// summed into that month's ceiling.
func Aggregate(transactions []Transaction, budgets []Budget) Overview {
	data := make(map[string]*MonthEntry)
	entry := func(month string) *MonthEntry {
		e, ok := data[month]
		if !ok {
			e = &MonthEntry{
				Categories: make(map[string]decimal.Decimal),
				Recurring:  make(map[string]decimal.Decimal),
			}
			data[month] = e
		}
		return e
	}

	for _, b := range budgets {
		e := entry(MonthKey(b.StartDate))
		limit := b.Limit
		if e.Budget != nil {
			limit = e.Budget.Add(limit)
		}
		e.Budget = &limit
	}

	seen := make(map[string]bool)
	for _, t := range transactions {
		e := entry(MonthKey(t.Date))
		if t.Category == RecurringCategory {
			e.Recurring[t.Subcategory] = e.Recurring[t.Subcategory].Add(t.Amount)
			continue
		}
		e.Categories[t.Category] = e.Categories[t.Category].Add(t.Amount)
		seen[t.Category] = true
	}

	months := make([]string, 0, len(data))
	for m := range data {
		months = append(months, m)
	}
	sort.Strings(months)

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return Overview{
		MonthlyData:        data,
		Months:             months,
		FilteredCategories: categories,
	}
}

// RecurringSubcategories returns every recurring subcategory that appears in
// any month, sorted.
func (o Overview) RecurringSubcategories() []string {
	seen := make(map[string]bool)
	for _, e := range o.MonthlyData {
		for name := range e.Recurring {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
