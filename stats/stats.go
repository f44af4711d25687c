package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"civic-reports-service/models"
)

// Dashboard aggregates the catalog for the admin surface. It is computed
// from a report snapshot and never mutates it.
type Dashboard struct {
	TotalReports      int             `json:"total_reports"`
	PendingReports    int             `json:"pending_reports"`
	InProgressReports int             `json:"in_progress_reports"`
	ResolvedReports   int             `json:"resolved_reports"`
	ResolutionRate    decimal.Decimal `json:"resolution_rate"`
	Categories        []CategoryCount `json:"categories"`
	Monthly           []MonthlyCount  `json:"monthly"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthlyCount is one month of submissions and resolutions, keyed
// "2006-01".
type MonthlyCount struct {
	Month     string `json:"month"`
	Submitted int    `json:"submitted"`
	Resolved  int    `json:"resolved"`
}

// Compute derives the dashboard numbers from a report collection.
func Compute(reports []models.Report) Dashboard {
	d := Dashboard{TotalReports: len(reports)}

	categories := make(map[string]int)
	monthly := make(map[string]*MonthlyCount)

	for _, r := range reports {
		switch r.Status {
		case models.StatusPending:
			d.PendingReports++
		case models.StatusInProgress:
			d.InProgressReports++
		case models.StatusResolved:
			d.ResolvedReports++
		}
		categories[r.Category]++

		month := r.CreatedAt.Format("2006-01")
		mc, ok := monthly[month]
		if !ok {
			mc = &MonthlyCount{Month: month}
			monthly[month] = mc
		}
		mc.Submitted++
		if r.Status == models.StatusResolved {
			mc.Resolved++
		}
	}

	if d.TotalReports > 0 {
		d.ResolutionRate = decimal.NewFromInt(int64(d.ResolvedReports)).
			Div(decimal.NewFromInt(int64(d.TotalReports))).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}

	for category, count := range categories {
		d.Categories = append(d.Categories, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(d.Categories, func(i, j int) bool {
		if d.Categories[i].Count != d.Categories[j].Count {
			return d.Categories[i].Count > d.Categories[j].Count
		}
		return d.Categories[i].Category < d.Categories[j].Category
	})

	for _, mc := range monthly {
		d.Monthly = append(d.Monthly, *mc)
	}
	sort.Slice(d.Monthly, func(i, j int) bool { return d.Monthly[i].Month < d.Monthly[j].Month })

	return d
}
