package aggregate

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"product-dashboard/internal/models"
)

// Window is a relative period ending now.
type Window string

const (
	WindowAll     Window = "all"
	WindowMonth   Window = "1m"
	WindowQuarter Window = "3m"
	WindowHalf    Window = "6m"
	WindowYear    Window = "1y"
)

var windowAliases = map[string]Window{
	"":          WindowAll,
	"all":       WindowAll,
	"todos":     WindowAll,
	"1m":        WindowMonth,
	"month":     WindowMonth,
	"mes":       WindowMonth,
	"3m":        WindowQuarter,
	"quarter":   WindowQuarter,
	"trimestre": WindowQuarter,
	"6m":        WindowHalf,
	"semester":  WindowHalf,
	"semestre":  WindowHalf,
	"1y":        WindowYear,
	"12m":       WindowYear,
	"year":      WindowYear,
	"ano":       WindowYear,
}

func ParseWindow(s string) (Window, error) {
	w, ok := windowAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return WindowAll, fmt.Errorf("unknown period %q", s)
	}
	return w, nil
}

// Start returns the inclusive lower bound of the window. The zero time is
// returned for WindowAll.
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	case WindowQuarter:
		return now.AddDate(0, -3, 0)
	case WindowHalf:
		return now.AddDate(0, -6, 0)
	case WindowYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// FilterByPeriod keeps the records produced within [now-window, now]. With
// WindowAll every record is kept, including those without a usable date.
func FilterByPeriod(records []models.Product, w Window, now time.Time) []models.Product {
	if w == WindowAll {
		out := make([]models.Product, len(records))
		copy(out, records)
		return out
	}
	start := w.Start(now)
	return filter(records, func(p models.Product) bool {
		made, ok := ParseDate(p.ProductionDate, now.Location())
		return ok && !made.Before(start) && !made.After(now)
	})
}

// MonthlyProduction buckets records by production month, oldest first.
// Records without a parseable production date are left out.
func MonthlyProduction(records []models.Product, loc *time.Location) []models.MonthlyBucket {
	buckets := make(map[string]*models.MonthlyBucket)
	for _, p := range records {
		made, ok := ParseDate(p.ProductionDate, loc)
		if !ok {
			continue
		}
		month := made.Format("2006-01")
		b := buckets[month]
		if b == nil {
			b = &models.MonthlyBucket{Month: month}
			buckets[month] = b
		}
		b.Products++
		b.Stock += p.Quantity
	}

	out := make([]models.MonthlyBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b models.MonthlyBucket) int {
		return strings.Compare(a.Month, b.Month)
	})
	return out
}
