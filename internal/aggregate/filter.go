package aggregate

import (
	"time"

	"product-dashboard/internal/models"
)

const (
	// LowStockCritical is the cut-off used by the insight cards.
	LowStockCritical = 10
	// LowStockReorder is the cut-off used by the stock report and KPI count.
	LowStockReorder = 20

	DefaultExcessStock   = 100
	DefaultRatingCutoff  = 4.5
	DefaultExpiryHorizon = 3 // months
	DefaultInsightSize   = 5
)

// Thresholds parameterizes the threshold filters. The two low-stock cut-offs
// are deliberately separate values.
type Thresholds struct {
	LowStockCritical int
	LowStockReorder  int
	ExcessStock      int
	RatingCutoff     float64
	ExpiryMonths     int
	// FallbackOnEmpty substitutes the first records of the unfiltered input
	// when a filter matches nothing.
	FallbackOnEmpty bool
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		LowStockCritical: LowStockCritical,
		LowStockReorder:  LowStockReorder,
		ExcessStock:      DefaultExcessStock,
		RatingCutoff:     DefaultRatingCutoff,
		ExpiryMonths:     DefaultExpiryHorizon,
	}
}

func filter(records []models.Product, keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range records {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func limit(items []models.Product, n int) []models.Product {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func selection(matched, records []models.Product, n int, fallback bool) models.Selection {
	if len(matched) > 0 {
		return models.Selection{Items: limit(matched, n), Matched: true}
	}
	if fallback && len(records) > 0 {
		prefix := make([]models.Product, len(limit(records, n)))
		copy(prefix, records)
		return models.Selection{Items: prefix, Fallback: true}
	}
	return models.Selection{Items: []models.Product{}}
}

// LowStock returns every record with quantity below threshold, lowest first.
func LowStock(records []models.Product, threshold int) []models.Product {
	low := filter(records, func(p models.Product) bool { return p.Quantity < threshold })
	return SortBy(low, Quantity, Ascending)
}

// ExcessStock returns every record with quantity above threshold, highest first.
func ExcessStock(records []models.Product, threshold int) []models.Product {
	high := filter(records, func(p models.Product) bool { return p.Quantity > threshold })
	return SortBy(high, Quantity, Descending)
}

// LowRated returns every record rated below cutoff, lowest first.
func LowRated(records []models.Product, cutoff float64) []models.Product {
	low := filter(records, func(p models.Product) bool { return p.Rating < cutoff })
	return SortBy(low, Rating, Ascending)
}

// WellRated returns every record rated at or above cutoff, highest first.
func WellRated(records []models.Product, cutoff float64) []models.Product {
	high := filter(records, func(p models.Product) bool { return p.Rating >= cutoff })
	return SortBy(high, Rating, Descending)
}

// NearExpiry returns the records expiring after now and no later than
// months from now, in input order.
func NearExpiry(records []models.Product, now time.Time, months int) []models.Product {
	horizon := now.AddDate(0, months, 0)
	return filter(records, func(p models.Product) bool {
		exp, ok := ParseDate(p.ExpirationDate, now.Location())
		return ok && exp.After(now) && !exp.After(horizon)
	})
}

// MostValuable returns the n records with the highest stock value.
func MostValuable(records []models.Product, n int) []models.Product {
	return TopN(records, Value, Descending, n)
}

// BuildInsights computes the insight cards, n items per card.
func BuildInsights(records []models.Product, now time.Time, th Thresholds, n int) models.Insights {
	return models.Insights{
		LowStock:     selection(LowStock(records, th.LowStockCritical), records, n, th.FallbackOnEmpty),
		ExcessStock:  selection(ExcessStock(records, th.ExcessStock), records, n, th.FallbackOnEmpty),
		LowRated:     selection(LowRated(records, th.RatingCutoff), records, n, th.FallbackOnEmpty),
		WellRated:    selection(WellRated(records, th.RatingCutoff), records, n, th.FallbackOnEmpty),
		NearExpiry:   selection(NearExpiry(records, now, th.ExpiryMonths), records, n, th.FallbackOnEmpty),
		MostValuable: MostValuable(records, n),
	}
}
