package aggregate

import (
	"time"

	"github.com/montanaflynn/stats"

	"product-dashboard/internal/models"
)

func mean(data stats.Float64Data) float64 {
	if len(data) == 0 {
		return 0
	}
	m, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

func column(records []models.Product, f Field) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(records))
	for _, p := range records {
		out = append(out, f.value(p))
	}
	return out
}

func ref(p models.Product) models.ProductRef {
	return models.ProductRef{ID: p.ID, Name: p.Name, Price: Round2(p.Price)}
}

// Summarize computes the KPI cards. An empty input yields the zero summary
// with an empty category distribution.
func Summarize(records []models.Product, now time.Time, th Thresholds) models.Summary {
	s := models.Summary{CategoryCounts: make(map[string]int)}
	if len(records) == 0 {
		return s
	}

	s.TotalProducts = len(records)
	s.TotalStock = int(SumBy(records, Quantity))
	s.StockValue = Round2(SumBy(records, Value))
	s.MeanRating = Round2(mean(column(records, Rating)))
	s.MeanWarranty = Round2(mean(column(records, Warranty)))
	s.NearExpiry = len(NearExpiry(records, now, th.ExpiryMonths))
	s.LowStock = len(LowStock(records, th.LowStockReorder))

	byPrice := SortBy(records, Price, Descending)
	s.MostExpensive = ref(byPrice[0])
	s.LeastExpensive = ref(SortBy(records, Price, Ascending)[0])

	for _, g := range GroupBy(records, ByCategory) {
		s.CategoryCounts[g.Key] = g.Count
	}
	return s
}
