package aggregate

import (
	"math"
	"strconv"

	"github.com/montanaflynn/stats"

	"product-dashboard/internal/models"
)

const (
	highRating = 4.5
	highStock  = 50
)

func round(v float64, places int) float64 {
	r, err := stats.Round(v, places)
	if err != nil {
		return v
	}
	return r
}

// Round2 rounds for display. Computation always uses full precision.
func Round2(v float64) float64 { return round(v, 2) }

// pairs collects the (x, y) values of the records carrying both fields.
func pairs(records []models.Product, x, y Field) (stats.Float64Data, stats.Float64Data) {
	xs := make(stats.Float64Data, 0, len(records))
	ys := make(stats.Float64Data, 0, len(records))
	for _, p := range records {
		xv, okX := x.Extract(p)
		yv, okY := y.Extract(p)
		if !okX || !okY {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}
	return xs, ys
}

// Pearson computes the product-moment correlation between two fields.
// Records missing either field are skipped. When either field has no
// variance, or fewer than two records remain, the coefficient is 0.
func Pearson(records []models.Product, x, y Field) float64 {
	xs, ys := pairs(records, x, y)
	if len(xs) < 2 {
		return 0
	}
	vx, _ := stats.PopulationVariance(xs)
	vy, _ := stats.PopulationVariance(ys)
	if vx == 0 || vy == 0 {
		return 0
	}
	r, err := stats.Pearson(xs, ys)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// Correlate wraps Pearson with the sample size and display rounding.
func Correlate(records []models.Product, x, y Field) models.Correlation {
	xs, _ := pairs(records, x, y)
	return models.Correlation{
		X:           x.Name,
		Y:           y.Name,
		Pairs:       len(xs),
		Coefficient: Round2(Pearson(records, x, y)),
	}
}

// RatingVersusStock splits the records into rating/stock quadrants and
// averages stock per rating rounded to one decimal.
func RatingVersusStock(records []models.Product) models.RatingStockMatrix {
	m := models.RatingStockMatrix{MeanStockByRating: make(map[string]float64)}
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, p := range records {
		hiRating := p.Rating >= highRating
		hiStock := p.Quantity >= highStock
		switch {
		case hiRating && hiStock:
			m.HighRatingHighStock++
		case !hiRating && hiStock:
			m.LowRatingHighStock++
		case hiRating && !hiStock:
			m.HighRatingLowStock++
		default:
			m.LowRatingLowStock++
		}

		bucket := strconv.FormatFloat(p.Rating, 'f', 1, 64)
		sums[bucket] += float64(p.Quantity)
		counts[bucket]++
	}

	for bucket, sum := range sums {
		m.MeanStockByRating[bucket] = sum / float64(counts[bucket])
	}
	return m
}
