package aggregate

import (
	"cmp"
	"slices"

	"product-dashboard/internal/models"
)

// SortBy returns a copy of records stably ordered by field. Products missing
// the field sort as zero.
func SortBy(records []models.Product, f Field, dir Direction) []models.Product {
	out := make([]models.Product, len(records))
	copy(out, records)
	slices.SortStableFunc(out, func(a, b models.Product) int {
		c := cmp.Compare(f.value(a), f.value(b))
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}

// TopN returns the first n records by field. Equal keys keep their input
// order, so ranking an already ranked prefix is a no-op.
func TopN(records []models.Product, f Field, dir Direction, n int) []models.Product {
	if n <= 0 {
		return []models.Product{}
	}
	sorted := SortBy(records, f, dir)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
