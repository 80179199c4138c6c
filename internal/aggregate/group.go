package aggregate

import (
	"cmp"
	"slices"

	"product-dashboard/internal/models"
)

const unknownKey = "N/A"

// KeyFunc returns the group keys a product contributes to. A product may
// belong to several groups (tags) or to none.
type KeyFunc func(models.Product) []string

func orUnknown(s string) []string {
	if s == "" {
		return []string{unknownKey}
	}
	return []string{s}
}

func ByCategory(p models.Product) []string { return orUnknown(p.Category) }
func ByColor(p models.Product) []string    { return orUnknown(p.Color) }
func BySize(p models.Product) []string     { return orUnknown(p.Size) }

// ByTag uses the product's tags, or its category when it has none.
func ByTag(p models.Product) []string {
	var tags []string
	for _, t := range p.Tags {
		tags = append(tags, models.SplitTags(t)...)
	}
	if len(tags) == 0 && p.Category != "" {
		return []string{p.Category}
	}
	return tags
}

type Groups map[string]*models.Group

// GroupBy folds records into per-key aggregates. The rating mean is kept
// incrementally, so it is valid after every record.
func GroupBy(records []models.Product, key KeyFunc) Groups {
	groups := make(Groups)
	for _, p := range records {
		for _, k := range key(p) {
			g := groups[k]
			if g == nil {
				g = &models.Group{Key: k}
				groups[k] = g
			}
			g.Count++
			g.Stock += p.Quantity
			g.Sales += p.TotalSales
			g.StockValue += p.StockValue()
			g.Revenue += p.Revenue()
			g.RatingSum += p.Rating
			g.MeanRating = g.RatingSum / float64(g.Count)
		}
	}
	return groups
}

// Metric selects the summed value of a group.
type Metric func(models.Group) float64

var (
	ByCount      Metric = func(g models.Group) float64 { return float64(g.Count) }
	ByStock      Metric = func(g models.Group) float64 { return float64(g.Stock) }
	BySales      Metric = func(g models.Group) float64 { return float64(g.Sales) }
	ByStockValue Metric = func(g models.Group) float64 { return g.StockValue }
	ByRevenue    Metric = func(g models.Group) float64 { return g.Revenue }
	ByMeanRating Metric = func(g models.Group) float64 { return g.MeanRating }
)

// Total sums a metric across all groups.
func (gs Groups) Total(m Metric) float64 {
	var total float64
	for _, g := range gs {
		total += m(*g)
	}
	return total
}

// Sorted returns the groups ordered by metric, ties broken by key.
func (gs Groups) Sorted(m Metric, dir Direction) []models.Group {
	out := make([]models.Group, 0, len(gs))
	for _, g := range gs {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b models.Group) int {
		c := cmp.Compare(m(a), m(b))
		if dir == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// SumBy totals a field over the ungrouped records.
func SumBy(records []models.Product, f Field) float64 {
	var total float64
	for _, p := range records {
		total += f.value(p)
	}
	return total
}

// TagBreakdown groups by tag, drops tags without stock and fills each
// group's share of the total stock, in percent with one decimal.
func TagBreakdown(records []models.Product) []models.Group {
	totalStock := SumBy(records, Quantity)
	groups := GroupBy(records, ByTag)
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups.Sorted(ByStock, Descending) {
		if g.Stock <= 0 {
			continue
		}
		if totalStock > 0 {
			g.Share = round(float64(g.Stock)/totalStock*100, 1)
		}
		out = append(out, g)
	}
	return out
}
