package aggregate

import "product-dashboard/internal/models"

// SalesByCategory ranks categories by units sold.
func SalesByCategory(records []models.Product) []models.Group {
	return GroupBy(records, ByCategory).Sorted(BySales, Descending)
}

// TopSellers returns the n best selling products.
func TopSellers(records []models.Product, n int) []models.Product {
	return TopN(records, Sales, Descending, n)
}

// Totals sums units and revenue. The average ticket is zero when nothing sold.
func Totals(records []models.Product) models.SalesTotals {
	t := models.SalesTotals{
		Units:   int(SumBy(records, Sales)),
		Revenue: SumBy(records, Revenue),
	}
	if t.Units > 0 {
		t.AverageTicket = Round2(t.Revenue / float64(t.Units))
	}
	t.Revenue = Round2(t.Revenue)
	return t
}
