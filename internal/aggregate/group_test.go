package aggregate

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"product-dashboard/internal/models"
)

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: "P1", Name: "Laptop", Category: "Electronics", Price: 1000, Quantity: 8, Rating: 4.8, TotalSales: 120, Color: "Black", Size: "M", Tags: []string{"tech", "office"}},
		{ID: "P2", Name: "Mouse", Category: "Electronics", Price: 25, Quantity: 150, Rating: 4.1, TotalSales: 900, Color: "Black", Size: "S", Tags: []string{"tech"}},
		{ID: "P3", Name: "Chair", Category: "Furniture", Price: 300, Quantity: 15, Rating: 3.9, TotalSales: 40, Color: "Grey", Size: "L"},
		{ID: "P4", Name: "Desk", Category: "Furniture", Price: 450, Quantity: 0, Rating: 4.6, TotalSales: 25, Size: "L", Tags: []string{"office"}},
		{ID: "P5", Name: "Yogurt", Category: "Food", Price: 2.5, Quantity: 60, Rating: 4.5, TotalSales: 3000, Color: "White", Size: "S"},
	}
}

func TestGroupBy_CategoryScenario(t *testing.T) {
	records := []models.Product{
		{Category: "A", Quantity: 5, Price: 10},
		{Category: "A", Quantity: 15, Price: 20},
		{Category: "B", Quantity: 100, Price: 5},
	}

	groups := GroupBy(records, ByCategory)

	want := map[string]models.Group{
		"A": {Key: "A", Count: 2, Stock: 20, StockValue: 350},
		"B": {Key: "B", Count: 1, Stock: 100, StockValue: 500},
	}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for key, w := range want {
		g, ok := groups[key]
		if !ok {
			t.Fatalf("missing group %q", key)
		}
		if diff := cmp.Diff(w, *g); diff != "" {
			t.Errorf("group %q mismatch (-want +got):\n%s", key, diff)
		}
	}
}

func TestGroupBy_Empty(t *testing.T) {
	groups := GroupBy(nil, ByCategory)
	if groups == nil {
		t.Fatal("expected empty map, got nil")
	}
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestGroupBy_CountsSumToInput(t *testing.T) {
	records := sampleProducts()
	for name, key := range map[string]KeyFunc{"category": ByCategory, "color": ByColor, "size": BySize} {
		t.Run(name, func(t *testing.T) {
			groups := GroupBy(records, key)
			if got := int(groups.Total(ByCount)); got != len(records) {
				t.Errorf("counts sum to %d, want %d", got, len(records))
			}
		})
	}
}

func TestGroupBy_SumsMatchUngroupedTotals(t *testing.T) {
	records := sampleProducts()
	groups := GroupBy(records, ByCategory)

	tests := []struct {
		name   string
		metric Metric
		field  Field
	}{
		{"stock", ByStock, Quantity},
		{"sales", BySales, Sales},
		{"stock value", ByStockValue, Value},
		{"revenue", ByRevenue, Revenue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grouped := groups.Total(tt.metric)
			total := SumBy(records, tt.field)
			if math.Abs(grouped-total) > 1e-9 {
				t.Errorf("grouped total %f != ungrouped total %f", grouped, total)
			}
		})
	}
}

func TestGroupBy_IncrementalMeanRating(t *testing.T) {
	groups := GroupBy(sampleProducts(), ByCategory)
	got := groups["Furniture"].MeanRating
	want := (3.9 + 4.6) / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("mean rating = %f, want %f", got, want)
	}
}

func TestGroupBy_TagsContributeIndependently(t *testing.T) {
	records := []models.Product{
		{Category: "X", Quantity: 3, Tags: []string{"a,b"}},
		{Category: "X", Quantity: 4, Tags: []string{"b"}},
		{Category: "Y", Quantity: 5},
	}

	groups := GroupBy(records, ByTag)

	counts := map[string]int{}
	for k, g := range groups {
		counts[k] = g.Count
	}
	want := map[string]int{"a": 1, "b": 2, "Y": 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("tag counts mismatch (-want +got):\n%s", diff)
	}
	if groups["b"].Stock != 7 {
		t.Errorf("tag b stock = %d, want 7", groups["b"].Stock)
	}
}

func TestGroupBy_MissingKeysGroupAsUnknown(t *testing.T) {
	groups := GroupBy(sampleProducts(), ByColor)
	if g, ok := groups["N/A"]; !ok || g.Count != 1 {
		t.Errorf("expected one product under N/A, got %+v", groups["N/A"])
	}
}

func TestGroups_Sorted(t *testing.T) {
	sorted := GroupBy(sampleProducts(), ByCategory).Sorted(ByStock, Descending)
	keys := make([]string, len(sorted))
	for i, g := range sorted {
		keys[i] = g.Key
	}
	want := []string{"Electronics", "Food", "Furniture"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTagBreakdown(t *testing.T) {
	breakdown := TagBreakdown(sampleProducts())

	for _, g := range breakdown {
		if g.Stock <= 0 {
			t.Errorf("tag %q has no stock and should be dropped", g.Key)
		}
	}

	got := make(map[string]float64)
	for _, g := range breakdown {
		got[g.Key] = g.Share
	}
	// total stock is 233; tech = 158, office = 8, Furniture = 15, Food = 60
	want := map[string]float64{"tech": 67.8, "office": 3.4, "Furniture": 6.4, "Food": 25.8}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 0.05)); diff != "" {
		t.Errorf("shares mismatch (-want +got):\n%s", diff)
	}
}
