package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"product-dashboard/internal/models"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := sampleProducts()
	records[4].ExpirationDate = "10/04/2024"
	records[0].WarrantyPeriod = 24
	records[3].WarrantyPeriod = 12

	got := Summarize(records, now, DefaultThresholds())

	want := models.Summary{
		TotalProducts:  5,
		TotalStock:     233,
		StockValue:     16400,
		MeanRating:     4.38,
		MeanWarranty:   7.2,
		NearExpiry:     1,
		LowStock:       3,
		MostExpensive:  models.ProductRef{ID: "P1", Name: "Laptop", Price: 1000},
		LeastExpensive: models.ProductRef{ID: "P5", Name: "Yogurt", Price: 2.5},
		CategoryCounts: map[string]int{"Electronics": 2, "Furniture": 2, "Food": 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, time.Now(), DefaultThresholds())
	if got.TotalProducts != 0 || got.StockValue != 0 || got.MeanRating != 0 {
		t.Errorf("expected zero summary, got %+v", got)
	}
	if got.CategoryCounts == nil {
		t.Error("category distribution should be empty, not nil")
	}
}

func TestSales(t *testing.T) {
	records := sampleProducts()

	byCategory := SalesByCategory(records)
	if len(byCategory) != 3 || byCategory[0].Key != "Food" {
		t.Fatalf("expected Food to lead sales, got %+v", byCategory)
	}
	if byCategory[0].Revenue != 7500 {
		t.Errorf("Food revenue = %v, want 7500", byCategory[0].Revenue)
	}

	top := TopSellers(records, 2)
	if diff := cmp.Diff([]string{"P5", "P2"}, ids(top)); diff != "" {
		t.Errorf("TopSellers mismatch:\n%s", diff)
	}

	totals := Totals(records)
	// 120000 + 22500 + 12000 + 11250 + 7500
	if totals.Units != 4085 || totals.Revenue != 173250 {
		t.Errorf("unexpected totals: %+v", totals)
	}
	if totals.AverageTicket != 42.41 {
		t.Errorf("average ticket = %v, want 42.41", totals.AverageTicket)
	}

	if empty := Totals(nil); empty.AverageTicket != 0 {
		t.Errorf("average ticket without sales should be 0, got %v", empty.AverageTicket)
	}
}
