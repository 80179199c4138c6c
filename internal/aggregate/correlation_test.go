package aggregate

import (
	"math"
	"testing"

	"product-dashboard/internal/models"
)

func TestPearson_Symmetric(t *testing.T) {
	records := sampleProducts()
	fields := []Field{Price, Quantity, Rating, Sales, Value}

	for _, x := range fields {
		for _, y := range fields {
			xy := Pearson(records, x, y)
			yx := Pearson(records, y, x)
			if xy != yx {
				t.Errorf("Pearson(%s,%s)=%v but Pearson(%s,%s)=%v", x.Name, y.Name, xy, y.Name, x.Name, yx)
			}
			if xy < -1 || xy > 1 || math.IsNaN(xy) {
				t.Errorf("Pearson(%s,%s)=%v out of range", x.Name, y.Name, xy)
			}
		}
	}
}

func TestPearson_SelfIsOne(t *testing.T) {
	records := sampleProducts()
	for _, f := range []Field{Price, Quantity, Rating, Sales} {
		if got := Pearson(records, f, f); math.Abs(got-1) > 1e-9 {
			t.Errorf("Pearson(%s,%s) = %v, want 1", f.Name, f.Name, got)
		}
	}
}

func TestPearson_ConstantFieldIsZero(t *testing.T) {
	records := []models.Product{
		{Price: 10, Quantity: 5},
		{Price: 20, Quantity: 5},
		{Price: 30, Quantity: 5},
	}
	if got := Pearson(records, Price, Quantity); got != 0 {
		t.Errorf("constant quantity should give 0, got %v", got)
	}
	if got := Pearson(records, Quantity, Quantity); got != 0 {
		t.Errorf("constant field with itself should give 0, got %v", got)
	}
}

func TestPearson_KnownValues(t *testing.T) {
	tests := []struct {
		name    string
		records []models.Product
		want    float64
	}{
		{
			name: "perfect positive",
			records: []models.Product{
				{Price: 1, Quantity: 2}, {Price: 2, Quantity: 4}, {Price: 3, Quantity: 6},
			},
			want: 1,
		},
		{
			name: "perfect negative",
			records: []models.Product{
				{Price: 1, Quantity: 30}, {Price: 2, Quantity: 20}, {Price: 3, Quantity: 10},
			},
			want: -1,
		},
		{
			name: "partial",
			records: []models.Product{
				{Price: 1, Quantity: 1}, {Price: 2, Quantity: 3}, {Price: 3, Quantity: 2},
			},
			want: 0.5,
		},
		{
			name:    "single record",
			records: []models.Product{{Price: 1, Quantity: 1}},
			want:    0,
		},
		{
			name: "empty",
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pearson(tt.records, Price, Quantity); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Pearson = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearson_ExcludesMissingFields(t *testing.T) {
	dims := func(h, w, l float64) *models.Dimensions { return &models.Dimensions{Height: h, Width: w, Length: l} }
	records := []models.Product{
		{Quantity: 10, Dimensions: dims(1, 1, 1)},
		{Quantity: 20, Dimensions: dims(2, 1, 1)},
		{Quantity: 30, Dimensions: dims(3, 1, 1)},
		{Quantity: 1000},
		{Quantity: 0, Dimensions: dims(0, 5, 5)},
	}

	c := Correlate(records, Volume, Quantity)
	if c.Pairs != 3 {
		t.Errorf("expected 3 usable pairs, got %d", c.Pairs)
	}
	if c.Coefficient != 1 {
		t.Errorf("coefficient = %v, want 1", c.Coefficient)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.456789); got != 0.46 {
		t.Errorf("Round2 = %v, want 0.46", got)
	}
}

func TestRatingVersusStock(t *testing.T) {
	m := RatingVersusStock(sampleProducts())

	if m.HighRatingHighStock != 1 || m.LowRatingHighStock != 1 || m.HighRatingLowStock != 2 || m.LowRatingLowStock != 1 {
		t.Errorf("unexpected quadrants: %+v", m)
	}
	if got := m.MeanStockByRating["4.5"]; got != 60 {
		t.Errorf("mean stock at rating 4.5 = %v, want 60", got)
	}
}
