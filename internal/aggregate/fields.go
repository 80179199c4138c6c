// Package aggregate derives dashboard views from an immutable slice of
// product records. Every function here is pure: it never mutates its input
// and keeps no state between calls.
package aggregate

import (
	"fmt"
	"strings"

	"product-dashboard/internal/models"
)

// Field extracts a numeric value from a product. The boolean reports whether
// the product carries the value at all.
type Field struct {
	Name    string
	Extract func(models.Product) (float64, bool)
}

func always(fn func(models.Product) float64) func(models.Product) (float64, bool) {
	return func(p models.Product) (float64, bool) { return fn(p), true }
}

var (
	Price    = Field{"price", always(func(p models.Product) float64 { return p.Price })}
	Quantity = Field{"quantity", always(func(p models.Product) float64 { return float64(p.Quantity) })}
	Rating   = Field{"rating", always(func(p models.Product) float64 { return p.Rating })}
	Sales    = Field{"sales", always(func(p models.Product) float64 { return float64(p.TotalSales) })}
	Warranty = Field{"warranty", always(func(p models.Product) float64 { return float64(p.WarrantyPeriod) })}
	Value    = Field{"stock_value", always(models.Product.StockValue)}
	Revenue  = Field{"revenue", always(models.Product.Revenue)}
	Volume   = Field{"volume", func(p models.Product) (float64, bool) { return p.Dimensions.Volume() }}
	Cost     = Field{"cost", func(p models.Product) (float64, bool) {
		if p.ProductionCost == nil {
			return 0, false
		}
		return *p.ProductionCost, true
	}}
)

var fieldsByName = map[string]Field{
	"price":       Price,
	"quantity":    Quantity,
	"stock":       Quantity,
	"rating":      Rating,
	"sales":       Sales,
	"warranty":    Warranty,
	"stock_value": Value,
	"value":       Value,
	"revenue":     Revenue,
	"volume":      Volume,
	"cost":        Cost,
}

// ParseField resolves a field by its query-string name.
func ParseField(name string) (Field, error) {
	f, ok := fieldsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Field{}, fmt.Errorf("unknown field %q", name)
	}
	return f, nil
}

// value is the extractor result with missing values read as zero.
func (f Field) value(p models.Product) float64 {
	v, _ := f.Extract(p)
	return v
}

type Direction int

const (
	Descending Direction = iota
	Ascending
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	default:
		return Descending, fmt.Errorf("unknown sort direction %q", s)
	}
}

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}
