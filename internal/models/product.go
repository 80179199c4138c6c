package models

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// NotApplicable marks a date that does not apply to the product, such as the
// expiration date of non-perishable goods.
const NotApplicable = "N/A"

type Dimensions struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

// Volume is zero unless all three dimensions are positive.
func (d *Dimensions) Volume() (float64, bool) {
	if d == nil || d.Height <= 0 || d.Width <= 0 || d.Length <= 0 {
		return 0, false
	}
	return d.Height * d.Width * d.Length, true
}

type Product struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	Price          float64     `json:"price"`
	Quantity       int         `json:"quantity"`
	Rating         float64     `json:"rating"`
	TotalSales     int         `json:"total_sales"`
	WarrantyPeriod int         `json:"warranty_period"`
	ProductionDate string      `json:"production_date"`
	ExpirationDate string      `json:"expiration_date"`
	Color          string      `json:"color,omitempty"`
	Size           string      `json:"size,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	Dimensions     *Dimensions `json:"dimensions,omitempty"`
	ProductionCost *float64    `json:"production_cost,omitempty"`
}

// StockValue is the monetary value of the units on hand.
func (p Product) StockValue() float64 {
	return p.Price * float64(p.Quantity)
}

// Revenue is the monetary value of the units sold so far.
func (p Product) Revenue() float64 {
	return p.Price * float64(p.TotalSales)
}

var tagSeparator = regexp.MustCompile(`[,\s]+`)

// SplitTags breaks a delimited tag string into its non-empty tokens.
func SplitTags(raw string) []string {
	parts := tagSeparator.Split(raw, -1)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// wire keys used by the upstream catalogue API, followed by the keys this
// service emits itself.
var fieldAliases = map[string][]string{
	"id":              {"id", "_id"},
	"name":            {"nome", "name"},
	"description":     {"descricaoProduto", "description"},
	"category":        {"categoriaProduto", "category"},
	"price":           {"precoProduto", "price"},
	"quantity":        {"quantidadeProduto", "quantity"},
	"rating":          {"ratingProduto", "rating"},
	"total_sales":     {"vendasTotais", "total_sales"},
	"warranty_period": {"periodoGarantia", "warranty_period"},
	"production_date": {"dataProducao", "production_date"},
	"expiration_date": {"dataExpiracao", "expiration_date"},
	"color":           {"cor", "corProduto", "color"},
	"size":            {"tamanho", "size"},
	"tags":            {"tags"},
	"height":          {"Altura", "altura", "height"},
	"width":           {"Largura", "largura", "width"},
	"length":          {"Comprimento", "comprimento", "length"},
	"production_cost": {"custoProducao", "production_cost"},
}

func lookup(raw map[string]any, field string) (any, bool) {
	for _, key := range fieldAliases[field] {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes a product leniently. Numeric fields accept numbers or
// numeric strings; anything else decodes as zero.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(field string) string {
		v, _ := lookup(raw, field)
		return strings.TrimSpace(cast.ToString(v))
	}
	num := func(field string) float64 {
		v, _ := lookup(raw, field)
		return cast.ToFloat64(v)
	}
	integer := func(field string) int {
		v, _ := lookup(raw, field)
		if f, err := cast.ToFloat64E(v); err == nil {
			return int(f)
		}
		return 0
	}

	*p = Product{
		ID:             str("id"),
		Name:           str("name"),
		Description:    str("description"),
		Category:       str("category"),
		Price:          num("price"),
		Quantity:       integer("quantity"),
		Rating:         num("rating"),
		TotalSales:     integer("total_sales"),
		WarrantyPeriod: integer("warranty_period"),
		ProductionDate: str("production_date"),
		ExpirationDate: str("expiration_date"),
		Color:          str("color"),
		Size:           str("size"),
	}

	if v, ok := lookup(raw, "tags"); ok {
		switch tags := v.(type) {
		case string:
			p.Tags = SplitTags(tags)
		default:
			for _, t := range cast.ToStringSlice(tags) {
				p.Tags = append(p.Tags, SplitTags(t)...)
			}
		}
	}

	if nested, ok := raw["dimensions"].(map[string]any); ok {
		p.Dimensions = &Dimensions{
			Height: cast.ToFloat64(nested["height"]),
			Width:  cast.ToFloat64(nested["width"]),
			Length: cast.ToFloat64(nested["length"]),
		}
	} else {
		_, hasH := lookup(raw, "height")
		_, hasW := lookup(raw, "width")
		_, hasL := lookup(raw, "length")
		if hasH || hasW || hasL {
			p.Dimensions = &Dimensions{Height: num("height"), Width: num("width"), Length: num("length")}
		}
	}

	if v, ok := lookup(raw, "production_cost"); ok {
		if cost, err := cast.ToFloat64E(v); err == nil {
			p.ProductionCost = &cost
		}
	}

	return nil
}
