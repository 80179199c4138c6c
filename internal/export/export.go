// Package export serializes a selection of product fields as CSV, JSON or an
// XLSX workbook.
package export

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"product-dashboard/internal/models"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, XLSX:
		return f, nil
	case "excel", "xls":
		return XLSX, nil
	case "":
		return CSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename is the attachment name used for downloads.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("products-%s.%s", now.Format("20060102-150405"), f)
}

// Column is one exportable product field.
type Column struct {
	Name   string
	Header string
	Value  func(models.Product) any
}

var catalogue = []Column{
	{"id", "ID", func(p models.Product) any { return p.ID }},
	{"name", "Name", func(p models.Product) any { return p.Name }},
	{"category", "Category", func(p models.Product) any { return p.Category }},
	{"description", "Description", func(p models.Product) any { return p.Description }},
	{"price", "Price", func(p models.Product) any { return p.Price }},
	{"quantity", "Quantity", func(p models.Product) any { return p.Quantity }},
	{"warranty_period", "Warranty (months)", func(p models.Product) any { return p.WarrantyPeriod }},
	{"production_date", "Production date", func(p models.Product) any { return p.ProductionDate }},
	{"expiration_date", "Expiration date", func(p models.Product) any { return p.ExpirationDate }},
	{"rating", "Rating", func(p models.Product) any { return p.Rating }},
	{"total_sales", "Total sales", func(p models.Product) any { return p.TotalSales }},
}

// Fields lists every exportable field name in catalogue order.
func Fields() []string {
	names := make([]string, len(catalogue))
	for i, c := range catalogue {
		names[i] = c.Name
	}
	return names
}

func column(name string) (Column, bool) {
	i := slices.IndexFunc(catalogue, func(c Column) bool { return c.Name == name })
	if i < 0 {
		return Column{}, false
	}
	return catalogue[i], true
}

// Columns resolves field names in the order given. No names selects every
// field; duplicates are ignored.
func Columns(names []string) ([]Column, error) {
	if len(names) == 0 {
		return slices.Clone(catalogue), nil
	}
	cols := make([]Column, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		c, ok := column(name)
		if !ok {
			return nil, fmt.Errorf("unknown export field %q", raw)
		}
		seen[name] = true
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no export fields selected")
	}
	return cols, nil
}

// Table is the projection of records onto the selected columns.
type Table struct {
	Columns []Column
	Records []models.Product
}

// Select projects records onto fields, keeping at most limit records when
// limit is positive.
func Select(records []models.Product, fields []string, limit int) (Table, error) {
	cols, err := Columns(fields)
	if err != nil {
		return Table{}, err
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return Table{Columns: cols, Records: records}, nil
}

func (t Table) Header() []string {
	h := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		h[i] = c.Name
	}
	return h
}

// Rows returns the typed cell values, one slice per record.
func (t Table) Rows() [][]any {
	rows := make([][]any, len(t.Records))
	for i, p := range t.Records {
		row := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Value(p)
		}
		rows[i] = row
	}
	return rows
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// Write encodes t in the given format.
func Write(w io.Writer, f Format, t Table) error {
	switch f {
	case CSV:
		return WriteCSV(w, t)
	case JSON:
		return WriteJSON(w, t)
	case XLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}
