package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"product-dashboard/internal/models"
)

// WriteCSV writes a header row and one quoted row per record.
func WriteCSV(w io.Writer, t Table) error {
	cw := gocsv.DefaultCSVWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(t.Columns))
	for _, row := range t.Rows() {
		for i, v := range row {
			line[i] = format(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CategoryRow is one line of the per-category stock report.
type CategoryRow struct {
	Category   string  `csv:"category"`
	Products   int     `csv:"products"`
	Stock      int     `csv:"stock"`
	StockValue float64 `csv:"stock_value"`
	Sales      int     `csv:"sales"`
	Revenue    float64 `csv:"revenue"`
	MeanRating float64 `csv:"mean_rating"`
}

func CategoryReport(groups []models.Group) []CategoryRow {
	rows := make([]CategoryRow, len(groups))
	for i, g := range groups {
		rows[i] = CategoryRow{
			Category:   g.Key,
			Products:   g.Count,
			Stock:      g.Stock,
			StockValue: g.StockValue,
			Sales:      g.Sales,
			Revenue:    g.Revenue,
			MeanRating: g.MeanRating,
		}
	}
	return rows
}

func WriteCategoryCSV(w io.Writer, rows []CategoryRow) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write category report: %w", err)
	}
	return nil
}
