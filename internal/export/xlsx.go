package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
)

const sheetName = "Products"

func cell(col, row int) string {
	return excelize.ToAlphaString(col) + strconv.Itoa(row)
}

// WriteXLSX writes a single-sheet workbook with a bold, frozen header row.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	for i, c := range t.Columns {
		f.SetCellValue(sheetName, cell(i, 1), c.Header)
	}
	for r, row := range t.Rows() {
		for i, v := range row {
			f.SetCellValue(sheetName, cell(i, r+2), v)
		}
	}

	if n := len(t.Columns); n > 0 {
		last := excelize.ToAlphaString(n - 1)
		f.SetColWidth(sheetName, "A", last, 18)
		if style, err := f.NewStyle(`{"font":{"bold":true}}`); err == nil {
			f.SetCellStyle(sheetName, "A1", last+"1", style)
		}
		f.SetPanes(sheetName, `{"freeze":true,"split":false,"x_split":0,"y_split":1,"top_left_cell":"A2","active_pane":"bottomLeft"}`)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
