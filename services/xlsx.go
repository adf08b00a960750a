package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// sheetBuilder wraps an excelize file and keeps the first error so layout
// code can issue calls without checking each one.
type sheetBuilder struct {
	f     *excelize.File
	sheet string
	err   error
}

// newSheetBuilder starts a workbook whose first sheet is called name.
func newSheetBuilder(name string) *sheetBuilder {
	b := &sheetBuilder{f: excelize.NewFile(), sheet: name}
	b.check(b.f.SetSheetName(b.f.GetSheetName(0), name))
	return b
}

func (b *sheetBuilder) check(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// addSheet creates another sheet and makes it the target of later calls.
func (b *sheetBuilder) addSheet(name string) {
	_, err := b.f.NewSheet(name)
	b.check(err)
	b.sheet = name
}

// use switches later calls to an existing sheet.
func (b *sheetBuilder) use(name string) { b.sheet = name }

func (b *sheetBuilder) style(s *excelize.Style) int {
	id, err := b.f.NewStyle(s)
	b.check(err)
	return id
}

// widths sets column widths left to right starting at column A.
func (b *sheetBuilder) widths(w ...float64) {
	for i, width := range w {
		col := columnName(i + 1)
		b.check(b.f.SetColWidth(b.sheet, col, col, width))
	}
}

// row writes values into row r starting at column A and, when style is
// non-zero, styles the written cells.
func (b *sheetBuilder) row(r, style int, values ...any) {
	if len(values) == 0 {
		return
	}
	b.check(b.f.SetSheetRow(b.sheet, cellName(1, r), &values))
	if style != 0 {
		b.check(b.f.SetCellStyle(b.sheet, cellName(1, r), cellName(len(values), r), style))
	}
}

// cell writes a single value with an optional style.
func (b *sheetBuilder) cell(col, r int, value any, style int) {
	ref := cellName(col, r)
	b.check(b.f.SetCellValue(b.sheet, ref, value))
	if style != 0 {
		b.check(b.f.SetCellStyle(b.sheet, ref, ref, style))
	}
}

// banner merges columns 1..cols of row r into one styled cell.
func (b *sheetBuilder) banner(r, cols int, value any, style int) {
	b.check(b.f.MergeCell(b.sheet, cellName(1, r), cellName(cols, r)))
	b.cell(1, r, value, style)
}

// bytes serializes the workbook and releases it.
func (b *sheetBuilder) bytes() ([]byte, error) {
	defer b.f.Close()
	if b.err != nil {
		return nil, fmt.Errorf("build workbook: %w", b.err)
	}
	var buf bytes.Buffer
	if err := b.f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row)
	return ref
}

func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

// headerStyle is white bold text on a solid fill, boxed.
func headerStyle(fill string) *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    boxBorder(),
	}
}

// boxBorder draws a thin black line on every side of a cell.
func boxBorder() []excelize.Border {
	var borders []excelize.Border
	for _, side := range []string{"left", "right", "top", "bottom"} {
		borders = append(borders, excelize.Border{Type: side, Color: "#000000", Style: 1})
	}
	return borders
}

// sanitizeExcelCell quotes text that a spreadsheet would otherwise evaluate
// as a formula.
func sanitizeExcelCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '|', '\t', '\r':
		return "'" + s
	}
	return s
}
