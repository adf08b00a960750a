package services

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	mutedColor = &props.Color{Red: 100, Green: 100, Blue: 100}
	darkColor  = &props.Color{Red: 33, Green: 37, Blue: 41}
	whiteColor = &props.Color{Red: 255, Green: 255, Blue: 255}
	greyFill   = &props.Color{Red: 240, Green: 240, Blue: 240}
	stripeFill = &props.Color{Red: 248, Green: 249, Blue: 250}
)

// newLandscapeDoc returns an A4 landscape document with page numbers.
func newLandscapeDoc() core.Maroto {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()
	return maroto.New(cfg)
}

func renderPDF(m core.Maroto, what string) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate %s pdf: %w", what, err)
	}
	return doc.GetBytes(), nil
}

// pdfColumn is one column of a data table. Widths of a table add up to 12.
type pdfColumn struct {
	title string
	width int
	align align.Type
}

// tableHeader draws white-on-dark column titles.
func tableHeader(m core.Maroto, cols []pdfColumn) {
	cells := make([]core.Col, len(cols))
	for i, c := range cols {
		style := props.Text{Size: 7, Style: fontstyle.Bold, Align: c.align, Color: whiteColor}
		if c.align == align.Right {
			style.Align = align.Center
		}
		cells[i] = col.New(c.width).Add(text.New(c.title, style)).WithStyle(&props.Cell{BackgroundColor: darkColor})
	}
	m.AddRows(row.New(8).Add(cells...))
}

// tableRow draws one data row. fill and textColor may be nil.
func tableRow(m core.Maroto, cols []pdfColumn, values []string, fill, textColor *props.Color) {
	cells := make([]core.Col, len(cols))
	for i, c := range cols {
		cell := col.New(c.width).Add(text.New(values[i], props.Text{Size: 7, Align: c.align, Color: textColor}))
		if fill != nil {
			cell.WithStyle(&props.Cell{BackgroundColor: fill})
		}
		cells[i] = cell
	}
	m.AddRows(row.New(7).Add(cells...))
}

type amountLine struct {
	label string
	value float64
}

// amountRows right-aligns label/amount pairs, the label spanning labelWidth
// grid columns and the amount the rest.
func amountRows(m core.Maroto, lines []amountLine, labelWidth int, height float64, style props.Text, fill *props.Color) {
	style.Align = align.Right
	cell := &props.Cell{BackgroundColor: fill}
	for _, l := range lines {
		m.AddRows(row.New(height).Add(
			col.New(labelWidth).Add(text.New(l.label, style)).WithStyle(cell),
			col.New(12-labelWidth).Add(text.New(FormatINR(l.value), style)).WithStyle(cell),
		))
	}
}

// caption adds a full-width line of text.
func caption(m core.Maroto, height float64, s string, style props.Text) {
	m.AddRows(row.New(height).Add(col.New(12).Add(text.New(s, style))))
}

func spacer(m core.Maroto, height float64) { m.AddRows(row.New(height)) }

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// fmtField renders "label: value", or nothing when value is empty.
func fmtField(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}
