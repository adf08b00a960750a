package services

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	boqTemplateSheet = "BOQ"
	instructionSheet = "Instructions"
)

// GenerateBOQTemplate builds the upload workbook. Its header row is exactly
// what ParseBOQFile expects, required columns are marked with an asterisk and
// a hidden sheet explains every column.
func GenerateBOQTemplate() ([]byte, error) {
	b := newSheetBuilder(boqTemplateSheet)
	required := b.style(headerStyle("#1D4ED8"))
	optional := b.style(headerStyle("#6B7280"))

	widths := make([]float64, len(boqImportColumns))
	for i, c := range boqImportColumns {
		label, style := c.Label, optional
		if c.Required {
			label, style = label+" *", required
		}
		b.cell(i+1, 1, label, style)
		widths[i] = templateColumnWidth(c)

		if dv := templateDropdown(c.Key); dv != nil {
			col := columnName(i + 1)
			dv.Sqref = fmt.Sprintf("%s2:%s%d", col, col, excelize.TotalRows)
			b.check(b.f.AddDataValidation(boqTemplateSheet, dv))
		}
	}
	b.widths(widths...)
	b.check(b.f.SetPanes(boqTemplateSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}))

	writeInstructions(b)
	return b.bytes()
}

func templateColumnWidth(c importColumn) float64 {
	if c.Key == "description" {
		return 45
	}
	return max(12, float64(len(c.Label))*1.3)
}

// templateDropdown returns the list validation for a column, if it has one.
// Units are advisory so site-specific units still import.
func templateDropdown(key string) *excelize.DataValidation {
	switch key {
	case "unit":
		dv := excelize.NewDataValidation(true)
		dv.SetDropList(UOMOptions)
		dv.SetError(excelize.DataValidationErrorStyleInformation, "Unit", "Unit is not in the standard list")
		return dv
	case "gst_rate":
		rates := make([]string, len(GSTOptions))
		for i, g := range GSTOptions {
			rates[i] = strconv.Itoa(g)
		}
		dv := excelize.NewDataValidation(true)
		dv.SetDropList(rates)
		return dv
	}
	return nil
}

func writeInstructions(b *sheetBuilder) {
	b.addSheet(instructionSheet)
	b.widths(16, 12, 36, 50, 28)

	b.cell(1, 1, "BOQ Import - Instructions", b.style(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}))
	b.row(3, b.style(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	}), "Column", "Required?", "Format Rule", "Description", "Example")

	for i, c := range boqImportColumns {
		need := "Optional"
		if c.Required {
			need = "Required"
		}
		b.row(i+4, 0, c.Label, need, c.FormatRule, c.Description, c.Example)
	}

	b.check(b.f.SetSheetVisible(instructionSheet, false))
	b.use(boqTemplateSheet)
}
