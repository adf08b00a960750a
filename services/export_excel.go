package services

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	balanceHeaderRow = 5
	balanceCols      = 10
	maxSheetName     = 31
)

var balanceHeaders = []any{"#", "Item Code", "Description", "Unit", "Rate", "BOQ Qty", "Billed", "Remaining", "% Billed", "Balance Value"}

// GenerateBalanceExcel renders a project's balance statement as an xlsx
// workbook: a title block, one row per BOQ item and the contract totals.
func GenerateBalanceExcel(data *BalanceExportData) ([]byte, error) {
	b := newSheetBuilder(balanceSheetName(data.ProjectName))
	b.widths(6, 12, 40, 8, 14, 12, 12, 12, 10, 18)

	title := b.style(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	subtitle := b.style(&excelize.Style{Font: &excelize.Font{Size: 11}})
	header := b.style(headerStyle("#333333"))
	open := b.style(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: boxBorder()})
	closed := b.style(&excelize.Style{
		Font:   &excelize.Font{Size: 10, Color: "#888888"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
		Border: boxBorder(),
	})
	label := b.style(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, Alignment: &excelize.Alignment{Horizontal: "right"}})
	value := b.style(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}})

	b.banner(1, balanceCols, sanitizeExcelCell("Balance Statement: "+data.ProjectName), title)
	if data.ReferenceNumber != "" {
		b.banner(2, balanceCols, sanitizeExcelCell("Ref: "+data.ReferenceNumber), subtitle)
	}
	b.banner(3, balanceCols, fmt.Sprintf("Date: %s  |  Invoices: %d", data.GeneratedDate, data.InvoiceCount), subtitle)

	b.row(balanceHeaderRow, header, balanceHeaders...)

	r := balanceHeaderRow + 1
	for i, item := range data.Rows {
		style := open
		if IsFullyBilled(item.Remaining) {
			style = closed
		}
		b.row(r, style,
			i+1,
			sanitizeExcelCell(item.ItemCode),
			sanitizeExcelCell(item.Description),
			sanitizeExcelCell(item.Unit),
			FormatINR(item.UnitRate),
			item.Original,
			item.Billed,
			item.Remaining,
			item.PercentBilled,
			FormatINR(CalcItemValue(item.Remaining, item.UnitRate)),
		)
		r++
	}

	r++
	t := data.Totals
	for _, s := range [][2]string{
		{"Contract Value:", FormatINR(t.ContractValue)},
		{"Billed To Date:", FormatINR(t.BilledValue)},
		{fmt.Sprintf("Balance (%.1f%% billed):", t.PercentBilled), FormatINR(t.RemainingValue)},
	} {
		b.cell(8, r, s[0], label)
		b.cell(10, r, s[1], value)
		r++
	}

	return b.bytes()
}

// balanceSheetName turns a project name into a legal sheet name.
func balanceSheetName(project string) string {
	name := []rune(strings.Trim(sheetNameReplacer.Replace(project), "' "))
	if len(name) == 0 {
		return "Balances"
	}
	if len(name) > maxSheetName {
		return strings.TrimRight(string(name[:maxSheetName]), "' ")
	}
	return string(name)
}

var sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")
