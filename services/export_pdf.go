package services

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var balancePDFColumns = []pdfColumn{
	{"#", 1, align.Center},
	{"Code", 1, align.Center},
	{"Description", 3, align.Left},
	{"Unit", 1, align.Center},
	{"BOQ Qty", 1, align.Right},
	{"Billed", 1, align.Right},
	{"Remaining", 1, align.Right},
	{"% Billed", 1, align.Right},
	{"Balance Value", 2, align.Right},
}

// GenerateBalancePDF renders a project's balance statement. Fully billed
// items are greyed out.
func GenerateBalancePDF(data *BalanceExportData) ([]byte, error) {
	m := newLandscapeDoc()

	writeBalanceTitle(m, data)
	tableHeader(m, balancePDFColumns)
	for i, item := range data.Rows {
		var fill, ink *props.Color
		if IsFullyBilled(item.Remaining) {
			fill, ink = greyFill, mutedColor
		}
		tableRow(m, balancePDFColumns, []string{
			strconv.Itoa(i + 1),
			item.ItemCode,
			item.Description,
			item.Unit,
			FormatQty(item.Original),
			FormatQty(item.Billed),
			FormatQty(item.Remaining),
			fmt.Sprintf("%.1f%%", item.PercentBilled),
			FormatINR(CalcItemValue(item.Remaining, item.UnitRate)),
		}, fill, ink)
	}

	spacer(m, 6)
	t := data.Totals
	amountRows(m, []amountLine{
		{"Contract Value", t.ContractValue},
		{"Billed To Date", t.BilledValue},
		{fmt.Sprintf("Balance (%.1f%% billed)", t.PercentBilled), t.RemainingValue},
	}, 8, 8, props.Text{Size: 9, Style: fontstyle.Bold}, greyFill)

	spacer(m, 6)
	caption(m, 6, "Generated on "+data.GeneratedDate, props.Text{Size: 7, Color: &props.Color{Red: 140, Green: 140, Blue: 140}})

	return renderPDF(m, "balance")
}

func writeBalanceTitle(m core.Maroto, data *BalanceExportData) {
	caption(m, 12, "BALANCE STATEMENT", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center})

	bold := props.Text{Size: 10, Style: fontstyle.Bold}
	boldRight := bold
	boldRight.Align = align.Right
	muted := props.Text{Size: 9, Color: mutedColor}
	mutedRight := muted
	mutedRight.Align = align.Right

	refs := joinNonEmpty([]string{fmtField("Ref", data.ReferenceNumber), fmtField("Client", data.ClientName)}, "  |  ")
	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New(data.ProjectName, bold)),
			col.New(6).Add(text.New(data.Company.Name, boldRight)),
		),
		row.New(6).Add(
			col.New(6).Add(text.New(refs, muted)),
			col.New(6).Add(text.New(fmt.Sprintf("Invoices raised: %d", data.InvoiceCount), mutedRight)),
		),
	)
	spacer(m, 4)
}
