package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Each line shows the item's BOQ quantity, this bill, the cumulative billed
// quantity including this bill and what is left after it.
var invoicePDFColumns = []pdfColumn{
	{"Item", 1, align.Center},
	{"Description", 3, align.Left},
	{"Unit", 1, align.Center},
	{"BOQ Qty", 1, align.Right},
	{"This Bill", 1, align.Right},
	{"Cumulative", 1, align.Right},
	{"Balance", 1, align.Right},
	{"Rate", 1, align.Right},
	{"GST", 1, align.Center},
	{"Amount", 1, align.Right},
}

// GenerateInvoicePDF renders an RA tax invoice.
func GenerateInvoicePDF(data *InvoiceExportData) ([]byte, error) {
	m := newLandscapeDoc()

	writeInvoiceHeading(m, data)
	writeInvoiceParticulars(m, data)

	tableHeader(m, invoicePDFColumns)
	for i, l := range data.LineItems {
		var fill *props.Color
		if i%2 == 1 {
			fill = stripeFill
		}
		code := l.ItemCode
		if code == "" {
			code = strconv.Itoa(l.SINo)
		}
		tableRow(m, invoicePDFColumns, []string{
			code,
			l.Description,
			l.Unit,
			FormatQty(l.BOQQuantity),
			FormatQty(l.Qty),
			FormatQty(l.Cumulative),
			FormatQty(l.Balance),
			FormatINR(l.Rate),
			fmt.Sprintf("%.0f%%", l.GSTPercent),
			FormatINR(l.Amount),
		}, fill, nil)
	}
	spacer(m, 2)

	writeInvoiceTotals(m, data)
	writeInvoiceFooter(m, data)

	return renderPDF(m, "invoice")
}

func writeInvoiceHeading(m core.Maroto, data *InvoiceExportData) {
	title := props.Text{Size: 14, Style: fontstyle.Bold}
	titleRight := title
	titleRight.Align, titleRight.Color = align.Right, darkColor
	number := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}

	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(text.New(data.Company.Name, title)),
			col.New(6).Add(text.New("TAX INVOICE (RUNNING ACCOUNT)", titleRight)),
		),
		row.New(8).Add(
			col.New(6).Add(text.New(joinNonEmpty([]string{data.Company.Address, data.Company.Email}, " | "), props.Text{Size: 8, Color: mutedColor})),
			col.New(6).Add(text.New("Invoice #: "+data.InvoiceNumber, number)),
		),
	)
	if data.Company.GSTIN != "" {
		caption(m, 6, fmtField("GSTIN", data.Company.GSTIN), props.Text{Size: 8})
	}
	spacer(m, 3)
}

// writeInvoiceParticulars lays the project out on the left and the invoice
// metadata on the right.
func writeInvoiceParticulars(m core.Maroto, data *InvoiceExportData) {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Color: mutedColor}
	labelRight := label
	labelRight.Align = align.Right
	value := props.Text{Size: 8}
	valueRight := props.Text{Size: 8, Align: align.Right}
	band := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 243, Blue: 239}}

	m.AddRows(row.New(6).Add(
		col.New(6).Add(text.New("PROJECT", label)).WithStyle(band),
		col.New(6).Add(text.New("INVOICE DETAILS", labelRight)).WithStyle(band),
	))

	var period string
	if data.PeriodFrom != "" || data.PeriodTo != "" {
		period = data.PeriodFrom + " to " + data.PeriodTo
	}
	tax := "CGST + SGST"
	if data.TaxMode == TaxModeInterState {
		tax = "IGST"
	}

	pairs := [][3]string{
		{data.ProjectName, "Invoice Date:", joinNonEmpty([]string{data.InvoiceDate, fmtField("FY", data.FiscalYear)}, "  ")},
		{fmtField("Client", data.ClientName), "Billing Period:", period},
		{fmtField("Ref", data.ProjectReference), "Tax:", tax},
		{fmtField("State Code", data.ProjectState), "Status:", strings.ToUpper(data.Status)},
	}
	for i, p := range pairs {
		left := value
		if i == 0 {
			left = props.Text{Size: 9, Style: fontstyle.Bold}
		}
		m.AddRows(row.New(6).Add(
			col.New(6).Add(text.New(p[0], left)),
			col.New(3).Add(text.New(p[1], labelRight)),
			col.New(3).Add(text.New(p[2], valueRight)),
		))
	}
	spacer(m, 3)
}

func writeInvoiceTotals(m core.Maroto, data *InvoiceExportData) {
	t := data.Totals
	lines := []amountLine{{"Taxable Value", t.TaxableValue}}
	if data.TaxMode == TaxModeInterState {
		lines = append(lines, amountLine{"IGST", t.IGSTAmount})
	} else {
		lines = append(lines, amountLine{"CGST", t.CGSTAmount}, amountLine{"SGST", t.SGSTAmount})
	}
	lines = append(lines, amountLine{"Round Off", t.RoundOff})

	amountRows(m, lines, 9, 7, props.Text{Size: 8}, &props.Color{Red: 245, Green: 245, Blue: 245})
	amountRows(m, []amountLine{{"Grand Total", t.GrandTotal}}, 9, 8,
		props.Text{Size: 9, Style: fontstyle.Bold, Color: whiteColor}, darkColor)
	spacer(m, 3)
}

// writeInvoiceFooter adds the amount in words, any remarks and the two
// signature blocks.
func writeInvoiceFooter(m core.Maroto, data *InvoiceExportData) {
	if data.AmountInWords != "" {
		caption(m, 8, "Amount in Words: "+data.AmountInWords, props.Text{Size: 8, Style: fontstyle.BoldItalic})
		spacer(m, 3)
	}
	if data.Remarks != "" {
		caption(m, 6, "REMARKS", props.Text{Size: 7, Style: fontstyle.Bold, Color: mutedColor})
		caption(m, 7, data.Remarks, props.Text{Size: 8})
		spacer(m, 3)
	}

	spacer(m, 10)
	rule := props.Text{Size: 8, Align: align.Center, Color: mutedColor}
	signer := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center, Color: mutedColor}
	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New(strings.Repeat("_", 28), rule)),
			col.New(6).Add(text.New(strings.Repeat("_", 28), rule)),
		),
		row.New(7).Add(
			col.New(6).Add(text.New("Certified by Client / Engineer-in-Charge", signer)),
			col.New(6).Add(text.New("For "+data.Company.Name, signer)),
		),
	)
}
