package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// ValidationErrorRow is one item whose requested quantity exceeds its balance.
type ValidationErrorRow struct {
	Lines     string
	ItemRef   string
	Requested string
	Remaining string
}

type ValidationSummaryData struct {
	Valid      bool
	NextNumber string
	Errors     []ValidationErrorRow
	Warnings   []string
}

// ValidationSummary renders a dry-run result next to the invoice form.
func ValidationSummary(data ValidationSummaryData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<div id="validation-summary">`)
		if data.Valid {
			h.raw(`<p class="alert alert-success">All quantities are within the remaining balance.`)
			if data.NextNumber != "" {
				h.raw(" Commits as ")
				h.text(data.NextNumber)
				h.raw(".")
			}
			h.raw("</p>")
		} else {
			h.raw(`<p class="alert alert-error">Requested quantity exceeds remaining balance.</p>`)
			h.raw(`<table class="table table-sm">`)
			h.headerRow("Line", "Item", "Requested", "Remaining")
			h.raw("<tbody>")
			for _, e := range data.Errors {
				h.raw(`<tr class="row-error">`)
				h.cell("", e.Lines)
				h.cell("", e.ItemRef)
				h.cell("num", e.Requested)
				h.cell("num", e.Remaining)
				h.raw("</tr>")
			}
			h.raw("</tbody></table>")
		}

		if len(data.Warnings) > 0 {
			h.raw(`<ul class="warnings">`)
			for _, warning := range data.Warnings {
				h.raw("<li>")
				h.text(warning)
				h.raw("</li>")
			}
			h.raw("</ul>")
		}
		h.raw("</div>")
		return h.err
	})
}

type InvoiceResultLine struct {
	ItemRef     string
	Description string
	Unit        string
	Quantity    string
	Amount      string
}

type InvoiceResultData struct {
	ProjectID  string
	InvoiceID  string
	Number     string
	Date       string
	TaxMode    string
	Taxable    string
	Tax        string
	GrandTotal string
	Lines      []InvoiceResultLine
	Warnings   []string
}

// InvoiceResult renders a freshly committed invoice.
func InvoiceResult(data InvoiceResultData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<div id="invoice-result" class="card"><div class="card-header"><h2>Invoice `)
		h.text(data.Number)
		h.raw(`</h2><span class="muted">`)
		h.text(data.Date + " | " + data.TaxMode)
		h.raw(`</span>`)
		h.link("/projects/"+data.ProjectID+"/invoices/"+data.InvoiceID+"/pdf", "btn btn-sm", "Download PDF")
		h.raw(`</div><table class="table table-sm">`)
		h.headerRow("#", "Item", "Description", "Unit", "Qty", "Amount")
		h.raw("<tbody>")
		for i, l := range data.Lines {
			h.raw("<tr>")
			h.cell("", strconv.Itoa(i+1))
			h.cell("", l.ItemRef)
			h.cell("", l.Description)
			h.cell("", l.Unit)
			h.cell("num", l.Quantity)
			h.cell("num", l.Amount)
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")

		h.raw(`<dl class="totals"><dt>Taxable value</dt><dd>`)
		h.text(data.Taxable)
		h.raw(`</dd><dt>GST</dt><dd>`)
		h.text(data.Tax)
		h.raw(`</dd><dt>Grand total</dt><dd>`)
		h.text(data.GrandTotal)
		h.raw(`</dd></dl>`)

		if len(data.Warnings) > 0 {
			h.raw(`<ul class="warnings">`)
			for _, warning := range data.Warnings {
				h.raw("<li>")
				h.text(warning)
				h.raw("</li>")
			}
			h.raw("</ul>")
		}
		h.raw("</div>")
		return h.err
	})
}
