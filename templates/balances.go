package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// BalanceRow is one BOQ item in the balance table.
type BalanceRow struct {
	ItemCode    string
	Description string
	Unit        string
	Original    string
	Billed      string
	Remaining   string
	Percent     string
	Closed      bool
}

type BalanceTableData struct {
	ProjectID      string
	ProjectName    string
	Rows           []BalanceRow
	ContractValue  string
	BilledValue    string
	RemainingValue string
}

// BalanceTable renders the per-project balance table with export links.
func BalanceTable(data BalanceTableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<div id="balance-table" class="card">`)
		h.raw(`<div class="card-header"><h2>`)
		h.text(data.ProjectName)
		h.raw(`</h2><div class="actions">`)
		h.link("/projects/"+data.ProjectID+"/balances/export/excel", "btn btn-sm", "Excel")
		h.link("/projects/"+data.ProjectID+"/balances/export/pdf", "btn btn-sm", "PDF")
		h.raw(`</div></div>`)

		if len(data.Rows) == 0 {
			h.raw(`<p class="empty">No BOQ items yet. Import a BOQ to start billing.</p></div>`)
			return h.err
		}

		h.raw(`<table class="table table-sm">`)
		h.headerRow("Code", "Description", "Unit", "BOQ Qty", "Billed", "Remaining", "% Billed")
		h.raw("<tbody>")
		for _, r := range data.Rows {
			if r.Closed {
				h.raw(`<tr class="row-closed">`)
			} else {
				h.raw("<tr>")
			}
			h.cell("", r.ItemCode)
			h.cell("", r.Description)
			h.cell("", r.Unit)
			h.cell("num", r.Original)
			h.cell("num", r.Billed)
			h.cell("num", r.Remaining)
			h.cell("num", r.Percent)
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")

		h.raw(`<dl class="totals"><dt>Contract value</dt><dd>`)
		h.text(data.ContractValue)
		h.raw(`</dd><dt>Billed to date</dt><dd>`)
		h.text(data.BilledValue)
		h.raw(`</dd><dt>Balance</dt><dd>`)
		h.text(data.RemainingValue)
		h.raw(`</dd></dl></div>`)
		return h.err
	})
}

// DriftRow is one item whose ledger disagrees with its invoice lines.
type DriftRow struct {
	ItemCode     string
	Description  string
	LedgerBilled string
	Invoiced     string
	Difference   string
}

// DriftTable renders the audit result.
func DriftTable(rows []DriftRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<div id="audit-result">`)
		if len(rows) == 0 {
			h.raw(`<p class="alert alert-success">Ledger matches committed invoices.</p></div>`)
			return h.err
		}

		h.raw(`<p class="alert alert-warning">`)
		h.text(strconv.Itoa(len(rows)) + " item(s) disagree with committed invoices.")
		h.raw(`</p><table class="table table-sm">`)
		h.headerRow("Code", "Description", "Ledger", "Invoiced", "Difference")
		h.raw("<tbody>")
		for _, r := range rows {
			h.raw("<tr>")
			h.cell("", r.ItemCode)
			h.cell("", r.Description)
			h.cell("num", r.LedgerBilled)
			h.cell("num", r.Invoiced)
			h.cell("num", r.Difference)
			h.raw("</tr>")
		}
		h.raw("</tbody></table></div>")
		return h.err
	})
}
