package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

type ImportErrorRow struct {
	Row     int
	Field   string
	Message string
}

type ImportSummaryData struct {
	ProjectID string
	FileName  string
	TotalRows int
	ValidRows int
	Imported  int
	Errors    []ImportErrorRow
	// Ignored holds uploaded headers that matched no BOQ column.
	Ignored []string
}

// ImportSummary renders the outcome of a BOQ upload.
func ImportSummary(data ImportSummaryData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<div id="import-summary">`)
		if len(data.Ignored) > 0 {
			h.raw(`<p class="alert alert-warning">`)
			h.text("Ignored column(s): " + strings.Join(data.Ignored, ", "))
			h.raw(`</p>`)
		}
		if len(data.Errors) == 0 {
			h.raw(`<p class="alert alert-success">`)
			h.text("Imported " + strconv.Itoa(data.Imported) + " item(s) from " + data.FileName + ".")
			h.raw(`</p></div>`)
			return h.err
		}

		h.raw(`<p class="alert alert-error">`)
		h.text(data.FileName + ": " + strconv.Itoa(len(data.Errors)) + " problem(s) in " +
			strconv.Itoa(data.TotalRows) + " row(s). Nothing was imported.")
		h.raw(`</p><table class="table table-sm">`)
		h.headerRow("Row", "Column", "Problem")
		h.raw("<tbody>")
		for _, e := range data.Errors {
			h.raw("<tr>")
			h.cell("", strconv.Itoa(e.Row))
			h.cell("", e.Field)
			h.cell("", e.Message)
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")
		h.link("/projects/"+data.ProjectID+"/boq/template", "btn btn-sm", "Download template")
		h.raw("</div>")
		return h.err
	})
}

type ProjectListItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ClientName      string `json:"client_name"`
	ReferenceNumber string `json:"reference_number"`
	State           string `json:"state"`
	Status          string `json:"status"`
	ItemCount       int    `json:"item_count"`
	InvoiceCount    int    `json:"invoice_count"`
}

// ProjectList renders the project index.
func ProjectList(items []ProjectListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<div id="project-list">`)
		if len(items) == 0 {
			h.raw(`<p class="empty">No projects yet.</p></div>`)
			return h.err
		}
		h.raw(`<table class="table">`)
		h.headerRow("Project", "Client", "Reference", "State", "Status", "BOQ items", "Invoices")
		h.raw("<tbody>")
		for _, p := range items {
			h.raw("<tr><td>")
			h.link("/projects/"+p.ID+"/balances", "link", p.Name)
			h.raw("</td>")
			h.cell("", p.ClientName)
			h.cell("", p.ReferenceNumber)
			h.cell("", p.State)
			h.cell("badge", p.Status)
			h.cell("num", strconv.Itoa(p.ItemCount))
			h.cell("num", strconv.Itoa(p.InvoiceCount))
			h.raw("</tr>")
		}
		h.raw("</tbody></table></div>")
		return h.err
	})
}
