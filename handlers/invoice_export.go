package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
)

// invoiceSummary is one row of GET /projects/{projectId}/invoices.
type invoiceSummary struct {
	ID          string  `json:"id"`
	Number      string  `json:"invoice_number"`
	Sequence    int     `json:"sequence"`
	Status      string  `json:"status"`
	Source      string  `json:"source"`
	InvoiceDate string  `json:"invoice_date"`
	GrandTotal  float64 `json:"grand_total"`
}

// HandleInvoiceList lists a project's invoices in RA order.
func HandleInvoiceList(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, err := projectFromEvent(app, e)
		if err != nil {
			return writeBillingError(e, "invoice_list", err)
		}

		records, err := app.FindRecordsByFilter(
			"invoices",
			"project = {:projectId}",
			"sequence",
			0,
			0,
			dbx.Params{"projectId": project.Id},
		)
		if err != nil {
			return writeBillingError(e, "invoice_list", err)
		}

		out := make([]invoiceSummary, 0, len(records))
		for _, r := range records {
			out = append(out, invoiceSummary{
				ID:          r.Id,
				Number:      r.GetString("invoice_number"),
				Sequence:    r.GetInt("sequence"),
				Status:      r.GetString("status"),
				Source:      r.GetString("source"),
				InvoiceDate: r.GetString("invoice_date"),
				GrandTotal:  r.GetFloat("grand_total"),
			})
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleInvoiceExportPDF downloads one RA invoice of the project as PDF.
// Route: GET /projects/{projectId}/invoices/{id}/pdf
func HandleInvoiceExportPDF(app core.App, company services.CompanyInfo) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, err := projectFromEvent(app, e)
		if err != nil {
			return writeBillingError(e, "invoice_export", err)
		}

		id := e.Request.PathValue("id")
		inv, err := app.FindRecordById("invoices", id)
		if err != nil || inv.GetString("project") != project.Id {
			return e.JSON(http.StatusNotFound, errorResponse{ErrorKind: "NotFound", Message: "invoice not found"})
		}

		data, err := services.BuildInvoiceExportData(app, id, company)
		if err != nil {
			return writeBillingError(e, "invoice_export", err)
		}
		body, err := services.GenerateInvoicePDF(data)
		if err != nil {
			log.Printf("invoice_export: render %s: %v", data.InvoiceNumber, err)
			return ErrorToast(e, http.StatusInternalServerError, genericErrorMessage)
		}

		name := sanitizeFilename(data.ProjectName) + "_" + sanitizeFilename(data.InvoiceNumber) + ".pdf"
		return sendAttachment(e, http.StatusOK, contentTypePDF, name, body)
	}
}
