package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
	"rabilling/templates"
)

// HandleProjectList lists projects with their BOQ item and invoice counts.
func HandleProjectList(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("projects", "", "name", 0, 0)
		if err != nil {
			log.Printf("project_list: could not query projects: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, genericErrorMessage)
		}

		items := make([]templates.ProjectListItem, 0, len(records))
		for _, rec := range records {
			itemCount, err := app.CountRecords("boq_items", dbx.HashExp{"project": rec.Id})
			if err != nil {
				log.Printf("project_list: count boq items for %s: %v", rec.Id, err)
			}
			invoiceCount, err := app.CountRecords("invoices", dbx.HashExp{"project": rec.Id})
			if err != nil {
				log.Printf("project_list: count invoices for %s: %v", rec.Id, err)
			}

			items = append(items, templates.ProjectListItem{
				ID:              rec.Id,
				Name:            rec.GetString("name"),
				ClientName:      rec.GetString("client_name"),
				ReferenceNumber: rec.GetString("reference_number"),
				State:           services.StateName(rec.GetString("state_code")),
				Status:          rec.GetString("status"),
				ItemCount:       int(itemCount),
				InvoiceCount:    int(invoiceCount),
			})
		}

		if isHTMX(e) {
			return templates.ProjectList(items).Render(e.Request.Context(), e.Response)
		}
		return e.JSON(http.StatusOK, items)
	}
}
