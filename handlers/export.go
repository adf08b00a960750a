package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// sanitizeFilename makes s safe inside a Content-Disposition filename.
func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '-'
		case '"':
			return -1
		}
		return r
	}, s)
}

// sendAttachment writes body as a file download.
func sendAttachment(e *core.RequestEvent, status int, contentType, filename string, body []byte) error {
	h := e.Response.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.WriteHeader(status)
	_, err := e.Response.Write(body)
	return err
}

// balanceRenderer turns a balance statement into file bytes.
type balanceRenderer struct {
	ext         string
	contentType string
	render      func(*services.BalanceExportData) ([]byte, error)
}

var (
	balanceExcel = balanceRenderer{"xlsx", contentTypeXLSX, services.GenerateBalanceExcel}
	balancePDF   = balanceRenderer{"pdf", contentTypePDF, services.GenerateBalancePDF}
)

func handleBalanceExport(app core.App, company services.CompanyInfo, out balanceRenderer) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildBalanceExportData(app, e.Request.PathValue("projectId"), company)
		if err != nil {
			return writeBillingError(e, "balance_export", err)
		}

		body, err := out.render(data)
		if err != nil {
			log.Printf("balance_export: render %s for project %s: %v", out.ext, data.ProjectName, err)
			return ErrorToast(e, http.StatusInternalServerError, genericErrorMessage)
		}

		name := fmt.Sprintf("Balances_%s_%s.%s", sanitizeFilename(data.ProjectName), time.Now().Format("2006-01-02"), out.ext)
		return sendAttachment(e, http.StatusOK, out.contentType, name, body)
	}
}

// HandleBalanceExportExcel downloads the project's balance statement as xlsx.
// Route: GET /projects/{projectId}/balances/export/excel
func HandleBalanceExportExcel(app core.App, company services.CompanyInfo) func(*core.RequestEvent) error {
	return handleBalanceExport(app, company, balanceExcel)
}

// HandleBalanceExportPDF downloads the project's balance statement as PDF.
// Route: GET /projects/{projectId}/balances/export/pdf
func HandleBalanceExportPDF(app core.App, company services.CompanyInfo) func(*core.RequestEvent) error {
	return handleBalanceExport(app, company, balancePDF)
}
