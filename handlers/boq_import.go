package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
	"rabilling/templates"
)

// HandleBOQTemplate downloads the BOQ upload template.
// Route: GET /projects/{projectId}/boq/template
func HandleBOQTemplate() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateBOQTemplate()
		if err != nil {
			log.Printf("boq_template: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, genericErrorMessage)
		}

		return sendAttachment(e, http.StatusOK, contentTypeXLSX, "BOQ_Template.xlsx", xlsxBytes)
	}
}

// HandleBOQImport receives a .csv or .xlsx upload, validates every row and,
// only when all rows are valid, inserts the items in one transaction.
// With ?report=xlsx a rejected upload is answered with the error workbook.
// Route: POST /projects/{projectId}/boq/import
func HandleBOQImport(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, err := projectFromEvent(app, e)
		if err != nil {
			return writeBillingError(e, "boq_import", err)
		}

		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return badRequest(e, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return badRequest(e, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseBOQFile(file, header.Filename)
		if err != nil {
			return badRequest(e, err.Error())
		}

		summary := templates.ImportSummaryData{
			ProjectID: project.Id,
			FileName:  result.FileName,
			TotalRows: result.TotalRows,
			ValidRows: result.ValidRows,
			Ignored:   result.IgnoredColumns,
		}

		if result.ErrorRows == 0 {
			imported, err := services.ImportBOQItems(app, project.Id, result.Items)
			switch {
			case err == nil:
				summary.Imported = imported
			case errors.Is(err, services.ErrDuplicateItemCode), errors.Is(err, services.ErrNoImportRows):
				result.Errors = append(result.Errors, services.ImportError{Field: "Item Code", Message: err.Error()})
				result.ErrorRows++
			default:
				log.Printf("boq_import: import into project %s: %v", project.Id, err)
				return ErrorToast(e, http.StatusInternalServerError, genericErrorMessage)
			}
		}

		if len(result.Errors) > 0 && e.Request.URL.Query().Get("report") == "xlsx" {
			return writeImportErrorReport(e, result.Errors)
		}

		status := http.StatusOK
		if len(result.Errors) > 0 {
			status = http.StatusUnprocessableEntity
		} else {
			SetToast(e, ToastSuccess, fmt.Sprintf("%d BOQ items imported", summary.Imported))
			notifyBalancesChanged(e, project.Id)
		}

		if isHTMX(e) {
			for _, ie := range result.Errors {
				summary.Errors = append(summary.Errors, templates.ImportErrorRow{Row: ie.Row, Field: ie.Field, Message: ie.Message})
			}
			e.Response.WriteHeader(status)
			return templates.ImportSummary(summary).Render(e.Request.Context(), e.Response)
		}
		return e.JSON(status, map[string]any{
			"file_name":       result.FileName,
			"total_rows":      result.TotalRows,
			"valid_rows":      result.ValidRows,
			"error_rows":      result.ErrorRows,
			"errors":          result.Errors,
			"ignored_columns": result.IgnoredColumns,
			"imported":        summary.Imported,
		})
	}
}

func writeImportErrorReport(e *core.RequestEvent, importErrors []services.ImportError) error {
	xlsxBytes, err := services.GenerateImportErrorReport(importErrors)
	if err != nil {
		log.Printf("boq_import: error report: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, genericErrorMessage)
	}

	filename := fmt.Sprintf("BOQ_Import_Errors_%s.xlsx", time.Now().Format("2006-01-02"))
	return sendAttachment(e, http.StatusUnprocessableEntity, contentTypeXLSX, filename, xlsxBytes)
}
