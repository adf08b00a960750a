package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
	"rabilling/templates"
)

// validateResponse is the dry-run result plus the number a commit would take.
type validateResponse struct {
	*services.ValidationResult
	NextInvoiceNumber string `json:"next_invoice_number,omitempty"`
}

// HandleInvoiceValidate is a dry run of the regular entry point: it reports
// which items would exceed their balance without writing anything.
func HandleInvoiceValidate(app core.App, guard *services.CommitGuard) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, err := projectFromEvent(app, e)
		if err != nil {
			return writeBillingError(e, "invoice_validate", err)
		}

		proposed, err := parseRegularInvoice(e)
		if err != nil {
			if isRequestError(err) {
				return badRequest(e, err.Error())
			}
			return writeBillingError(e, "invoice_validate", err)
		}
		if len(proposed.Lines) == 0 {
			return writeBillingError(e, "invoice_validate", &services.CommitError{Kind: services.ErrEmptyInvoice})
		}

		batch := make([]services.BatchLine, len(proposed.Lines))
		for i, l := range proposed.Lines {
			batch[i] = services.BatchLine{ItemRef: l.ItemRef, Quantity: l.Quantity}
		}

		result, err := services.NewReconciler(app).ValidateBatch(project.Id, batch)
		if err != nil {
			return writeBillingError(e, "invoice_validate", err)
		}

		resp := validateResponse{ValidationResult: result}
		if result.Valid {
			if resp.NextInvoiceNumber, err = guard.NextNumber(project.Id); err != nil {
				return writeBillingError(e, "invoice_validate", err)
			}
		}

		if isHTMX(e) {
			return templates.ValidationSummary(validationSummaryData(resp)).Render(e.Request.Context(), e.Response)
		}
		return e.JSON(http.StatusOK, resp)
	}
}

func validationSummaryData(result validateResponse) templates.ValidationSummaryData {
	data := templates.ValidationSummaryData{
		Valid:      result.Valid,
		Warnings:   result.Warnings,
		NextNumber: result.NextInvoiceNumber,
	}
	for _, qe := range result.Errors {
		lines := make([]string, len(qe.Lines))
		for i, l := range qe.Lines {
			lines[i] = strconv.Itoa(l)
		}
		data.Errors = append(data.Errors, templates.ValidationErrorRow{
			Lines:     strings.Join(lines, ", "),
			ItemRef:   qe.ItemRef,
			Requested: services.FormatQty(qe.Requested),
			Remaining: services.FormatQty(qe.Remaining),
		})
	}
	return data
}
