package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
	"rabilling/templates"
)

// regularInvoiceRequest is the body of POST /projects/{projectId}/invoices.
type regularInvoiceRequest struct {
	InvoiceDate string `json:"invoice_date"`
	PeriodFrom  string `json:"period_from"`
	PeriodTo    string `json:"period_to"`
	Remarks     string `json:"remarks"`
	Lines       []struct {
		ItemRef  string  `json:"item_ref"`
		Quantity float64 `json:"quantity"`
	} `json:"lines"`
}

// enhancedInvoiceRequest is the body of POST /projects/{projectId}/invoices/enhanced.
// Items reference the BOQ by record id or, failing that, by description.
type enhancedInvoiceRequest struct {
	InvoiceDate string `json:"invoice_date"`
	PeriodFrom  string `json:"period_from"`
	PeriodTo    string `json:"period_to"`
	GSTSplit    string `json:"gst_split"`
	Remarks     string `json:"remarks"`
	Items       []struct {
		BOQItemID   string  `json:"boq_item_id"`
		Description string  `json:"description"`
		Qty         float64 `json:"qty"`
	} `json:"items"`
}

func isJSON(e *core.RequestEvent) bool {
	return strings.HasPrefix(e.Request.Header.Get("Content-Type"), "application/json")
}

// parseRegularInvoice reads the regular shape from JSON or from a form with
// repeated item_ref / quantity fields.
func parseRegularInvoice(e *core.RequestEvent) (services.ProposedInvoice, error) {
	proposed := services.ProposedInvoice{Source: services.SourceRegular}

	if isJSON(e) {
		var req regularInvoiceRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
			return proposed, errMalformedBody
		}
		proposed.InvoiceDate = req.InvoiceDate
		proposed.PeriodFrom = req.PeriodFrom
		proposed.PeriodTo = req.PeriodTo
		proposed.Remarks = req.Remarks
		for _, l := range req.Lines {
			proposed.Lines = append(proposed.Lines, services.ProposedLine{ItemRef: strings.TrimSpace(l.ItemRef), Quantity: l.Quantity})
		}
		return proposed, nil
	}

	if err := e.Request.ParseForm(); err != nil {
		return proposed, errMalformedBody
	}
	form := e.Request.PostForm
	proposed.InvoiceDate = strings.TrimSpace(form.Get("invoice_date"))
	proposed.PeriodFrom = strings.TrimSpace(form.Get("period_from"))
	proposed.PeriodTo = strings.TrimSpace(form.Get("period_to"))
	proposed.Remarks = strings.TrimSpace(form.Get("remarks"))

	refs := form["item_ref"]
	qtys := form["quantity"]
	for i, ref := range refs {
		ref = strings.TrimSpace(ref)
		raw := ""
		if i < len(qtys) {
			raw = strings.TrimSpace(qtys[i])
		}
		// Blank trailing rows of the form are not lines.
		if ref == "" && raw == "" {
			continue
		}
		qty, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return proposed, &services.CommitError{Kind: services.ErrInvalidQuantity, Line: len(proposed.Lines) + 1, ItemRef: ref}
		}
		proposed.Lines = append(proposed.Lines, services.ProposedLine{ItemRef: ref, Quantity: qty})
	}
	return proposed, nil
}

// parseEnhancedInvoice reads the enhanced JSON shape.
func parseEnhancedInvoice(e *core.RequestEvent) (services.ProposedInvoice, error) {
	proposed := services.ProposedInvoice{Source: services.SourceEnhanced}

	var req enhancedInvoiceRequest
	if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
		return proposed, errMalformedBody
	}

	mode, ok := services.ParseTaxMode(req.GSTSplit)
	if !ok {
		return proposed, errUnknownGSTSplit
	}

	proposed.TaxMode = mode
	proposed.InvoiceDate = req.InvoiceDate
	proposed.PeriodFrom = req.PeriodFrom
	proposed.PeriodTo = req.PeriodTo
	proposed.Remarks = req.Remarks
	for _, it := range req.Items {
		ref := strings.TrimSpace(it.BOQItemID)
		if ref == "" {
			ref = strings.TrimSpace(it.Description)
		}
		proposed.Lines = append(proposed.Lines, services.ProposedLine{ItemRef: ref, Quantity: it.Qty})
	}
	return proposed, nil
}

// HandleInvoiceCreate serves the regular invoice entry point.
func HandleInvoiceCreate(app core.App, guard *services.CommitGuard) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return createInvoice(app, guard, e, parseRegularInvoice)
	}
}

// HandleEnhancedInvoiceCreate serves the enhanced invoice entry point. It
// differs from the regular one only in request shape.
func HandleEnhancedInvoiceCreate(app core.App, guard *services.CommitGuard) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return createInvoice(app, guard, e, parseEnhancedInvoice)
	}
}

func createInvoice(app core.App, guard *services.CommitGuard, e *core.RequestEvent, parse func(*core.RequestEvent) (services.ProposedInvoice, error)) error {
	project, err := projectFromEvent(app, e)
	if err != nil {
		return writeBillingError(e, "invoice_create", err)
	}

	proposed, err := parse(e)
	if err != nil {
		if isRequestError(err) {
			return badRequest(e, err.Error())
		}
		return writeBillingError(e, "invoice_create", err)
	}

	inv, err := guard.Create(project.Id, proposed)
	if err != nil {
		return writeBillingError(e, "invoice_create", err)
	}

	if isHTMX(e) {
		SetToast(e, ToastSuccess, "Invoice "+inv.Number+" created")
		notifyBalancesChanged(e, project.Id)
		e.Response.WriteHeader(http.StatusCreated)
		return templates.InvoiceResult(invoiceResultData(inv)).Render(e.Request.Context(), e.Response)
	}
	return e.JSON(http.StatusCreated, inv)
}

func invoiceResultData(inv *services.CommittedInvoice) templates.InvoiceResultData {
	data := templates.InvoiceResultData{
		ProjectID:  inv.ProjectID,
		InvoiceID:  inv.ID,
		Number:     inv.Number,
		Date:       inv.InvoiceDate,
		TaxMode:    taxModeLabel(inv.TaxMode),
		Taxable:    services.FormatINR(inv.Totals.TaxableValue),
		Tax:        services.FormatINR(inv.Totals.TotalTax),
		GrandTotal: services.FormatINR(inv.Totals.GrandTotal),
		Warnings:   inv.Warnings,
	}
	for _, l := range inv.Lines {
		data.Lines = append(data.Lines, templates.InvoiceResultLine{
			ItemRef:     l.ItemRef,
			Description: l.Description,
			Unit:        l.Unit,
			Quantity:    services.FormatQty(l.Qty),
			Amount:      services.FormatINR(l.Amount),
		})
	}
	return data
}

func taxModeLabel(m services.TaxMode) string {
	if m == services.TaxModeInterState {
		return "IGST"
	}
	return "CGST + SGST"
}
