package services

import (
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// CompanyInfo is the supplier block printed on every invoice.
type CompanyInfo struct {
	Name      string
	Address   string
	Email     string
	GSTIN     string
	StateCode string
}

// InvoiceExportData holds all data needed to generate an RA invoice PDF.
type InvoiceExportData struct {
	Company CompanyInfo

	// Invoice header
	InvoiceNumber string
	InvoiceDate   string
	PeriodFrom    string
	PeriodTo      string
	FiscalYear    string
	Status        string
	TaxMode       TaxMode

	// Project
	ProjectName      string
	ProjectReference string
	ClientName       string
	ProjectState     string

	LineItems []InvoiceExportLine

	Totals        InvoiceTotals
	AmountInWords string
	Remarks       string
}

// InvoiceExportLine holds a single invoice line plus the item's running
// position after this invoice.
type InvoiceExportLine struct {
	SINo        int
	ItemCode    string
	Description string
	HSNCode     string
	Unit        string
	Qty         float64
	Rate        float64
	Amount      float64
	GSTPercent  float64
	GSTAmount   float64
	Total       float64

	BOQQuantity float64
	Cumulative  float64 // billed up to and including this invoice
	Balance     float64 // BOQQuantity - Cumulative
}

// BuildInvoiceExportData assembles all data needed for PDF generation from
// PocketBase records.
func BuildInvoiceExportData(app core.App, invoiceID string, company CompanyInfo) (*InvoiceExportData, error) {
	inv, err := app.FindRecordById("invoices", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	projectID := inv.GetString("project")

	data := &InvoiceExportData{
		Company:       company,
		InvoiceNumber: inv.GetString("invoice_number"),
		InvoiceDate:   inv.GetString("invoice_date"),
		PeriodFrom:    inv.GetString("period_from"),
		PeriodTo:      inv.GetString("period_to"),
		Status:        inv.GetString("status"),
		TaxMode:       TaxMode(inv.GetString("tax_mode")),
		Remarks:       inv.GetString("remarks"),
		Totals: InvoiceTotals{
			TaxableValue: inv.GetFloat("taxable_value"),
			CGSTAmount:   inv.GetFloat("cgst_amount"),
			SGSTAmount:   inv.GetFloat("sgst_amount"),
			IGSTAmount:   inv.GetFloat("igst_amount"),
			TotalTax:     inv.GetFloat("total_tax"),
			RoundOff:     inv.GetFloat("round_off"),
			GrandTotal:   inv.GetFloat("grand_total"),
		},
	}
	data.AmountInWords = AmountToWords(data.Totals.GrandTotal)
	if d, err := time.Parse(time.DateOnly, data.InvoiceDate); err == nil {
		data.FiscalYear = FiscalYear(d)
	}

	if project, err := app.FindRecordById("projects", projectID); err == nil {
		data.ProjectName = project.GetString("name")
		data.ProjectReference = project.GetString("reference_number")
		data.ClientName = project.GetString("client_name")
		data.ProjectState = project.GetString("state_code")
	} else {
		log.Printf("invoice_export: could not find project %s: %v", projectID, err)
	}

	lines, err := app.FindRecordsByFilter(
		"invoice_line_items",
		"invoice = {:invoiceId}",
		"sort_order",
		0,
		0,
		dbx.Params{"invoiceId": invoiceID},
	)
	if err != nil {
		return nil, fmt.Errorf("fetch lines for invoice %s: %w", invoiceID, err)
	}

	items, err := NewLedger(app).Items(projectID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]BOQItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	cumulative, err := invoicedQuantities(app, projectID, inv.GetInt("sequence"))
	if err != nil {
		return nil, err
	}

	for i, l := range lines {
		itemID := l.GetString("boq_item")
		item := byID[itemID]
		gst := l.GetFloat("cgst_amount") + l.GetFloat("sgst_amount") + l.GetFloat("igst_amount")

		line := InvoiceExportLine{
			SINo:        i + 1,
			ItemCode:    item.ItemCode,
			Description: l.GetString("description"),
			HSNCode:     item.HSNCode,
			Unit:        l.GetString("unit"),
			Qty:         l.GetFloat("quantity"),
			Rate:        l.GetFloat("rate"),
			Amount:      l.GetFloat("amount"),
			GSTPercent:  l.GetFloat("gst_rate"),
			GSTAmount:   roundPaise(gst),
			Total:       l.GetFloat("total"),
			BOQQuantity: item.OriginalQuantity,
		}
		if itemID != "" {
			cum := cumulative[itemID]
			line.Cumulative = cum.InexactFloat64()
			line.Balance = toQty(item.OriginalQuantity).Sub(cum).InexactFloat64()
		}
		data.LineItems = append(data.LineItems, line)
	}

	return data, nil
}
