package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// BalanceExportData holds all data needed for a balance statement export.
type BalanceExportData struct {
	Company         CompanyInfo
	ProjectName     string
	ReferenceNumber string
	ClientName      string
	GeneratedDate   string
	InvoiceCount    int
	Rows            []ItemBalance
	Totals          BalanceTotals
}

// BuildBalanceExportData loads the project's balance table and valuation.
func BuildBalanceExportData(app core.App, projectID string, company CompanyInfo) (*BalanceExportData, error) {
	project, err := FindProject(app, projectID)
	if err != nil {
		return nil, err
	}

	rows, err := NewReconciler(app).Balances(projectID)
	if err != nil {
		return nil, err
	}

	count, err := app.CountRecords("invoices", dbx.HashExp{"project": projectID})
	if err != nil {
		return nil, fmt.Errorf("count invoices for project %s: %w", projectID, err)
	}

	return &BalanceExportData{
		Company:         company,
		ProjectName:     project.GetString("name"),
		ReferenceNumber: project.GetString("reference_number"),
		ClientName:      project.GetString("client_name"),
		GeneratedDate:   time.Now().Format("02 Jan 2006"),
		InvoiceCount:    int(count),
		Rows:            rows,
		Totals:          CalcBalanceTotals(rows),
	}, nil
}
