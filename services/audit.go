package services

import (
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// Drift is a BOQ item whose ledger billed_quantity disagrees with the sum of
// the committed invoice lines that reference it.
type Drift struct {
	ItemID       string  `json:"item_id"`
	ItemCode     string  `json:"item_code"`
	Description  string  `json:"description"`
	LedgerBilled float64 `json:"ledger_billed"`
	Invoiced     float64 `json:"invoiced"`
	Difference   float64 `json:"difference"`
}

// invoicedQuantities sums committed line quantities per BOQ item. When
// uptoSequence > 0 only invoices up to and including that sequence count.
// Lines without a boq_item link are skipped.
func invoicedQuantities(app core.App, projectID string, uptoSequence int) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Item string  `db:"item"`
		Qty  float64 `db:"qty"`
	}

	err := app.DB().NewQuery(
		"SELECT li.[[boq_item]] AS item, li.[[quantity]] AS qty " +
			"FROM {{invoice_line_items}} li " +
			"INNER JOIN {{invoices}} inv ON inv.[[id]] = li.[[invoice]] " +
			"WHERE inv.[[project]] = {:projectId} AND li.[[boq_item]] != '' " +
			"AND ({:upto} = 0 OR inv.[[sequence]] <= {:upto})",
	).Bind(dbx.Params{
		"projectId": projectID,
		"upto":      uptoSequence,
	}).All(&rows)
	if err != nil {
		return nil, fmt.Errorf("sum invoice lines for project %s: %w", projectID, err)
	}

	sums := make(map[string]decimal.Decimal)
	for _, r := range rows {
		sums[r.Item] = sums[r.Item].Add(toQty(r.Qty))
	}
	return sums, nil
}

// AuditProject re-derives billed quantities from committed invoice lines and
// reports every item where the ledger disagrees beyond the quantity epsilon.
// It never writes.
func AuditProject(app core.App, projectID string) ([]Drift, error) {
	if _, err := FindProject(app, projectID); err != nil {
		return nil, err
	}

	items, err := NewLedger(app).Items(projectID)
	if err != nil {
		return nil, err
	}
	sums, err := invoicedQuantities(app, projectID, 0)
	if err != nil {
		return nil, err
	}

	drifts := []Drift{}
	for _, item := range items {
		ledger := toQty(item.BilledQuantity)
		invoiced := sums[item.ID]
		diff := ledger.Sub(invoiced)
		if !diff.Abs().GreaterThan(quantityEpsilon) {
			continue
		}
		drifts = append(drifts, Drift{
			ItemID:       item.ID,
			ItemCode:     item.ItemCode,
			Description:  item.Description,
			LedgerBilled: item.BilledQuantity,
			Invoiced:     invoiced.InexactFloat64(),
			Difference:   diff.InexactFloat64(),
		})
	}
	return drifts, nil
}
