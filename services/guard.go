package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// Invoice sources recorded on committed invoices.
const (
	SourceRegular  = "regular"
	SourceEnhanced = "enhanced"
)

// GuardSettings carries the supplier-level settings the guard needs.
type GuardSettings struct {
	NumberPrefix      string
	SupplierStateCode string
}

// ProposedLine is one requested line of a new invoice.
type ProposedLine struct {
	ItemRef  string
	Quantity float64
}

// ProposedInvoice is the canonical shape every invoice entry point
// translates its request into.
type ProposedInvoice struct {
	Source      string
	InvoiceDate string
	PeriodFrom  string
	PeriodTo    string
	TaxMode     TaxMode // empty: derived from the project and supplier state codes
	Remarks     string
	Lines       []ProposedLine
}

// CommittedLine is a persisted invoice line.
type CommittedLine struct {
	ID          string `json:"id"`
	ItemID      string `json:"item_id"`
	ItemRef     string `json:"item_ref"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	InvoiceLineCalc
}

// CommittedInvoice is what the guard returns after a successful commit.
type CommittedInvoice struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Number      string          `json:"invoice_number"`
	Sequence    int             `json:"sequence"`
	Source      string          `json:"source"`
	TaxMode     TaxMode         `json:"tax_mode"`
	InvoiceDate string          `json:"invoice_date"`
	Totals      InvoiceTotals   `json:"totals"`
	Lines       []CommittedLine `json:"lines"`
	Warnings    []string        `json:"warnings"`
}

// pendingInvoice is an invoice that passed validation and is ready to commit.
type pendingInvoice struct {
	projectID string
	proposed  ProposedInvoice
	taxMode   TaxMode
	lines     []ResolvedLine
	calcs     []InvoiceLineCalc
	totals    InvoiceTotals
	deltas    map[string]float64
	warnings  []string
}

// CommitGuard is the single gate through which every invoice is created.
// It resolves and validates the proposed lines against current balances and
// then commits the ledger update and the invoice records in one transaction.
type CommitGuard struct {
	app        core.App
	reconciler *Reconciler
	settings   GuardSettings
	now        func() time.Time
}

// NextNumber previews the invoice number the next commit for the project
// will receive, using the configured prefix.
func (g *CommitGuard) NextNumber(projectID string) (string, error) {
	return NextInvoiceNumber(g.app, projectID, g.settings.NumberPrefix)
}

func NewCommitGuard(app core.App, settings GuardSettings) *CommitGuard {
	if settings.NumberPrefix == "" {
		settings.NumberPrefix = DefaultInvoicePrefix
	}
	return &CommitGuard{
		app:        app,
		reconciler: NewReconciler(app),
		settings:   settings,
		now:        time.Now,
	}
}

// Create validates and commits a proposed invoice. On rejection the error
// is a *CommitError (or wraps one) and nothing has been written.
func (g *CommitGuard) Create(projectID string, proposed ProposedInvoice) (*CommittedInvoice, error) {
	logger := g.app.Logger().With("project", projectID, "source", proposed.Source)

	pending, err := g.prepare(projectID, proposed)
	if err != nil {
		g.logRejection(logger, err)
		return nil, err
	}

	committed, err := g.commit(pending)
	if err != nil {
		g.logRejection(logger, err)
		return nil, err
	}

	logger.Info("invoice committed",
		"invoice", committed.ID,
		"number", committed.Number,
		"lines", len(committed.Lines),
		"grand_total", committed.Totals.GrandTotal,
	)
	return committed, nil
}

// prepare runs the received, resolving and validating steps.
func (g *CommitGuard) prepare(projectID string, proposed ProposedInvoice) (*pendingInvoice, error) {
	project, err := FindProject(g.app, projectID)
	if errors.Is(err, ErrProjectNotFound) {
		return nil, &CommitError{Kind: ErrProjectNotFound}
	}
	if err != nil {
		return nil, err
	}
	if len(proposed.Lines) == 0 {
		return nil, &CommitError{Kind: ErrEmptyInvoice}
	}

	batch := make([]BatchLine, len(proposed.Lines))
	for i, l := range proposed.Lines {
		batch[i] = BatchLine{ItemRef: l.ItemRef, Quantity: l.Quantity}
	}

	result, err := g.reconciler.ValidateBatch(projectID, batch)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, overQuantityError(result.Errors)
	}

	mode := ResolveTaxMode(proposed.TaxMode, project.GetString("state_code"), g.settings.SupplierStateCode)

	pending := &pendingInvoice{
		projectID: projectID,
		proposed:  proposed,
		taxMode:   mode,
		lines:     result.Resolved,
		calcs:     make([]InvoiceLineCalc, len(result.Resolved)),
		deltas:    make(map[string]float64),
		warnings:  result.Warnings,
	}

	sums := make(map[string]decimal.Decimal)
	for i, rl := range result.Resolved {
		pending.calcs[i] = CalcInvoiceLine(rl.Item.UnitRate, rl.Quantity, rl.Item.GSTRate, mode)
		sums[rl.Item.ID] = sums[rl.Item.ID].Add(toQty(rl.Quantity))
	}
	for id, sum := range sums {
		pending.deltas[id] = sum.InexactFloat64()
	}
	pending.totals = CalcInvoiceTotals(pending.calcs)

	return pending, nil
}

// commit applies the ledger deltas and persists the invoice atomically.
func (g *CommitGuard) commit(p *pendingInvoice) (*CommittedInvoice, error) {
	invoiceDate := p.proposed.InvoiceDate
	if invoiceDate == "" {
		invoiceDate = g.now().Format("2006-01-02")
	}
	source := p.proposed.Source
	if source == "" {
		source = SourceRegular
	}

	var committed *CommittedInvoice
	err := g.app.RunInTransaction(func(txApp core.App) error {
		if err := NewLedger(txApp).ApplyCommit(p.projectID, p.deltas); err != nil {
			return err
		}

		seq, err := nextInvoiceSequence(txApp, p.projectID)
		if err != nil {
			return err
		}

		invoicesCol, err := txApp.FindCollectionByNameOrId("invoices")
		if err != nil {
			return fmt.Errorf("find invoices collection: %w", err)
		}
		linesCol, err := txApp.FindCollectionByNameOrId("invoice_line_items")
		if err != nil {
			return fmt.Errorf("find invoice_line_items collection: %w", err)
		}

		inv := core.NewRecord(invoicesCol)
		inv.Set("project", p.projectID)
		inv.Set("invoice_number", formatInvoiceNumber(g.settings.NumberPrefix, seq))
		inv.Set("sequence", seq)
		inv.Set("status", "draft")
		inv.Set("source", source)
		inv.Set("tax_mode", string(p.taxMode))
		inv.Set("invoice_date", invoiceDate)
		inv.Set("period_from", p.proposed.PeriodFrom)
		inv.Set("period_to", p.proposed.PeriodTo)
		inv.Set("taxable_value", p.totals.TaxableValue)
		inv.Set("cgst_amount", p.totals.CGSTAmount)
		inv.Set("sgst_amount", p.totals.SGSTAmount)
		inv.Set("igst_amount", p.totals.IGSTAmount)
		inv.Set("total_tax", p.totals.TotalTax)
		inv.Set("round_off", p.totals.RoundOff)
		inv.Set("grand_total", p.totals.GrandTotal)
		inv.Set("remarks", p.proposed.Remarks)
		if err := txApp.Save(inv); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}

		committed = &CommittedInvoice{
			ID:          inv.Id,
			ProjectID:   p.projectID,
			Number:      inv.GetString("invoice_number"),
			Sequence:    seq,
			Source:      source,
			TaxMode:     p.taxMode,
			InvoiceDate: invoiceDate,
			Totals:      p.totals,
			Lines:       make([]CommittedLine, 0, len(p.lines)),
			Warnings:    p.warnings,
		}

		for i, rl := range p.lines {
			calc := p.calcs[i]
			line := core.NewRecord(linesCol)
			line.Set("invoice", inv.Id)
			line.Set("boq_item", rl.Item.ID)
			line.Set("item_ref", rl.ItemRef)
			line.Set("sort_order", rl.Line)
			line.Set("description", rl.Item.Description)
			line.Set("unit", rl.Item.Unit)
			line.Set("quantity", calc.Qty)
			line.Set("rate", calc.Rate)
			line.Set("amount", calc.Amount)
			line.Set("gst_rate", calc.GSTPercent)
			line.Set("cgst_amount", calc.CGSTAmount)
			line.Set("sgst_amount", calc.SGSTAmount)
			line.Set("igst_amount", calc.IGSTAmount)
			line.Set("total", calc.Total)
			if err := txApp.Save(line); err != nil {
				return fmt.Errorf("save invoice line %d: %w", rl.Line, err)
			}

			committed.Lines = append(committed.Lines, CommittedLine{
				ID:              line.Id,
				ItemID:          rl.Item.ID,
				ItemRef:         rl.ItemRef,
				Description:     rl.Item.Description,
				Unit:            rl.Item.Unit,
				InvoiceLineCalc: calc,
			})
		}
		return nil
	})
	if err != nil {
		var ce *CommitError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, fmt.Errorf("commit invoice: %w", err)
	}
	return committed, nil
}

func (g *CommitGuard) logRejection(logger *slog.Logger, err error) {
	kind := ErrorKind(err)
	if kind == "" {
		logger.Error("invoice commit failed", "error", err)
		return
	}

	attrs := []any{"kind", kind}
	var ce *CommitError
	if errors.As(err, &ce) {
		attrs = append(attrs,
			"line", ce.Line,
			"item_ref", ce.ItemRef,
			"requested", ce.Requested,
			"remaining", ce.Remaining,
		)
	}
	logger.Warn("invoice rejected", attrs...)
}
