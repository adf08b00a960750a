package services

import (
	"fmt"
	"math"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// BatchLine is one (reference, quantity) pair of a proposed invoice.
type BatchLine struct {
	ItemRef  string  `json:"item_ref"`
	Quantity float64 `json:"quantity"`
}

// ResolvedLine is a batch line bound to the BOQ item it references.
type ResolvedLine struct {
	Line     int
	ItemRef  string
	Item     BOQItem
	Quantity float64
}

// ValidationResult is the outcome of checking a batch against remaining
// balances. Valid is true iff Errors is empty.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Errors   []QuantityError `json:"errors"`
	Warnings []string        `json:"warnings"`

	Resolved []ResolvedLine `json:"-"`
}

// ItemBalance is one row of the per-project balance table.
type ItemBalance struct {
	ItemID        string  `json:"item_id"`
	ItemCode      string  `json:"item_code"`
	Description   string  `json:"description"`
	Unit          string  `json:"unit"`
	UnitRate      float64 `json:"unit_rate"`
	GSTRate       float64 `json:"gst_rate"`
	Original      float64 `json:"original_quantity"`
	Billed        float64 `json:"billed_quantity"`
	Remaining     float64 `json:"remaining_quantity"`
	PercentBilled float64 `json:"percent_billed"`
}

// Reconciler derives remaining balances from the ledger. It never writes.
type Reconciler struct {
	ledger *Ledger
}

func NewReconciler(app core.App) *Reconciler {
	return &Reconciler{ledger: NewLedger(app)}
}

// Remaining returns original_quantity - billed_quantity for the referenced item.
func (r *Reconciler) Remaining(projectID, itemRef string) (float64, error) {
	item, err := r.ledger.GetItem(projectID, itemRef)
	if err != nil {
		return 0, err
	}
	return item.Remaining(), nil
}

// ValidateBatch checks every line against the current balances. Reference
// and quantity problems fail the whole batch with a *CommitError; quantity
// excesses are reported in the result.
func (r *Reconciler) ValidateBatch(projectID string, lines []BatchLine) (*ValidationResult, error) {
	items, err := r.ledger.Items(projectID)
	if err != nil {
		return nil, err
	}
	return validateLines(items, lines)
}

// Balances returns the balance table for a project in BOQ order.
func (r *Reconciler) Balances(projectID string) ([]ItemBalance, error) {
	items, err := r.ledger.Items(projectID)
	if err != nil {
		return nil, err
	}

	rows := make([]ItemBalance, 0, len(items))
	for _, item := range items {
		var pct float64
		if item.OriginalQuantity > 0 {
			pct = toQty(item.BilledQuantity).Div(toQty(item.OriginalQuantity)).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
		rows = append(rows, ItemBalance{
			ItemID:        item.ID,
			ItemCode:      item.ItemCode,
			Description:   item.Description,
			Unit:          item.Unit,
			UnitRate:      item.UnitRate,
			GSTRate:       item.GSTRate,
			Original:      item.OriginalQuantity,
			Billed:        item.BilledQuantity,
			Remaining:     item.Remaining(),
			PercentBilled: pct,
		})
	}
	return rows, nil
}

type itemGroup struct {
	item  BOQItem
	ref   string
	sum   decimal.Decimal
	lines []int
}

func validateLines(items []BOQItem, lines []BatchLine) (*ValidationResult, error) {
	result := &ValidationResult{
		Errors:   []QuantityError{},
		Warnings: []string{},
		Resolved: make([]ResolvedLine, 0, len(lines)),
	}

	groups := make(map[string]*itemGroup)
	var order []string

	for i, line := range lines {
		n := i + 1
		if !(line.Quantity > 0) || math.IsInf(line.Quantity, 0) {
			return nil, &CommitError{Kind: ErrInvalidQuantity, Line: n, ItemRef: line.ItemRef, Requested: line.Quantity}
		}

		item, kind, err := resolveItem(items, line.ItemRef)
		if err != nil {
			return nil, &CommitError{Kind: err, Line: n, ItemRef: line.ItemRef, Requested: line.Quantity}
		}
		if kind == matchByDescription {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"line %d: %q was matched by description; reference item %s by id instead", n, line.ItemRef, item.ID))
		}

		result.Resolved = append(result.Resolved, ResolvedLine{
			Line:     n,
			ItemRef:  line.ItemRef,
			Item:     item,
			Quantity: line.Quantity,
		})

		g, ok := groups[item.ID]
		if !ok {
			g = &itemGroup{item: item, ref: line.ItemRef}
			groups[item.ID] = g
			order = append(order, item.ID)
		}
		g.sum = g.sum.Add(toQty(line.Quantity))
		g.lines = append(g.lines, n)
	}

	for _, id := range order {
		g := groups[id]
		remaining := toQty(g.item.OriginalQuantity).Sub(toQty(g.item.BilledQuantity))

		if len(g.lines) > 1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%q appears on lines %v; quantities were summed to %s", g.item.Description, g.lines, g.sum.String()))
		}

		switch {
		case exceeds(g.sum, remaining):
			result.Errors = append(result.Errors, QuantityError{
				ItemRef:     g.ref,
				ItemID:      g.item.ID,
				Description: g.item.Description,
				Requested:   g.sum.InexactFloat64(),
				Remaining:   remaining.InexactFloat64(),
				Lines:       g.lines,
			})
		case !exceeds(remaining, g.sum):
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%q will be fully billed by this invoice", g.item.Description))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// overQuantityError folds the validation errors into one rejection. The
// first offending item populates the top-level fields.
func overQuantityError(errs []QuantityError) *CommitError {
	first := errs[0]
	line := 0
	if len(first.Lines) > 0 {
		line = first.Lines[0]
	}
	return &CommitError{
		Kind:      ErrOverQuantity,
		Line:      line,
		ItemRef:   first.ItemRef,
		ItemID:    first.ItemID,
		Requested: first.Requested,
		Remaining: first.Remaining,
		Items:     errs,
	}
}
