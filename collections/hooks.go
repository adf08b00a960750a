package collections

import (
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
)

var (
	errBilledOnCreate   = errors.New("boq item must be created with billed_quantity = 0")
	errOriginalNotSet   = errors.New("boq item original_quantity must be greater than zero")
	errOriginalChanged  = errors.New("boq item original_quantity is immutable")
	errBilledChanged    = errors.New("boq item billed_quantity can only change through an invoice commit")
	errItemStillInvoice = errors.New("boq item is referenced by committed invoices")
	errStaleItem        = errors.New("boq item was billed since it was loaded; reload and retry")
)

// RegisterHooks binds the record hooks that keep boq_items consistent for
// every write path that does not go through the ledger (admin UI, record API,
// imports, ad-hoc scripts).
func RegisterHooks(app core.App) {
	app.OnRecordCreate("boq_items").BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetFloat("billed_quantity") != 0 {
			return errBilledOnCreate
		}
		if e.Record.GetFloat("original_quantity") <= 0 {
			return errOriginalNotSet
		}
		return e.Next()
	})

	// Compared against the stored row, not e.Record.Original(): a record
	// loaded before an invoice commit still carries the old billed quantity.
	app.OnRecordUpdate("boq_items").BindFunc(func(e *core.RecordEvent) error {
		current, err := e.App.FindRecordById("boq_items", e.Record.Id)
		if err != nil {
			return fmt.Errorf("load boq item %s: %w", e.Record.Id, err)
		}
		if current.GetFloat("original_quantity") != e.Record.GetFloat("original_quantity") {
			return errOriginalChanged
		}
		if current.GetInt("version") != e.Record.GetInt("version") {
			return errStaleItem
		}
		if current.GetFloat("billed_quantity") != e.Record.GetFloat("billed_quantity") {
			return errBilledChanged
		}
		return e.Next()
	})

	app.OnRecordDelete("boq_items").BindFunc(func(e *core.RecordEvent) error {
		refs, err := e.App.FindRecordsByFilter(
			"invoice_line_items",
			"boq_item = {:itemId}",
			"",
			1,
			0,
			map[string]any{"itemId": e.Record.Id},
		)
		if err != nil {
			return fmt.Errorf("check invoice references for boq item %s: %w", e.Record.Id, err)
		}
		if len(refs) > 0 {
			return errItemStillInvoice
		}
		return e.Next()
	})
}
