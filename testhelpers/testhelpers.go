// Package testhelpers builds throwaway PocketBase apps and billing fixtures
// for package tests.
package testhelpers

import (
	"strconv"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"rabilling/collections"
)

// NewTestApp bootstraps a PocketBase app in a per-test temp dir with the
// billing collections and boq_items hooks in place.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: t.TempDir()})
	if err := app.Bootstrap(); err != nil {
		t.Fatalf("bootstrap test app: %v", err)
	}
	collections.Setup(app)
	collections.RegisterHooks(app)
	return app
}

// saveRecord inserts a record into collection or fails the test.
func saveRecord(t *testing.T, app core.App, collection string, fields map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("collection %s: %v", collection, err)
	}
	record := core.NewRecord(col)
	for k, v := range fields {
		record.Set(k, v)
	}
	if err := app.Save(record); err != nil {
		t.Fatalf("save %s fixture: %v", collection, err)
	}
	return record
}

// CreateTestProject creates an active project in Maharashtra (state 27).
func CreateTestProject(t *testing.T, app core.App, name string) *core.Record {
	t.Helper()
	return saveRecord(t, app, "projects", map[string]any{
		"name":       name,
		"status":     "active",
		"state_code": "27",
	})
}

// BOQItemDef describes a BOQ item fixture. Unit defaults to Nos.
type BOQItemDef struct {
	ItemCode    string
	Description string
	Unit        string
	Quantity    float64
	Rate        float64
	GSTRate     float64
}

// CreateTestBOQItem creates an unbilled BOQ item under a project.
func CreateTestBOQItem(t *testing.T, app core.App, projectID string, sortOrder int, def BOQItemDef) *core.Record {
	t.Helper()
	if def.Unit == "" {
		def.Unit = "Nos"
	}
	return saveRecord(t, app, "boq_items", map[string]any{
		"project":           projectID,
		"sort_order":        sortOrder,
		"item_code":         def.ItemCode,
		"description":       def.Description,
		"unit":              def.Unit,
		"hsn_code":          "9954",
		"original_quantity": def.Quantity,
		"unit_rate":         def.Rate,
		"gst_rate":          def.GSTRate,
		"billed_quantity":   0,
		"version":           0,
	})
}

// CreateTestInvoice inserts a bare RA invoice without touching the ledger,
// for legacy and drift fixtures.
func CreateTestInvoice(t *testing.T, app core.App, projectID string, sequence int) *core.Record {
	t.Helper()
	return saveRecord(t, app, "invoices", map[string]any{
		"project":        projectID,
		"invoice_number": "RA" + strconv.Itoa(sequence),
		"sequence":       sequence,
		"status":         "draft",
		"source":         "regular",
		"tax_mode":       "cgst_sgst",
	})
}

// CreateTestInvoiceLine inserts an invoice line. An empty boqItemID models a
// legacy line that only carries a textual reference.
func CreateTestInvoiceLine(t *testing.T, app core.App, invoiceID, boqItemID, itemRef string, qty float64) *core.Record {
	t.Helper()
	return saveRecord(t, app, "invoice_line_items", map[string]any{
		"invoice":  invoiceID,
		"boq_item": boqItemID,
		"item_ref": itemRef,
		"quantity": qty,
	})
}

// AssertHTMLContains fails the test for every fragment missing from body.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()
	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("body is missing %q\nbody: %s", frag, clip(body, 500))
		}
	}
}

// AssertHXRedirect checks the HX-Redirect header value.
func AssertHXRedirect(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("HX-Redirect = %q, want %q", got, want)
	}
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
