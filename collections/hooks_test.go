package collections_test

import (
	"testing"

	"rabilling/testhelpers"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func TestHooks_CreateRequiresUnbilledPositiveQuantity(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Hooks")
	col, _ := app.FindCollectionByNameOrId("boq_items")

	tests := []struct {
		name     string
		original float64
		billed   float64
		wantErr  bool
	}{
		{"valid", 10, 0, false},
		{"prebilled", 10, 2, true},
		{"zero original", 0, 0, true},
		{"negative original", -5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := core.NewRecord(col)
			r.Set("project", proj.Id)
			r.Set("description", "Item "+tt.name)
			r.Set("unit", "Nos")
			r.Set("original_quantity", tt.original)
			r.Set("billed_quantity", tt.billed)
			err := app.Save(r)
			if (err != nil) != tt.wantErr {
				t.Errorf("Save() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHooks_QuantitiesImmutableThroughRecordAPI(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Hooks")
	item := testhelpers.CreateTestBOQItem(t, app, proj.Id, 1, testhelpers.BOQItemDef{ItemCode: "1", Description: "Steel", Quantity: 10})

	tests := []struct {
		name  string
		field string
		value any
	}{
		{"original quantity", "original_quantity", 20},
		{"billed quantity", "billed_quantity", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := app.FindRecordById("boq_items", item.Id)
			rec.Set(tt.field, tt.value)
			if err := app.Save(rec); err == nil {
				t.Errorf("expected %s change to be rejected", tt.field)
			}
		})
	}

	// Descriptive fields stay editable.
	rec, _ := app.FindRecordById("boq_items", item.Id)
	rec.Set("description", "Steel Fe500")
	if err := app.Save(rec); err != nil {
		t.Errorf("description update rejected: %v", err)
	}
}

func TestHooks_DeleteBlockedWhileInvoiced(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Hooks")
	billed := testhelpers.CreateTestBOQItem(t, app, proj.Id, 1, testhelpers.BOQItemDef{ItemCode: "1", Description: "Steel", Quantity: 10})
	free := testhelpers.CreateTestBOQItem(t, app, proj.Id, 2, testhelpers.BOQItemDef{ItemCode: "2", Description: "Sand", Quantity: 10})

	inv := testhelpers.CreateTestInvoice(t, app, proj.Id, 1)
	testhelpers.CreateTestInvoiceLine(t, app, inv.Id, billed.Id, "1", 1)

	if err := app.Delete(billed); err == nil {
		t.Error("expected delete of invoiced item to be rejected")
	}
	if err := app.Delete(free); err != nil {
		t.Errorf("delete of unreferenced item failed: %v", err)
	}
}

func TestHooks_StaleRecordCannotRewindBilledQuantity(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Hooks")
	item := testhelpers.CreateTestBOQItem(t, app, proj.Id, 1, testhelpers.BOQItemDef{ItemCode: "1", Description: "Steel", Quantity: 100})

	stale, err := app.FindRecordById("boq_items", item.Id)
	if err != nil {
		t.Fatalf("FindRecordById() error: %v", err)
	}

	// Same write the ledger performs on commit.
	_, err = app.DB().NewQuery(
		"UPDATE {{boq_items}} SET [[billed_quantity]] = 98.991, [[version]] = [[version]] + 1 WHERE [[id]] = {:id}",
	).Bind(dbx.Params{"id": item.Id}).Execute()
	if err != nil {
		t.Fatalf("commit update error: %v", err)
	}

	stale.Set("description", "Steel Fe500")
	if err := app.Save(stale); err == nil {
		t.Fatal("expected save of stale record to be rejected")
	}

	fresh, _ := app.FindRecordById("boq_items", item.Id)
	if got := fresh.GetFloat("billed_quantity"); got != 98.991 {
		t.Errorf("billed_quantity = %v, want 98.991", got)
	}

	fresh.Set("description", "Steel Fe500")
	if err := app.Save(fresh); err != nil {
		t.Errorf("save of current record rejected: %v", err)
	}
}
