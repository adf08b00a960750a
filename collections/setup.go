package collections

import (
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// Setup creates the projects, boq_items, invoices and invoice_line_items
// collections when they are missing. Existing collections are left as they
// are.
func Setup(app core.App) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		addText(c, "reference_number", "client_name")
		c.Fields.Add(&core.TextField{Name: "client_gstin", Max: 15})
		c.Fields.Add(&core.TextField{Name: "state_code", Max: 2})
		c.Fields.Add(singleSelect("status", true, "active", "closed"))
		addTimestamps(c)
	})

	boqItems := ensureCollection(app, "boq_items", func(c *core.Collection) {
		c.Fields.Add(relation("project", projects.Id, true, false))
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "item_code"})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.TextField{Name: "hsn_code"})
		c.Fields.Add(&core.NumberField{Name: "original_quantity", Required: true})
		addNumbers(c, "unit_rate", "gst_rate", "billed_quantity")
		c.Fields.Add(&core.NumberField{Name: "version", OnlyInt: true})
		addTimestamps(c)
		// Blank codes fall back to description matching, so only set codes are unique.
		c.AddIndex("idx_boq_items_project_code", true, "project, item_code", "item_code != ''")
	})

	invoices := ensureCollection(app, "invoices", func(c *core.Collection) {
		c.Fields.Add(relation("project", projects.Id, true, false))
		c.Fields.Add(&core.TextField{Name: "invoice_number", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sequence", Required: true, OnlyInt: true})
		c.Fields.Add(singleSelect("status", true, "draft", "approved", "paid"))
		c.Fields.Add(singleSelect("source", false, "regular", "enhanced"))
		c.Fields.Add(singleSelect("tax_mode", true, "cgst_sgst", "igst"))
		addText(c, "invoice_date", "period_from", "period_to")
		addNumbers(c, "taxable_value", "cgst_amount", "sgst_amount", "igst_amount", "total_tax", "round_off", "grand_total")
		addText(c, "remarks")
		addTimestamps(c)
		c.AddIndex("idx_invoices_project_sequence", true, "project, sequence", "")
	})

	ensureCollection(app, "invoice_line_items", func(c *core.Collection) {
		c.Fields.Add(relation("invoice", invoices.Id, true, true))
		// Optional: legacy lines may only carry item_ref until they are linked.
		c.Fields.Add(relation("boq_item", boqItems.Id, false, false))
		addText(c, "item_ref")
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
		addText(c, "description", "unit")
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true})
		addNumbers(c, "rate", "amount", "gst_rate", "cgst_amount", "sgst_amount", "igst_amount", "total")
	})
}

func addText(c *core.Collection, names ...string) {
	for _, n := range names {
		c.Fields.Add(&core.TextField{Name: n})
	}
}

func addNumbers(c *core.Collection, names ...string) {
	for _, n := range names {
		c.Fields.Add(&core.NumberField{Name: n})
	}
}

func addTimestamps(c *core.Collection) {
	c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
}

func singleSelect(name string, required bool, values ...string) *core.SelectField {
	return &core.SelectField{Name: name, Required: required, Values: values, MaxSelect: 1}
}

func relation(name, collectionID string, required, cascade bool) *core.RelationField {
	return &core.RelationField{
		Name:          name,
		CollectionId:  collectionID,
		Required:      required,
		CascadeDelete: cascade,
		MaxSelect:     1,
	}
}

// ensureCollection returns the named collection, creating it with the fields
// added by define when it does not exist yet.
func ensureCollection(app core.App, name string, define func(*core.Collection)) *core.Collection {
	if existing, err := app.FindCollectionByNameOrId(name); err == nil {
		return existing
	}

	c := core.NewBaseCollection(name)
	define(c)
	if err := app.Save(c); err != nil {
		log.Fatalf("collections: create %q: %v", name, err)
	}
	app.Logger().Info("created collection", "name", name, "id", c.Id)
	return c
}
