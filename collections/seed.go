package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

type boqItemDef struct {
	itemCode    string
	description string
	unit        string
	hsnCode     string
	quantity    float64
	rate        float64
	gstRate     float64
}

// DemoProjectName is the name of the project created by Seed.
const DemoProjectName = "Tower B Residential"

var demoItems = []boqItemDef{
	{"1.1", "Reinforcement steel Fe500", "MT", "7214", 100, 62000, 18},
	{"1.2", "Cement OPC 53 grade", "Bag", "2523", 500, 400, 28},
	{"2.1", "Excavation in ordinary soil", "Cum", "9954", 1250.5, 350, 18},
}

// Seed creates a demo project with three unbilled BOQ items. It is safe to
// call on every startup because it returns early if any project exists.
func Seed(app core.App) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	total, err := app.CountRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if total > 0 {
		return nil // already seeded
	}

	itemsCol, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return fmt.Errorf("seed: could not find boq_items collection: %w", err)
	}

	log.Println("seed: projects collection is empty - inserting demo project ...")

	return app.RunInTransaction(func(txApp core.App) error {
		project := core.NewRecord(projectsCol)
		project.Set("name", DemoProjectName)
		project.Set("reference_number", "TB-2025-07")
		project.Set("client_name", "Acme Developers")
		project.Set("client_gstin", "27AAPFU0939F1ZV")
		project.Set("state_code", "27")
		project.Set("status", "active")
		if err := txApp.Save(project); err != nil {
			return fmt.Errorf("seed: save project: %w", err)
		}

		for i, d := range demoItems {
			r := core.NewRecord(itemsCol)
			r.Set("project", project.Id)
			r.Set("sort_order", i+1)
			r.Set("item_code", d.itemCode)
			r.Set("description", d.description)
			r.Set("unit", d.unit)
			r.Set("hsn_code", d.hsnCode)
			r.Set("original_quantity", d.quantity)
			r.Set("unit_rate", d.rate)
			r.Set("gst_rate", d.gstRate)
			r.Set("billed_quantity", 0)
			r.Set("version", 0)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: save boq item %s: %w", d.itemCode, err)
			}
		}

		log.Printf("seed: created project %q (%s) with %d BOQ items\n", DemoProjectName, project.Id, len(demoItems))
		return nil
	})
}
