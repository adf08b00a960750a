package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// ItemResolver maps a textual reference inside a project to a boq_items
// record id.
type ItemResolver func(projectID, ref string) (string, error)

// MigrateLegacyItemRefs links invoice lines that only carry a textual
// item_ref to the BOQ item the reference resolves to. Lines whose reference
// is unknown or ambiguous are logged and left untouched.
// Safe to call on every startup -- returns early if nothing to migrate.
func MigrateLegacyItemRefs(app core.App, resolve ItemResolver) (int, error) {
	var rows []struct {
		ID      string `db:"id"`
		ItemRef string `db:"item_ref"`
		Project string `db:"project"`
	}

	err := app.DB().NewQuery(
		"SELECT li.[[id]] AS id, li.[[item_ref]] AS item_ref, inv.[[project]] AS project " +
			"FROM {{invoice_line_items}} li " +
			"INNER JOIN {{invoices}} inv ON inv.[[id]] = li.[[invoice]] " +
			"WHERE li.[[boq_item]] = '' AND li.[[item_ref]] != ''",
	).All(&rows)
	if err != nil {
		return 0, fmt.Errorf("migrate: could not query legacy invoice lines: %w", err)
	}

	if len(rows) == 0 {
		return 0, nil
	}

	log.Printf("migrate: found %d invoice line(s) without a boq_item link -- resolving...\n", len(rows))

	linked := 0
	for _, row := range rows {
		itemID, err := resolve(row.Project, row.ItemRef)
		if err != nil {
			log.Printf("migrate: line %s: could not resolve %q in project %s: %v\n", row.ID, row.ItemRef, row.Project, err)
			continue
		}

		line, err := app.FindRecordById("invoice_line_items", row.ID)
		if err != nil {
			log.Printf("migrate: line %s disappeared: %v\n", row.ID, err)
			continue
		}
		line.Set("boq_item", itemID)
		if err := app.Save(line); err != nil {
			log.Printf("migrate: failed to link line %s to item %s: %v\n", row.ID, itemID, err)
			continue
		}
		linked++
	}

	log.Printf("migrate: linked %d of %d legacy invoice line(s).\n", linked, len(rows))
	return linked, nil
}
