package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// BOQItem is one line of a project's bill of quantities as held by the ledger.
type BOQItem struct {
	ID               string  `json:"id"`
	ProjectID        string  `json:"project_id"`
	SortOrder        int     `json:"sort_order"`
	ItemCode         string  `json:"item_code"`
	Description      string  `json:"description"`
	Unit             string  `json:"unit"`
	HSNCode          string  `json:"hsn_code"`
	OriginalQuantity float64 `json:"original_quantity"`
	UnitRate         float64 `json:"unit_rate"`
	GSTRate          float64 `json:"gst_rate"`
	BilledQuantity   float64 `json:"billed_quantity"`
	Version          int     `json:"version"`
}

// Remaining is original_quantity - billed_quantity.
func (i BOQItem) Remaining() float64 {
	return RemainingQuantity(i.OriginalQuantity, i.BilledQuantity)
}

func boqItemFromRecord(r *core.Record) BOQItem {
	return BOQItem{
		ID:               r.Id,
		ProjectID:        r.GetString("project"),
		SortOrder:        r.GetInt("sort_order"),
		ItemCode:         r.GetString("item_code"),
		Description:      r.GetString("description"),
		Unit:             r.GetString("unit"),
		HSNCode:          r.GetString("hsn_code"),
		OriginalQuantity: r.GetFloat("original_quantity"),
		UnitRate:         r.GetFloat("unit_rate"),
		GSTRate:          r.GetFloat("gst_rate"),
		BilledQuantity:   r.GetFloat("billed_quantity"),
		Version:          r.GetInt("version"),
	}
}

type matchKind int

const (
	matchByID matchKind = iota
	matchByCode
	matchByDescription
)

// resolveItem maps a reference onto exactly one item: record id first, then
// item code, then the normalised description. A description that matches
// more than one item is ambiguous and is never narrowed down by position.
func resolveItem(items []BOQItem, ref string) (BOQItem, matchKind, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return BOQItem{}, 0, ErrNotFound
	}

	for _, item := range items {
		if item.ID == ref {
			return item, matchByID, nil
		}
	}
	for _, item := range items {
		if item.ItemCode != "" && item.ItemCode == ref {
			return item, matchByCode, nil
		}
	}

	want := normalizeDescription(ref)
	var matches []BOQItem
	for _, item := range items {
		if normalizeDescription(item.Description) == want {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return BOQItem{}, 0, ErrNotFound
	case 1:
		return matches[0], matchByDescription, nil
	default:
		return BOQItem{}, 0, ErrAmbiguousReference
	}
}

// Ledger is the authoritative store of original and billed quantities. It is
// the only code that writes billed_quantity.
type Ledger struct {
	app core.App
}

// NewLedger binds a ledger to app. Pass a transaction app to make ledger
// reads and writes part of an outer transaction.
func NewLedger(app core.App) *Ledger {
	return &Ledger{app: app}
}

// Items returns every BOQ item of the project in display order.
func (l *Ledger) Items(projectID string) ([]BOQItem, error) {
	records, err := l.app.FindRecordsByFilter(
		"boq_items",
		"project = {:projectId}",
		"sort_order,created",
		0,
		0,
		dbx.Params{"projectId": projectID},
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: load boq items for project %s: %w", projectID, err)
	}

	items := make([]BOQItem, 0, len(records))
	for _, r := range records {
		items = append(items, boqItemFromRecord(r))
	}
	return items, nil
}

// GetItem resolves itemRef within the project.
func (l *Ledger) GetItem(projectID, itemRef string) (BOQItem, error) {
	items, err := l.Items(projectID)
	if err != nil {
		return BOQItem{}, err
	}
	item, _, err := resolveItem(items, itemRef)
	if err != nil {
		return BOQItem{}, &CommitError{Kind: err, ItemRef: itemRef}
	}
	return item, nil
}

// ApplyCommit adds every delta to the billed quantity of the item its
// reference resolves to. Either all items are updated or none are: the whole
// call runs in one transaction, and each write re-checks the invariant
// billed_quantity <= original_quantity and the row version read in the same
// transaction.
func (l *Ledger) ApplyCommit(projectID string, deltas map[string]float64) error {
	if len(deltas) == 0 {
		return nil
	}

	return l.app.RunInTransaction(func(txApp core.App) error {
		items, err := NewLedger(txApp).Items(projectID)
		if err != nil {
			return err
		}

		refs := make([]string, 0, len(deltas))
		for ref := range deltas {
			refs = append(refs, ref)
		}
		sort.Strings(refs)

		byID := make(map[string]BOQItem)
		refByID := make(map[string]string)
		totals := make(map[string]decimal.Decimal)
		var order []string

		for _, ref := range refs {
			delta := deltas[ref]
			if !(delta > 0) {
				return &CommitError{Kind: ErrInvalidQuantity, ItemRef: ref, Requested: delta}
			}
			item, _, err := resolveItem(items, ref)
			if err != nil {
				return &CommitError{Kind: err, ItemRef: ref, Requested: delta}
			}
			if _, seen := totals[item.ID]; !seen {
				order = append(order, item.ID)
				byID[item.ID] = item
				refByID[item.ID] = ref
			}
			totals[item.ID] = totals[item.ID].Add(toQty(delta))
		}

		updated := types.NowDateTime().String()
		for _, id := range order {
			item := byID[id]
			original := toQty(item.OriginalQuantity)
			billed := toQty(item.BilledQuantity).Add(totals[id])

			if exceeds(billed, original) {
				return &CommitError{
					Kind:      ErrConcurrentOverCommit,
					ItemRef:   refByID[id],
					ItemID:    id,
					Requested: totals[id].InexactFloat64(),
					Remaining: item.Remaining(),
				}
			}
			// Within epsilon of the limit counts as exactly fully billed.
			if billed.GreaterThan(original) {
				billed = original
			}

			res, err := txApp.DB().NewQuery(
				"UPDATE {{boq_items}} SET [[billed_quantity]] = {:billed}, [[version]] = [[version]] + 1, [[updated]] = {:updated} " +
					"WHERE [[id]] = {:id} AND [[version]] = {:version}",
			).Bind(dbx.Params{
				"billed":  billed.InexactFloat64(),
				"updated": updated,
				"id":      id,
				"version": item.Version,
			}).Execute()
			if err != nil {
				return fmt.Errorf("ledger: update boq item %s: %w", id, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("ledger: update boq item %s: %w", id, err)
			}
			if affected != 1 {
				return &CommitError{
					Kind:      ErrConcurrentOverCommit,
					ItemRef:   refByID[id],
					ItemID:    id,
					Requested: totals[id].InexactFloat64(),
					Remaining: item.Remaining(),
				}
			}
		}
		return nil
	})
}
