package services

import (
	"errors"
	"math"
	"strings"
	"testing"

	"rabilling/testhelpers"
)

func TestValidateLines(t *testing.T) {
	items := []BOQItem{
		{ID: "a", ItemCode: "1", Description: "Steel", OriginalQuantity: 100, BilledQuantity: 98.991},
		{ID: "b", ItemCode: "2", Description: "Cement", OriginalQuantity: 50, BilledQuantity: 0},
		{ID: "c", ItemCode: "3", Description: "Sand", OriginalQuantity: 10, BilledQuantity: 10},
	}

	tests := []struct {
		name      string
		lines     []BatchLine
		wantValid bool
		wantErrs  int
	}{
		{"exact_remaining", []BatchLine{{ItemRef: "1", Quantity: 1.009}}, true, 0},
		{"just_over", []BatchLine{{ItemRef: "1", Quantity: 1.010}}, false, 1},
		{"far_over", []BatchLine{{ItemRef: "1", Quantity: 7.30}}, false, 1},
		{"split_lines_fit", []BatchLine{{ItemRef: "1", Quantity: 0.5}, {ItemRef: "a", Quantity: 0.509}}, true, 0},
		{"split_lines_over", []BatchLine{{ItemRef: "1", Quantity: 0.6}, {ItemRef: "a", Quantity: 0.6}}, false, 1},
		{"fully_billed_item", []BatchLine{{ItemRef: "3", Quantity: 0.001}}, false, 1},
		{"two_items_over", []BatchLine{{ItemRef: "1", Quantity: 2}, {ItemRef: "2", Quantity: 51}}, false, 2},
		{"mixed", []BatchLine{{ItemRef: "1", Quantity: 2}, {ItemRef: "2", Quantity: 5}}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validateLines(items, tt.lines)
			if err != nil {
				t.Fatalf("validateLines() error: %v", err)
			}
			if result.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (errors: %+v)", result.Valid, tt.wantValid, result.Errors)
			}
			if len(result.Errors) != tt.wantErrs {
				t.Errorf("got %d errors, want %d", len(result.Errors), tt.wantErrs)
			}
			if len(result.Resolved) != len(tt.lines) {
				t.Errorf("resolved %d lines, want %d", len(result.Resolved), len(tt.lines))
			}
		})
	}
}

func TestValidateLines_ErrorDetails(t *testing.T) {
	items := []BOQItem{
		{ID: "a", ItemCode: "1", Description: "Steel", OriginalQuantity: 100, BilledQuantity: 98.991},
	}

	result, err := validateLines(items, []BatchLine{
		{ItemRef: "1", Quantity: 0.6},
		{ItemRef: "Steel", Quantity: 0.6},
	})
	if err != nil {
		t.Fatalf("validateLines() error: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}

	qe := result.Errors[0]
	if qe.ItemID != "a" || qe.ItemRef != "1" {
		t.Errorf("error identifies %s/%q, want a/\"1\"", qe.ItemID, qe.ItemRef)
	}
	if !floatClose(qe.Requested, 1.2) {
		t.Errorf("requested = %v, want 1.2", qe.Requested)
	}
	if qe.Remaining != 1.009 {
		t.Errorf("remaining = %v, want 1.009", qe.Remaining)
	}
	if len(qe.Lines) != 2 || qe.Lines[0] != 1 || qe.Lines[1] != 2 {
		t.Errorf("lines = %v, want [1 2]", qe.Lines)
	}

	joined := strings.Join(result.Warnings, "\n")
	if !strings.Contains(joined, "matched by description") {
		t.Errorf("expected description-match warning, got %q", joined)
	}
	if !strings.Contains(joined, "lines [1 2]") {
		t.Errorf("expected duplicate-line warning, got %q", joined)
	}
}

func TestValidateLines_FullyBilledWarning(t *testing.T) {
	items := []BOQItem{{ID: "a", ItemCode: "1", Description: "Steel", OriginalQuantity: 100, BilledQuantity: 98.991}}

	result, err := validateLines(items, []BatchLine{{ItemRef: "1", Quantity: 1.009}})
	if err != nil {
		t.Fatalf("validateLines() error: %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "fully billed") {
		t.Errorf("warnings = %v, want one fully-billed warning", result.Warnings)
	}
}

func TestValidateLines_BatchLevelFailures(t *testing.T) {
	items := []BOQItem{
		{ID: "a", ItemCode: "1", Description: "Steel", OriginalQuantity: 100},
		{ID: "b", ItemCode: "2", Description: "Formwork", OriginalQuantity: 10},
		{ID: "c", ItemCode: "3", Description: "Formwork", OriginalQuantity: 10},
	}

	tests := []struct {
		name     string
		lines    []BatchLine
		wantKind error
		wantLine int
	}{
		{"unknown_ref", []BatchLine{{ItemRef: "1", Quantity: 1}, {ItemRef: "Plaster", Quantity: 1}}, ErrNotFound, 2},
		{"ambiguous_ref", []BatchLine{{ItemRef: "formwork", Quantity: 1}}, ErrAmbiguousReference, 1},
		{"zero_qty", []BatchLine{{ItemRef: "1", Quantity: 1}, {ItemRef: "2", Quantity: 1}, {ItemRef: "3", Quantity: 0}}, ErrInvalidQuantity, 3},
		{"negative_qty", []BatchLine{{ItemRef: "1", Quantity: -1}}, ErrInvalidQuantity, 1},
		{"nan_qty", []BatchLine{{ItemRef: "1", Quantity: math.NaN()}}, ErrInvalidQuantity, 1},
		{"inf_qty", []BatchLine{{ItemRef: "1", Quantity: math.Inf(1)}}, ErrInvalidQuantity, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateLines(items, tt.lines)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("error = %v, want %v", err, tt.wantKind)
			}
			var ce *CommitError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CommitError, got %T", err)
			}
			if ce.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", ce.Line, tt.wantLine)
			}
		})
	}
}

func TestOverQuantityError(t *testing.T) {
	err := overQuantityError([]QuantityError{
		{ItemRef: "1", ItemID: "a", Requested: 7.3, Remaining: 1.009, Lines: []int{2}},
		{ItemRef: "2", ItemID: "b", Requested: 51, Remaining: 50, Lines: []int{3}},
	})

	if !errors.Is(err, ErrOverQuantity) {
		t.Fatalf("errors.Is(ErrOverQuantity) = false")
	}
	if err.Line != 2 || err.ItemRef != "1" {
		t.Errorf("top-level = line %d ref %q, want line 2 ref \"1\"", err.Line, err.ItemRef)
	}
	want := `billing: requested quantity exceeds remaining balance (line 2, ref "1"): requested 7.3, remaining 1.009 and 1 more item(s)`
	if err.Error() != want {
		t.Errorf("Error() = %q\nwant %q", err.Error(), want)
	}
}

func TestReconciler_RemainingIsReadOnly(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Read Only")
	rec := testhelpers.CreateTestBOQItem(t, app, proj.Id, 1, testhelpers.BOQItemDef{ItemCode: "1", Description: "Steel", Quantity: 100})
	billItem(t, app, proj.Id, rec.Id, 98.991)

	r := NewReconciler(app)
	first, err := r.Remaining(proj.Id, "1")
	if err != nil {
		t.Fatalf("Remaining() error: %v", err)
	}
	second, err := r.Remaining(proj.Id, rec.Id)
	if err != nil {
		t.Fatalf("Remaining() error: %v", err)
	}
	if first != 1.009 || second != 1.009 {
		t.Errorf("Remaining() = %v, %v; want 1.009 twice", first, second)
	}

	if _, err := r.ValidateBatch(proj.Id, []BatchLine{{ItemRef: "1", Quantity: 7.3}}); err != nil {
		t.Fatalf("ValidateBatch() error: %v", err)
	}

	item, _ := NewLedger(app).GetItem(proj.Id, rec.Id)
	if item.Version != 1 || item.BilledQuantity != 98.991 {
		t.Errorf("item changed by reads: billed=%v version=%d", item.BilledQuantity, item.Version)
	}
}

func TestReconciler_Remaining_UnknownRef(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Unknown")

	_, err := NewReconciler(app).Remaining(proj.Id, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Remaining() error = %v, want ErrNotFound", err)
	}
}

func TestReconciler_Balances(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Balances")
	a := testhelpers.CreateTestBOQItem(t, app, proj.Id, 1, testhelpers.BOQItemDef{ItemCode: "1", Description: "Steel", Unit: "MT", Quantity: 200, Rate: 65000, GSTRate: 18})
	testhelpers.CreateTestBOQItem(t, app, proj.Id, 2, testhelpers.BOQItemDef{ItemCode: "2", Description: "Cement", Unit: "Bag", Quantity: 40, Rate: 380, GSTRate: 28})
	billItem(t, app, proj.Id, a.Id, 50)

	rows, err := NewReconciler(app).Balances(proj.Id)
	if err != nil {
		t.Fatalf("Balances() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	steel := rows[0]
	if steel.ItemCode != "1" || steel.Unit != "MT" {
		t.Errorf("first row = %+v, want steel", steel)
	}
	if steel.Billed != 50 || steel.Remaining != 150 || steel.PercentBilled != 25 {
		t.Errorf("steel balance = billed %v remaining %v pct %v, want 50/150/25", steel.Billed, steel.Remaining, steel.PercentBilled)
	}
	if rows[1].Remaining != 40 || rows[1].PercentBilled != 0 {
		t.Errorf("cement balance = %+v, want untouched", rows[1])
	}
}
