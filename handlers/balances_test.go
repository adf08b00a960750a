package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rabilling/testhelpers"
)

func TestHandleBalances_JSON(t *testing.T) {
	f := newInvoiceFixture(t)
	if rec := f.postRegular(t, regularBody(map[string]any{"item_ref": "1.1", "quantity": 98.991})); rec.Code != http.StatusCreated {
		t.Fatalf("invoice status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/projects/"+f.proj.Id+"/balances", nil)
	req.SetPathValue("projectId", f.proj.Id)
	rec := httptest.NewRecorder()
	if err := HandleBalances(f.app)(newTestRequestEvent(f.app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp balancesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode balances: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(resp.Items))
	}
	steel := resp.Items[0]
	if steel.ItemCode != "1.1" || steel.Billed != 98.991 || steel.Remaining != 1.009 {
		t.Errorf("steel row = %+v", steel)
	}
	if resp.Items[1].Remaining != 500 {
		t.Errorf("cement remaining = %v, want 500", resp.Items[1].Remaining)
	}
	if resp.Totals.ContractValue != 300000 || resp.Totals.BilledValue != 98991 {
		t.Errorf("totals = %+v", resp.Totals)
	}
}

func TestHandleBalances_HTMX(t *testing.T) {
	f := newInvoiceFixture(t)
	if rec := f.postRegular(t, regularBody(map[string]any{"item_ref": "1.2", "quantity": 500})); rec.Code != http.StatusCreated {
		t.Fatalf("invoice status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/projects/"+f.proj.Id+"/balances", nil)
	req.SetPathValue("projectId", f.proj.Id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleBalances(f.app)(newTestRequestEvent(f.app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"balance-table", "Tower B", "Reinforcement steel", "row-closed", "/balances/export/excel")
}

func TestHandleItemRemaining(t *testing.T) {
	f := newInvoiceFixture(t)
	if rec := f.postRegular(t, regularBody(map[string]any{"item_ref": "1.2", "quantity": 120.25})); rec.Code != http.StatusCreated {
		t.Fatalf("invoice status = %d", rec.Code)
	}

	tests := []struct {
		name       string
		ref        string
		wantStatus int
		want       float64
	}{
		{"by code", "1.2", http.StatusOK, 379.75},
		{"by id", f.cement.Id, http.StatusOK, 379.75},
		{"by description", "reinforcement STEEL", http.StatusOK, 100},
		{"unknown", "9.9", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.SetPathValue("projectId", f.proj.Id)
			req.SetPathValue("ref", tt.ref)
			rec := httptest.NewRecorder()
			if err := HandleItemRemaining(f.app)(newTestRequestEvent(f.app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp struct {
				Remaining float64 `json:"remaining"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Remaining != tt.want {
				t.Errorf("remaining = %v, want %v", resp.Remaining, tt.want)
			}
		})
	}
}

func TestHandleAudit(t *testing.T) {
	f := newInvoiceFixture(t)
	if rec := f.postRegular(t, regularBody(map[string]any{"item_ref": "1.1", "quantity": 3})); rec.Code != http.StatusCreated {
		t.Fatalf("invoice status = %d", rec.Code)
	}

	run := func(htmx bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetPathValue("projectId", f.proj.Id)
		if htmx {
			req.Header.Set("HX-Request", "true")
		}
		rec := httptest.NewRecorder()
		if err := HandleAudit(f.app)(newTestRequestEvent(f.app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		return rec
	}

	var clean struct {
		Consistent bool `json:"consistent"`
	}
	if err := json.Unmarshal(run(false).Body.Bytes(), &clean); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !clean.Consistent {
		t.Error("expected consistent ledger after guarded commit")
	}

	// Bypass the guard to create drift.
	inv := testhelpers.CreateTestInvoice(t, f.app, f.proj.Id, 2)
	testhelpers.CreateTestInvoiceLine(t, f.app, inv.Id, f.cement.Id, "1.2", 7)

	testhelpers.AssertHTMLContains(t, run(true).Body.String(), "1 item(s) disagree", "Cement")
}

func TestHandleAudit_UnknownProject(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("projectId", "missing00000000")
	rec := httptest.NewRecorder()
	if err := HandleAudit(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
