package services

import (
	"testing"

	"rabilling/testhelpers"
)

func sampleBalanceData() *BalanceExportData {
	rows := []ItemBalance{
		{ItemCode: "1.1", Description: "Reinforcement steel", Unit: "MT", UnitRate: 1000, Original: 100, Billed: 98.991, Remaining: 1.009, PercentBilled: 98.99},
		{ItemCode: "1.2", Description: "=HYPERLINK(\"x\")", Unit: "Bag", UnitRate: 400, Original: 500, Billed: 500, Remaining: 0, PercentBilled: 100},
	}
	return &BalanceExportData{
		ProjectName:     "Tower B",
		ReferenceNumber: "TB-2025-07",
		GeneratedDate:   "15 Jan 2026",
		InvoiceCount:    4,
		Rows:            rows,
		Totals:          CalcBalanceTotals(rows),
	}
}

func TestGenerateBalanceExcel_Basic(t *testing.T) {
	result, err := GenerateBalanceExcel(sampleBalanceData())
	if err != nil {
		t.Fatalf("GenerateBalanceExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateBalanceExcel() returned empty bytes")
	}

	f := openWorkbook(t, result)

	sheets := f.GetSheetList()
	if len(sheets) == 0 || sheets[0] != "Tower B" {
		t.Fatalf("expected sheet name 'Tower B', got %v", sheets)
	}
	sheet := sheets[0]

	title, _ := f.GetCellValue(sheet, "A1")
	if title != "Balance Statement: Tower B" {
		t.Errorf("title = %q", title)
	}
	header, _ := f.GetCellValue(sheet, "H5")
	if header != "Remaining" {
		t.Errorf("H5 = %q, want 'Remaining'", header)
	}

	// Row 6 = first data row.
	checks := map[string]string{
		"B6": "1.1",
		"F6": "100",
		"G6": "98.991",
		"H6": "1.009",
		"C7": "'=HYPERLINK(\"x\")",
		"H7": "0",
	}
	for cell, want := range checks {
		got, _ := f.GetCellValue(sheet, cell)
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	// Summary starts after one blank row.
	label, _ := f.GetCellValue(sheet, "H9")
	if label != "Contract Value:" {
		t.Errorf("H9 = %q, want 'Contract Value:'", label)
	}
}

func TestGenerateBalanceExcel_EmptyRows(t *testing.T) {
	result, err := GenerateBalanceExcel(&BalanceExportData{ProjectName: "Empty"})
	if err != nil {
		t.Fatalf("GenerateBalanceExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateBalanceExcel() returned empty bytes")
	}
}

func TestGenerateBalanceExcel_SheetNames(t *testing.T) {
	tests := []struct {
		name        string
		projectName string
		want        string
	}{
		{"empty name", "", "Balances"},
		{"long name", "This is a very long project name that exceeds thirty one characters", "This is a very long project nam"},
		{"illegal characters", "Phase 1/2: [North]", "Phase 1 2  (North)"},
		{"quoted", "'Annex'", "Annex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := GenerateBalanceExcel(&BalanceExportData{ProjectName: tt.projectName})
			if err != nil {
				t.Fatalf("GenerateBalanceExcel() error = %v", err)
			}
			f := openWorkbook(t, result)

			if got := f.GetSheetList()[0]; got != tt.want {
				t.Errorf("sheet name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildBalanceExportData(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Balance Export")
	testhelpers.CreateTestBOQItem(t, app, proj.Id, 1, testhelpers.BOQItemDef{ItemCode: "1", Description: "Steel", Quantity: 10, Rate: 100})
	testhelpers.CreateTestBOQItem(t, app, proj.Id, 2, testhelpers.BOQItemDef{ItemCode: "2", Description: "Sand", Quantity: 4, Rate: 50})

	guard := NewCommitGuard(app, GuardSettings{})
	if _, err := guard.Create(proj.Id, ProposedInvoice{Lines: []ProposedLine{{ItemRef: "1", Quantity: 2.5}, {ItemRef: "2", Quantity: 4}}}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	data, err := BuildBalanceExportData(app, proj.Id, CompanyInfo{Name: "Supplier"})
	if err != nil {
		t.Fatalf("BuildBalanceExportData() error: %v", err)
	}
	if data.ProjectName != "Balance Export" || data.InvoiceCount != 1 || len(data.Rows) != 2 {
		t.Fatalf("data = %+v", data)
	}
	if data.Rows[0].Remaining != 7.5 || data.Rows[1].Remaining != 0 {
		t.Errorf("remaining = %v / %v, want 7.5 / 0", data.Rows[0].Remaining, data.Rows[1].Remaining)
	}
	want := BalanceTotals{ContractValue: 1200, BilledValue: 450, RemainingValue: 750, PercentBilled: 37.5}
	if data.Totals != want {
		t.Errorf("totals = %+v, want %+v", data.Totals, want)
	}
}

func TestBuildBalanceExportData_UnknownProject(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := BuildBalanceExportData(app, "missing00000000", CompanyInfo{}); err != ErrProjectNotFound {
		t.Errorf("error = %v, want ErrProjectNotFound", err)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"normal text", "Hello", "Hello"},
		{"starts with equals", "=SUM(A1:A10)", "'=SUM(A1:A10)"},
		{"starts with plus", "+1234", "'+1234"},
		{"starts with minus", "-100", "'-100"},
		{"starts with at", "@import", "'@import"},
		{"starts with tab", "\tdata", "'\tdata"},
		{"starts with pipe", "|command", "'|command"},
		{"starts with carriage return", "\rdata", "'\rdata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeExcelCell(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoxBorder(t *testing.T) {
	sides := map[string]bool{}
	for _, b := range boxBorder() {
		if b.Style != 1 {
			t.Errorf("%s border style = %d, want thin", b.Type, b.Style)
		}
		sides[b.Type] = true
	}
	if len(sides) != 4 {
		t.Errorf("sides = %v, want all four", sides)
	}
}
