package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"rabilling/testhelpers"
)

func TestReadRows(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fileName string
		wantRows int
		wantErr  string
	}{
		{"csv", "Item Code,Description,Unit\n1.1,Excavation,Cum\n1.2,PCC,Cum\n", "boq.csv", 3, ""},
		{"ragged csv", "Description,Unit,Quantity\nPCC,Cum\n", "BOQ.CSV", 2, ""},
		{"header only", "Item Code,Description\n", "boq.csv", 0, "at least one data row"},
		{"empty", "", "boq.csv", 0, "at least one data row"},
		{"unsupported", "a,b\n1,2\n", "boq.ods", 0, "unsupported file format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := readRows(strings.NewReader(tt.input), tt.fileName)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("readRows() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("readRows() error = %v", err)
			}
			if len(rows) != tt.wantRows {
				t.Errorf("rows = %d, want %d", len(rows), tt.wantRows)
			}
		})
	}
}

func TestMapHeadersToColumns(t *testing.T) {
	t.Run("labels and aliases", func(t *testing.T) {
		headers := []string{"Sl No", "Particulars", "UOM", "Qty", "Unit Rate", "GST %", "HSN/SAC"}
		mapped, unrecognized := mapHeadersToColumns(headers, boqImportColumns)
		if len(unrecognized) != 0 {
			t.Errorf("expected no unrecognized, got %v", unrecognized)
		}
		want := []string{"item_code", "description", "unit", "quantity", "rate", "gst_rate", "hsn_code"}
		for i := range want {
			if mapped[i] != want[i] {
				t.Errorf("column %d mapped to %q, want %q", i, mapped[i], want[i])
			}
		}
	})

	t.Run("required asterisk and whitespace", func(t *testing.T) {
		mapped, _ := mapHeadersToColumns([]string{"  Description * ", "QUANTITY *"}, boqImportColumns)
		if mapped[0] != "description" || mapped[1] != "quantity" {
			t.Errorf("unexpected mapping: %v", mapped)
		}
	})

	t.Run("unrecognized columns", func(t *testing.T) {
		mapped, unrecognized := mapHeadersToColumns([]string{"Description", "Remarks"}, boqImportColumns)
		if len(unrecognized) != 1 || unrecognized[0] != "Remarks" {
			t.Errorf("expected ['Remarks'], got %v", unrecognized)
		}
		if mapped[1] != "" {
			t.Errorf("expected empty for unrecognized column, got %q", mapped[1])
		}
	})
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"12", 12, false},
		{"1,250.5", 1250.5, false},
		{" 18% ", 18, false},
		{"0.009", 0.009, false},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseNumber(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseBOQFile_CSV(t *testing.T) {
	input := strings.Join([]string{
		"Item Code,Description,Unit,Quantity,Rate,GST %,HSN",
		"1.1,Excavation in soil,Cum,\"1,200\",350,18,9954",
		"1.2,PCC 1:4:8,cum,85.5,5200,18,9954",
		",,,,,,",
		"1.3,,Cum,10,100,18,",
		"1.4,Shuttering,Sqm,0,450,18,",
		"1.5,Waterproofing,Sqm,40,900,15,",
		"1.1,Duplicate code,Cum,4,10,5,",
	}, "\n")

	result, err := ParseBOQFile(strings.NewReader(input), "boq.csv")
	if err != nil {
		t.Fatalf("ParseBOQFile() error: %v", err)
	}

	if result.TotalRows != 6 {
		t.Errorf("TotalRows = %d, want 6 (blank row skipped)", result.TotalRows)
	}
	if result.ValidRows != 2 || result.ErrorRows != 4 {
		t.Errorf("valid/error rows = %d/%d, want 2/4", result.ValidRows, result.ErrorRows)
	}
	if result.Items[0].Quantity != 1200 || result.Items[1].Rate != 5200 {
		t.Errorf("parsed items = %+v", result.Items)
	}
	if result.Items[1].Unit != "Cum" {
		t.Errorf("unit = %q, want canonical 'Cum'", result.Items[1].Unit)
	}

	fields := map[int]string{}
	for _, e := range result.Errors {
		fields[e.Row] = e.Field
	}
	want := map[int]string{5: "Description", 6: "Quantity", 7: "GST %", 8: "Item Code"}
	for row, field := range want {
		if fields[row] != field {
			t.Errorf("row %d error field = %q, want %q", row, fields[row], field)
		}
	}
}

func TestParseBOQFile_MissingRequiredColumn(t *testing.T) {
	_, err := ParseBOQFile(strings.NewReader("Description,Unit\nExcavation,Cum\n"), "boq.csv")
	if err == nil || !strings.Contains(err.Error(), "Quantity") {
		t.Errorf("ParseBOQFile() error = %v, want missing Quantity column", err)
	}
}

func TestParseBOQFile_UnsupportedExtension(t *testing.T) {
	if _, err := ParseBOQFile(strings.NewReader("x"), "boq.pdf"); err == nil {
		t.Error("expected error for .pdf upload")
	}
}

func TestParseBOQFile_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"S.No", "Description", "UOM", "Qty", "Rate", "GST"},
		{"A1", "Structural steel", "MT", 12.5, 68000, 18},
		{"A2", "Cement OPC 53", "Bag", 400, 385, 28},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f.Close()

	result, err := ParseBOQFile(&buf, "BOQ.XLSX")
	if err != nil {
		t.Fatalf("ParseBOQFile() error: %v", err)
	}
	if result.ValidRows != 2 || len(result.Errors) != 0 {
		t.Fatalf("valid = %d errors = %+v", result.ValidRows, result.Errors)
	}
	if result.Items[0].ItemCode != "A1" || result.Items[0].Quantity != 12.5 || result.Items[1].GSTRate != 28 {
		t.Errorf("parsed items = %+v", result.Items)
	}
}

func TestImportBOQItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Import")
	testhelpers.CreateTestBOQItem(t, app, proj.Id, 3, testhelpers.BOQItemDef{ItemCode: "0.1", Description: "Site clearance", Quantity: 1})

	n, err := ImportBOQItems(app, proj.Id, []BOQItemInput{
		{ItemCode: "1.1", Description: "Excavation", Unit: "Cum", Quantity: 1200, Rate: 350, GSTRate: 18},
		{ItemCode: "", Description: "Misc", Unit: "LS", Quantity: 1, Rate: 5000, GSTRate: 18},
	})
	if err != nil {
		t.Fatalf("ImportBOQItems() error: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}

	items, _ := NewLedger(app).Items(proj.Id)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	last := items[2]
	if last.Description != "Misc" || last.SortOrder != 5 || last.BilledQuantity != 0 {
		t.Errorf("last item = %+v, want Misc at sort 5, unbilled", last)
	}
}

func TestImportBOQItems_DuplicateCodeIsAllOrNothing(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Import Dup")
	testhelpers.CreateTestBOQItem(t, app, proj.Id, 1, testhelpers.BOQItemDef{ItemCode: "1.2", Description: "Existing", Quantity: 1})

	_, err := ImportBOQItems(app, proj.Id, []BOQItemInput{
		{ItemCode: "1.1", Description: "New", Unit: "Cum", Quantity: 10},
		{ItemCode: "1.2", Description: "Clash", Unit: "Cum", Quantity: 10},
	})
	if !errors.Is(err, ErrDuplicateItemCode) {
		t.Fatalf("error = %v, want ErrDuplicateItemCode", err)
	}

	items, _ := NewLedger(app).Items(proj.Id)
	if len(items) != 1 {
		t.Errorf("items = %d after rejected import, want 1", len(items))
	}
}

func TestGenerateImportErrorReport(t *testing.T) {
	data, err := GenerateImportErrorReport([]ImportError{
		{Row: 3, Field: "Quantity", Message: "Quantity must be greater than zero"},
		{Row: 5, Field: "Description", Message: "=HYPERLINK(\"x\")"},
	})
	if err != nil {
		t.Fatalf("GenerateImportErrorReport() error: %v", err)
	}

	f := openWorkbook(t, data)

	v, _ := f.GetCellValue("Errors", "B2")
	if v != "Quantity" {
		t.Errorf("B2 = %q, want Quantity", v)
	}
	v, _ = f.GetCellValue("Errors", "C3")
	if !strings.HasPrefix(v, "'") {
		t.Errorf("C3 = %q, want formula-escaped value", v)
	}
}

func TestParseBOQFile_ReportsIgnoredColumns(t *testing.T) {
	input := "Description,Unit,Quantity,Remarks,\nPCC,Cum,12,pour before monsoon,\n"
	result, err := ParseBOQFile(strings.NewReader(input), "boq.csv")
	if err != nil {
		t.Fatalf("ParseBOQFile() error: %v", err)
	}
	if result.ValidRows != 1 {
		t.Fatalf("valid rows = %d, errors %+v", result.ValidRows, result.Errors)
	}
	if len(result.IgnoredColumns) != 1 || result.IgnoredColumns[0] != "Remarks" {
		t.Errorf("ignored = %v, want [Remarks]", result.IgnoredColumns)
	}
}
