package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// ImportError represents a single field-level error on one row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BOQItemInput is one validated row of an uploaded BOQ.
type BOQItemInput struct {
	ItemCode    string  `json:"item_code"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	HSNCode     string  `json:"hsn_code"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	GSTRate     float64 `json:"gst_rate"`
}

// BOQImportResult is returned after parsing and validating an uploaded file.
type BOQImportResult struct {
	TotalRows int           `json:"total_rows"`
	ValidRows int           `json:"valid_rows"`
	ErrorRows int           `json:"error_rows"`
	Errors    []ImportError `json:"errors"`
	// IgnoredColumns lists headers that match no known column.
	IgnoredColumns []string       `json:"ignored_columns,omitempty"`
	Items          []BOQItemInput `json:"-"`
	FileName       string         `json:"-"`
}

// Import rejections that are the uploader's to fix.
var (
	ErrNoImportRows      = errors.New("no valid rows to import")
	ErrDuplicateItemCode = errors.New("item code already exists in this project")
)

// importColumn describes one recognised column of a BOQ upload. The
// description, format rule and example feed the template's Instructions sheet.
type importColumn struct {
	Key         string
	Label       string
	Aliases     []string
	Required    bool
	Description string
	FormatRule  string
	Example     string
}

var boqImportColumns = []importColumn{
	{Key: "item_code", Label: "Item Code", Aliases: []string{"sl no", "s.no", "sr no", "serial no", "item no"},
		Description: "BOQ item number, unique within the project", FormatRule: "Free text, e.g. 1.1 or A-04", Example: "1.1"},
	{Key: "description", Label: "Description", Aliases: []string{"item description", "particulars"}, Required: true,
		Description: "Item description as written in the contract", Example: "Excavation in ordinary soil"},
	{Key: "unit", Label: "Unit", Aliases: []string{"uom"}, Required: true,
		Description: "Unit of measurement (select from dropdown or type your own)", Example: "Cum"},
	{Key: "quantity", Label: "Quantity", Aliases: []string{"qty", "boq qty"}, Required: true,
		Description: "Contracted BOQ quantity", FormatRule: "Number greater than zero, up to 3 decimals", Example: "1200.500"},
	{Key: "rate", Label: "Rate", Aliases: []string{"unit rate", "unit price"},
		Description: "Contract rate per unit, before GST", FormatRule: "Number, zero or more", Example: "350"},
	{Key: "gst_rate", Label: "GST %", Aliases: []string{"gst", "gst rate", "gst%"},
		Description: "GST percentage applied to this item", FormatRule: "One of 0, 5, 12, 18, 28", Example: "18"},
	{Key: "hsn_code", Label: "HSN", Aliases: []string{"hsn code", "hsn/sac", "sac"},
		Description: "HSN or SAC code", Example: "9954"},
}

var errNoDataRows = errors.New("file must contain a header row and at least one data row")

// readRows returns every row of the upload, header first. Only the first
// sheet of a workbook is read.
func readRows(file io.Reader, fileName string) ([][]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		rows, err = readCSVRows(file)
	case ".xlsx":
		rows, err = readXLSXRows(file)
	default:
		return nil, fmt.Errorf("unsupported file format %q: must be .csv or .xlsx", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errNoDataRows
	}
	return rows, nil
}

func readCSVRows(file io.Reader) ([][]string, error) {
	r := csv.NewReader(file)
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSXRows(file io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read first sheet: %w", err)
	}
	return rows, nil
}

// mapHeadersToColumns resolves each uploaded header to a column key by label
// or alias, ignoring case, padding and the template's required marker. The
// key is "" for headers it does not know, which are also returned.
func mapHeadersToColumns(headers []string, columns []importColumn) (keys, unknown []string) {
	byName := map[string]string{}
	for _, c := range columns {
		byName[strings.ToLower(c.Label)] = c.Key
		for _, a := range c.Aliases {
			byName[a] = c.Key
		}
	}

	keys = make([]string, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), "*"))
		if key, ok := byName[name]; ok {
			keys[i] = key
		} else if strings.TrimSpace(h) != "" {
			unknown = append(unknown, h)
		}
	}
	return keys, unknown
}

// parseNumber accepts "1,250.5", "18%" and blank (zero).
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	return cast.ToFloat64E(s)
}

// ParseBOQFile parses and validates an uploaded .csv or .xlsx BOQ. The
// returned result carries row errors; err is only set when the file itself
// cannot be read.
func ParseBOQFile(file io.Reader, fileName string) (*BOQImportResult, error) {
	rows, err := readRows(file, fileName)
	if err != nil {
		return nil, err
	}
	headers, dataRows := rows[0], rows[1:]

	columnKeys, ignored := mapHeadersToColumns(headers, boqImportColumns)
	present := make(map[string]bool)
	for _, k := range columnKeys {
		if k != "" {
			present[k] = true
		}
	}
	for _, c := range boqImportColumns {
		if c.Required && !present[c.Key] {
			return nil, fmt.Errorf("missing required column %q", c.Label)
		}
	}

	result := &BOQImportResult{
		FileName:       fileName,
		Errors:         []ImportError{},
		IgnoredColumns: ignored,
		Items:          make([]BOQItemInput, 0, len(dataRows)),
	}

	seenCodes := make(map[string]int)
	for i, row := range dataRows {
		rowNum := i + 2 // spreadsheet row, header is row 1

		data := rowValues(columnKeys, row)
		if len(data) == 0 {
			continue
		}
		result.TotalRows++

		item, rowErrors := validateBOQRow(rowNum, data)
		if item.ItemCode != "" {
			if first, dup := seenCodes[item.ItemCode]; dup {
				rowErrors = append(rowErrors, ImportError{
					Row: rowNum, Field: "Item Code",
					Message: fmt.Sprintf("Item Code %q already used on row %d", item.ItemCode, first),
				})
			} else {
				seenCodes[item.ItemCode] = rowNum
			}
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.Items = append(result.Items, item)
	}
	result.ValidRows = len(result.Items)

	return result, nil
}

// rowValues maps column keys to trimmed cell text, leaving out blank cells.
func rowValues(keys, row []string) map[string]string {
	data := map[string]string{}
	for i, key := range keys {
		if key == "" || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			data[key] = v
		}
	}
	return data
}

func validateBOQRow(rowNum int, data map[string]string) (BOQItemInput, []ImportError) {
	var errs []ImportError
	item := BOQItemInput{
		ItemCode:    data["item_code"],
		Description: data["description"],
		Unit:        CanonicalUOM(data["unit"]),
		HSNCode:     data["hsn_code"],
	}

	if item.Description == "" {
		errs = append(errs, ImportError{Row: rowNum, Field: "Description", Message: "Description is required"})
	}
	if item.Unit == "" {
		errs = append(errs, ImportError{Row: rowNum, Field: "Unit", Message: "Unit is required"})
	}

	qty, err := parseNumber(data["quantity"])
	switch {
	case err != nil:
		errs = append(errs, ImportError{Row: rowNum, Field: "Quantity", Message: "Quantity must be a number"})
	case !(qty > 0):
		errs = append(errs, ImportError{Row: rowNum, Field: "Quantity", Message: "Quantity must be greater than zero"})
	}
	item.Quantity = qty

	rate, err := parseNumber(data["rate"])
	switch {
	case err != nil:
		errs = append(errs, ImportError{Row: rowNum, Field: "Rate", Message: "Rate must be a number"})
	case rate < 0:
		errs = append(errs, ImportError{Row: rowNum, Field: "Rate", Message: "Rate cannot be negative"})
	}
	item.Rate = rate

	gst, err := parseNumber(data["gst_rate"])
	if err != nil || !IsValidGSTRate(gst) {
		errs = append(errs, ImportError{Row: rowNum, Field: "GST %", Message: "GST % must be one of 0, 5, 12, 18, 28"})
	}
	item.GSTRate = gst

	return item, errs
}

// ImportBOQItems inserts the parsed items into the project in one
// transaction. Item codes already present in the project are rejected before
// anything is written. New items start unbilled and are appended after the
// existing ones.
func ImportBOQItems(app core.App, projectID string, items []BOQItemInput) (int, error) {
	if len(items) == 0 {
		return 0, ErrNoImportRows
	}
	if _, err := FindProject(app, projectID); err != nil {
		return 0, err
	}

	existing, err := NewLedger(app).Items(projectID)
	if err != nil {
		return 0, err
	}
	codes := make(map[string]bool, len(existing))
	maxOrder := 0
	for _, e := range existing {
		if e.ItemCode != "" {
			codes[e.ItemCode] = true
		}
		if e.SortOrder > maxOrder {
			maxOrder = e.SortOrder
		}
	}
	for _, it := range items {
		if it.ItemCode != "" && codes[it.ItemCode] {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateItemCode, it.ItemCode)
		}
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		col, err := txApp.FindCollectionByNameOrId("boq_items")
		if err != nil {
			return fmt.Errorf("find boq_items collection: %w", err)
		}
		for i, it := range items {
			rec := core.NewRecord(col)
			rec.Set("project", projectID)
			rec.Set("sort_order", maxOrder+i+1)
			rec.Set("item_code", it.ItemCode)
			rec.Set("description", it.Description)
			rec.Set("unit", it.Unit)
			rec.Set("hsn_code", it.HSNCode)
			rec.Set("original_quantity", it.Quantity)
			rec.Set("unit_rate", it.Rate)
			rec.Set("gst_rate", it.GSTRate)
			rec.Set("billed_quantity", 0)
			rec.Set("version", 0)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save boq item %d (%s): %w", i+1, it.Description, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// GenerateImportErrorReport lists rejected rows in a workbook the user can
// fix against.
func GenerateImportErrorReport(errs []ImportError) ([]byte, error) {
	b := newSheetBuilder("Errors")
	b.widths(8, 22, 55)
	b.row(1, b.style(headerStyle("#DC2626")), "Row #", "Field", "Error")
	for i, ie := range errs {
		b.row(i+2, 0, ie.Row, ie.Field, sanitizeExcelCell(ie.Message))
	}
	return b.bytes()
}
