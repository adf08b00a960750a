package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// DefaultInvoicePrefix is used when no prefix is configured: RA1, RA2, ...
const DefaultInvoicePrefix = "RA"

// FiscalYear names the April to March financial year containing t, e.g.
// "25-26" for any date from 1 Apr 2025 to 31 Mar 2026.
func FiscalYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%02d-%02d", start%100, (start+1)%100)
}

// formatInvoiceNumber constructs the running-account invoice number.
func formatInvoiceNumber(prefix string, sequence int) string {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return fmt.Sprintf("%s%d", prefix, sequence)
}

// nextInvoiceSequence returns the highest committed sequence of the project
// plus one. Called inside the commit transaction so two commits never see
// the same value.
func nextInvoiceSequence(app core.App, projectID string) (int, error) {
	latest, err := app.FindRecordsByFilter(
		"invoices",
		"project = {:projectId}",
		"-sequence",
		1,
		0,
		dbx.Params{"projectId": projectID},
	)
	if err != nil {
		return 0, fmt.Errorf("query latest invoice for project %s: %w", projectID, err)
	}
	if len(latest) == 0 {
		return 1, nil
	}
	return latest[0].GetInt("sequence") + 1, nil
}

// NextInvoiceNumber previews the number the next committed invoice of the
// project will receive.
func NextInvoiceNumber(app core.App, projectID, prefix string) (string, error) {
	seq, err := nextInvoiceSequence(app, projectID)
	if err != nil {
		return "", err
	}
	return formatInvoiceNumber(prefix, seq), nil
}
