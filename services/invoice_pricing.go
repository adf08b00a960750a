package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxMode selects how GST is split on an invoice.
type TaxMode string

const (
	// TaxModeIntraState splits GST equally into CGST and SGST.
	TaxModeIntraState TaxMode = "cgst_sgst"
	// TaxModeInterState charges the full GST as IGST.
	TaxModeInterState TaxMode = "igst"
)

// ParseTaxMode accepts the wire names plus the labels the enhanced invoice
// form historically sent. An empty string yields "" (derive from state codes).
func ParseTaxMode(s string) (TaxMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "cgst_sgst", "cgst+sgst", "intra", "intra_state":
		return TaxModeIntraState, true
	case "igst", "inter", "inter_state":
		return TaxModeInterState, true
	}
	return "", false
}

// ResolveTaxMode returns override when set. Otherwise supply is inter-state
// only when both GST state codes are known and differ.
func ResolveTaxMode(override TaxMode, projectStateCode, supplierStateCode string) TaxMode {
	if override != "" {
		return override
	}
	p := strings.TrimSpace(projectStateCode)
	s := strings.TrimSpace(supplierStateCode)
	if p != "" && s != "" && p != s {
		return TaxModeInterState
	}
	return TaxModeIntraState
}

// InvoiceLineCalc holds the calculated totals for a single invoice line.
type InvoiceLineCalc struct {
	Rate       float64 `json:"rate"`
	Qty        float64 `json:"quantity"`
	GSTPercent float64 `json:"gst_rate"`
	Amount     float64 `json:"amount"` // Rate * Qty, rounded to paise
	CGSTAmount float64 `json:"cgst_amount"`
	SGSTAmount float64 `json:"sgst_amount"`
	IGSTAmount float64 `json:"igst_amount"`
	TaxAmount  float64 `json:"tax_amount"`
	Total      float64 `json:"total"`
}

// InvoiceTotals holds the aggregated totals for an RA invoice.
type InvoiceTotals struct {
	TaxableValue float64 `json:"taxable_value"`
	CGSTAmount   float64 `json:"cgst_amount"`
	SGSTAmount   float64 `json:"sgst_amount"`
	IGSTAmount   float64 `json:"igst_amount"`
	TotalTax     float64 `json:"total_tax"`
	RoundOff     float64 `json:"round_off"`
	GrandTotal   float64 `json:"grand_total"`
}

// CalcInvoiceLine calculates the totals for a single invoice line. Money is
// computed in decimal and rounded half up to the paise.
func CalcInvoiceLine(rate, qty, gstPercent float64, mode TaxMode) InvoiceLineCalc {
	amount := decimal.NewFromFloat(rate).Mul(decimal.NewFromFloat(qty)).Round(2)
	tax := amount.Mul(decimal.NewFromFloat(gstPercent)).Div(hundred).Round(2)

	calc := InvoiceLineCalc{
		Rate:       rate,
		Qty:        qty,
		GSTPercent: gstPercent,
		Amount:     amount.InexactFloat64(),
		TaxAmount:  tax.InexactFloat64(),
		Total:      amount.Add(tax).InexactFloat64(),
	}
	if mode == TaxModeInterState {
		calc.IGSTAmount = calc.TaxAmount
	} else {
		cgst := tax.Div(two).Round(2)
		calc.CGSTAmount = cgst.InexactFloat64()
		calc.SGSTAmount = tax.Sub(cgst).InexactFloat64()
	}
	return calc
}

// CalcInvoiceTotals sums all line totals, applies round-off to the nearest
// rupee, and returns the grand total.
func CalcInvoiceTotals(items []InvoiceLineCalc) InvoiceTotals {
	var taxable, cgst, sgst, igst decimal.Decimal
	for _, item := range items {
		taxable = taxable.Add(money(item.Amount))
		cgst = cgst.Add(money(item.CGSTAmount))
		sgst = sgst.Add(money(item.SGSTAmount))
		igst = igst.Add(money(item.IGSTAmount))
	}
	tax := cgst.Add(sgst).Add(igst)
	subtotal := taxable.Add(tax)
	grand := subtotal.Round(0)

	return InvoiceTotals{
		TaxableValue: taxable.InexactFloat64(),
		CGSTAmount:   cgst.InexactFloat64(),
		SGSTAmount:   sgst.InexactFloat64(),
		IGSTAmount:   igst.InexactFloat64(),
		TotalTax:     tax.InexactFloat64(),
		RoundOff:     grand.Sub(subtotal).InexactFloat64(),
		GrandTotal:   grand.InexactFloat64(),
	}
}

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// money reads a stored rupee amount back as paise-exact decimal.
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func roundPaise(v float64) float64 {
	return money(v).InexactFloat64()
}
