// Package services provides the billing ledger, reconciliation and export
// logic for RA invoicing.
package services

import "github.com/shopspring/decimal"

// BalanceTotals is the contract valuation of a balance table.
type BalanceTotals struct {
	ContractValue  float64
	BilledValue    float64
	RemainingValue float64
	PercentBilled  float64
}

// CalcItemValue returns qty * rate rounded to paise.
func CalcItemValue(qty, rate float64) float64 {
	return decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
}

// CalcBalanceTotals values every row at its unit rate (pre-tax).
func CalcBalanceTotals(rows []ItemBalance) BalanceTotals {
	var contract, billed decimal.Decimal
	for _, r := range rows {
		rate := decimal.NewFromFloat(r.UnitRate)
		contract = contract.Add(toQty(r.Original).Mul(rate))
		billed = billed.Add(toQty(r.Billed).Mul(rate))
	}

	totals := BalanceTotals{
		ContractValue:  contract.Round(2).InexactFloat64(),
		BilledValue:    billed.Round(2).InexactFloat64(),
		RemainingValue: contract.Sub(billed).Round(2).InexactFloat64(),
	}
	if contract.IsPositive() {
		totals.PercentBilled = billed.Div(contract).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	return totals
}
