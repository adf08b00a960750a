package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// QuantityEpsilon is the tolerance used for every quantity comparison. BOQ
// quantities carry at most three decimals, so anything below a millionth is
// representation noise.
const QuantityEpsilon = 1e-6

var quantityEpsilon = decimal.NewFromFloat(QuantityEpsilon)

func toQty(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// exceeds reports whether requested is over limit by more than the epsilon.
// requested == limit is not an excess.
func exceeds(requested, limit decimal.Decimal) bool {
	return requested.Sub(limit).GreaterThan(quantityEpsilon)
}

// RemainingQuantity returns original - billed without binary drift
// (100 - 98.991 is 1.009, not 1.0090000000000003).
func RemainingQuantity(original, billed float64) float64 {
	return toQty(original).Sub(toQty(billed)).InexactFloat64()
}

// normalizeDescription lower-cases and collapses whitespace so that
// "Excavation  in Soil " and "excavation in soil" compare equal.
func normalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// IsFullyBilled reports whether nothing billable is left on an item.
func IsFullyBilled(remaining float64) bool {
	return !toQty(remaining).GreaterThan(quantityEpsilon)
}
