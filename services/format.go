package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

const rupeeSign = "₹"

// FormatINR renders an amount in rupees with lakh/crore grouping and two
// decimals, e.g. ₹1,23,45,678.90. The amount is rounded half away from zero
// at the paise.
func FormatINR(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, paise, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + rupeeSign + groupLakhs(whole) + "." + paise
}

// groupLakhs places separators in a digit string: the last three digits form
// one group and every two digits to their left form another.
func groupLakhs(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var b strings.Builder
	lead := len(head) % 2
	if lead == 1 {
		b.WriteString(head[:1])
	}
	for i := lead; i < len(head); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

// FormatQty renders a BOQ quantity with at most three decimals and no
// trailing zeros: 100, 1.009, 0.6.
func FormatQty(qty float64) string {
	return decimal.NewFromFloat(qty).Round(3).String()
}
