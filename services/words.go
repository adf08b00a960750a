package services

import (
	"math"
	"strings"
)

var (
	unitWords = [...]string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen",
	}
	tensWords = [...]string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// indianScales are the place values spelled out on Indian invoices, largest
// first.
var indianScales = []struct {
	value        int64
	single, many string
}{
	{10000000, "Crore", "Crores"},
	{100000, "Lakh", "Lakhs"},
	{1000, "Thousand", "Thousand"},
	{100, "Hundred", "Hundred"},
}

// AmountToWords spells a rupee amount the way it is printed on an invoice,
// e.g. 913183 becomes "Nine Lakhs Thirteen Thousand One Hundred and Eighty
// Three Rupees Only/-". Paise are rounded away.
func AmountToWords(amount float64) string {
	rupees := int64(math.Round(amount))
	switch {
	case rupees == 0:
		return "Zero Rupees Only/-"
	case rupees < 0:
		return "Minus " + spellIndian(-rupees) + " Rupees Only/-"
	}
	return spellIndian(rupees) + " Rupees Only/-"
}

// spellIndian spells n > 0 in lakh/crore notation. Counts above ninety-nine
// crores are spelled recursively.
func spellIndian(n int64) string {
	var words []string
	for _, s := range indianScales {
		count := n / s.value
		if count == 0 {
			continue
		}
		n %= s.value
		name := s.many
		if count == 1 {
			name = s.single
		}
		if count > 99 {
			words = append(words, spellIndian(count), name)
		} else {
			words = append(words, spellTens(count), name)
		}
	}
	if n > 0 {
		if len(words) > 0 {
			words = append(words, "and")
		}
		words = append(words, spellTens(n))
	}
	return strings.Join(words, " ")
}

// spellTens spells 1..99.
func spellTens(n int64) string {
	if n < 20 {
		return unitWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + unitWords[n%10]
}
