package services

import "strings"

// UOMOptions returns the list of Unit of Measurement options.
var UOMOptions = []string{
	"Nos",
	"Sqm",
	"Sqft",
	"Rmt",
	"Cum",
	"Kg",
	"MT",
	"Lot",
	"Set",
	"Lumpsum",
	"Ltr",
	"Pair",
	"Bag",
	"Box",
	"Roll",
	"Bundle",
	"Trip",
	"Day",
	"Month",
	"Hour",
}

// GSTOptions returns the list of GST percentage options.
var GSTOptions = []int{0, 5, 12, 18, 28}

// CanonicalUOM maps a unit to its spelling in UOMOptions ("cum" -> "Cum").
// Units not in the list are returned trimmed.
func CanonicalUOM(unit string) string {
	unit = strings.TrimSpace(unit)
	for _, opt := range UOMOptions {
		if strings.EqualFold(opt, unit) {
			return opt
		}
	}
	return unit
}

// IsValidGSTRate reports whether rate is one of GSTOptions.
func IsValidGSTRate(rate float64) bool {
	for _, opt := range GSTOptions {
		if float64(opt) == rate {
			return true
		}
	}
	return false
}
