// Package output provides transport-agnostic report serialization.
// Engine reports flatten to ordered key/value documents with uniform
// rounding: 2 decimals for currency, 1 for percentages, 4 for per-unit
// rates.
package output

import (
	"github.com/shopspring/decimal"
)

// Document is a flat serializable view of an engine report
type Document = map[string]interface{}

// Currency rounds a dollar amount to 2 decimals
func Currency(v float64) float64 {
	return round(v, 2)
}

// Percent rounds a percentage to 1 decimal
func Percent(v float64) float64 {
	return round(v, 1)
}

// Rate rounds a per-unit rate to 4 decimals
func Rate(v float64) float64 {
	return round(v, 4)
}

// PercentPtr rounds an optional percentage, preserving absence
func PercentPtr(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return Percent(*v)
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
