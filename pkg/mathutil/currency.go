// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
	"strconv"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// exactDigits is enough fractional digits to spell out any float64 of at
// least 2^-8 exactly. Smaller values round to zero pence either way.
const exactDigits = 60

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves are rounded away from zero on the exact binary value, so 1.005
// (stored as 1.00499...) becomes 1.00 while 0.125 becomes 0.13.
func Round(val float64) float64 {
	if !IsFinite(val) {
		return val
	}
	exact := decimal.RequireFromString(strconv.FormatFloat(val, 'f', exactDigits, 64))
	return exact.Round(constants.DecimalPlaces).InexactFloat64()
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualPercent float64) float64 {
	return annualPercent / constants.PercentageMultiplier / constants.MonthsPerYear
}
