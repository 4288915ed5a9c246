// Package format renders currency and percentage values for display.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BritishEnglish)

// Currency returns a currency string with a pound sign and thousands separators (e.g., "-£1,234.56").
func Currency(amount float64) string {
	formatted := NumericCurrency(math.Abs(amount))
	if amount < 0 {
		return "-£" + formatted
	}
	return "£" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// Percent renders an annual rate such as 3.5 as "3.50%".
func Percent(rate float64) string {
	return printer.Sprintf("%.2f%%", rate)
}
