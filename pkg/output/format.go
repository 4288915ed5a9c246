// Package output provides utilities for formatting and displaying mortgage results.
package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, inputs mortgage.Inputs, results *mortgage.FullResults) {
	if results == nil {
		return
	}

	p := message.NewPrinter(language.BritishEnglish)
	_, _ = fmt.Fprintf(w, "--- Mortgage of %s over %d years at %s ---\n",
		format.Currency(results.Capital), inputs.Term, format.Percent(inputs.Interest))
	_, _ = p.Fprintf(w, "Monthly payment     | £%.2f\n", results.MonthlyPayment)
	_, _ = p.Fprintf(w, "Total repayment     | £%.2f\n", results.TotalRepayment)
	_, _ = p.Fprintf(w, "Capital             | £%.2f\n", results.Capital)
	_, _ = p.Fprintf(w, "Interest            | £%.2f\n", results.Interest)
	_, _ = p.Fprintf(w, "If rates rise by 3%% | £%.2f\n", results.AffordabilityCheck)
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Year | Remaining debt\n")
	_, _ = fmt.Fprintf(w, "____ | ______________\n")
	for _, entry := range results.YearlyBreakdown {
		_, _ = p.Fprintf(w, "%4d | £%.2f\n", entry.Year, entry.RemainingDebt)
	}
}

// CsvFormat outputs in comma-separated value format: the headline figures
// first, then a blank line and the yearly breakdown.
func CsvFormat(w io.Writer, results *mortgage.FullResults) {
	if results == nil {
		return
	}

	_, _ = fmt.Fprintf(w, `"monthlyPayment","totalRepayment","capital","interest","affordabilityCheck"`+"\n")
	_, _ = fmt.Fprintf(w, `"%.2f","%.2f","%.2f","%.2f","%.2f"`+"\n",
		results.MonthlyPayment,
		results.TotalRepayment,
		results.Capital,
		results.Interest,
		results.AffordabilityCheck,
	)
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, `"year","remainingDebt"`+"\n")
	for _, entry := range results.YearlyBreakdown {
		_, _ = fmt.Fprintf(w, `"%d","%.2f"`+"\n", entry.Year, entry.RemainingDebt)
	}
}
