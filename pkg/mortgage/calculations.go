// Package mortgage implements the fixed-rate repayment calculations: the
// annuity payment, total repayment, the affordability stress check and the
// year-by-year balance schedule.
package mortgage

import (
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

// YearlyBalance is the outstanding debt at the end of a year of the term.
// Year 0 is the balance before any payment is made.
type YearlyBalance struct {
	Year          int     `json:"year"`
	RemainingDebt float64 `json:"remainingDebt"`
}

// CalculateMonthlyPayment calculates the monthly payment for a repayment
// mortgage using the standard annuity formula. A zero rate repays the loan in
// equal straight-line instalments.
func CalculateMonthlyPayment(price, deposit, annualInterestRate float64, termYears int) float64 {
	loan := price - deposit
	periodicRate := mathutil.MonthlyRate(annualInterestRate)
	payments := float64(termYears * constants.MonthsPerYear)

	if periodicRate == 0 {
		return loan / payments
	}

	power := math.Pow(1+periodicRate, payments)
	return loan * periodicRate * power / (power - 1)
}

// CalculateTotalRepayment is the sum of every monthly payment over the term.
func CalculateTotalRepayment(monthlyPayment float64, termYears int) float64 {
	return monthlyPayment * float64(termYears) * constants.MonthsPerYear
}

// CalculateAffordabilityCheck returns the monthly payment with the rate
// raised by the stress buffer.
func CalculateAffordabilityCheck(price, deposit, annualInterestRate float64, termYears int) float64 {
	return CalculateMonthlyPayment(price, deposit, annualInterestRate+constants.AffordabilityStressBuffer, termYears)
}

// CalculateInterestPayment calculates the interest portion of a monthly payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * mathutil.MonthlyRate(annualInterestRate)
}

// CalculateYearlyBreakdown simulates the loan month by month and records the
// remaining debt after each full year, rounded to pence. The balance is
// floored at zero, so a payment larger than needed clears the debt before the
// end of the term, and never grows when a payment fails to cover the month's
// interest. The result always holds termYears+1 entries.
func CalculateYearlyBreakdown(price, deposit, annualInterestRate float64, termYears int, monthlyPayment float64) []YearlyBalance {
	balance := price - deposit
	count := termYears + 1
	if count < 1 {
		count = 1
	}

	breakdown := make([]YearlyBalance, 0, count)
	breakdown = append(breakdown, YearlyBalance{Year: 0, RemainingDebt: balance})

	for year := 1; year <= termYears; year++ {
		for month := 1; month <= constants.MonthsPerYear; month++ {
			interest := CalculateInterestPayment(balance, annualInterestRate)
			principal := math.Max(0, monthlyPayment-interest)
			balance = math.Max(0, balance-principal)
		}
		breakdown = append(breakdown, YearlyBalance{
			Year:          year,
			RemainingDebt: mathutil.Round(balance),
		})
	}

	return breakdown
}
