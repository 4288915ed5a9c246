package validation

import (
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

// Field keys used in the error map returned by ValidateMortgageInputs.
const (
	FieldPrice        = "price"
	FieldDeposit      = "deposit"
	FieldInterestRate = "interestRate"
	FieldTermYears    = "termYears"
)

// Validation messages.
const (
	MsgPriceNotPositive   = "Property price must be greater than 0"
	MsgDepositNegative    = "Deposit cannot be negative"
	MsgDepositTooLarge    = "Deposit must be less than property price"
	MsgInterestOutOfRange = "Interest rate must be between 0 and 100"
	MsgTermOutOfRange     = "Term must be between 1 and 40 years"
	MsgTermNotWhole       = "Term must be a whole number"
)

// Result is the outcome of validating mortgage inputs. Errors holds one
// message per offending field and is empty when IsValid is true.
type Result struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// ValidateMortgageInputs checks the raw calculator inputs against the domain
// constraints. Every rule is evaluated, so all offending fields are reported
// together. The two deposit rules share a key; the comparison against the
// price is evaluated last and its message wins.
func ValidateMortgageInputs(price, deposit, interestRate float64, termYears int) Result {
	errs := make(map[string]string)

	if !(price > 0) {
		errs[FieldPrice] = MsgPriceNotPositive
	}

	if !(deposit >= 0) {
		errs[FieldDeposit] = MsgDepositNegative
	}
	if !(deposit < price) {
		errs[FieldDeposit] = MsgDepositTooLarge
	}

	if !(interestRate >= constants.MinInterestRate && interestRate <= constants.MaxInterestRate) {
		errs[FieldInterestRate] = MsgInterestOutOfRange
	}

	if termYears <= 0 || termYears > constants.MaxTermYears {
		errs[FieldTermYears] = MsgTermOutOfRange
	}

	return Result{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// ValidateTermIsWhole converts a decoded term into whole years. A fractional
// or non-finite term yields ok == false so callers can report MsgTermNotWhole
// under FieldTermYears before the term is truncated. A whole term too large
// for an int32 is clamped to a value ValidateMortgageInputs rejects as out of
// range.
func ValidateTermIsWhole(term float64) (years int, ok bool) {
	if !mathutil.IsFinite(term) || term != math.Trunc(term) {
		return 0, false
	}
	if term > math.MaxInt32 {
		return constants.MaxTermYears + 1, true
	}
	if term < math.MinInt32 {
		return 0, true
	}
	return int(term), true
}
