package validation

import (
	"math"
	"testing"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

func TestValidateMortgageInputs(t *testing.T) {
	tests := []struct {
		name           string
		price          float64
		deposit        float64
		interestRate   float64
		termYears      int
		expectValid    bool
		expectedErrors map[string]string
	}{
		{
			name:         "Typical mortgage",
			price:        300000,
			deposit:      60000,
			interestRate: 3.5,
			termYears:    30,
			expectValid:  true,
		},
		{
			name:         "Maximum allowed term",
			price:        300000,
			deposit:      60000,
			interestRate: 3.5,
			termYears:    40,
			expectValid:  true,
		},
		{
			name:         "Minimum allowed interest rate",
			price:        300000,
			deposit:      60000,
			interestRate: 0,
			termYears:    30,
			expectValid:  true,
		},
		{
			name:         "Maximum allowed interest rate",
			price:        300000,
			deposit:      60000,
			interestRate: 100,
			termYears:    30,
			expectValid:  true,
		},
		{
			name:         "Minimum deposit",
			price:        300000,
			deposit:      0.01,
			interestRate: 3.5,
			termYears:    30,
			expectValid:  true,
		},
		{
			name:         "Zero deposit",
			price:        300000,
			deposit:      0,
			interestRate: 3.5,
			termYears:    1,
			expectValid:  true,
		},
		{
			name:           "Zero price",
			price:          0,
			deposit:        0,
			interestRate:   3.5,
			termYears:      30,
			expectedErrors: map[string]string{FieldPrice: MsgPriceNotPositive, FieldDeposit: MsgDepositTooLarge},
		},
		{
			name:           "Negative price",
			price:          -300000,
			deposit:        60000,
			interestRate:   3.5,
			termYears:      30,
			expectedErrors: map[string]string{FieldPrice: MsgPriceNotPositive, FieldDeposit: MsgDepositTooLarge},
		},
		{
			name:           "Negative deposit",
			price:          300000,
			deposit:        -1,
			interestRate:   3.5,
			termYears:      30,
			expectedErrors: map[string]string{FieldDeposit: MsgDepositNegative},
		},
		{
			name:           "Deposit equal to price",
			price:          300000,
			deposit:        300000,
			interestRate:   3.5,
			termYears:      30,
			expectedErrors: map[string]string{FieldDeposit: MsgDepositTooLarge},
		},
		{
			name:           "Negative deposit above negative price keeps last message",
			price:          -500,
			deposit:        -100,
			interestRate:   3.5,
			termYears:      30,
			expectedErrors: map[string]string{FieldPrice: MsgPriceNotPositive, FieldDeposit: MsgDepositTooLarge},
		},
		{
			name:           "Interest below range",
			price:          300000,
			deposit:        60000,
			interestRate:   -0.01,
			termYears:      30,
			expectedErrors: map[string]string{FieldInterestRate: MsgInterestOutOfRange},
		},
		{
			name:           "Interest above range",
			price:          300000,
			deposit:        60000,
			interestRate:   100.01,
			termYears:      30,
			expectedErrors: map[string]string{FieldInterestRate: MsgInterestOutOfRange},
		},
		{
			name:           "Zero term",
			price:          300000,
			deposit:        60000,
			interestRate:   3.5,
			termYears:      0,
			expectedErrors: map[string]string{FieldTermYears: MsgTermOutOfRange},
		},
		{
			name:           "Term above maximum",
			price:          300000,
			deposit:        60000,
			interestRate:   3.5,
			termYears:      41,
			expectedErrors: map[string]string{FieldTermYears: MsgTermOutOfRange},
		},
		{
			name:         "All fields invalid",
			price:        -1,
			deposit:      -2,
			interestRate: 101,
			termYears:    -5,
			expectedErrors: map[string]string{
				FieldPrice:        MsgPriceNotPositive,
				FieldDeposit:      MsgDepositNegative,
				FieldInterestRate: MsgInterestOutOfRange,
				FieldTermYears:    MsgTermOutOfRange,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateMortgageInputs(tt.price, tt.deposit, tt.interestRate, tt.termYears)

			if result.IsValid != tt.expectValid {
				t.Fatalf("ValidateMortgageInputs() IsValid = %v, expected %v (errors: %v)",
					result.IsValid, tt.expectValid, result.Errors)
			}
			if result.Errors == nil {
				t.Fatal("expected non-nil error map")
			}
			if len(result.Errors) != len(tt.expectedErrors) {
				t.Fatalf("expected %d errors, got %d: %v", len(tt.expectedErrors), len(result.Errors), result.Errors)
			}
			for field, msg := range tt.expectedErrors {
				if got := result.Errors[field]; got != msg {
					t.Errorf("error for %s = %q, expected %q", field, got, msg)
				}
			}
		})
	}
}

func TestValidateMortgageInputsNaN(t *testing.T) {
	nan := math.NaN()
	result := ValidateMortgageInputs(nan, nan, nan, 30)

	if result.IsValid {
		t.Fatal("NaN inputs must not validate")
	}
	for _, field := range []string{FieldPrice, FieldDeposit, FieldInterestRate} {
		if _, ok := result.Errors[field]; !ok {
			t.Errorf("expected error for %s", field)
		}
	}
}

func TestValidateTermIsWhole(t *testing.T) {
	tests := []struct {
		term     float64
		expected int
		ok       bool
	}{
		{30, 30, true},
		{0, 0, true},
		{-3, -3, true},
		{25.5, 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{1e12, constants.MaxTermYears + 1, true},
		{-1e12, 0, true},
		{1e12 + 0.5, 0, false},
	}

	for _, tt := range tests {
		years, ok := ValidateTermIsWhole(tt.term)
		if ok != tt.ok || years != tt.expected {
			t.Errorf("ValidateTermIsWhole(%v) = (%d, %v), expected (%d, %v)", tt.term, years, ok, tt.expected, tt.ok)
		}
	}
}

func TestHugeWholeTermIsOutOfRange(t *testing.T) {
	for _, term := range []float64{1e12, -1e12, math.MaxFloat64} {
		years, ok := ValidateTermIsWhole(term)
		if !ok {
			t.Fatalf("ValidateTermIsWhole(%v) reported a whole term as fractional", term)
		}
		result := ValidateMortgageInputs(200000, 20000, 4.5, years)
		if result.Errors[FieldTermYears] != MsgTermOutOfRange {
			t.Errorf("term %v: expected %q, got %q", term, MsgTermOutOfRange, result.Errors[FieldTermYears])
		}
	}
}
