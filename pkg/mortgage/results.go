package mortgage

import (
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

// Inputs holds the four values entered on the calculator form.
type Inputs struct {
	Price    float64 `json:"price"`
	Deposit  float64 `json:"deposit"`
	Term     int     `json:"term"`     // years
	Interest float64 `json:"interest"` // annual percent
}

// Validate checks the inputs against the calculator's domain rules.
func (in Inputs) Validate() validation.Result {
	return validation.ValidateMortgageInputs(in.Price, in.Deposit, in.Interest, in.Term)
}

// Results holds the headline figures derived from Inputs.
type Results struct {
	MonthlyPayment     float64 `json:"monthlyPayment"`
	TotalRepayment     float64 `json:"totalRepayment"`
	Capital            float64 `json:"capital"`
	Interest           float64 `json:"interest"`
	AffordabilityCheck float64 `json:"affordabilityCheck"`
}

// FullResults adds the yearly balance schedule to Results.
type FullResults struct {
	Results
	YearlyBreakdown []YearlyBalance `json:"yearlyBreakdown"`
}

// CalculateMortgageResults validates the inputs and, when they are valid,
// computes every figure for them. Invalid inputs yield nil and false; the
// caller obtains the field messages from Inputs.Validate.
func CalculateMortgageResults(inputs Inputs) (*FullResults, bool) {
	if !inputs.Validate().IsValid {
		return nil, false
	}

	monthlyPayment := CalculateMonthlyPayment(inputs.Price, inputs.Deposit, inputs.Interest, inputs.Term)
	totalRepayment := CalculateTotalRepayment(monthlyPayment, inputs.Term)
	capital := inputs.Price - inputs.Deposit

	return &FullResults{
		Results: Results{
			MonthlyPayment:     monthlyPayment,
			TotalRepayment:     totalRepayment,
			Capital:            capital,
			Interest:           totalRepayment - capital,
			AffordabilityCheck: CalculateAffordabilityCheck(inputs.Price, inputs.Deposit, inputs.Interest, inputs.Term),
		},
		YearlyBreakdown: CalculateYearlyBreakdown(inputs.Price, inputs.Deposit, inputs.Interest, inputs.Term, monthlyPayment),
	}, true
}

// Calculator runs calculations and logs their outcome.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new calculator instance
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Calculate validates the inputs and computes the results. When validation
// fails the results are nil and the returned validation.Result carries the
// field messages.
func (c *Calculator) Calculate(inputs Inputs) (*FullResults, validation.Result) {
	check := inputs.Validate()
	if !check.IsValid {
		c.logger.Debug("mortgage inputs rejected",
			zap.String("op", "mortgage.Calculate"),
			zap.Any("errors", check.Errors),
		)
		return nil, check
	}

	results, _ := CalculateMortgageResults(inputs)
	c.logger.Debug("mortgage calculated",
		zap.String("op", "mortgage.Calculate"),
		zap.Float64("price", inputs.Price),
		zap.Float64("deposit", inputs.Deposit),
		zap.Int("term", inputs.Term),
		zap.Float64("interest", inputs.Interest),
		zap.Float64("monthlyPayment", results.MonthlyPayment),
	)
	return results, check
}
