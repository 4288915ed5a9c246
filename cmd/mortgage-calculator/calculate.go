package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/rates"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type calculateOptions struct {
	price        float64
	deposit      float64
	term         float64
	interest     float64
	outputFormat string
}

// InputError lists the rejected calculator inputs by field.
type InputError struct {
	Errors map[string]string
}

func (e *InputError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Errors[field]))
	}
	return "invalid mortgage inputs: " + strings.Join(parts, "; ")
}

func newCalculateCmd(opts *globalOptions) *cobra.Command {
	calcOpts := &calculateOptions{}

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate repayments for one mortgage and print them",
		Long: "Calculate repayments for one mortgage. When --interest is omitted " +
			"the current reference rate is fetched from the configured feed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			useFeed := !cmd.Flags().Changed("interest")

			var conf *config.Configuration
			var err error
			if useFeed {
				conf, err = config.LoadConfiguration(opts.configPath)
			} else {
				conf, err = config.LoadLocalConfiguration(opts.configPath)
			}
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
			}

			logger, err := initializeLogger(loggingFor(conf, conf.Logging), opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			// Determine output format (CLI override takes precedence over config)
			outputFormat := conf.Output.Format
			if calcOpts.outputFormat != "" {
				outputFormat = calcOpts.outputFormat
			}
			if outputFormat == "" {
				outputFormat = constants.OutputFormatPretty
			}
			if err := validation.ValidateOutputFormat(outputFormat); err != nil {
				return err
			}

			if useFeed {
				service := rates.NewService(logger, rates.Config{
					Endpoint: conf.InterestRate.APIURL,
					Timeout:  conf.InterestRate.Timeout,
				}, &http.Client{}, nil)
				rate := service.FetchCurrentRate(cmd.Context())
				logger.Info("using reference interest rate",
					zap.String("op", "main.calculate"),
					zap.Float64("rate", rate.Rate),
					zap.String("date", rate.Date),
				)
				calcOpts.interest = rate.Rate
			}

			inputs, results, err := runCalculation(logger, calcOpts)
			if err != nil {
				return err
			}

			switch outputFormat {
			case constants.OutputFormatPretty:
				output.PrettyFormat(cmd.OutOrStdout(), inputs, results)
			case constants.OutputFormatCSV:
				output.CsvFormat(cmd.OutOrStdout(), results)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&calcOpts.price, "price", 0, "property price in pounds")
	cmd.Flags().Float64Var(&calcOpts.deposit, "deposit", 0, "deposit in pounds")
	cmd.Flags().Float64Var(&calcOpts.term, "term", 25, "mortgage term in whole years")
	cmd.Flags().Float64Var(&calcOpts.interest, "interest", 0, "annual interest rate in percent (default: current reference rate)")
	cmd.Flags().StringVar(&calcOpts.outputFormat, "output-format", "", "type of output override: pretty, csv")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

// runCalculation validates the flag values and computes the results.
func runCalculation(logger *zap.Logger, opts *calculateOptions) (mortgage.Inputs, *mortgage.FullResults, error) {
	years, whole := validation.ValidateTermIsWhole(opts.term)
	inputs := mortgage.Inputs{
		Price:    opts.price,
		Deposit:  opts.deposit,
		Term:     years,
		Interest: opts.interest,
	}

	results, check := mortgage.NewCalculator(logger).Calculate(inputs)
	if !whole {
		check.Errors[validation.FieldTermYears] = validation.MsgTermNotWhole
		check.IsValid = false
	}
	if !check.IsValid {
		return inputs, nil, &InputError{Errors: check.Errors}
	}
	return inputs, results, nil
}
