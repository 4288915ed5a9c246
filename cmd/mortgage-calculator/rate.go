package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/rates"
	"github.com/spf13/cobra"
)

func newRateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Print the current reference interest rate as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(opts.configPath)
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

			service := rates.NewService(logger, rates.Config{
				Endpoint: conf.InterestRate.APIURL,
				Timeout:  conf.InterestRate.Timeout,
				CacheTTL: conf.InterestRate.CacheTTL,
			}, &http.Client{}, buildCache(logger, conf.Cache))

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(service.FetchCurrentRate(cmd.Context()))
		},
	}
}
