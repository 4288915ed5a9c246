package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/rates"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// loggingFor fills in the log format when the configuration leaves it unset:
// JSON in production and console output everywhere else.
func loggingFor(conf *config.Configuration, logging config.LoggingConfig) config.LoggingConfig {
	if logging.Format != "" {
		return logging
	}
	if conf.IsProduction() {
		logging.Format = "json"
	} else {
		logging.Format = "console"
	}
	return logging
}

// buildCache returns the rate cache selected by the configuration, or nil
// when caching is disabled.
func buildCache(logger *zap.Logger, conf config.CacheConfig) rates.Cache {
	switch conf.Backend {
	case config.CacheBackendMemory:
		return rates.NewMemoryCache()
	case config.CacheBackendRedis:
		logger.Info("using redis rate cache",
			zap.String("op", "main.buildCache"),
			zap.String("addr", conf.RedisAddr),
			zap.Int("db", conf.RedisDB),
		)
		return rates.NewRedisCache(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
	default:
		return nil
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "mortgage-calculator",
		Short:         "Repayment mortgage calculator with a live reference rate",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile(opts.envFile)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", constants.DefaultEnvFile, "path to .env file loaded before the environment is read")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newCalculateCmd(opts))
	root.AddCommand(newRateCmd(opts))

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": %q}\n", err.Error())
		os.Exit(1)
	}
}
