package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/rates"
	"github.com/iwvelando/mortgage-calculator/internal/server"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var serverConfigPath string
	var address string
	var maxBodySize string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web calculator and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
			}

			serverCfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load server configuration at %s: %w", serverConfigPath, err)
			}
			if err := applyServerFlags(serverCfg, address, maxBodySize); err != nil {
				return err
			}

			// Server logging settings take precedence over the application's.
			loggingConfig := conf.Logging
			if serverCfg.Logging != (config.LoggingConfig{}) {
				loggingConfig = serverCfg.Logging
			}
			logger, err := initializeLogger(loggingFor(conf, loggingConfig), opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			return runServer(cmd.Context(), logger, conf, serverCfg)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override (e.g. :8080)")
	cmd.Flags().StringVar(&maxBodySize, "max-body-size", "", "request body limit override (e.g. 64K, 1M)")

	return cmd
}

// applyServerFlags lets command line flags override the server config file.
func applyServerFlags(cfg *server.Config, address, maxBodySize string) error {
	if address != "" {
		cfg.Address = address
	}
	if maxBodySize != "" {
		size, err := server.ParseSize(maxBodySize)
		if err != nil {
			return fmt.Errorf("invalid --max-body-size: %w", err)
		}
		cfg.SetBodySizeBytes(size)
	}
	return nil
}

func runServer(ctx context.Context, logger *zap.Logger, conf *config.Configuration, serverCfg *server.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cache := buildCache(logger, conf.Cache)
	if closer, ok := cache.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("failed to close rate cache", zap.String("op", "main.runServer"), zap.Error(err))
			}
		}()
	}
	if redisCache, ok := cache.(*rates.RedisCache); ok {
		pingCtx, cancel := context.WithTimeout(ctx, conf.InterestRate.Timeout)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis rate cache unreachable, lookups will go to the feed",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
		}
		cancel()
	}

	rateService := rates.NewService(logger, rates.Config{
		Endpoint: conf.InterestRate.APIURL,
		Timeout:  conf.InterestRate.Timeout,
		CacheTTL: conf.InterestRate.CacheTTL,
	}, &http.Client{}, cache)

	var limiter *server.RateLimiter
	if serverCfg.RateLimit.Requests > 0 {
		limiter = server.NewRateLimiter(serverCfg.RateLimit.Requests, serverCfg.RateLimit.Window)
		defer limiter.Stop()
	}

	httpServer := &http.Server{
		Addr:              serverCfg.Address,
		Handler:           server.NewHandler(logger, rateService, limiter, serverCfg.BodySizeBytes(), version),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting mortgage calculator",
			zap.String("op", "main.runServer"),
			zap.String("address", serverCfg.Address),
			zap.String("environment", conf.Environment),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("op", "main.runServer"), zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("op", "main.runServer"), zap.Error(ctx.Err()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	logger.Info("server exited", zap.String("op", "main.runServer"))
	return nil
}
