// Package constants provides shared constants for the mortgage-calculator application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPlaces is the number of decimal places used for currency rounding
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// AffordabilityStressBuffer is the number of percentage points added to the
	// quoted rate when computing the affordability stress check.
	AffordabilityStressBuffer = 3.0
)

// Input bounds
const (
	// MaxTermYears is the longest mortgage term accepted, in years.
	MaxTermYears = 40

	// MinInterestRate is the lowest annual interest rate accepted, in percent.
	MinInterestRate = 0.0

	// MaxInterestRate is the highest annual interest rate accepted, in percent.
	MaxInterestRate = 100.0
)

// Rate lookup constants
const (
	// FallbackInterestRate is returned whenever the rate feed cannot be used.
	FallbackInterestRate = 5.28

	// ISOTimestampLayout matches JavaScript's Date.prototype.toISOString.
	ISOTimestampLayout = "2006-01-02T15:04:05.000Z"

	// DefaultRateTimeoutSeconds bounds a single rate feed request.
	DefaultRateTimeoutSeconds = 5

	// RateCacheKey is the cache key holding the last good rate lookup.
	RateCacheKey = "mortgage-calculator:interest-rate"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Environment names
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTest        = "test"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default application configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultEnvFile is loaded into the environment before configuration is read
	DefaultEnvFile = ".env"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum size of a calculation request body (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimitRequests is the number of API requests a client may make per window
	DefaultRateLimitRequests = 60

	// DefaultRateLimitWindowSeconds is the refill window of the per-client rate limiter
	DefaultRateLimitWindowSeconds = 60
)
