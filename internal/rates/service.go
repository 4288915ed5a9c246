// Package rates looks up the current reference interest rate used as the
// calculator's default. The lookup never fails from the caller's point of
// view: any network, parse or range problem yields the fallback rate.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/datetime"
	"go.uber.org/zap"
)

// maxFeedBytes caps how much of the feed body is read.
const maxFeedBytes = 1 << 20

// cacheBudgetDivisor bounds each cache call to a quarter of the lookup
// timeout.
const cacheBudgetDivisor = 4

// RateData is a reference rate and the date it applies from.
type RateData struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// StatusError reports a non-2xx response from the rate feed.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch bank rate: %s", e.Status)
}

// Fallback returns the rate used whenever the feed cannot be read, stamped
// with now.
func Fallback(now time.Time) RateData {
	return RateData{
		Date: datetime.FormatISO(now),
		Rate: constants.FallbackInterestRate,
	}
}

// Config holds the rate lookup settings.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Service fetches the current rate from the configured feed.
type Service struct {
	logger   *zap.Logger
	client   *http.Client
	cache    Cache
	endpoint string
	timeout  time.Duration
	cacheTTL time.Duration
}

// NewService creates a rate lookup service. A nil client uses
// http.DefaultClient and a nil cache disables caching.
func NewService(logger *zap.Logger, cfg Config, client *http.Client, cache Cache) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultRateTimeoutSeconds * time.Second
	}
	return &Service{
		logger:   logger,
		client:   client,
		cache:    cache,
		endpoint: cfg.Endpoint,
		timeout:  timeout,
		cacheTTL: cfg.CacheTTL,
	}
}

// FetchCurrentRate returns the newest rate published by the feed, or the
// fallback rate if it cannot be obtained within the configured timeout.
// Cancelling ctx aborts the outstanding request.
func (s *Service) FetchCurrentRate(ctx context.Context) RateData {
	return s.FetchCurrentRateWithFixedTime(ctx, time.Now())
}

// FetchCurrentRateWithFixedTime behaves like FetchCurrentRate but stamps a
// fallback result with now. The cache lookup, the feed request and the cache
// store all share the configured timeout.
func (s *Service) FetchCurrentRateWithFixedTime(ctx context.Context, now time.Time) (data RateData) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("rate lookup panicked, using fallback rate",
				zap.String("op", "rates.FetchCurrentRate"),
				zap.Any("panic", r),
			)
			data = Fallback(now)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if cached, ok := s.lookupCache(ctx); ok {
		return cached
	}

	data, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("error fetching interest rate, using fallback rate",
			zap.String("op", "rates.FetchCurrentRate"),
			zap.String("endpoint", s.endpoint),
			zap.Float64("fallback", constants.FallbackInterestRate),
			zap.Error(err),
		)
		return Fallback(now)
	}

	s.logger.Debug("fetched interest rate",
		zap.String("op", "rates.FetchCurrentRate"),
		zap.String("date", data.Date),
		zap.Float64("rate", data.Rate),
	)
	s.storeCache(ctx, data)
	return data
}

func (s *Service) fetch(ctx context.Context) (RateData, error) {
	if s.endpoint == "" {
		return RateData{}, fmt.Errorf("no rate feed endpoint configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return RateData{}, fmt.Errorf("failed to build rate feed request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return RateData{}, fmt.Errorf("failed to reach rate feed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("failed to close rate feed response",
				zap.String("op", "rates.fetch"),
				zap.Error(closeErr),
			)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RateData{}, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return RateData{}, fmt.Errorf("failed to read rate feed: %w", err)
	}

	return ParseRecord(string(body))
}

func (s *Service) lookupCache(ctx context.Context) (RateData, bool) {
	if s.cache == nil {
		return RateData{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout/cacheBudgetDivisor)
	defer cancel()

	raw, ok, err := s.cache.Get(ctx, constants.RateCacheKey)
	if err != nil {
		s.logger.Warn("rate cache lookup failed",
			zap.String("op", "rates.lookupCache"),
			zap.Error(err),
		)
		return RateData{}, false
	}
	if !ok {
		return RateData{}, false
	}

	var data RateData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.Warn("discarding unreadable cached rate",
			zap.String("op", "rates.lookupCache"),
			zap.Error(err),
		)
		return RateData{}, false
	}
	return data, true
}

func (s *Service) storeCache(ctx context.Context, data RateData) {
	if s.cache == nil {
		return
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout/cacheBudgetDivisor)
	defer cancel()

	if err := s.cache.Set(ctx, constants.RateCacheKey, string(encoded), s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache interest rate",
			zap.String("op", "rates.storeCache"),
			zap.Error(err),
		)
	}
}
