// Package providers downloads the season tables the pipeline reads from
// basketball-reference, hoopshype and ESPN.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/stitts-dev/salary-panel/pkg/logger"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

const userAgent = "salary-panel/1.0 (+research scraper)"

// FetcherConfig tunes retries and politeness toward the source sites.
type FetcherConfig struct {
	Attempts         int
	Delay            time.Duration
	RatePerMinute    int
	Timeout          time.Duration
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

// Fetcher retrieves pages and extracts their first table. Every attempt
// waits the fixed delay and then the shared rate limiter.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	breakers *BreakerSet
	attempts int
	delay    time.Duration
	logger   *logrus.Entry
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RatePerMinute))
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout == 0 {
		breakerTimeout = time.Minute
	}

	log := logger.WithComponent("fetcher")
	return &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(limit, 1),
		breakers: NewBreakerSet(cfg.BreakerThreshold, breakerTimeout, log),
		attempts: attempts,
		delay:    cfg.Delay,
		logger:   log,
	}
}

// FetchTable returns the first table on the page at rawURL.
func (f *Fetcher) FetchTable(ctx context.Context, rawURL string) (*HTMLTable, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if err := sleep(ctx, f.delay); err != nil {
			return nil, err
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, err := f.breakers.Execute(u.Host, func() (interface{}, error) {
			return f.get(ctx, rawURL)
		})
		if err == nil {
			return result.(*HTMLTable), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		f.logger.WithFields(logrus.Fields{
			"url":     rawURL,
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("Fetch attempt failed")
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", utils.ErrFetchFailed, rawURL, f.attempts, lastErr)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*HTMLTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return ParseFirstTable(resp.Body)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
