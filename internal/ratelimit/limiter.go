package ratelimit

import (
	"context"
	"os"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// API represents the different upstream data sources we read from
type API string

const (
	// APIGoogleFinance represents the Google Finance pages
	APIGoogleFinance API = "googlefinance"
	// APIAlphaVantage represents the AlphaVantage API
	APIAlphaVantage API = "alphavantage"
)

// Limiter manages rate limits for different APIs
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

var (
	instance *Limiter
	once     sync.Once
)

// GetLimiter returns the singleton rate limiter instance
func GetLimiter() *Limiter {
	once.Do(func() {
		instance = &Limiter{
			limiters: make(map[API]*rate.Limiter),
		}
		instance.initLimiters()
	})
	return instance
}

// initLimiters initializes rate limiters for each API with conservative defaults
func (l *Limiter) initLimiters() {
	// Tests hit local httptest servers
	if os.Getenv("GO_TESTING") == "1" || isTestMode() {
		l.limiters[APIGoogleFinance] = rate.NewLimiter(rate.Inf, 1)
		l.limiters[APIAlphaVantage] = rate.NewLimiter(rate.Inf, 1)
		return
	}

	// Google Finance: scraping, keep to one page per second with a small burst
	// for the statements + summary pair of a single ticker
	l.limiters[APIGoogleFinance] = rate.NewLimiter(rate.Limit(1), 2)

	// AlphaVantage: 5 requests per minute on free tier = 1 request every 12 seconds
	l.limiters[APIAlphaVantage] = rate.NewLimiter(rate.Limit(1.0/12.0), 1)
}

// isTestMode checks if we're running in test mode
func isTestMode() bool {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}

// SetLimit overrides the rate for api, e.g. for a paid AlphaVantage plan
func (l *Limiter) SetLimit(api API, perSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiters[api] = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Wait blocks until the rate limiter permits an event for the given API
// It returns an error if the context is canceled before the event can proceed
func (l *Limiter) Wait(ctx context.Context, api API) error {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event for the given API may happen now
func (l *Limiter) Allow(api API) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
