package fetcher

import (
	"time"

	"stockmetrics/internal/ratios"
	"stockmetrics/internal/statement"
)

// Result represents the outcome of fetching and evaluating one ticker.
// It's sent through a channel from worker goroutines to the coordinator,
// which hands it to the configured stores.
type Result struct {
	// Key is the Redis-compatible hierarchical key for this ticker
	Key string

	Ticker Ticker

	// Metrics holds the computed ratios
	Metrics ratios.Result

	// Data is the provider's market data with Metrics merged in
	Data statement.MarketData

	FetchedAt time.Time

	// Error contains any error that occurred while fetching.
	// If Error is not nil, Metrics and Data should be considered invalid.
	Error error
}
