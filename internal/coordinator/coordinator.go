package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/observability"
	"stockmetrics/internal/ratios"
	"stockmetrics/internal/store"
)

// Coordinator evaluates tickers concurrently and hands the results to a store
type Coordinator struct {
	provider fetcher.Provider
	store    store.Store
	metrics  *observability.Metrics
	calc     *ratios.Calculator
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithMetrics records fetch, ratio and store metrics into m
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// New creates a Coordinator reading from provider and saving to st.
// lookup selects how the calculator resolves statement rows.
func New(provider fetcher.Provider, st store.Store, lookup ratios.Lookup, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider: provider,
		store:    st,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = observability.NewMetrics(nil)
	}

	c.calc = ratios.New(
		ratios.WithLookup(lookup),
		ratios.WithObserver(func(m ratios.Metric, err error) {
			c.metrics.RecordRatio(string(m), ratios.Outcome(err))
		}),
	)
	return c
}

// Summary counts the outcomes of a run
type Summary struct {
	Succeeded int
	Failed    int
	// Absent counts ratios that could not be computed for successful tickers
	Absent int
}

// Run evaluates every ticker in its own goroutine. Each worker sends its
// result to a shared channel; results are saved as they arrive. A ticker
// that fails is reported to the store and counted, never fatal.
func (c *Coordinator) Run(ctx context.Context, tickers []fetcher.Ticker) (Summary, error) {
	var summary Summary
	if len(tickers) == 0 {
		return summary, fmt.Errorf("no tickers configured")
	}

	resultChan := make(chan fetcher.Result, len(tickers))

	var wg sync.WaitGroup
	for _, t := range tickers {
		wg.Add(1)
		go func(ticker fetcher.Ticker) {
			defer wg.Done()
			resultChan <- c.evaluate(ctx, ticker)
		}(t)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		if result.Error != nil {
			summary.Failed++
			slog.Warn("ticker evaluation failed",
				"key", result.Key,
				"error_type", string(fetcher.TypeOf(result.Error)),
				"error", result.Error)
		} else {
			summary.Succeeded++
			absent := result.Metrics.Absent()
			summary.Absent += len(absent)
			if len(absent) > 0 {
				slog.Debug("ratios not computed", "key", result.Key, "metrics", absent)
			}
		}

		c.save(ctx, result)
	}

	slog.Info("run complete",
		"provider", c.provider.Name(),
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"absent_ratios", summary.Absent)

	return summary, nil
}

// evaluate fetches one ticker, computes its ratios and merges them into its
// market data
func (c *Coordinator) evaluate(ctx context.Context, ticker fetcher.Ticker) fetcher.Result {
	key := ticker.Key(c.provider.Name())

	start := time.Now()
	snap, err := c.provider.Fetch(ctx, ticker)
	status := "success"
	if err != nil {
		status = string(fetcher.TypeOf(err))
	}
	c.metrics.RecordFetch(c.provider.Name(), status, time.Since(start))

	if err != nil {
		return fetcher.Result{Key: key, Ticker: ticker, Error: err}
	}

	metrics := c.calc.Generate(snap.Statements, snap.MarketData)
	return fetcher.Result{
		Key:       key,
		Ticker:    ticker,
		Metrics:   metrics,
		Data:      metrics.MergeInto(snap.MarketData),
		FetchedAt: snap.FetchedAt,
	}
}

func (c *Coordinator) save(ctx context.Context, result fetcher.Result) {
	err := c.store.Save(ctx, result)
	if err == nil {
		return
	}
	for _, name := range store.FailedStores(err, c.store.Name()) {
		c.metrics.RecordStoreError(name)
	}
	slog.Error("failed to save result", "key", result.Key, "error", err)
}
