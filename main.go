package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"stockmetrics/internal/alphavantage"
	"stockmetrics/internal/config"
	"stockmetrics/internal/coordinator"
	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/googlefinance"
	"stockmetrics/internal/observability"
	"stockmetrics/internal/store"
)

func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("stockmetrics: %v", err)
	}
}

// providerCloser is a provider owning an HTTP client
type providerCloser interface {
	fetcher.Provider
	io.Closer
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, _ := observability.ParseLevel(cfg.LogLevel)
	observability.InitLogger(cfg.LogFormat, level)

	provider := newProvider(cfg)
	defer provider.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, metrics)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	stores, err := newStores(ctx, cfg, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			observability.Warn("failed to close stores", "error", err)
		}
	}()

	coord := coordinator.New(
		fetcher.NewBreaker(provider, fetcher.DefaultBreakerConfig),
		stores,
		cfg.LookupStrategy(),
		coordinator.WithMetrics(metrics),
	)

	// Add timeout to prevent hanging indefinitely
	runCtx, runCancel := context.WithTimeout(ctx, cfg.Timeout)
	defer runCancel()

	observability.Info("evaluating tickers",
		"provider", provider.Name(),
		"tickers", len(cfg.ParsedTickers),
		"lookup", cfg.Lookup,
		"stores", cfg.Stores)

	summary, err := coord.Run(runCtx, cfg.ParsedTickers)
	if err != nil {
		return fmt.Errorf("coordinator failed: %w", err)
	}
	if summary.Succeeded == 0 {
		return fmt.Errorf("none of %d tickers could be evaluated", summary.Failed)
	}
	return nil
}

func newProvider(cfg *config.Config) providerCloser {
	if cfg.Provider == alphavantage.Name {
		return alphavantage.NewProvider(cfg.AlphavantageAPIKey, cfg.AlphavantageBaseURL)
	}
	return googlefinance.NewProvider(cfg.GoogleFinanceBaseURL)
}

func newStores(ctx context.Context, cfg *config.Config, stdout io.Writer) (store.Multi, error) {
	var stores store.Multi
	fail := func(err error) (store.Multi, error) {
		stores.Close()
		return nil, err
	}

	for _, name := range cfg.Stores {
		switch name {
		case config.StoreStdout:
			stores = append(stores, store.NewPrinter(stdout))

		case config.StoreRedis:
			r, err := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
			if err != nil {
				return fail(err)
			}
			stores = append(stores, r)

		case config.StorePostgres:
			p, err := store.NewPostgres(ctx, cfg.DatabaseURL)
			if err != nil {
				return fail(err)
			}
			stores = append(stores, p)
			if err := p.Migrate(ctx); err != nil {
				return fail(err)
			}
		}
	}
	return stores, nil
}

func serveMetrics(addr string, metrics *observability.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	observability.Info("serving metrics", "addr", addr)
	return srv
}
