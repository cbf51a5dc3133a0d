// Package googlefinance reads financial statements and quote summaries from
// Google Finance pages.
package googlefinance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"resty.dev/v3"

	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/ratelimit"
)

// Name identifies this provider in keys and metrics
const Name = "googlefinance"

// Provider fetches statements and market data from Google Finance
type Provider struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
}

// NewProvider creates a Google Finance provider reading from baseURL
func NewProvider(baseURL string) *Provider {
	client := fetcher.NewHTTPClient(baseURL).
		SetHeader("Accept", "text/html")

	return &Provider{
		client:  client,
		limiter: ratelimit.GetLimiter(),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return Name
}

// Fetch retrieves the annual statements and the quote summary of ticker
func (p *Provider) Fetch(ctx context.Context, ticker fetcher.Ticker) (*fetcher.Snapshot, error) {
	financials, err := p.page(ctx, ticker, map[string]string{"fstype": "ii"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch financials for %s: %w", ticker, err)
	}

	st, err := parseStatements(strings.NewReader(financials))
	if err != nil {
		return nil, fmt.Errorf("failed to parse financials for %s: %w", ticker, fetcher.NewValidationError("%v", err))
	}
	if len(st.Income) == 0 && len(st.Balance) == 0 && len(st.CashFlow) == 0 {
		return nil, fetcher.NewValidationError("no financial statements found for %s", ticker)
	}

	summary, err := p.page(ctx, ticker, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summary for %s: %w", ticker, err)
	}

	data, err := parseMarketData(strings.NewReader(summary))
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary for %s: %w", ticker, fetcher.NewValidationError("%v", err))
	}

	slog.Debug("fetched google finance pages",
		"ticker", ticker.String(),
		"income_rows", len(st.Income),
		"balance_rows", len(st.Balance),
		"cashflow_rows", len(st.CashFlow),
		"market_data", len(data))

	return &fetcher.Snapshot{
		Ticker:     ticker,
		Statements: st,
		MarketData: data,
		FetchedAt:  time.Now(),
	}, nil
}

// Close releases the underlying HTTP client
func (p *Provider) Close() error {
	return p.client.Close()
}

func (p *Provider) page(ctx context.Context, ticker fetcher.Ticker, params map[string]string) (string, error) {
	if err := p.limiter.Wait(ctx, ratelimit.APIGoogleFinance); err != nil {
		return "", fetcher.ClassifyTransportError(err)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("q", ticker.String()).
		SetQueryParams(params).
		Get("/finance")
	if err != nil {
		return "", fetcher.ClassifyTransportError(err)
	}

	if !resp.IsSuccess() {
		return "", fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	return resp.String(), nil
}
