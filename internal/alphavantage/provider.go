// Package alphavantage reads financial statements and company overviews from
// the AlphaVantage API and lays them out like the Google Finance tables.
package alphavantage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/ratelimit"
	"stockmetrics/internal/statement"
)

// Name identifies this provider in keys and metrics
const Name = "alphavantage"

// apiMessages are the bodies AlphaVantage answers with, status 200, instead of data
type apiMessages struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (m apiMessages) err() error {
	switch {
	case m.ErrorMessage != "":
		return fetcher.NewClientError(0, m.ErrorMessage)
	case m.Note != "":
		return fetcher.NewRateLimitError(0, m.Note)
	case m.Information != "":
		return fetcher.NewRateLimitError(0, m.Information)
	default:
		return nil
	}
}

// ReportsResponse represents the AlphaVantage response for the
// INCOME_STATEMENT, BALANCE_SHEET and CASH_FLOW functions
type ReportsResponse struct {
	apiMessages
	Symbol        string              `json:"symbol"`
	AnnualReports []map[string]string `json:"annualReports"`
}

// Provider fetches statements and market data from AlphaVantage
type Provider struct {
	apiKey  string
	client  *resty.Client
	limiter *ratelimit.Limiter
}

// NewProvider creates a new AlphaVantage provider
func NewProvider(apiKey, baseURL string) *Provider {
	client := fetcher.NewHTTPClient(baseURL).
		SetHeader("Accept", "application/json")

	return &Provider{
		apiKey:  apiKey,
		client:  client,
		limiter: ratelimit.GetLimiter(),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return Name
}

// Fetch retrieves the most recent annual statements and the company overview.
// The market is not part of AlphaVantage symbols and is only carried through.
func (p *Provider) Fetch(ctx context.Context, ticker fetcher.Ticker) (*fetcher.Snapshot, error) {
	var st statement.Statements

	kinds := []struct {
		function string
		layout   []string
		fields   map[string]string
		dst      *statement.Statement
	}{
		{"INCOME_STATEMENT", statement.IncomeLayout, incomeFields, &st.Income},
		{"BALANCE_SHEET", statement.BalanceLayout, balanceFields, &st.Balance},
		{"CASH_FLOW", statement.CashFlowLayout, cashFlowFields, &st.CashFlow},
	}

	for _, k := range kinds {
		report, err := p.latestReport(ctx, k.function, ticker)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s for %s: %w", strings.ToLower(k.function), ticker, err)
		}
		*k.dst = statement.FromLayout(k.layout, layoutValues(report, k.fields))
	}

	data, err := p.overview(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overview for %s: %w", ticker, err)
	}

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

func (p *Provider) get(ctx context.Context, function string, ticker fetcher.Ticker, result any) error {
	if err := p.limiter.Wait(ctx, ratelimit.APIAlphaVantage); err != nil {
		return fetcher.ClassifyTransportError(err)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":   p.apiKey,
			"function": function,
			"symbol":   ticker.Symbol,
		}).
		SetResult(result).
		Get("")
	if err != nil {
		return fetcher.ClassifyTransportError(err)
	}

	if !resp.IsSuccess() {
		return fetcher.ClassifyHTTPError(resp.StatusCode())
	}
	return nil
}

func (p *Provider) latestReport(ctx context.Context, function string, ticker fetcher.Ticker) (map[string]string, error) {
	var result ReportsResponse
	if err := p.get(ctx, function, ticker, &result); err != nil {
		return nil, err
	}
	if err := result.err(); err != nil {
		return nil, err
	}
	if len(result.AnnualReports) == 0 {
		return nil, fetcher.NewValidationError("no annual reports in response for %s", ticker.Symbol)
	}
	// reports are ordered newest first
	return result.AnnualReports[0], nil
}

func (p *Provider) overview(ctx context.Context, ticker fetcher.Ticker) (statement.MarketData, error) {
	var result map[string]string
	if err := p.get(ctx, "OVERVIEW", ticker, &result); err != nil {
		return nil, err
	}

	msgs := apiMessages{
		Note:         result["Note"],
		Information:  result["Information"],
		ErrorMessage: result["Error Message"],
	}
	if err := msgs.err(); err != nil {
		return nil, err
	}
	if result["Symbol"] == "" {
		return nil, fetcher.NewValidationError("symbol not found in overview for %s", ticker.Symbol)
	}

	data := statement.MarketData{}
	for field, name := range overviewFields {
		if raw, ok := result[field]; ok {
			data[name] = statement.ParseValue(raw)
		}
	}
	return data, nil
}

func layoutValues(report map[string]string, fields map[string]string) map[string]decimal.NullDecimal {
	values := make(map[string]decimal.NullDecimal, len(fields))
	for label, field := range fields {
		raw, ok := report[field]
		if !ok {
			continue
		}
		v := statement.ParseValue(raw)
		if v.Valid && outflowFields[field] {
			v.Decimal = v.Decimal.Neg()
		}
		values[label] = v
	}
	return values
}
