package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/statement"
)

// MockProvider is a mock implementation of the Provider interface for testing
type MockProvider struct {
	FetchFunc func(ctx context.Context, ticker fetcher.Ticker) (*fetcher.Snapshot, error)
	NameFunc  func() string

	mu    sync.Mutex
	calls []fetcher.Ticker
}

// Fetch implements the Provider interface
func (m *MockProvider) Fetch(ctx context.Context, ticker fetcher.Ticker) (*fetcher.Snapshot, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ticker)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, ticker)
	}
	return Snapshot(ticker), nil
}

// Name implements the Provider interface
func (m *MockProvider) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// Calls returns the tickers Fetch was called with
func (m *MockProvider) Calls() []fetcher.Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fetcher.Ticker(nil), m.calls...)
}

// NewMockProvider creates a mock provider answering every ticker with the
// standard fixture, except those listed in failures.
func NewMockProvider(name string, failures map[string]error) *MockProvider {
	return &MockProvider{
		FetchFunc: func(ctx context.Context, ticker fetcher.Ticker) (*fetcher.Snapshot, error) {
			if err, ok := failures[ticker.String()]; ok {
				return nil, err
			}
			return Snapshot(ticker), nil
		},
		NameFunc: func() string {
			return name
		},
	}
}

// MockStore records every result it is handed
type MockStore struct {
	SaveFunc  func(ctx context.Context, result fetcher.Result) error
	StoreName string

	mu      sync.Mutex
	results []fetcher.Result
	closed  bool
}

// Save implements the Store interface
func (m *MockStore) Save(ctx context.Context, result fetcher.Result) error {
	m.mu.Lock()
	m.results = append(m.results, result)
	m.mu.Unlock()

	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, result)
	}
	return nil
}

// Name implements the Store interface
func (m *MockStore) Name() string {
	if m.StoreName != "" {
		return m.StoreName
	}
	return "mock"
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Results returns the saved results in arrival order
func (m *MockStore) Results() []fetcher.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fetcher.Result(nil), m.results...)
}

// Closed reports whether Close was called
func (m *MockStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func d(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// Statements returns statements laid out like the Google Finance tables
// holding round numbers. They evaluate to:
//
//	current_ratio 2.50, quick_ratio 2.00, return_on_equity -700.00,
//	debt_equity_ratio 1.50, net_profit_margin 0.13, free_cash_flow 700.00
func Statements() statement.Statements {
	return statement.Statements{
		Income: statement.FromLayout(statement.IncomeLayout, map[string]decimal.NullDecimal{
			statement.LabelTotalRevenue: d("4000"),
			statement.LabelNetIncome:    d("500"),
		}),
		Balance: statement.FromLayout(statement.BalanceLayout, map[string]decimal.NullDecimal{
			statement.LabelTotalInventory:          d("100"),
			statement.LabelTotalCurrentAssets:      d("500"),
			statement.LabelTotalAssets:             d("3000"),
			statement.LabelTotalCurrentLiabilities: d("200"),
			statement.LabelTotalLiabilities:        d("1800"),
		}),
		CashFlow: statement.FromLayout(statement.CashFlowLayout, map[string]decimal.NullDecimal{
			statement.LabelCashFromOperatingActivities: d("1000"),
			statement.LabelCapitalExpenditures:         d("-300"),
		}),
	}
}

// MarketData returns market data with a price to earnings of 15.3
func MarketData() statement.MarketData {
	return statement.MarketData{
		statement.KeyPriceToEarnings: d("15.3"),
		"price":                      d("227.52"),
	}
}

// FetchedAt is the fixed time carried by fixture snapshots
var FetchedAt = time.Date(2024, 11, 1, 16, 0, 0, 0, time.UTC)

// Snapshot returns the fixture snapshot for ticker
func Snapshot(ticker fetcher.Ticker) *fetcher.Snapshot {
	return &fetcher.Snapshot{
		Ticker:     ticker,
		Statements: Statements(),
		MarketData: MarketData(),
		FetchedAt:  FetchedAt,
	}
}
