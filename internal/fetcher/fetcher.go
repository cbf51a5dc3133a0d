package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockmetrics/internal/statement"
)

// Provider retrieves the financial statements and market data of a ticker.
// Each provider wraps one upstream data source.
type Provider interface {
	// Fetch retrieves a snapshot of the ticker's statements and market data.
	// Returns an error if the upstream source could not be read.
	Fetch(ctx context.Context, ticker Ticker) (*Snapshot, error)

	// Name identifies the data source, e.g. "googlefinance".
	Name() string
}

// Ticker identifies a listed stock
type Ticker struct {
	Market string `json:"market"`
	Symbol string `json:"symbol"`
}

// ParseTicker parses "MARKET:SYMBOL". A bare symbol uses defaultMarket.
func ParseTicker(s, defaultMarket string) (Ticker, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ticker{}, fmt.Errorf("empty ticker")
	}

	market, symbol, found := strings.Cut(s, ":")
	if !found {
		market, symbol = defaultMarket, s
	}
	if market == "" || symbol == "" {
		return Ticker{}, fmt.Errorf("invalid ticker %q: want MARKET:SYMBOL", s)
	}

	return Ticker{Market: strings.ToUpper(market), Symbol: strings.ToUpper(symbol)}, nil
}

// String returns the ticker as "MARKET:SYMBOL"
func (t Ticker) String() string {
	return t.Market + ":" + t.Symbol
}

// Key returns a Redis-compatible hierarchical key for the ticker.
// Format: fetcher:{source}:{market}:{symbol}
// Examples:
//   - fetcher:googlefinance:NASDAQ:AAPL
//   - fetcher:alphavantage:NYSE:IBM
func (t Ticker) Key(source string) string {
	return fmt.Sprintf("fetcher:%s:%s:%s", source, t.Market, t.Symbol)
}

// Snapshot is everything a provider returned for one ticker
type Snapshot struct {
	Ticker     Ticker               `json:"ticker"`
	Statements statement.Statements `json:"statements"`
	MarketData statement.MarketData `json:"market_data"`
	FetchedAt  time.Time            `json:"fetched_at"`
}
