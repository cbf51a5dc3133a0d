// Package ratios computes financial ratios from positional financial
// statements. Every ratio is computed independently: a ratio whose inputs are
// unusable is reported as absent and never affects the others.
package ratios

import (
	"errors"
	"fmt"

	"stockmetrics/internal/statement"

	"github.com/shopspring/decimal"
)

var (
	// ErrDivisionByZero indicates the divisor of a ratio is zero
	ErrDivisionByZero = errors.New("division by zero")
	// ErrMarketDataMissing indicates a pass-through market data entry is missing, invalid or zero
	ErrMarketDataMissing = errors.New("market data missing")
)

// Lookup selects how line items are located within a statement
type Lookup string

const (
	// LookupPositional reads the row at a fixed index and rejects it unless it
	// carries the expected label
	LookupPositional Lookup = "positional"
	// LookupLabel finds the row by its label regardless of position
	LookupLabel Lookup = "label"
)

// Observer receives the outcome of every metric: nil when the metric was
// computed, otherwise the reason it is absent.
type Observer func(m Metric, err error)

// Calculator computes the ratio set
type Calculator struct {
	lookup   Lookup
	observer Observer
}

// Option configures a Calculator
type Option func(*Calculator)

// WithPositionalLookup selects index-first lookup with the label as guard
func WithPositionalLookup() Option {
	return func(c *Calculator) { c.lookup = LookupPositional }
}

// WithLabelLookup selects lookup by label
func WithLabelLookup() Option {
	return func(c *Calculator) { c.lookup = LookupLabel }
}

// WithLookup selects the lookup strategy by name
func WithLookup(l Lookup) Option {
	return func(c *Calculator) { c.lookup = l }
}

// WithObserver registers fn to be called once per metric on every Generate
func WithObserver(fn Observer) Option {
	return func(c *Calculator) { c.observer = fn }
}

// New creates a Calculator. Lookup is positional unless configured otherwise.
func New(opts ...Option) *Calculator {
	c := &Calculator{lookup: LookupPositional}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseLookup validates a lookup strategy name
func ParseLookup(s string) (Lookup, error) {
	switch Lookup(s) {
	case LookupPositional, LookupLabel:
		return Lookup(s), nil
	default:
		return "", fmt.Errorf("unknown lookup %q (want %q or %q)", s, LookupPositional, LookupLabel)
	}
}

type computeFunc func(src source, data statement.MarketData) (decimal.Decimal, error)

var computations = map[Metric]computeFunc{
	CurrentRatio:         currentRatio,
	QuickRatio:           quickRatio,
	ReturnOnEquity:       returnOnEquity,
	DebtEquityRatio:      debtEquityRatio,
	NetProfitMargin:      netProfitMargin,
	FreeCashFlow:         freeCashFlow,
	PriceToEarningsRatio: priceToEarnings,
}

// Generate computes every metric from the statements and market data. The
// inputs are not modified and the returned Result always holds one entry per
// metric.
func (c *Calculator) Generate(st statement.Statements, data statement.MarketData) Result {
	src := c.source(st)

	result := make(Result, len(Metrics))
	for _, m := range Metrics {
		v, err := computations[m](src, data)
		if err != nil {
			result[m] = decimal.NullDecimal{}
		} else {
			result[m] = decimal.NewNullDecimal(v)
		}

		if c.observer != nil {
			c.observer(m, err)
		}
	}

	return result
}

func (c *Calculator) source(st statement.Statements) source {
	if c.lookup == LookupLabel {
		return labelSource{
			statement.KindIncome:   st.Income.Index(),
			statement.KindBalance:  st.Balance.Index(),
			statement.KindCashFlow: st.CashFlow.Index(),
		}
	}
	return positionalSource(st)
}

// RoundDecimal rounds d to two fractional digits, halves away from zero
func RoundDecimal(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func divide(num, den decimal.Decimal) (decimal.Decimal, error) {
	if den.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return num.Div(den), nil
}

func currentRatio(src source, _ statement.MarketData) (decimal.Decimal, error) {
	assets, err := src.value(statement.KindBalance, statement.BalanceTotalCurrentAssets, statement.LabelTotalCurrentAssets)
	if err != nil {
		return decimal.Zero, err
	}
	liabilities, err := src.value(statement.KindBalance, statement.BalanceTotalCurrentLiabilities, statement.LabelTotalCurrentLiabilities)
	if err != nil {
		return decimal.Zero, err
	}

	ratio, err := divide(assets, liabilities)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundDecimal(ratio), nil
}

func quickRatio(src source, _ statement.MarketData) (decimal.Decimal, error) {
	assets, err := src.value(statement.KindBalance, statement.BalanceTotalCurrentAssets, statement.LabelTotalCurrentAssets)
	if err != nil {
		return decimal.Zero, err
	}
	inventory, err := src.value(statement.KindBalance, statement.BalanceTotalInventory, statement.LabelTotalInventory)
	if err != nil {
		return decimal.Zero, err
	}
	liabilities, err := src.value(statement.KindBalance, statement.BalanceTotalCurrentLiabilities, statement.LabelTotalCurrentLiabilities)
	if err != nil {
		return decimal.Zero, err
	}

	ratio, err := divide(assets.Sub(inventory), liabilities)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundDecimal(ratio), nil
}

// shareholdersEquity feeds return on equity and debt/equity; it is not
// reported on its own.
func shareholdersEquity(src source) (decimal.Decimal, error) {
	assets, err := src.value(statement.KindBalance, statement.BalanceTotalAssets, statement.LabelTotalAssets)
	if err != nil {
		return decimal.Zero, err
	}
	liabilities, err := src.value(statement.KindBalance, statement.BalanceTotalLiabilities, statement.LabelTotalLiabilities)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundDecimal(assets.Sub(liabilities)), nil
}

// returnOnEquity is net income minus shareholders' equity, not their quotient.
// Stored metrics already carry this figure under return_on_equity.
func returnOnEquity(src source, _ statement.MarketData) (decimal.Decimal, error) {
	income, err := src.value(statement.KindIncome, statement.IncomeNetIncome, statement.LabelNetIncome)
	if err != nil {
		return decimal.Zero, err
	}
	equity, err := shareholdersEquity(src)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundDecimal(income.Sub(equity)), nil
}

func debtEquityRatio(src source, _ statement.MarketData) (decimal.Decimal, error) {
	liabilities, err := src.value(statement.KindBalance, statement.BalanceTotalLiabilities, statement.LabelTotalLiabilities)
	if err != nil {
		return decimal.Zero, err
	}
	equity, err := shareholdersEquity(src)
	if err != nil {
		return decimal.Zero, err
	}

	ratio, err := divide(liabilities, equity)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundDecimal(ratio), nil
}

func netProfitMargin(src source, _ statement.MarketData) (decimal.Decimal, error) {
	income, err := src.value(statement.KindIncome, statement.IncomeNetIncome, statement.LabelNetIncome)
	if err != nil {
		return decimal.Zero, err
	}
	revenue, err := src.value(statement.KindIncome, statement.IncomeTotalRevenue, statement.LabelTotalRevenue)
	if err != nil {
		return decimal.Zero, err
	}

	margin, err := divide(income, revenue)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundDecimal(margin), nil
}

func freeCashFlow(src source, _ statement.MarketData) (decimal.Decimal, error) {
	operating, err := src.value(statement.KindCashFlow, statement.CashFromOperatingActivities, statement.LabelCashFromOperatingActivities)
	if err != nil {
		return decimal.Zero, err
	}
	capex, err := src.value(statement.KindCashFlow, statement.CashCapitalExpenditures, statement.LabelCapitalExpenditures)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundDecimal(operating.Add(capex)), nil
}

// priceToEarnings passes the market data value through unrounded
func priceToEarnings(_ source, data statement.MarketData) (decimal.Decimal, error) {
	pe, ok := data.Truthy(statement.KeyPriceToEarnings)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMarketDataMissing, statement.KeyPriceToEarnings)
	}
	return pe, nil
}
