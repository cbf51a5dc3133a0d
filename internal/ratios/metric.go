package ratios

import (
	"github.com/shopspring/decimal"

	"stockmetrics/internal/statement"
)

// Metric names one of the ratios produced by the calculator
type Metric string

const (
	CurrentRatio         Metric = "current_ratio"
	QuickRatio           Metric = "quick_ratio"
	ReturnOnEquity       Metric = "return_on_equity"
	DebtEquityRatio      Metric = "debt_equity_ratio"
	NetProfitMargin      Metric = "net_profit_margin"
	FreeCashFlow         Metric = "free_cash_flow"
	PriceToEarningsRatio Metric = "price_to_earnings_ratio"
)

// Metrics lists every metric in reporting order
var Metrics = []Metric{
	CurrentRatio,
	QuickRatio,
	ReturnOnEquity,
	DebtEquityRatio,
	NetProfitMargin,
	FreeCashFlow,
	PriceToEarningsRatio,
}

// Result maps every metric to its value. A metric that could not be computed
// is present with an invalid value.
type Result map[Metric]decimal.NullDecimal

// Get returns the value of m and whether it was computed
func (r Result) Get(m Metric) (decimal.Decimal, bool) {
	v, ok := r[m]
	if !ok || !v.Valid {
		return decimal.Zero, false
	}
	return v.Decimal, true
}

// Absent returns the metrics that could not be computed, in reporting order
func (r Result) Absent() []Metric {
	var absent []Metric
	for _, m := range Metrics {
		if _, ok := r.Get(m); !ok {
			absent = append(absent, m)
		}
	}
	return absent
}

// MergeInto returns a copy of data with every metric of r added under its
// name. Existing entries with the same name are overwritten; nothing is
// removed and data itself is left untouched.
func (r Result) MergeInto(data statement.MarketData) statement.MarketData {
	merged := data.Clone()
	for m, v := range r {
		merged[string(m)] = v
	}
	return merged
}
