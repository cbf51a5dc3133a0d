package ratios

import (
	"errors"
	"testing"

	"stockmetrics/internal/statement"

	"github.com/shopspring/decimal"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// fixture returns statements laid out the way the data source publishes them
func fixture() statement.Statements {
	return statement.Statements{
		Income: statement.FromLayout(statement.IncomeLayout, map[string]decimal.NullDecimal{
			statement.LabelTotalRevenue: nd("4000.00"),
			statement.LabelNetIncome:    nd("500.00"),
		}),
		Balance: statement.FromLayout(statement.BalanceLayout, map[string]decimal.NullDecimal{
			statement.LabelTotalInventory:          nd("100.00"),
			statement.LabelTotalCurrentAssets:      nd("500.00"),
			statement.LabelTotalAssets:             nd("3000.00"),
			statement.LabelTotalCurrentLiabilities: nd("200.00"),
			statement.LabelTotalLiabilities:        nd("1800.00"),
		}),
		CashFlow: statement.FromLayout(statement.CashFlowLayout, map[string]decimal.NullDecimal{
			statement.LabelCashFromOperatingActivities: nd("1000.00"),
			statement.LabelCapitalExpenditures:         nd("-300.00"),
		}),
	}
}

func marketData() statement.MarketData {
	return statement.MarketData{statement.KeyPriceToEarnings: nd("15.3")}
}

func set(s statement.Statement, index int, label, value string) statement.Statement {
	out := make(statement.Statement, len(s))
	copy(out, s)
	out[index] = statement.Row{Label: label, Value: nd(value)}
	return out
}

func assertValue(t *testing.T, r Result, m Metric, want string) {
	t.Helper()
	got, ok := r.Get(m)
	if !ok {
		t.Fatalf("%s is absent, want %s", m, want)
	}
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", m, got.StringFixed(2), want)
	}
}

func assertAbsent(t *testing.T, r Result, m Metric) {
	t.Helper()
	v, present := r[m]
	if !present {
		t.Fatalf("%s missing from result", m)
	}
	if v.Valid {
		t.Errorf("%s = %s, want absent", m, v.Decimal)
	}
}

func TestGenerate_AllMetrics(t *testing.T) {
	r := New().Generate(fixture(), marketData())

	assertValue(t, r, CurrentRatio, "2.50")
	assertValue(t, r, QuickRatio, "2.00")
	// equity = 3000 - 1800 = 1200
	assertValue(t, r, ReturnOnEquity, "-700.00")
	assertValue(t, r, DebtEquityRatio, "1.50")
	assertValue(t, r, NetProfitMargin, "0.13")
	assertValue(t, r, FreeCashFlow, "700.00")
	assertValue(t, r, PriceToEarningsRatio, "15.3")
}

func TestGenerate_WorkedExamples(t *testing.T) {
	t.Run("current ratio", func(t *testing.T) {
		st := fixture()
		st.Balance = set(st.Balance, 10, "Total Current Assets", "500.00")
		st.Balance = set(st.Balance, 23, "Total Current Liabilities", "250.00")
		assertValue(t, New().Generate(st, nil), CurrentRatio, "2.00")
	})

	t.Run("quick ratio", func(t *testing.T) {
		st := fixture()
		st.Balance = set(st.Balance, 10, "Total Current Assets", "500.00")
		st.Balance = set(st.Balance, 7, "Total Inventory", "100.00")
		st.Balance = set(st.Balance, 23, "Total Current Liabilities", "200.00")
		assertValue(t, New().Generate(st, nil), QuickRatio, "2.00")
	})

	t.Run("free cash flow", func(t *testing.T) {
		st := fixture()
		st.CashFlow = set(st.CashFlow, 7, "Cash from Operating Activities", "1000.00")
		st.CashFlow = set(st.CashFlow, 8, "Capital Expenditures", "-300.00")
		assertValue(t, New().Generate(st, nil), FreeCashFlow, "700.00")
	})

	t.Run("price to earnings present", func(t *testing.T) {
		r := New().Generate(fixture(), statement.MarketData{"price_to_earnings": nd("15.3")})
		assertValue(t, r, PriceToEarningsRatio, "15.3")
	})

	t.Run("price to earnings missing", func(t *testing.T) {
		assertAbsent(t, New().Generate(fixture(), statement.MarketData{}), PriceToEarningsRatio)
	})
}

func TestGenerate_Rounding(t *testing.T) {
	tests := []struct {
		name        string
		assets      string
		liabilities string
		want        string
	}{
		{"half rounds up", "1.005", "1", "1.01"},
		{"below half rounds down", "1.004", "1", "1.00"},
		{"repeating quotient", "2", "3", "0.67"},
		{"negative half rounds away from zero", "-1.005", "1", "-1.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := fixture()
			st.Balance = set(st.Balance, statement.BalanceTotalCurrentAssets, statement.LabelTotalCurrentAssets, tt.assets)
			st.Balance = set(st.Balance, statement.BalanceTotalCurrentLiabilities, statement.LabelTotalCurrentLiabilities, tt.liabilities)
			assertValue(t, New().Generate(st, nil), CurrentRatio, tt.want)
		})
	}
}

func TestGenerate_LabelMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(st *statement.Statements)
		absent []Metric
	}{
		{
			name: "current assets moved",
			mutate: func(st *statement.Statements) {
				st.Balance = set(st.Balance, statement.BalanceTotalCurrentAssets, "Total Assets", "500.00")
			},
			absent: []Metric{CurrentRatio, QuickRatio},
		},
		{
			name: "inventory relabeled",
			mutate: func(st *statement.Statements) {
				st.Balance = set(st.Balance, statement.BalanceTotalInventory, "Inventories", "100.00")
			},
			absent: []Metric{QuickRatio},
		},
		{
			name: "total liabilities relabeled",
			mutate: func(st *statement.Statements) {
				st.Balance = set(st.Balance, statement.BalanceTotalLiabilities, "Liabilities", "1800.00")
			},
			absent: []Metric{ReturnOnEquity, DebtEquityRatio},
		},
		{
			name: "net income relabeled",
			mutate: func(st *statement.Statements) {
				st.Income = set(st.Income, statement.IncomeNetIncome, "Net Earnings", "500.00")
			},
			absent: []Metric{ReturnOnEquity, NetProfitMargin},
		},
		{
			name: "capex relabeled",
			mutate: func(st *statement.Statements) {
				st.CashFlow = set(st.CashFlow, statement.CashCapitalExpenditures, "Capex", "-300.00")
			},
			absent: []Metric{FreeCashFlow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := fixture()
			tt.mutate(&st)
			r := New().Generate(st, marketData())

			absent := map[Metric]bool{}
			for _, m := range tt.absent {
				absent[m] = true
				assertAbsent(t, r, m)
			}
			for _, m := range Metrics {
				if !absent[m] {
					if _, ok := r.Get(m); !ok {
						t.Errorf("%s is absent, want computed", m)
					}
				}
			}
		})
	}
}

func TestGenerate_ZeroDivisor(t *testing.T) {
	st := fixture()
	st.Balance = set(st.Balance, statement.BalanceTotalCurrentLiabilities, statement.LabelTotalCurrentLiabilities, "0")
	st.Balance = set(st.Balance, statement.BalanceTotalLiabilities, statement.LabelTotalLiabilities, "3000.00")
	st.Income = set(st.Income, statement.IncomeTotalRevenue, statement.LabelTotalRevenue, "0.00")

	r := New().Generate(st, marketData())

	assertAbsent(t, r, CurrentRatio)
	assertAbsent(t, r, QuickRatio)
	assertAbsent(t, r, DebtEquityRatio)
	assertAbsent(t, r, NetProfitMargin)
	// equity is zero but return on equity only subtracts it
	assertValue(t, r, ReturnOnEquity, "500.00")
}

func TestGenerate_ShortStatements(t *testing.T) {
	st := fixture()
	st.Balance = st.Balance[:statement.BalanceTotalCurrentLiabilities]
	st.CashFlow = st.CashFlow[:statement.CashCapitalExpenditures]

	r := New().Generate(st, marketData())

	assertAbsent(t, r, CurrentRatio)
	assertAbsent(t, r, QuickRatio)
	assertAbsent(t, r, ReturnOnEquity)
	assertAbsent(t, r, DebtEquityRatio)
	assertAbsent(t, r, FreeCashFlow)
	assertValue(t, r, NetProfitMargin, "0.13")
}

func TestGenerate_MissingValue(t *testing.T) {
	st := fixture()
	st.CashFlow[statement.CashFromOperatingActivities].Value = decimal.NullDecimal{}

	assertAbsent(t, New().Generate(st, nil), FreeCashFlow)
}

func TestGenerate_MalformedInput(t *testing.T) {
	inputs := map[string]struct {
		st   statement.Statements
		data statement.MarketData
	}{
		"zero value":  {statement.Statements{}, nil},
		"header only": {statement.Statements{Income: statement.Statement{{Label: statement.HeaderLabel}}}, statement.MarketData{}},
		"zero p/e":    {statement.Statements{}, statement.MarketData{"price_to_earnings": nd("0")}},
		"invalid p/e": {statement.Statements{}, statement.MarketData{"price_to_earnings": {}}},
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			r := New().Generate(in.st, in.data)
			if len(r) != len(Metrics) {
				t.Fatalf("result has %d keys, want %d", len(r), len(Metrics))
			}
			for _, m := range Metrics {
				assertAbsent(t, r, m)
			}
		})
	}
}

func TestGenerate_ExactKeySet(t *testing.T) {
	r := New().Generate(fixture(), statement.MarketData{"beta": nd("1.2")})
	if len(r) != 7 {
		t.Fatalf("result has %d keys, want 7", len(r))
	}
	for _, m := range Metrics {
		if _, ok := r[m]; !ok {
			t.Errorf("result missing %s", m)
		}
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	c := New()
	st := fixture()
	data := marketData()

	first := c.Generate(st, data)
	second := c.Generate(st, data)

	for _, m := range Metrics {
		a, b := first[m], second[m]
		if a.Valid != b.Valid || !a.Decimal.Equal(b.Decimal) {
			t.Errorf("%s differs between calls: %v vs %v", m, a, b)
		}
	}
	if len(data) != 1 {
		t.Errorf("market data modified: %v", data)
	}
}

func TestGenerate_LabelLookup(t *testing.T) {
	st := fixture()
	// insert an extra row so every balance sheet position shifts by one
	shifted := append(statement.Statement{{Label: "Restricted Cash", Value: nd("5")}}, st.Balance...)
	st.Balance = shifted

	positional := New().Generate(st, nil)
	assertAbsent(t, positional, CurrentRatio)

	byLabel := New(WithLabelLookup()).Generate(st, nil)
	assertValue(t, byLabel, CurrentRatio, "2.50")
	assertValue(t, byLabel, QuickRatio, "2.00")
	assertValue(t, byLabel, DebtEquityRatio, "1.50")

	st.Balance = set(st.Balance, statement.BalanceTotalCurrentAssets+1, "Current Assets", "500.00")
	assertAbsent(t, New(WithLookup(LookupLabel)).Generate(st, nil), CurrentRatio)
}

func TestGenerate_Observer(t *testing.T) {
	causes := map[Metric]error{}
	calls := 0
	c := New(WithObserver(func(m Metric, err error) {
		calls++
		causes[m] = err
	}))

	st := fixture()
	st.Balance = set(st.Balance, statement.BalanceTotalCurrentLiabilities, statement.LabelTotalCurrentLiabilities, "0")
	st.Income = set(st.Income, statement.IncomeNetIncome, "Net Earnings", "1")

	c.Generate(st, statement.MarketData{})

	if calls != len(Metrics) {
		t.Errorf("observer called %d times, want %d", calls, len(Metrics))
	}
	if !errors.Is(causes[CurrentRatio], ErrDivisionByZero) {
		t.Errorf("current_ratio cause = %v, want %v", causes[CurrentRatio], ErrDivisionByZero)
	}
	if !errors.Is(causes[NetProfitMargin], statement.ErrLabelMismatch) {
		t.Errorf("net_profit_margin cause = %v, want %v", causes[NetProfitMargin], statement.ErrLabelMismatch)
	}
	if !errors.Is(causes[PriceToEarningsRatio], ErrMarketDataMissing) {
		t.Errorf("price_to_earnings_ratio cause = %v, want %v", causes[PriceToEarningsRatio], ErrMarketDataMissing)
	}
	if causes[FreeCashFlow] != nil {
		t.Errorf("free_cash_flow cause = %v, want nil", causes[FreeCashFlow])
	}
}

func TestParseLookup(t *testing.T) {
	for _, s := range []string{"positional", "label"} {
		if _, err := ParseLookup(s); err != nil {
			t.Errorf("ParseLookup(%q) returned unexpected error: %v", s, err)
		}
	}
	if _, err := ParseLookup("fuzzy"); err == nil {
		t.Error("ParseLookup(fuzzy) expected error, got nil")
	}
}

func TestResult_MergeInto(t *testing.T) {
	data := statement.MarketData{
		"beta":              nd("1.1"),
		"current_ratio":     nd("9.99"),
		"price_to_earnings": nd("15.3"),
	}
	r := New().Generate(fixture(), data)

	merged := r.MergeInto(data)

	if len(merged) != len(data)+len(Metrics)-1 {
		t.Errorf("merged has %d keys, want %d", len(merged), len(data)+len(Metrics)-1)
	}
	if v := merged["current_ratio"]; !v.Decimal.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("merged current_ratio = %s, want 2.5", v.Decimal)
	}
	if _, ok := merged["beta"]; !ok {
		t.Error("merged dropped existing key beta")
	}
	if v := data["current_ratio"]; !v.Decimal.Equal(decimal.RequireFromString("9.99")) {
		t.Error("MergeInto modified its input")
	}

	if got := New().Generate(statement.Statements{}, nil).MergeInto(nil); len(got) != len(Metrics) {
		t.Errorf("merge into nil has %d keys, want %d", len(got), len(Metrics))
	}
}

func TestResult_Absent(t *testing.T) {
	r := New().Generate(fixture(), nil)
	absent := r.Absent()
	if len(absent) != 1 || absent[0] != PriceToEarningsRatio {
		t.Errorf("Absent() = %v, want [%s]", absent, PriceToEarningsRatio)
	}
}
