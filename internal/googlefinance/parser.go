package googlefinance

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"stockmetrics/internal/statement"
)

// statementDivs maps each statement to the container of its annual table
var statementDivs = map[statement.Kind]string{
	statement.KindIncome:   "#incannualdiv",
	statement.KindBalance:  "#balannualdiv",
	statement.KindCashFlow: "#casannualdiv",
}

// parseStatements reads the annual statement tables of a financials page.
// Every table row becomes a statement row, the header included, so row
// positions match the page. Only the most recent period is kept.
func parseStatements(r io.Reader) (statement.Statements, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return statement.Statements{}, err
	}

	var st statement.Statements
	for kind, div := range statementDivs {
		rows := parseTable(doc.Find(div + " table#fs-table"))
		switch kind {
		case statement.KindIncome:
			st.Income = rows
		case statement.KindBalance:
			st.Balance = rows
		case statement.KindCashFlow:
			st.CashFlow = rows
		}
	}
	return st, nil
}

func parseTable(table *goquery.Selection) statement.Statement {
	var rows statement.Statement
	table.First().Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() == 0 {
			return
		}
		label := strings.Join(strings.Fields(cells.First().Text()), " ")
		row := statement.Row{Label: label}
		if cells.Length() > 1 {
			row.Value = statement.ParseValue(cells.Eq(1).Text())
		}
		rows = append(rows, row)
	})
	return rows
}

// snapKeys maps the summary table's labels to market data names
var snapKeys = map[string]string{
	"P/E":       statement.KeyPriceToEarnings,
	"F P/E":     "forward_price_to_earnings",
	"EPS":       "eps",
	"Beta":      "beta",
	"Shares":    "shares",
	"Mkt cap":   "market_cap",
	"Open":      "open",
	"Inst. own": "institutional_ownership",
	"Div/yield": "dividend_yield",
}

// parseMarketData reads the quote summary: the price panel and the snap-data
// key/value tables.
func parseMarketData(r io.Reader) (statement.MarketData, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	data := statement.MarketData{}

	if price := doc.Find("#price-panel .pr span").First(); price.Length() > 0 {
		data["price"] = statement.ParseValue(price.Text())
	}

	doc.Find("table.snap-data tr").Each(func(i int, tr *goquery.Selection) {
		key := strings.TrimSpace(tr.Find("td.key").Text())
		name, known := snapKeys[key]
		if !known {
			return
		}
		raw := strings.TrimSpace(tr.Find("td.val").Text())
		if key == "Div/yield" {
			// "0.63/1.39": dividend per share / yield
			if _, yield, ok := strings.Cut(raw, "/"); ok {
				raw = yield
			}
		}
		data[name] = parseScaled(raw)
	})

	return data, nil
}

var scaleSuffixes = map[byte]decimal.Decimal{
	'K': decimal.New(1, 3),
	'M': decimal.New(1, 6),
	'B': decimal.New(1, 9),
	'T': decimal.New(1, 12),
}

// parseScaled reads values such as "2.25T" or "5.17B"
func parseScaled(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.NullDecimal{}
	}
	if mult, ok := scaleSuffixes[s[len(s)-1]]; ok {
		v := statement.ParseValue(s[:len(s)-1])
		if v.Valid {
			v.Decimal = v.Decimal.Mul(mult)
		}
		return v
	}
	return statement.ParseValue(s)
}
