package alphavantage

import "stockmetrics/internal/statement"

// Report fields of each statement keyed by the layout label they fill.
// Layout rows without an entry here stay empty.
var incomeFields = map[string]string{
	statement.LabelTotalRevenue:              "totalRevenue",
	"Cost of Revenue, Total":                 "costOfRevenue",
	"Gross Profit":                           "grossProfit",
	"Selling/General/Admin. Expenses, Total": "sellingGeneralAndAdministrative",
	"Research & Development":                 "researchAndDevelopment",
	"Depreciation/Amortization":              "depreciationAndAmortization",
	"Total Operating Expense":                "operatingExpenses",
	"Operating Income":                       "operatingIncome",
	"Income Before Tax":                      "incomeBeforeTax",
	"Net Income Before Extra. Items":         "netIncomeFromContinuingOperations",
	statement.LabelNetIncome:                 "netIncome",
}

var balanceFields = map[string]string{
	"Cash & Equivalents":                      "cashAndCashEquivalentsAtCarryingValue",
	"Short Term Investments":                  "shortTermInvestments",
	"Cash and Short Term Investments":         "cashAndShortTermInvestments",
	"Total Receivables, Net":                  "currentNetReceivables",
	statement.LabelTotalInventory:             "inventory",
	"Other Current Assets, Total":             "otherCurrentAssets",
	statement.LabelTotalCurrentAssets:         "totalCurrentAssets",
	"Accumulated Depreciation, Total":         "accumulatedDepreciationAmortizationPPE",
	"Goodwill, Net":                           "goodwill",
	"Intangibles, Net":                        "intangibleAssetsExcludingGoodwill",
	"Long Term Investments":                   "longTermInvestments",
	"Other Long Term Assets, Total":           "otherNonCurrentAssets",
	statement.LabelTotalAssets:                "totalAssets",
	"Accounts Payable":                        "currentAccountsPayable",
	"Notes Payable/Short Term Debt":           "shortTermDebt",
	"Current Port. of LT Debt/Capital Leases": "currentLongTermDebt",
	"Other Current liabilities, Total":        "otherCurrentLiabilities",
	statement.LabelTotalCurrentLiabilities:    "totalCurrentLiabilities",
	"Long Term Debt":                          "longTermDebtNoncurrent",
	"Capital Lease Obligations":               "capitalLeaseObligations",
	"Total Long Term Debt":                    "longTermDebt",
	"Total Debt":                              "shortLongTermDebtTotal",
	"Other Liabilities, Total":                "otherNonCurrentLiabilities",
	statement.LabelTotalLiabilities:           "totalLiabilities",
	"Common Stock, Total":                     "commonStock",
	"Retained Earnings (Accumulated Deficit)": "retainedEarnings",
	"Treasury Stock - Common":                 "treasuryStock",
	"Total Equity":                            "totalShareholderEquity",
	"Total Common Shares Outstanding":         "commonStockSharesOutstanding",
}

var cashFlowFields = map[string]string{
	"Net Income/Starting Line":                 "netIncome",
	"Depreciation/Depletion":                   "depreciationDepletionAndAmortization",
	statement.LabelCashFromOperatingActivities: "operatingCashflow",
	statement.LabelCapitalExpenditures:         "capitalExpenditures",
	"Cash from Investing Activities":           "cashflowFromInvestment",
	"Total Cash Dividends Paid":                "dividendPayout",
	"Cash from Financing Activities":           "cashflowFromFinancing",
	"Net Change in Cash":                       "changeInCashAndCashEquivalents",
}

// outflowFields are reported as positive amounts but laid out as negative
// cash movements, so that free cash flow is operating cash plus capex.
var outflowFields = map[string]bool{
	"capitalExpenditures": true,
	"dividendPayout":      true,
}

// overviewFields maps company overview fields to market data names
var overviewFields = map[string]string{
	"PERatio":              statement.KeyPriceToEarnings,
	"ForwardPE":            "forward_price_to_earnings",
	"EPS":                  "eps",
	"Beta":                 "beta",
	"MarketCapitalization": "market_cap",
	"SharesOutstanding":    "shares",
	"DividendYield":        "dividend_yield",
	"ProfitMargin":         "profit_margin",
	"ReturnOnEquityTTM":    "return_on_equity_ttm",
}
