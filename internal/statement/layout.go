package statement

// HeaderLabel is the label of row 0 of every statement table
const HeaderLabel = "In Millions of USD (except for per share items)"

// Line item labels the ratio calculator depends on
const (
	LabelTotalRevenue                = "Total Revenue"
	LabelNetIncome                   = "Net Income"
	LabelTotalInventory              = "Total Inventory"
	LabelTotalCurrentAssets          = "Total Current Assets"
	LabelTotalAssets                 = "Total Assets"
	LabelTotalCurrentLiabilities     = "Total Current Liabilities"
	LabelTotalLiabilities            = "Total Liabilities"
	LabelCashFromOperatingActivities = "Cash from Operating Activities"
	LabelCapitalExpenditures         = "Capital Expenditures"
)

// Row positions of the line items above. These are a contract with the data
// source and change whenever the upstream table is reshaped.
const (
	IncomeTotalRevenue = 3
	IncomeNetIncome    = 25

	BalanceTotalInventory          = 7
	BalanceTotalCurrentAssets      = 10
	BalanceTotalAssets             = 17
	BalanceTotalCurrentLiabilities = 23
	BalanceTotalLiabilities        = 31

	CashFromOperatingActivities = 7
	CashCapitalExpenditures     = 8
)

// IncomeLayout is the row order of the income statement
var IncomeLayout = []string{
	HeaderLabel,
	"Revenue",
	"Other Revenue, Total",
	LabelTotalRevenue,
	"Cost of Revenue, Total",
	"Gross Profit",
	"Selling/General/Admin. Expenses, Total",
	"Research & Development",
	"Depreciation/Amortization",
	"Interest Expense(Income) - Net Operating",
	"Unusual Expense (Income)",
	"Other Operating Expenses, Total",
	"Total Operating Expense",
	"Operating Income",
	"Interest Income(Expense), Net Non-Operating",
	"Gain (Loss) on Sale of Assets",
	"Other, Net",
	"Income Before Tax",
	"Income After Tax",
	"Minority Interest",
	"Equity In Affiliates",
	"Net Income Before Extra. Items",
	"Accounting Change",
	"Discontinued Operations",
	"Extraordinary Item",
	LabelNetIncome,
	"Preferred Dividends",
	"Income Available to Common Excl. Extra Items",
	"Income Available to Common Incl. Extra Items",
	"Basic Weighted Average Shares",
	"Basic EPS Excluding Extraordinary Items",
	"Basic EPS Including Extraordinary Items",
	"Dilution Adjustment",
	"Diluted Weighted Average Shares",
	"Diluted EPS Excluding Extraordinary Items",
	"Diluted EPS Including Extraordinary Items",
	"Dividends per Share - Common Stock Primary Issue",
	"Gross Dividends - Common Stock",
	"Net Income after Stock Based Comp. Expense",
	"Basic EPS after Stock Based Comp. Expense",
	"Diluted EPS after Stock Based Comp. Expense",
	"Depreciation, Supplemental",
	"Total Special Items",
	"Normalized Income Before Taxes",
	"Effect of Special Items on Income Taxes",
	"Income Taxes Ex. Impact of Special Items",
	"Normalized Income After Taxes",
	"Normalized Income Avail to Common",
	"Basic Normalized EPS",
	"Diluted Normalized EPS",
}

// BalanceLayout is the row order of the balance sheet
var BalanceLayout = []string{
	HeaderLabel,
	"Cash & Equivalents",
	"Short Term Investments",
	"Cash and Short Term Investments",
	"Accounts Receivable - Trade, Net",
	"Receivables - Other",
	"Total Receivables, Net",
	LabelTotalInventory,
	"Prepaid Expenses",
	"Other Current Assets, Total",
	LabelTotalCurrentAssets,
	"Property/Plant/Equipment, Total - Gross",
	"Accumulated Depreciation, Total",
	"Goodwill, Net",
	"Intangibles, Net",
	"Long Term Investments",
	"Other Long Term Assets, Total",
	LabelTotalAssets,
	"Accounts Payable",
	"Accrued Expenses",
	"Notes Payable/Short Term Debt",
	"Current Port. of LT Debt/Capital Leases",
	"Other Current liabilities, Total",
	LabelTotalCurrentLiabilities,
	"Long Term Debt",
	"Capital Lease Obligations",
	"Total Long Term Debt",
	"Total Debt",
	"Deferred Income Tax",
	"Minority Interest",
	"Other Liabilities, Total",
	LabelTotalLiabilities,
	"Redeemable Preferred Stock, Total",
	"Preferred Stock - Non Redeemable, Net",
	"Common Stock, Total",
	"Additional Paid-In Capital",
	"Retained Earnings (Accumulated Deficit)",
	"Treasury Stock - Common",
	"Other Equity, Total",
	"Total Equity",
	"Total Liabilities & Shareholders' Equity",
	"Shares Outs - Common Stock Primary Issue",
	"Total Common Shares Outstanding",
}

// CashFlowLayout is the row order of the cash flow statement
var CashFlowLayout = []string{
	HeaderLabel,
	"Net Income/Starting Line",
	"Depreciation/Depletion",
	"Amortization",
	"Deferred Taxes",
	"Non-Cash Items",
	"Changes in Working Capital",
	LabelCashFromOperatingActivities,
	LabelCapitalExpenditures,
	"Other Investing Cash Flow Items, Total",
	"Cash from Investing Activities",
	"Financing Cash Flow Items",
	"Total Cash Dividends Paid",
	"Issuance (Retirement) of Stock, Net",
	"Issuance (Retirement) of Debt, Net",
	"Cash from Financing Activities",
	"Foreign Exchange Effects",
	"Net Change in Cash",
	"Cash Interest Paid, Supplemental",
	"Cash Taxes Paid, Supplemental",
}

// Layout returns the row order of the given statement kind
func Layout(kind Kind) []string {
	switch kind {
	case KindIncome:
		return IncomeLayout
	case KindBalance:
		return BalanceLayout
	case KindCashFlow:
		return CashFlowLayout
	default:
		return nil
	}
}
