package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// KeyPriceToEarnings is the market data entry holding the price/earnings ratio
const KeyPriceToEarnings = "price_to_earnings"

// MarketData holds named scalar metrics for a stock. Entries whose source
// value could not be read as a number are present but invalid.
type MarketData map[string]decimal.NullDecimal

// Truthy reports whether key is present with a valid, non-zero value
func (m MarketData) Truthy(key string) (decimal.Decimal, bool) {
	v, ok := m[key]
	if !ok || !v.Valid || v.Decimal.IsZero() {
		return decimal.Zero, false
	}
	return v.Decimal, true
}

// Clone returns a shallow copy of the market data. A nil receiver yields an
// empty, non-nil map.
func (m MarketData) Clone() MarketData {
	out := make(MarketData, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// missingMarkers are cell contents used by data sources for "no value"
var missingMarkers = map[string]bool{
	"":     true,
	"-":    true,
	"—":    true,
	"--":   true,
	"None": true,
	"N/A":  true,
	"n/a":  true,
}

// ParseValue converts a source cell such as "1,234.56" or "(12.5)" into a
// value. Unreadable cells yield an invalid value rather than an error.
func ParseValue(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	if missingMarkers[s] {
		return decimal.NullDecimal{}
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	if negative {
		d = d.Neg()
	}
	return decimal.NewNullDecimal(d)
}
