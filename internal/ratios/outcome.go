package ratios

import (
	"errors"

	"stockmetrics/internal/statement"
)

// OutcomeComputed is the outcome of a metric that has a value
const OutcomeComputed = "computed"

// Outcome names the reason carried by an Observer error, for use as a metric
// label. A nil error is OutcomeComputed.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeComputed
	case errors.Is(err, statement.ErrLabelMismatch):
		return "label_mismatch"
	case errors.Is(err, statement.ErrLabelNotFound):
		return "label_not_found"
	case errors.Is(err, statement.ErrRowOutOfRange):
		return "row_out_of_range"
	case errors.Is(err, statement.ErrValueMissing):
		return "value_missing"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrMarketDataMissing):
		return "market_data_missing"
	default:
		return "other"
	}
}
