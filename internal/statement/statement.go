package statement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrRowOutOfRange indicates the requested row index is not present in the statement
	ErrRowOutOfRange = errors.New("row out of range")
	// ErrLabelMismatch indicates the row at the requested index carries an unexpected label
	ErrLabelMismatch = errors.New("label mismatch")
	// ErrLabelNotFound indicates no row with the requested label exists
	ErrLabelNotFound = errors.New("label not found")
	// ErrValueMissing indicates the row exists but has no numeric value
	ErrValueMissing = errors.New("value missing")
)

// Kind identifies one of the three financial statements
type Kind string

const (
	KindIncome   Kind = "income"
	KindBalance  Kind = "balance"
	KindCashFlow Kind = "cashflow"
)

// Row is a single labeled line item of a financial statement.
// Value is invalid when the source cell carried no number.
type Row struct {
	Label string              `json:"label"`
	Value decimal.NullDecimal `json:"value"`
}

// NewRow creates a row with a valid value
func NewRow(label string, value decimal.Decimal) Row {
	return Row{Label: label, Value: decimal.NewNullDecimal(value)}
}

// Statement is an ordered sequence of rows. Order is part of the contract with
// the data source: lookups are positional and the label acts as a guard.
type Statement []Row

// At returns the value of the row at index, provided its label equals label.
func (s Statement) At(index int, label string) (decimal.Decimal, error) {
	if index < 0 || index >= len(s) {
		return decimal.Zero, fmt.Errorf("%w: index %d, %d rows", ErrRowOutOfRange, index, len(s))
	}

	row := s[index]
	if row.Label != label {
		return decimal.Zero, fmt.Errorf("%w: row %d is %q, want %q", ErrLabelMismatch, index, row.Label, label)
	}

	if !row.Value.Valid {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrValueMissing, label)
	}

	return row.Value.Decimal, nil
}

// Index maps labels to their row within a statement
type Index map[string]Row

// Index builds a label index for the statement. The first row carrying a
// label wins.
func (s Statement) Index() Index {
	idx := make(Index, len(s))
	for _, row := range s {
		if _, exists := idx[row.Label]; !exists {
			idx[row.Label] = row
		}
	}
	return idx
}

// Lookup returns the value of the row with the given label
func (idx Index) Lookup(label string) (decimal.Decimal, error) {
	row, ok := idx[label]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrLabelNotFound, label)
	}
	if !row.Value.Valid {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrValueMissing, label)
	}
	return row.Value.Decimal, nil
}

// Labels returns the labels of the statement in order
func (s Statement) Labels() []string {
	labels := make([]string, len(s))
	for i, row := range s {
		labels[i] = row.Label
	}
	return labels
}

// FromLayout builds a statement whose rows follow layout. Labels with no entry
// in values become rows without a value.
func FromLayout(layout []string, values map[string]decimal.NullDecimal) Statement {
	s := make(Statement, len(layout))
	for i, label := range layout {
		s[i] = Row{Label: label, Value: values[label]}
	}
	return s
}

// Statements holds the three financial statements of one company
type Statements struct {
	Income   Statement `json:"income"`
	Balance  Statement `json:"balance"`
	CashFlow Statement `json:"cash_flow"`
}

// Get returns the statement of the given kind
func (s Statements) Get(kind Kind) Statement {
	switch kind {
	case KindIncome:
		return s.Income
	case KindBalance:
		return s.Balance
	case KindCashFlow:
		return s.CashFlow
	default:
		return nil
	}
}
