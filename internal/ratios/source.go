package ratios

import (
	"stockmetrics/internal/statement"

	"github.com/shopspring/decimal"
)

// source resolves a line item of one of the three statements
type source interface {
	value(kind statement.Kind, index int, label string) (decimal.Decimal, error)
}

type positionalSource statement.Statements

func (s positionalSource) value(kind statement.Kind, index int, label string) (decimal.Decimal, error) {
	return statement.Statements(s).Get(kind).At(index, label)
}

// labelSource ignores the index; indexes are built once per Generate call
type labelSource map[statement.Kind]statement.Index

func (s labelSource) value(kind statement.Kind, _ int, label string) (decimal.Decimal, error) {
	return s[kind].Lookup(label)
}
