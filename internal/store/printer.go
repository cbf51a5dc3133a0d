package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/ratios"
)

// Printer writes one line per result in the format:
//   - Success: "KEY: current_ratio=2.50 quick_ratio=n/a ..."
//   - Error: "KEY: ERROR - error message"
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a Printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Save prints the result
func (p *Printer) Save(_ context.Context, r fetcher.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.Error != nil {
		_, err := fmt.Fprintf(p.w, "%s: ERROR - %v\n", r.Key, r.Error)
		return err
	}

	_, err := fmt.Fprintf(p.w, "%s: %s\n", r.Key, FormatMetrics(r.Metrics))
	return err
}

// Name returns "stdout"
func (p *Printer) Name() string {
	return "stdout"
}

// Close is a no-op
func (p *Printer) Close() error {
	return nil
}

// FormatMetrics renders metrics in reporting order. Absent metrics read "n/a".
func FormatMetrics(r ratios.Result) string {
	parts := make([]string, 0, len(ratios.Metrics))
	for _, m := range ratios.Metrics {
		value := "n/a"
		if v, ok := r.Get(m); ok {
			if m == ratios.PriceToEarningsRatio {
				value = v.String()
			} else {
				value = v.StringFixed(2)
			}
		}
		parts = append(parts, fmt.Sprintf("%s=%s", m, value))
	}
	return strings.Join(parts, " ")
}
