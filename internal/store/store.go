// Package store hands evaluated tickers to their consumers: the terminal,
// Redis and Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/ratios"
)

// Store persists or presents evaluated tickers
type Store interface {
	// Save stores one result. Results carrying an error may be skipped.
	Save(ctx context.Context, result fetcher.Result) error

	// Name identifies the store in logs and metrics
	Name() string

	Close() error
}

// Record is the serialized form of a successful result
type Record struct {
	Key       string                         `json:"key"`
	Market    string                         `json:"market"`
	Symbol    string                         `json:"symbol"`
	Metrics   map[string]decimal.NullDecimal `json:"metrics"`
	Data      map[string]decimal.NullDecimal `json:"data"`
	FetchedAt time.Time                      `json:"fetched_at"`
}

// NewRecord converts a result into a Record. Absent metrics are kept and
// serialize as null.
func NewRecord(r fetcher.Result) Record {
	metrics := make(map[string]decimal.NullDecimal, len(ratios.Metrics))
	for _, m := range ratios.Metrics {
		metrics[string(m)] = r.Metrics[m]
	}

	return Record{
		Key:       r.Key,
		Market:    r.Ticker.Market,
		Symbol:    r.Ticker.Symbol,
		Metrics:   metrics,
		Data:      r.Data,
		FetchedAt: r.FetchedAt,
	}
}

// JSON encodes the record
func (r Record) JSON() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record %s: %w", r.Key, err)
	}
	return b, nil
}

// SaveError reports the store a save failed in
type SaveError struct {
	Store string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Store, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// FailedStores lists the stores named by the SaveErrors in err. An error
// that carries none is attributed to fallback.
func FailedStores(err error, fallback string) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var names []string
		for _, e := range joined.Unwrap() {
			names = append(names, FailedStores(e, fallback)...)
		}
		return names
	}
	var se *SaveError
	if errors.As(err, &se) {
		return []string{se.Store}
	}
	return []string{fallback}
}

// Multi saves every result to each of its stores
type Multi []Store

// Save saves to every store and joins their errors as SaveErrors
func (m Multi) Save(ctx context.Context, result fetcher.Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, result); err != nil {
			errs = append(errs, &SaveError{Store: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Name returns "multi"
func (m Multi) Name() string {
	return "multi"
}

// Close closes every store
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
