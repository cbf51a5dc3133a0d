package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/ratios"
	"stockmetrics/internal/testutil"
)

var aapl = fetcher.Ticker{Market: "NASDAQ", Symbol: "AAPL"}

func fixtureResult() fetcher.Result {
	data := testutil.MarketData()
	metrics := ratios.New().Generate(testutil.Statements(), data)
	return fetcher.Result{
		Key:       aapl.Key("mock"),
		Ticker:    aapl,
		Metrics:   metrics,
		Data:      metrics.MergeInto(data),
		FetchedAt: testutil.FetchedAt,
	}
}

func TestNewRecord(t *testing.T) {
	r := fixtureResult()
	r.Metrics[ratios.PriceToEarningsRatio] = decimal.NullDecimal{}

	payload, err := NewRecord(r).JSON()
	if err != nil {
		t.Fatalf("JSON() returned unexpected error: %v", err)
	}

	var decoded struct {
		Key     string         `json:"key"`
		Market  string         `json:"market"`
		Symbol  string         `json:"symbol"`
		Metrics map[string]any `json:"metrics"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded.Key != "fetcher:mock:NASDAQ:AAPL" {
		t.Errorf("key = %q", decoded.Key)
	}
	if decoded.Market != "NASDAQ" || decoded.Symbol != "AAPL" {
		t.Errorf("ticker = %s:%s, want NASDAQ:AAPL", decoded.Market, decoded.Symbol)
	}
	if len(decoded.Metrics) != len(ratios.Metrics) {
		t.Errorf("metrics has %d entries, want %d", len(decoded.Metrics), len(ratios.Metrics))
	}
	if got := decoded.Metrics["current_ratio"]; got != "2.5" {
		t.Errorf("current_ratio = %v, want \"2.5\"", got)
	}
	v, ok := decoded.Metrics["price_to_earnings_ratio"]
	if !ok || v != nil {
		t.Errorf("absent metric = %v, %v; want present and null", v, ok)
	}
}

func TestFormatMetrics(t *testing.T) {
	r := fixtureResult().Metrics
	want := "current_ratio=2.50 quick_ratio=2.00 return_on_equity=-700.00 debt_equity_ratio=1.50 " +
		"net_profit_margin=0.13 free_cash_flow=700.00 price_to_earnings_ratio=15.3"
	if got := FormatMetrics(r); got != want {
		t.Errorf("FormatMetrics() =\n%s\nwant\n%s", got, want)
	}

	r[ratios.QuickRatio] = decimal.NullDecimal{}
	if got := FormatMetrics(r); !strings.Contains(got, "quick_ratio=n/a") {
		t.Errorf("absent metric not rendered as n/a: %s", got)
	}
}

func TestPrinter_Save(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	if err := p.Save(context.Background(), fixtureResult()); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	failed := fetcher.Result{
		Key:   aapl.Key("mock"),
		Error: errors.New("upstream down"),
	}
	if err := p.Save(context.Background(), failed); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "fetcher:mock:NASDAQ:AAPL: current_ratio=2.50 ") {
		t.Errorf("success line = %q", lines[0])
	}
	if lines[1] != "fetcher:mock:NASDAQ:AAPL: ERROR - upstream down" {
		t.Errorf("error line = %q", lines[1])
	}
	if p.Name() != "stdout" {
		t.Errorf("Name() = %q, want stdout", p.Name())
	}
}

func TestMulti(t *testing.T) {
	ok := &testutil.MockStore{StoreName: "ok"}
	failing := &testutil.MockStore{
		StoreName: "failing",
		SaveFunc: func(ctx context.Context, result fetcher.Result) error {
			return errors.New("disk full")
		},
	}
	m := Multi{ok, failing}

	err := m.Save(context.Background(), fixtureResult())
	if err == nil {
		t.Fatal("Save() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failing: disk full") {
		t.Errorf("error = %q, want it to name the failing store", err)
	}
	if len(ok.Results()) != 1 || len(failing.Results()) != 1 {
		t.Error("every store should receive the result")
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() returned unexpected error: %v", err)
	}
	if !ok.Closed() || !failing.Closed() {
		t.Error("Close() should close every store")
	}
}

type fakeRedis struct {
	values map[string]any
	ttls   map[string]time.Duration
	index  []string
	setErr error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]any{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.values[key] = value
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SAdd(key string, members ...interface{}) *redis.IntCmd {
	for _, m := range members {
		f.index = append(f.index, m.(string))
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedis_Save(t *testing.T) {
	client := newFakeRedis()
	r := NewRedisWithClient(client, time.Hour)

	result := fixtureResult()
	if err := r.Save(context.Background(), result); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	payload, ok := client.values[result.Key].([]byte)
	if !ok {
		t.Fatalf("value under %s = %T, want []byte", result.Key, client.values[result.Key])
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		t.Fatalf("stored payload is not a record: %v", err)
	}
	if !rec.Metrics["free_cash_flow"].Decimal.Equal(decimal.NewFromInt(700)) {
		t.Errorf("free_cash_flow = %v, want 700", rec.Metrics["free_cash_flow"])
	}
	if client.ttls[result.Key] != time.Hour {
		t.Errorf("ttl = %v, want 1h", client.ttls[result.Key])
	}
	if len(client.index) != 1 || client.index[0] != result.Key {
		t.Errorf("index = %v, want [%s]", client.index, result.Key)
	}

	if err := r.Close(); err != nil || !client.closed {
		t.Errorf("Close() = %v, closed = %v", err, client.closed)
	}
}

func TestRedis_SkipsFailedResults(t *testing.T) {
	client := newFakeRedis()
	r := NewRedisWithClient(client, 0)

	failed := fetcher.Result{Key: aapl.Key("mock"), Error: errors.New("boom")}
	if err := r.Save(context.Background(), failed); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	if len(client.values) != 0 {
		t.Error("failed result should not be written")
	}
}

func TestRedis_SetError(t *testing.T) {
	client := newFakeRedis()
	client.setErr = errors.New("connection refused")

	err := NewRedisWithClient(client, 0).Save(context.Background(), fixtureResult())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Save() error = %v, want wrapped connection error", err)
	}
}

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	calls []execCall
	err   error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgres_Migrate(t *testing.T) {
	db := &fakeDB{}
	if err := NewPostgresWithDB(db).Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() returned unexpected error: %v", err)
	}
	if len(db.calls) != 1 || !strings.Contains(db.calls[0].sql, "CREATE TABLE IF NOT EXISTS stock_metrics") {
		t.Errorf("Migrate() executed %v", db.calls)
	}
}

func TestPostgres_Save(t *testing.T) {
	db := &fakeDB{}
	p := NewPostgresWithDB(db)

	result := fixtureResult()
	if err := p.Save(context.Background(), result); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	if len(db.calls) != 1 {
		t.Fatalf("executed %d statements, want 1", len(db.calls))
	}

	call := db.calls[0]
	if !strings.Contains(call.sql, "ON CONFLICT (key) DO UPDATE") {
		t.Errorf("statement is not an upsert: %s", call.sql)
	}
	if len(call.args) != 6 {
		t.Fatalf("got %d args, want 6", len(call.args))
	}
	if call.args[0] != result.Key || call.args[1] != "NASDAQ" || call.args[2] != "AAPL" {
		t.Errorf("identity args = %v", call.args[:3])
	}

	var metrics map[string]decimal.NullDecimal
	if err := json.Unmarshal(call.args[3].([]byte), &metrics); err != nil {
		t.Fatalf("metrics arg is not JSON: %v", err)
	}
	if !metrics["quick_ratio"].Valid || !metrics["quick_ratio"].Decimal.Equal(decimal.NewFromInt(2)) {
		t.Errorf("quick_ratio = %v, want 2", metrics["quick_ratio"])
	}
	if call.args[5] != testutil.FetchedAt {
		t.Errorf("fetched_at = %v, want %v", call.args[5], testutil.FetchedAt)
	}
}

func TestPostgres_SaveErrors(t *testing.T) {
	db := &fakeDB{err: errors.New("relation does not exist")}
	p := NewPostgresWithDB(db)

	if err := p.Save(context.Background(), fixtureResult()); err == nil {
		t.Error("Save() expected error, got nil")
	}

	db.calls = nil
	if err := p.Save(context.Background(), fetcher.Result{Error: errors.New("boom")}); err != nil {
		t.Errorf("Save() of a failed result = %v, want nil", err)
	}
	if len(db.calls) != 0 {
		t.Error("failed result should not be written")
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() returned unexpected error: %v", err)
	}
}

func TestFailedStores(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"nil", nil, nil},
		{"plain error", boom, []string{"redis"}},
		{"save error", &SaveError{Store: "postgres", Err: boom}, []string{"postgres"}},
		{
			"joined",
			errors.Join(&SaveError{Store: "stdout", Err: boom}, &SaveError{Store: "postgres", Err: boom}),
			[]string{"stdout", "postgres"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FailedStores(tt.err, "redis")
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("FailedStores() = %v, want %v", got, tt.want)
			}
		})
	}
}
