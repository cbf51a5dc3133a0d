package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"stockmetrics/internal/alphavantage"
	"stockmetrics/internal/fetcher"
	"stockmetrics/internal/googlefinance"
	"stockmetrics/internal/observability"
	"stockmetrics/internal/ratios"
)

// Store names accepted in Stores
const (
	StoreStdout   = "stdout"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

var (
	providers = []string{googlefinance.Name, alphavantage.Name}
	stores    = []string{StoreStdout, StoreRedis, StorePostgres}
)

// Config holds all configuration for the stock metrics application.
type Config struct {
	// Data source and what to evaluate
	Provider string   `mapstructure:"provider"`
	Market   string   `mapstructure:"market"`
	Tickers  []string `mapstructure:"tickers"`
	Lookup   string   `mapstructure:"lookup"`

	// API keys
	AlphavantageAPIKey string `mapstructure:"alphavantage_api_key"`

	// Base URLs for upstream endpoints (configurable for testing)
	GoogleFinanceBaseURL string `mapstructure:"googlefinance_base_url"`
	AlphavantageBaseURL  string `mapstructure:"alphavantage_base_url"`

	// Where results go
	Stores        []string      `mapstructure:"stores"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
	DatabaseURL   string        `mapstructure:"database_url"`

	Timeout     time.Duration `mapstructure:"timeout"`
	LogFormat   string        `mapstructure:"log_format"`
	LogLevel    string        `mapstructure:"log_level"`
	MetricsAddr string        `mapstructure:"metrics_addr"`

	// ParsedTickers holds Tickers resolved against Market
	ParsedTickers []fetcher.Ticker `mapstructure:"-"`
}

// HasStore reports whether name is one of the configured stores
func (c *Config) HasStore(name string) bool {
	return slices.Contains(c.Stores, name)
}

// LookupStrategy returns the configured ratio lookup
func (c *Config) LookupStrategy() ratios.Lookup {
	l, _ := ratios.ParseLookup(c.Lookup)
	return l
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"provider":     "provider",
	"market":       "market",
	"tickers":      "tickers",
	"lookup":       "lookup",
	"stores":       "stores",
	"timeout":      "timeout",
	"log-format":   "log_format",
	"log-level":    "log_level",
	"metrics-addr": "metrics_addr",
}

// NewFlagSet declares the command line flags Load understands
func NewFlagSet(name string) *pflag.FlagSet {
	fset := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fset.String("provider", googlefinance.Name, "data source: googlefinance or alphavantage")
	fset.String("market", "NASDAQ", "market of tickers given without one")
	fset.StringSlice("tickers", nil, "tickers to evaluate, MARKET:SYMBOL or SYMBOL")
	fset.String("lookup", string(ratios.LookupPositional), "statement row lookup: positional or label")
	fset.StringSlice("stores", []string{StoreStdout}, "where results go: stdout, redis, postgres")
	fset.Duration("timeout", 2*time.Minute, "overall run timeout")
	fset.String("log-format", "text", "log format: text or json")
	fset.String("log-level", "info", "log level: debug, info, warn or error")
	fset.String("metrics-addr", "", "serve prometheus metrics on this address")
	fset.String("env-file", ".env", "dotenv file loaded before reading the environment")
	fset.String("config", "", "config file (default ./config.yaml or $HOME/.stockmetrics/config.yaml)")
	return fset
}

// Load reads configuration from command line flags, environment variables
// and an optional config file, in that order of precedence. A .env file is
// loaded into the environment first; existing variables are not overridden.
//
// Expected environment variables:
//   - TICKERS (comma separated, required unless --tickers is given)
//   - PROVIDER, MARKET, LOOKUP, STORES (optional)
//   - ALPHAVANTAGE_API_KEY (required when PROVIDER=alphavantage)
//   - GOOGLEFINANCE_BASE_URL, ALPHAVANTAGE_BASE_URL (optional, defaults to production)
//   - REDIS_ADDR (required when STORES includes redis), REDIS_PASSWORD, REDIS_DB, REDIS_TTL
//   - DATABASE_URL (required when STORES includes postgres)
//   - TIMEOUT, LOG_FORMAT, LOG_LEVEL, METRICS_ADDR (optional)
func Load(args []string) (*Config, error) {
	fset := NewFlagSet("stockmetrics")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	envFile, _ := fset.GetString("env-file")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("googlefinance_base_url", "https://www.google.com")
	v.SetDefault("alphavantage_base_url", "https://www.alphavantage.co/query")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_ttl", 24*time.Hour)

	// Optionally read from config file if it exists
	if path, _ := fset.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.stockmetrics")
		_ = v.ReadInConfig()
	}

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fset.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	// Bind environment variables for keys without a flag
	v.BindEnv("alphavantage_api_key", "ALPHAVANTAGE_API_KEY")
	v.BindEnv("googlefinance_base_url", "GOOGLEFINANCE_BASE_URL")
	v.BindEnv("alphavantage_base_url", "ALPHAVANTAGE_BASE_URL")
	v.BindEnv("redis_addr", "REDIS_ADDR")
	v.BindEnv("redis_password", "REDIS_PASSWORD")
	v.BindEnv("redis_db", "REDIS_DB")
	v.BindEnv("redis_ttl", "REDIS_TTL")
	v.BindEnv("database_url", "DATABASE_URL")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// validate checks required and enumerated keys, reporting all problems at once
func (c *Config) validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Stores = normalize(c.Stores)
	c.Tickers = normalize(c.Tickers)

	var missing, invalid []string

	if !slices.Contains(providers, c.Provider) {
		invalid = append(invalid, fmt.Sprintf("PROVIDER=%q", c.Provider))
	}
	if c.Provider == alphavantage.Name && c.AlphavantageAPIKey == "" {
		missing = append(missing, "ALPHAVANTAGE_API_KEY")
	}

	c.ParsedTickers = nil
	for _, raw := range c.Tickers {
		t, err := fetcher.ParseTicker(raw, c.Market)
		if err != nil {
			invalid = append(invalid, fmt.Sprintf("TICKERS: %v", err))
			continue
		}
		c.ParsedTickers = append(c.ParsedTickers, t)
	}
	if len(c.Tickers) == 0 {
		missing = append(missing, "TICKERS")
	}

	if _, err := ratios.ParseLookup(c.Lookup); err != nil {
		invalid = append(invalid, fmt.Sprintf("LOOKUP=%q", c.Lookup))
	}

	if len(c.Stores) == 0 {
		missing = append(missing, "STORES")
	}
	for _, s := range c.Stores {
		if !slices.Contains(stores, s) {
			invalid = append(invalid, fmt.Sprintf("STORES: unknown store %q", s))
		}
	}
	if c.HasStore(StoreRedis) && c.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if c.HasStore(StorePostgres) && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		invalid = append(invalid, fmt.Sprintf("LOG_FORMAT=%q", c.LogFormat))
	}
	if _, err := observability.ParseLevel(c.LogLevel); err != nil {
		invalid = append(invalid, fmt.Sprintf("LOG_LEVEL=%q", c.LogLevel))
	}
	if c.Timeout <= 0 {
		invalid = append(invalid, fmt.Sprintf("TIMEOUT=%s", c.Timeout))
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid configuration: %s", strings.Join(invalid, "; ")))
	}
	return errors.Join(errs...)
}

// normalize trims entries and drops empty ones
func normalize(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
