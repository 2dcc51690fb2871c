package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		CoinbaseURL     string `yaml:"coinbase_url"`
		OKXURL          string `yaml:"okx_url"`
		CoinGeckoURL    string `yaml:"coingecko_url"`
		CoinGeckoAPIKey string `yaml:"coingecko_api_key"`
		CoinMetricsURL  string `yaml:"coinmetrics_url"`
		CoinGlassURL    string `yaml:"coinglass_url"`
		CoinGlassAPIKey string `yaml:"coinglass_api_key"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		LookbackDays    int    `yaml:"lookback_days"`
		CoinGeckoRPM    int    `yaml:"coingecko_rpm"`
	} `yaml:"data_source"`
	Signal struct {
		Override   string   `yaml:"override"`
		Window     int      `yaml:"window"`
		Origin     string   `yaml:"origin"`
		A          *float64 `yaml:"a"` // nil means default; zero is a valid coefficient
		B          *float64 `yaml:"b"`
		AlignRatio float64  `yaml:"align_ratio"`
	} `yaml:"signal"`
	Policy struct {
		TotalCostAnchor float64 `yaml:"total_cost_anchor"`
		CashCostAnchor  float64 `yaml:"cash_cost_anchor"`
		PauseMultiple   float64 `yaml:"pause_multiple"`
		Threshold3x     float64 `yaml:"threshold_3x"`
		Threshold2x     float64 `yaml:"threshold_2x"`
		MVRVCeiling     float64 `yaml:"mvrv_ceiling"`
		SpreadAlert     float64 `yaml:"spread_alert"`
	} `yaml:"policy"`
	Ammo struct {
		LedgerPath string  `yaml:"ledger_path"`
		TotalUnits int     `yaml:"total_units"`
		UnitAmount float64 `yaml:"unit_amount"`
	} `yaml:"ammo"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file, then .env, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.DataSource.CoinGeckoAPIKey = v
	}
	if v := os.Getenv("COINGLASS_API_KEY"); v != "" {
		cfg.DataSource.CoinGlassAPIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	// COINGLASS_AHR999 is the older name of the manual override.
	if v := os.Getenv("COINGLASS_AHR999"); v != "" {
		cfg.Signal.Override = v
	}
	if v := os.Getenv("AHR999_OVERRIDE"); v != "" {
		cfg.Signal.Override = v
	}
	if v := os.Getenv("LEDGER_PATH"); v != "" {
		cfg.Ammo.LedgerPath = v
	}
	if v := os.Getenv("TOTAL_UNITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ammo.TotalUnits = n
		}
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func applyDefaults(cfg *Config) {
	ds := &cfg.DataSource
	if ds.CoinbaseURL == "" {
		ds.CoinbaseURL = "https://api.coinbase.com"
	}
	if ds.OKXURL == "" {
		ds.OKXURL = "https://www.okx.com"
	}
	if ds.CoinGeckoURL == "" {
		ds.CoinGeckoURL = "https://api.coingecko.com/api/v3"
	}
	if ds.CoinMetricsURL == "" {
		ds.CoinMetricsURL = "https://community-api.coinmetrics.io/v4"
	}
	if ds.CoinGlassURL == "" {
		ds.CoinGlassURL = "https://open-api.coinglass.com/public/v2"
	}
	if ds.TimeoutSeconds == 0 {
		ds.TimeoutSeconds = 15
	}
	if ds.LookbackDays == 0 {
		ds.LookbackDays = 240
	}
	if ds.CoinGeckoRPM == 0 {
		ds.CoinGeckoRPM = 10
	}

	sig := &cfg.Signal
	if sig.Window == 0 {
		sig.Window = 200
	}
	if sig.Origin == "" {
		sig.Origin = "2009-01-03"
	}
	if sig.A == nil {
		sig.A = ptr(5.84)
	}
	if sig.B == nil {
		sig.B = ptr(-17.01)
	}
	if sig.AlignRatio == 0 {
		sig.AlignRatio = 0.915
	}

	p := &cfg.Policy
	if p.TotalCostAnchor == 0 {
		p.TotalCostAnchor = 85000
	}
	if p.CashCostAnchor == 0 {
		p.CashCostAnchor = 60000
	}
	if p.PauseMultiple == 0 {
		p.PauseMultiple = 1.2
	}
	if p.Threshold3x == 0 {
		p.Threshold3x = 0.40
	}
	if p.Threshold2x == 0 {
		p.Threshold2x = 0.45
	}
	if p.MVRVCeiling == 0 {
		p.MVRVCeiling = 1.0
	}
	if p.SpreadAlert == 0 {
		p.SpreadAlert = 50
	}

	if cfg.Ammo.LedgerPath == "" {
		cfg.Ammo.LedgerPath = "data/ammo_ledger.json"
	}
	if cfg.Ammo.TotalUnits == 0 {
		cfg.Ammo.TotalUnits = 600
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 5 0 * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/ahr_sentinel.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func ptr(v float64) *float64 { return &v }

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	p := c.Policy
	if p.TotalCostAnchor <= 0 || p.CashCostAnchor <= 0 {
		return fmt.Errorf("policy cost anchors must be positive")
	}
	if p.CashCostAnchor > p.TotalCostAnchor {
		return fmt.Errorf("policy.cash_cost_anchor (%.0f) exceeds total_cost_anchor (%.0f)", p.CashCostAnchor, p.TotalCostAnchor)
	}
	if p.PauseMultiple < 1 {
		return fmt.Errorf("policy.pause_multiple must be >= 1")
	}
	if p.Threshold3x <= 0 || p.Threshold2x < p.Threshold3x {
		return fmt.Errorf("policy thresholds must satisfy 0 < threshold_3x <= threshold_2x")
	}
	if c.Signal.AlignRatio <= 0 {
		return fmt.Errorf("signal.align_ratio must be positive")
	}
	if p.SpreadAlert < 0 {
		return fmt.Errorf("policy.spread_alert must not be negative")
	}
	if c.Signal.A == nil || c.Signal.B == nil {
		return fmt.Errorf("signal.a and signal.b must be set")
	}
	if c.Signal.Window <= 0 {
		return fmt.Errorf("signal.window must be positive")
	}
	if c.DataSource.LookbackDays < c.Signal.Window {
		return fmt.Errorf("data_source.lookback_days (%d) is shorter than signal.window (%d)", c.DataSource.LookbackDays, c.Signal.Window)
	}
	if _, err := c.OriginDate(); err != nil {
		return err
	}
	if c.Ammo.TotalUnits < 0 {
		return fmt.Errorf("ammo.total_units must not be negative")
	}
	if c.Ammo.UnitAmount < 0 {
		return fmt.Errorf("ammo.unit_amount must not be negative")
	}
	return nil
}

// ValidateTelegram checks the settings required for message delivery.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// OriginDate parses signal.origin.
func (c *Config) OriginDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, c.Signal.Origin)
	if err != nil {
		return time.Time{}, fmt.Errorf("signal.origin: %w", err)
	}
	return t, nil
}

// Timeout returns the per-request timeout for data sources.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

// ReadOverride returns the manual signal override. An empty setting yields
// nil; a value that is not a finite positive number is an error.
func (c *Config) ReadOverride() (*float64, error) {
	s := strings.TrimSpace(c.Signal.Override)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("override %q: %w", s, err)
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("override %q: must be a finite positive number", s)
	}
	return &v, nil
}
