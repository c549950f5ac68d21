package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the TOML file read by Load when no explicit path is given.
const DefaultPath = "config/default.toml"

// Query variants understood by the upstream client.
const (
	QueryVariantOpen     = "open"
	QueryVariantFiltered = "filtered"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Window     WindowConfig     `toml:"window"`
	API        APIConfig        `toml:"api"`
	Log        LogConfig        `toml:"log"`
}

type PolymarketConfig struct {
	APIBaseURL   string `toml:"api_base_url"`
	QueryVariant string `toml:"query_variant"`
	PageSize     int    `toml:"page_size"`
	PageDelayMs  int    `toml:"page_delay_ms"`
	LiquidityMin int    `toml:"liquidity_min"`
	VolumeMin    int    `toml:"volume_min"`
	TimeoutSecs  int    `toml:"timeout_secs"`
	UserAgent    string `toml:"user_agent"`
}

type WindowConfig struct {
	Days            int    `toml:"days"`
	DisplayTimezone string `toml:"display_timezone"`
}

type APIConfig struct {
	BindAddress  string   `toml:"bind_address"`
	CORSOrigins  []string `toml:"cors_origins"`
	Paginate     bool     `toml:"paginate"`
	ItemsPerPage int      `toml:"items_per_page"`
	ChartSize    int      `toml:"chart_size"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Encoding    string `toml:"encoding"`
	Development bool   `toml:"development"`
}

// PageDelay is the pause enforced between two upstream page requests.
func (c PolymarketConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

func (c PolymarketConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Location resolves DisplayTimezone. "Local" and "" map to time.Local.
func (c WindowConfig) Location() (*time.Location, error) {
	switch c.DisplayTimezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.DisplayTimezone)
	}
}

func Defaults() *Config {
	return &Config{
		Polymarket: PolymarketConfig{
			APIBaseURL:   "https://gamma-api.polymarket.com",
			QueryVariant: QueryVariantOpen,
			PageSize:     20,
			PageDelayMs:  100,
			LiquidityMin: 10000,
			VolumeMin:    10000,
			TimeoutSecs:  30,
			UserAgent:    "polymarket-window-dashboard/1.0",
		},
		Window: WindowConfig{
			Days:            5,
			DisplayTimezone: "Local",
		},
		API: APIConfig{
			BindAddress:  "0.0.0.0:8080",
			CORSOrigins:  []string{"http://localhost:3000"},
			Paginate:     true,
			ItemsPerPage: 10,
			ChartSize:    10,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if it
// exists) and POLYDASH__SECTION__KEY environment variables, in that order.
// An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if path == "" {
		path = getEnv("POLYDASH_CONFIG", DefaultPath)
	}

	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// arrays in the file replace the defaults instead of merging into them
		origins := cfg.API.CORSOrigins
		cfg.API.CORSOrigins = nil
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if cfg.API.CORSOrigins == nil {
			cfg.API.CORSOrigins = origins
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Polymarket.APIBaseURL = getEnv("POLYDASH__POLYMARKET__API_BASE_URL", cfg.Polymarket.APIBaseURL)
	cfg.Polymarket.QueryVariant = getEnv("POLYDASH__POLYMARKET__QUERY_VARIANT", cfg.Polymarket.QueryVariant)
	cfg.Polymarket.PageSize = getEnvInt("POLYDASH__POLYMARKET__PAGE_SIZE", cfg.Polymarket.PageSize)
	cfg.Polymarket.PageDelayMs = getEnvInt("POLYDASH__POLYMARKET__PAGE_DELAY_MS", cfg.Polymarket.PageDelayMs)
	cfg.Polymarket.LiquidityMin = getEnvInt("POLYDASH__POLYMARKET__LIQUIDITY_MIN", cfg.Polymarket.LiquidityMin)
	cfg.Polymarket.VolumeMin = getEnvInt("POLYDASH__POLYMARKET__VOLUME_MIN", cfg.Polymarket.VolumeMin)
	cfg.Polymarket.TimeoutSecs = getEnvInt("POLYDASH__POLYMARKET__TIMEOUT_SECS", cfg.Polymarket.TimeoutSecs)
	cfg.Polymarket.UserAgent = getEnv("POLYDASH__POLYMARKET__USER_AGENT", cfg.Polymarket.UserAgent)

	cfg.Window.Days = getEnvInt("POLYDASH__WINDOW__DAYS", cfg.Window.Days)
	cfg.Window.DisplayTimezone = getEnv("POLYDASH__WINDOW__DISPLAY_TIMEZONE", cfg.Window.DisplayTimezone)

	cfg.API.BindAddress = getEnv("POLYDASH__API__BIND_ADDRESS", cfg.API.BindAddress)
	cfg.API.CORSOrigins = getEnvSlice("POLYDASH__API__CORS_ORIGINS", cfg.API.CORSOrigins)
	cfg.API.Paginate = getEnvBool("POLYDASH__API__PAGINATE", cfg.API.Paginate)
	cfg.API.ItemsPerPage = getEnvInt("POLYDASH__API__ITEMS_PER_PAGE", cfg.API.ItemsPerPage)
	cfg.API.ChartSize = getEnvInt("POLYDASH__API__CHART_SIZE", cfg.API.ChartSize)

	cfg.Log.Level = getEnv("POLYDASH__LOG__LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getEnv("POLYDASH__LOG__ENCODING", cfg.Log.Encoding)
	cfg.Log.Development = getEnvBool("POLYDASH__LOG__DEVELOPMENT", cfg.Log.Development)
}

func (c *Config) Validate() error {
	switch c.Polymarket.QueryVariant {
	case QueryVariantOpen, QueryVariantFiltered:
	default:
		return fmt.Errorf("%w: unknown query variant %q", ErrInvalidConfig, c.Polymarket.QueryVariant)
	}
	if c.Polymarket.APIBaseURL == "" {
		return fmt.Errorf("%w: polymarket.api_base_url is empty", ErrInvalidConfig)
	}
	if c.Polymarket.PageSize <= 0 {
		return fmt.Errorf("%w: polymarket.page_size must be positive", ErrInvalidConfig)
	}
	if c.Polymarket.PageDelayMs < 0 {
		return fmt.Errorf("%w: polymarket.page_delay_ms must not be negative", ErrInvalidConfig)
	}
	if c.Polymarket.TimeoutSecs <= 0 {
		return fmt.Errorf("%w: polymarket.timeout_secs must be positive", ErrInvalidConfig)
	}
	if c.Window.Days <= 0 {
		return fmt.Errorf("%w: window.days must be positive", ErrInvalidConfig)
	}
	if _, err := c.Window.Location(); err != nil {
		return fmt.Errorf("%w: window.display_timezone: %v", ErrInvalidConfig, err)
	}
	if c.API.ItemsPerPage <= 0 {
		return fmt.Errorf("%w: api.items_per_page must be positive", ErrInvalidConfig)
	}
	if c.API.ChartSize <= 0 {
		return fmt.Errorf("%w: api.chart_size must be positive", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
