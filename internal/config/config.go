package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"JSEInsight/internal/forecast"
	"JSEInsight/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Env string `yaml:"env"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider     string `yaml:"provider"` // "yahoo" or "csv"
		CSVDir       string `yaml:"csv_dir"`
		HistoryYears int    `yaml:"history_years"`
		CacheTTL     string `yaml:"cache_ttl"`
		// FundamentalsFile is an optional CSV of market cap, P/E and dividend yield per ticker.
		FundamentalsFile string `yaml:"fundamentals_file"`
	} `yaml:"data_source"`
	Portfolio struct {
		Holdings            []forecast.Holding `yaml:"holdings"`
		MonthlyContribution float64            `yaml:"monthly_contribution"`
		HorizonMonths       int                `yaml:"horizon_months"`
		InitialAmount       float64            `yaml:"initial_amount"`
		MaxHoldings         int                `yaml:"max_holdings"`
	} `yaml:"portfolio"`
	Forecast struct {
		ConfidenceLevel float64 `yaml:"confidence_level"`
	} `yaml:"forecast"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// LoadEnvFile loads ".env.<env>" from dir into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(dir, env string) error {
	if env == "" {
		env = "development"
	}
	path := filepath.Join(dir, ".env."+env)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Infof("loaded environment file %s", path)
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Seeded before decoding so an explicit zero in the file or the
	// environment survives to validation.
	cfg.Portfolio.MonthlyContribution = 1000
	cfg.Portfolio.HorizonMonths = 12

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		cfg.DataSource.CSVDir = v
	}
	if v := os.Getenv("FUNDAMENTALS_FILE"); v != "" {
		cfg.DataSource.FundamentalsFile = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("MONTHLY_CONTRIBUTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Portfolio.MonthlyContribution = f
		}
	}
	if v := os.Getenv("HORIZON_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Portfolio.HorizonMonths = n
		}
	}
	if v := os.Getenv("PORTFOLIO_TICKERS"); v != "" {
		cfg.Portfolio.Holdings = forecast.EqualWeights(splitTickers(v))
	}
	if v := os.Getenv("CONFIDENCE_LEVEL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Forecast.ConfidenceLevel = f
		}
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.HistoryYears == 0 {
		cfg.DataSource.HistoryYears = 5
	}
	if cfg.DataSource.CacheTTL == "" {
		cfg.DataSource.CacheTTL = "15m"
	}
	if len(cfg.Portfolio.Holdings) == 0 {
		cfg.Portfolio.Holdings = forecast.EqualWeights([]string{"NPN.JO", "FSR.JO", "MTN.JO"})
	}
	if cfg.Portfolio.MaxHoldings == 0 {
		cfg.Portfolio.MaxHoldings = forecast.DefaultMaxHoldings
	}
	if cfg.Forecast.ConfidenceLevel == 0 {
		cfg.Forecast.ConfidenceLevel = forecast.DefaultConfidenceLevel
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 30 18 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/jseinsight.db"
	}

	return cfg, nil
}

func splitTickers(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "csv":
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for the csv provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.DataSource.HistoryYears < 0 {
		return fmt.Errorf("data_source.history_years must not be negative")
	}
	if _, err := c.PortfolioConfig(); err != nil {
		return fmt.Errorf("portfolio: %w", err)
	}
	if _, err := forecast.ZScore(c.Forecast.ConfidenceLevel); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// CacheTTL parses the data source cache lifetime.
func (c *Config) CacheTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.DataSource.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("data_source.cache_ttl: %w", err)
	}
	return d, nil
}

// PortfolioConfig builds the validated watch portfolio.
func (c *Config) PortfolioConfig() (*forecast.PortfolioConfig, error) {
	holdings := make([]forecast.Holding, len(c.Portfolio.Holdings))
	for i, h := range c.Portfolio.Holdings {
		holdings[i] = forecast.Holding{Ticker: model.NormalizeTicker(h.Ticker), Weight: h.Weight}
	}
	return forecast.NewPortfolioConfig(holdings, c.Portfolio.MonthlyContribution, c.Portfolio.HorizonMonths,
		&forecast.Options{MaxHoldings: c.Portfolio.MaxHoldings, InitialAmount: c.Portfolio.InitialAmount})
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	if lvl, err := log.ParseLevel(c.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	if strings.EqualFold(c.Log.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
}
