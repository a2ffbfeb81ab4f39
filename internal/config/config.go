// Package config handles configuration loading for the financial analysis
// dashboard. It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/analysis/fundamental"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "FINANALYSIS"

// Config represents the complete application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"     yaml:"data"     json:"data"`
	Calendar CalendarConfig `mapstructure:"calendar" yaml:"calendar" json:"calendar"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"      json:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"  json:"logging"`
}

// DataConfig says where ticker documents live and how to read them.
type DataConfig struct {
	Dir          string `mapstructure:"dir"            yaml:"dir"            json:"dir"            validate:"required"`
	IncomePath   string `mapstructure:"income_path"    yaml:"income_path"    json:"income_path"    validate:"required,startswith=$"`
	BalancePath  string `mapstructure:"balance_path"   yaml:"balance_path"   json:"balance_path"   validate:"required,startswith=$"`
	CashFlowPath string `mapstructure:"cash_flow_path" yaml:"cash_flow_path" json:"cash_flow_path" validate:"required,startswith=$"`
	PeriodField  string `mapstructure:"period_field"   yaml:"period_field"   json:"period_field"`
	Watch        bool   `mapstructure:"watch"          yaml:"watch"          json:"watch"`
	CacheTTL     int    `mapstructure:"cache_ttl"      yaml:"cache_ttl"      json:"cache_ttl"      validate:"gte=0"` // seconds
}

// CalendarConfig holds the master calendar of supported fiscal quarters.
type CalendarConfig struct {
	SupportedPeriods []string `mapstructure:"supported_periods" yaml:"supported_periods" json:"supported_periods" validate:"required,min=1"`
}

// AnalysisConfig holds analyzer settings.
type AnalysisConfig struct {
	Metrics           []string            `mapstructure:"metrics"            yaml:"metrics"            json:"metrics"            validate:"required,min=1,dive,required"`
	BaseMetric        string              `mapstructure:"base_metric"        yaml:"base_metric"        json:"base_metric"        validate:"required"`
	Ratios            []fundamental.Ratio `mapstructure:"ratios"             yaml:"ratios"             json:"ratios"`
	ConcurrentLoads   int                 `mapstructure:"concurrent_loads"   yaml:"concurrent_loads"   json:"concurrent_loads"   validate:"gte=1,lte=64"`
	MaxCompareTickers int                 `mapstructure:"max_compare_tickers" yaml:"max_compare_tickers" json:"max_compare_tickers" validate:"gte=1"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"         validate:"gte=1,lte=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	Token       string   `mapstructure:"token"        yaml:"token"        json:"-"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"  validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=text json"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finanalysis/config.yaml (home directory)
//  3. /etc/finanalysis/config.yaml (system)
//
// Environment variables override config file values.
// Format: FINANALYSIS_<SECTION>_<KEY>, e.g., FINANALYSIS_DATA_DIR
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finanalysis"))
	v.AddConfigPath("/etc/finanalysis")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the configuration with only defaults and environment
// overrides applied.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// defaults always decode
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if len(cfg.Analysis.Ratios) == 0 {
		cfg.Analysis.Ratios = fundamental.DefaultRatios()
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.dir", "financial")
	v.SetDefault("data.income_path", "$.IncomeStatement")
	v.SetDefault("data.balance_path", "$.BalanceSheet")
	v.SetDefault("data.cash_flow_path", "$.CashFlow")
	v.SetDefault("data.period_field", "Date")
	v.SetDefault("data.watch", false)
	v.SetDefault("data.cache_ttl", 300) // 5 minutes

	v.SetDefault("calendar.supported_periods", DefaultSupportedPeriods())

	// Analysis defaults
	v.SetDefault("analysis.metrics", []string{"Revenue", "Operating Expense", "Operating Income", "EBITDA", "Net Income"})
	v.SetDefault("analysis.base_metric", "Revenue")
	v.SetDefault("analysis.concurrent_loads", 4)
	v.SetDefault("analysis.max_compare_tickers", 10)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads list-valued keys from environment
// variables, which AutomaticEnv cannot split.
func overrideFromEnv(cfg *Config) {
	if s := os.Getenv(EnvPrefix + "_CALENDAR_SUPPORTED_PERIODS"); s != "" {
		cfg.Calendar.SupportedPeriods = splitList(s)
	}
	if s := os.Getenv(EnvPrefix + "_ANALYSIS_METRICS"); s != "" {
		cfg.Analysis.Metrics = splitList(s)
	}
	if s := os.Getenv(EnvPrefix + "_API_CORS_ORIGINS"); s != "" {
		cfg.API.CORSOrigins = splitList(s)
	}
	if s := os.Getenv(EnvPrefix + "_API_TOKEN"); s != "" {
		cfg.API.Token = s
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DefaultSupportedPeriods returns every quarter from Dec-15 to Sep-24.
func DefaultSupportedPeriods() []string {
	var out []string
	for _, p := range statement.PeriodsBetween(statement.MustParsePeriod("Dec-15"), statement.MustParsePeriod("Sep-24")) {
		out = append(out, p.String())
	}
	return out
}

var validate = validator.New()

// Validate checks field constraints and that every calendar label parses.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.MasterCalendar(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MasterCalendar parses the configured supported periods.
func (c *Config) MasterCalendar() (statement.Calendar, error) {
	return statement.NewCalendar(c.Calendar.SupportedPeriods)
}

// PeriodFields returns the keys probed for a record's period: the configured
// field first, then the built-in alternates.
func (c *Config) PeriodFields() []string {
	out := []string{}
	if c.Data.PeriodField != "" {
		out = append(out, c.Data.PeriodField)
	}
	for _, f := range statement.DefaultPeriodFields {
		if f != c.Data.PeriodField {
			out = append(out, f)
		}
	}
	return out
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("data", map[string]any{
		"dir":            c.Data.Dir,
		"income_path":    c.Data.IncomePath,
		"balance_path":   c.Data.BalancePath,
		"cash_flow_path": c.Data.CashFlowPath,
		"period_field":   c.Data.PeriodField,
		"watch":          c.Data.Watch,
		"cache_ttl":      c.Data.CacheTTL,
	})
	v.Set("calendar.supported_periods", c.Calendar.SupportedPeriods)
	v.Set("analysis.metrics", c.Analysis.Metrics)
	v.Set("analysis.base_metric", c.Analysis.BaseMetric)
	v.Set("analysis.ratios", c.Analysis.Ratios)
	v.Set("analysis.concurrent_loads", c.Analysis.ConcurrentLoads)
	v.Set("analysis.max_compare_tickers", c.Analysis.MaxCompareTickers)
	v.Set("api.host", c.API.Host)
	v.Set("api.port", c.API.Port)
	v.Set("api.cors_origins", c.API.CORSOrigins)
	v.Set("logging.level", c.Logging.Level)
	v.Set("logging.format", c.Logging.Format)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
