package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"oilfx/internal/alphavantage"
	"oilfx/internal/fetcher"
	"oilfx/internal/quandl"
	"oilfx/internal/ratelimit"
)

// DatasetConfig describes one dataset to fetch. The first dataset is the
// main table the others are joined onto.
type DatasetConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=quandl alphavantage csv"`
	Field    string `mapstructure:"field" validate:"required"`

	// Quandl
	Code       string `mapstructure:"code" validate:"required_if=Provider quandl"`
	Column     int    `mapstructure:"column" validate:"gte=0"`
	ColumnName string `mapstructure:"column_name"`

	// Alpha Vantage
	Function   string `mapstructure:"function" validate:"required_if=Provider alphavantage"`
	FromSymbol string `mapstructure:"from_symbol"`
	ToSymbol   string `mapstructure:"to_symbol"`

	// CSV
	Path        string `mapstructure:"path" validate:"required_if=Provider csv"`
	DateColumn  string `mapstructure:"date_column"`
	ValueColumn string `mapstructure:"value_column" validate:"required_if=Provider csv"`
}

// CorrelationConfig names two fields to correlate and the output field.
type CorrelationConfig struct {
	X     string `mapstructure:"x" validate:"required"`
	Y     string `mapstructure:"y" validate:"required"`
	Field string `mapstructure:"field" validate:"required"`
}

// FilterConfig is the row validity policy: rate fields must be non-zero and
// price fields must lie strictly between PriceMin and PriceMax.
type FilterConfig struct {
	NonZeroFields []string `mapstructure:"nonzero_fields"`
	PriceFields   []string `mapstructure:"price_fields"`
	PriceMin      float64  `mapstructure:"price_min"`
	PriceMax      float64  `mapstructure:"price_max" validate:"gtfield=PriceMin"`
}

// Config holds all configuration for the oilfx pipeline.
type Config struct {
	// API keys
	QuandlAPIKey       string `mapstructure:"quandl_api_key"`
	AlphavantageAPIKey string `mapstructure:"alphavantage_api_key"`

	// Base URLs for API endpoints (configurable for testing)
	QuandlBaseURL       string `mapstructure:"quandl_base_url" validate:"required,url"`
	AlphavantageBaseURL string `mapstructure:"alphavantage_base_url" validate:"required,url"`

	Datasets  []DatasetConfig `mapstructure:"datasets" validate:"required,min=1,dive"`
	TrimStart string          `mapstructure:"trim_start" validate:"omitempty,datetime=2006-01-02"`

	ChangeFields       []string            `mapstructure:"change_fields" validate:"dive,required"`
	Correlations       []CorrelationConfig `mapstructure:"correlations" validate:"dive"`
	WindowPeriod       int                 `mapstructure:"window_period" validate:"gte=2"`
	MissingCorrelation float64             `mapstructure:"missing_correlation"`
	SignedCorrelation  bool                `mapstructure:"signed_correlation"`
	Filter             FilterConfig        `mapstructure:"filter"`

	ActiveCurrency string `mapstructure:"active_currency" validate:"oneof=RUB CAD rub cad"`

	// Output is the snapshot file path; empty writes to stdout.
	Output string `mapstructure:"output"`

	// RefreshCron, when set, keeps the process running and refreshes on this
	// schedule (seconds field first). Empty runs once.
	RefreshCron   string             `mapstructure:"refresh_cron"`
	RequestRate   map[string]float64 `mapstructure:"request_rate"`
	HTTPTimeout   time.Duration      `mapstructure:"http_timeout" validate:"gt=0"`
	HTTPUserAgent string             `mapstructure:"http_user_agent" validate:"required"`

	// BoxingCSV, when set, adds the punch statistics of this file to every
	// snapshot.
	BoxingCSV string `mapstructure:"boxing_csv"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=json console"`
	LogOutput string `mapstructure:"log_output"`
}

var validate = validator.New()

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
//
// Expected environment variables:
//   - QUANDL_API_KEY (optional, anonymous requests are rate limited harder)
//   - ALPHAVANTAGE_API_KEY (required when an alphavantage dataset is configured)
//   - QUANDL_BASE_URL (optional, defaults to production)
//   - ALPHAVANTAGE_BASE_URL (optional, defaults to production)
//
// Every other key may also be set from the environment by its upper-cased
// name, e.g. WINDOW_PERIOD or LOG_LEVEL.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("")
	v.AutomaticEnv()

	setDefaults(v)

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.oilfx")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("quandl_api_key", "QUANDL_API_KEY")
	v.BindEnv("alphavantage_api_key", "ALPHAVANTAGE_API_KEY")
	v.BindEnv("quandl_base_url", "QUANDL_BASE_URL")
	v.BindEnv("alphavantage_base_url", "ALPHAVANTAGE_BASE_URL")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks struct constraints and the credentials the configured
// datasets need.
func (c *Config) Validate() error {
	var missing []string
	for _, d := range c.Datasets {
		if d.Provider == "alphavantage" && c.AlphavantageAPIKey == "" {
			missing = append(missing, "ALPHAVANTAGE_API_KEY")
			break
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("quandl_base_url", quandl.DefaultBaseURL)
	v.SetDefault("alphavantage_base_url", alphavantage.DefaultBaseURL)

	v.SetDefault("datasets", []map[string]any{
		{"provider": "quandl", "code": "CHRIS/CME_CL1", "field": "wti_price"},
		{"provider": "quandl", "code": "CHRIS/ICE_B1", "field": "brent_price"},
		{"provider": "quandl", "code": "CURRFX/USDRUB", "field": "rate_rub"},
		{"provider": "quandl", "code": "CURRFX/USDCAD", "field": "rate_cad"},
	})
	v.SetDefault("trim_start", "2013-01-01")

	v.SetDefault("change_fields", []string{"wti_price", "brent_price", "rate_rub", "rate_cad"})
	v.SetDefault("correlations", []map[string]any{
		{"x": "wti_price_change", "y": "rate_rub_change", "field": "corr_wti_rub"},
		{"x": "wti_price_change", "y": "rate_cad_change", "field": "corr_wti_cad"},
	})
	v.SetDefault("window_period", 60)
	v.SetDefault("missing_correlation", 0.0)
	v.SetDefault("signed_correlation", false)

	v.SetDefault("filter.nonzero_fields", []string{"rate_rub", "rate_cad"})
	v.SetDefault("filter.price_fields", []string{"wti_price", "brent_price"})
	v.SetDefault("filter.price_min", 0.0)
	v.SetDefault("filter.price_max", 1000.0)

	v.SetDefault("active_currency", "RUB")
	v.SetDefault("refresh_cron", "")
	rates := make(map[string]float64, len(ratelimit.DefaultLimits))
	for api, limit := range ratelimit.DefaultLimits {
		rates[string(api)] = float64(limit)
	}
	v.SetDefault("request_rate", rates)
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("http_user_agent", fetcher.DefaultUserAgent)
	v.SetDefault("boxing_csv", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_output", "stderr")
	v.SetDefault("output", "")
}
