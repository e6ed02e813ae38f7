// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BOXOFFICE_CACHE_ROOT.
const EnvPrefix = "BOXOFFICE"

// Supported fetcher drivers.
const (
	DriverColly    = "colly"
	DriverResty    = "resty"
	DriverHeadless = "headless"
	// DriverAuto fetches with colly and renders with headless Chrome only
	// when the response lacks server-rendered content.
	DriverAuto = "auto"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// CacheConfig locates the page cache.
type CacheConfig struct {
	Root string `mapstructure:"root"`
}

// SourcesConfig holds the site roots the pipeline builds URLs from.
type SourcesConfig struct {
	ListingBaseURL string `mapstructure:"listing_base_url"`
	ProBaseURL     string `mapstructure:"pro_base_url"`
}

// FetcherConfig selects and tunes the network fetcher.
type FetcherConfig struct {
	Driver            string  `mapstructure:"driver"`
	UserAgent         string  `mapstructure:"user_agent"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RespectRobots     bool    `mapstructure:"respect_robots"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// HeadlessConfig configures the headless rendering driver.
type HeadlessConfig struct {
	MaxParallel     int    `mapstructure:"max_parallel"`
	NavTimeoutSec   int    `mapstructure:"nav_timeout_seconds"`
	PromoteMinBytes int    `mapstructure:"promote_min_bytes"`
	ContentSelector string `mapstructure:"content_selector"`
}

// ExtractConfig caps batch and cast sizes.
type ExtractConfig struct {
	CastLimit    int `mapstructure:"cast_limit"`
	WeekendLimit int `mapstructure:"weekend_limit"`
	YearLimit    int `mapstructure:"year_limit"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	return LoadViper(viper.New(), path)
}

// LoadViper is Load on a caller-supplied Viper, so flags already bound to v
// take precedence over the file and defaults.
func LoadViper(v *viper.Viper, path string) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("cache.root", "cache")
	v.SetDefault("sources.listing_base_url", "https://www.boxofficemojo.com")
	v.SetDefault("sources.pro_base_url", "https://pro.imdb.com")
	v.SetDefault("fetcher.driver", DriverColly)
	v.SetDefault("fetcher.user_agent", "boxoffice-crawler/0.1 (+https://github.com/JakeFAU/boxoffice-crawler)")
	v.SetDefault("fetcher.timeout_seconds", 15)
	v.SetDefault("fetcher.respect_robots", false)
	v.SetDefault("fetcher.requests_per_second", 0)
	v.SetDefault("fetcher.burst", 1)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.promote_min_bytes", 2048)
	v.SetDefault("headless.content_selector", "table")
	v.SetDefault("extract.cast_limit", 10)
	v.SetDefault("extract.weekend_limit", 10)
	v.SetDefault("extract.year_limit", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 300)
	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "boxoffice-crawler")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Cache.Root) == "" {
		return fmt.Errorf("cache.root must be set")
	}
	if err := validateBaseURL("sources.listing_base_url", c.Sources.ListingBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("sources.pro_base_url", c.Sources.ProBaseURL); err != nil {
		return err
	}
	switch c.Fetcher.Driver {
	case DriverColly, DriverResty, DriverHeadless, DriverAuto:
	default:
		return fmt.Errorf("fetcher.driver must be one of colly, resty, headless, auto; got %q", c.Fetcher.Driver)
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetcher.timeout_seconds must be > 0")
	}
	if c.Fetcher.RequestsPerSecond < 0 {
		return fmt.Errorf("fetcher.requests_per_second must be >= 0")
	}
	usesBrowser := c.Fetcher.Driver == DriverHeadless || c.Fetcher.Driver == DriverAuto
	if usesBrowser && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when the headless driver is selected")
	}
	if c.Extract.CastLimit <= 0 {
		return fmt.Errorf("extract.cast_limit must be > 0")
	}
	if c.Extract.WeekendLimit <= 0 || c.Extract.YearLimit <= 0 {
		return fmt.Errorf("extract.weekend_limit and extract.year_limit must be > 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Telemetry.TracingEnabled && c.Telemetry.OTLPEndpoint == "" {
		return fmt.Errorf("telemetry.otlp_endpoint must be set when tracing is enabled")
	}
	return nil
}

func validateBaseURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL; got %q", key, raw)
	}
	return nil
}

// FetchTimeout converts fetcher.timeout_seconds into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetcher.TimeoutSeconds) * time.Second
}

// RequestTimeout bounds one API-triggered run. Zero means unbounded.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
