package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/everstacklabs/modelpick/internal/catalog"
)

// Config holds all configuration for modelpick.
type Config struct {
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Selection  SelectionConfig  `mapstructure:"selection"`
	LogLevel   string           `mapstructure:"log_level"`
	LogFormat  string           `mapstructure:"log_format"`
	LogFile    string           `mapstructure:"log_file"`
	LogMaxSize int              `mapstructure:"log_max_size_mb"`
	LogMaxAge  int              `mapstructure:"log_max_age_days"`
}

// OpenRouterConfig holds OpenRouter API settings.
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
}

// CacheConfig holds catalog cache settings.
type CacheConfig struct {
	MaxAge time.Duration `mapstructure:"max_age"` // 0 = never expires
}

// SelectionConfig holds defaults for the select command's flags.
type SelectionConfig struct {
	MaxCost           string   `mapstructure:"max_cost"` // decimal string, "0" = no limit
	MinContext        int      `mapstructure:"min_context"`
	Features          []string `mapstructure:"features"`
	InputModalities   []string `mapstructure:"input_modalities"`
	OutputModalities  []string `mapstructure:"output_modalities"`
	PreferUnmoderated bool     `mapstructure:"prefer_unmoderated"`
	ExcludeModels     []string `mapstructure:"exclude_models"`
	Limit             int      `mapstructure:"limit"`
	Output            string   `mapstructure:"output"`
}

// Load reads configuration from .env, file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Defaults
	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("cache.max_age", "0")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_age_days", 7)
	v.SetDefault("selection.max_cost", "0")
	v.SetDefault("selection.min_context", 8000)
	v.SetDefault("selection.features", []string{})
	v.SetDefault("selection.input_modalities", []string{"text"})
	v.SetDefault("selection.output_modalities", []string{"text"})
	v.SetDefault("selection.prefer_unmoderated", false)
	v.SetDefault("selection.exclude_models", []string{"openrouter/auto"})
	v.SetDefault("selection.limit", 0)
	v.SetDefault("selection.output", "json")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/modelpick")
	}

	// Environment variables
	v.SetEnvPrefix("MODELPICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars
	_ = v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY", "MODELPICK_OPENROUTER_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	switch {
	case c.HTTP.Timeout <= 0:
		return &catalog.ConfigError{Field: "http.timeout", Msg: fmt.Sprintf("must be positive, got %s", c.HTTP.Timeout)}
	case c.HTTP.RateLimit < 0:
		return &catalog.ConfigError{Field: "http.rate_limit", Msg: fmt.Sprintf("must not be negative, got %g", c.HTTP.RateLimit)}
	case c.Cache.MaxAge < 0:
		return &catalog.ConfigError{Field: "cache.max_age", Msg: fmt.Sprintf("must not be negative, got %s", c.Cache.MaxAge)}
	case c.Selection.MinContext < 0:
		return &catalog.ConfigError{Field: "selection.min_context", Msg: fmt.Sprintf("must not be negative, got %d", c.Selection.MinContext)}
	}
	return nil
}

// loadDotenv applies a .env file over the process environment, if present.
func loadDotenv(path string) error {
	err := godotenv.Overload(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}
