package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/finflow/internal/common"
)

// Pagination strategies.
const (
	PaginationClient = "client"
	PaginationServer = "server"
)

// Subcategory count strategies.
const (
	CountModeBatch  = "batch"
	CountModeFanout = "fanout"
)

// Defaults.
const (
	DefaultBaseURL     = "http://localhost:8080/api"
	DefaultTimeout     = 30 * time.Second
	DefaultSessionPath = "$HOME/.local/share/finflow/session.db"
	DefaultPageSize    = 20
	DefaultConcurrency = 4
)

// Config holds the resolved application configuration.
type Config struct {
	API        APIConfig
	Session    SessionConfig
	Logging    LoggingConfig
	List       ListConfig
	Categories CategoriesConfig
}

// APIConfig configures the REST backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig configures durable session storage.
type SessionConfig struct {
	Path string
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string
	Format string
}

// ListConfig configures the transaction list views.
type ListConfig struct {
	Pagination string
	PageSize   int
}

// CategoriesConfig configures the category hierarchy manager.
type CategoriesConfig struct {
	CountMode   string
	Concurrency int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("session.path", DefaultSessionPath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("list.pagination", PaginationClient)
	v.SetDefault("list.page_size", DefaultPageSize)
	v.SetDefault("categories.count_mode", CountModeBatch)
	v.SetDefault("categories.concurrency", DefaultConcurrency)
}

// Load resolves the configuration from Viper (config file or FINFLOW_ env vars),
// then from the legacy API_BASE_URL environment variable, then from defaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			Path: ExpandPath(v.GetString("session.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		List: ListConfig{
			Pagination: strings.ToLower(v.GetString("list.pagination")),
			PageSize:   v.GetInt("list.page_size"),
		},
		Categories: CategoriesConfig{
			CountMode:   strings.ToLower(v.GetString("categories.count_mode")),
			Concurrency: v.GetInt("categories.concurrency"),
		},
	}

	if !v.IsSet("api.base_url") || v.GetString("api.base_url") == DefaultBaseURL {
		if env := os.Getenv("API_BASE_URL"); env != "" {
			cfg.API.BaseURL = env
		}
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q is not an http(s) URL", common.ErrInvalidConfig, c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout must not be negative", common.ErrInvalidConfig)
	}
	if c.Session.Path == "" {
		return fmt.Errorf("%w: session.path", common.ErrMissingConfig)
	}
	switch c.List.Pagination {
	case PaginationClient, PaginationServer:
	default:
		return fmt.Errorf("%w: list.pagination %q (want client or server)", common.ErrInvalidConfig, c.List.Pagination)
	}
	if c.List.PageSize <= 0 {
		return fmt.Errorf("%w: list.page_size must be positive", common.ErrInvalidConfig)
	}
	switch c.Categories.CountMode {
	case CountModeBatch, CountModeFanout:
	default:
		return fmt.Errorf("%w: categories.count_mode %q (want batch or fanout)", common.ErrInvalidConfig, c.Categories.CountMode)
	}
	if c.Categories.Concurrency <= 0 {
		c.Categories.Concurrency = DefaultConcurrency
	}
	return nil
}
