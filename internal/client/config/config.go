package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvConfigPath names the environment variable holding the JSON config path.
const EnvConfigPath = "VALETKEY_CONFIG"

// Config holds runtime settings for the valetkey CLI.
type Config struct {
	// ServerURL is the base URL of the valetkey API (scheme://host[:port]).
	ServerURL string `validate:"required,url"`
	// PublicBaseURL is prepended to "/public/<token>" when a share link is
	// shown to the user. Empty means ServerURL.
	PublicBaseURL string `validate:"omitempty,url"`
	PageSize      int    `validate:"min=1,max=1000"`
	// RequestTimeout bounds every API call, including direct transfers.
	RequestTimeout time.Duration `validate:"min=0"`
	// SessionDSN is the SQLite file used to persist session cookies.
	// Empty keeps the session in memory only.
	SessionDSN  string
	DownloadDir string `validate:"required"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogBackend  string `validate:"oneof=slog zap"`
	LogFormat   string `validate:"oneof=text console json"`
	// MetricsAddr enables a Prometheus /metrics listener when set.
	MetricsAddr string `validate:"omitempty,hostname_port"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.PublicBaseURL = ""
	c.PageSize = 20
	c.RequestTimeout = 30 * time.Second
	c.SessionDSN = "session.db"
	c.DownloadDir = "download"
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.LogFormat = "text"
	c.MetricsAddr = ""
}

// PublicBase is the origin share links are built on.
func (c *Config) PublicBase() string {
	base := c.PublicBaseURL
	if base == "" {
		base = c.ServerURL
	}
	return strings.TrimRight(base, "/")
}

// PublicURL returns the share link shown for token.
func (c *Config) PublicURL(token string) string {
	return c.PublicBase() + "/public/" + token
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
