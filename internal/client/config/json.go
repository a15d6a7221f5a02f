package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/valetkey/internal/flagx"
	"github.com/dmitrijs2005/valetkey/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// distinguish "absent" from zero so a partial file keeps the defaults.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	PublicBaseURL  *string         `json:"public_base_url"`
	PageSize       *int            `json:"page_size"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	SessionDSN     *string         `json:"session_dsn"`
	DownloadDir    *string         `json:"download_dir"`
	LogLevel       *string         `json:"log_level"`
	LogBackend     *string         `json:"log_backend"`
	LogFormat      *string         `json:"log_format"`
	MetricsAddr    *string         `json:"metrics_addr"`
}

// parseJson overlays Config with values loaded from a JSON file found via
// -c/-config or the VALETKEY_CONFIG environment variable. No path means no
// changes.
func parseJson(cfg *Config) error {
	path := flagx.ConfigPath(EnvConfigPath)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.PublicBaseURL, jc.PublicBaseURL)
	if jc.PageSize != nil {
		cfg.PageSize = *jc.PageSize
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	setString(&cfg.SessionDSN, jc.SessionDSN)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
