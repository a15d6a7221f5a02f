package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "http://api:9090", "-p", "https://share", "-s", "50", "-t", "5",
				"-d", "", "-o", "out", "-l", "debug", "-L", "zap", "-m", "127.0.0.1:9091"},
			expected: &Config{
				ServerURL: "http://api:9090", PublicBaseURL: "https://share", PageSize: 50,
				RequestTimeout: 5 * time.Second, SessionDSN: "", DownloadDir: "out",
				LogLevel: "debug", LogBackend: "zap", LogFormat: "text", MetricsAddr: "127.0.0.1:9091",
			},
		},
		{
			name: "unrelated args ignored",
			args: []string{"cmd", "public", "tok123", "-c", "conf.json"},
			expected: &Config{
				ServerURL: "http://localhost:8080", PageSize: 20, RequestTimeout: 30 * time.Second,
				SessionDSN: "session.db", DownloadDir: "download", LogLevel: "info",
				LogBackend: "slog", LogFormat: "text",
			},
		},
		{name: "bad page size", args: []string{"cmd", "-s", "abc"}, wantErr: true},
		{name: "bad timeout", args: []string{"cmd", "-t", "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			cfg := &Config{}
			cfg.LoadDefaults()

			err := parseFlags(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
