package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":3000", c.Addr)
	assert.Equal(t, "dist/spa", c.StaticDir)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-static", "/srv/spa", "--log-level", "debug", "-log-format", "text", "-shutdown-timeout", "3s"},
			expected: &Config{
				Addr:            "127.0.0.1:9090",
				StaticDir:       "/srv/spa",
				LogLevel:        "debug",
				LogFormat:       "text",
				ShutdownTimeout: 3 * time.Second,
			},
		},
		{
			name:        "bad duration",
			args:        []string{"-shutdown-timeout", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseEnv_Port(t *testing.T) {
	t.Setenv("PORT", "8081")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	assert.Equal(t, ":8081", cfg.Addr)

	t.Setenv("JARA_SERVER_ADDR", "127.0.0.1:7000")
	parseEnv(cfg)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
}

func TestLoad_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte("static_dir = \"/from/file\"\nshutdown_timeout = \"1m\"\naddr = \":1\"\n"), 0o600))

	cfg := load([]string{"-c", path, "-a", ":2"})

	assert.Equal(t, "/from/file", cfg.StaticDir)
	assert.Equal(t, time.Minute, cfg.ShutdownTimeout)
	assert.Equal(t, ":2", cfg.Addr)
}
