package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/jara/internal/flagx"
)

// Config holds runtime settings for the Jara CLI.
//
// Units: ProbeTimeout and WatchInterval are time.Duration values.
type Config struct {
	DataDir       string `env:"JARA_DATA_DIR"`
	AssetsBaseURL string `env:"JARA_ASSETS_BASE_URL"`
	APIBaseURL    string `env:"JARA_API_BASE_URL"`

	PosterMax        int           `env:"JARA_POSTER_MAX"`
	HealthyThreshold int           `env:"JARA_HEALTHY_THRESHOLD"`
	ProbeConcurrency int           `env:"JARA_PROBE_CONCURRENCY"`
	ProbeTimeout     time.Duration `env:"JARA_PROBE_TIMEOUT"`
	WatchInterval    time.Duration `env:"JARA_WATCH_INTERVAL"`

	// PasswordHash selects the local hashing scheme: sha256, argon2id or
	// checksum.
	PasswordHash string `env:"JARA_PASSWORD_HASH"`

	// S3Bucket switches poster probing from HTTP to S3 HeadObject.
	S3Bucket       string `env:"JARA_S3_BUCKET"`
	S3Prefix       string `env:"JARA_S3_PREFIX"`
	S3Region       string `env:"JARA_S3_REGION"`
	S3BaseEndpoint string `env:"JARA_S3_BASE_ENDPOINT"`
	S3AccessKey    string `env:"JARA_S3_ACCESS_KEY"`
	S3SecretKey    string `env:"JARA_S3_SECRET_KEY"`

	LogLevel  string `env:"JARA_LOG_LEVEL"`
	LogFormat string `env:"JARA_LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir()
	c.AssetsBaseURL = "http://localhost:8080"
	c.APIBaseURL = "http://localhost:3001/api"
	c.PosterMax = 24
	c.HealthyThreshold = 8
	c.ProbeConcurrency = 1
	c.ProbeTimeout = 5 * time.Second
	c.WatchInterval = 500 * time.Millisecond
	c.PasswordHash = "sha256"
	c.S3Region = "us-east-1"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jara"
	}
	return filepath.Join(home, ".jara")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the config file, the environment and command-line flags. Later
// sources take precedence. It panics on malformed input.
func LoadConfig() *Config {
	return load(flagx.Args())
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
