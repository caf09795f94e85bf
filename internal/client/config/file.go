package config

import (
	"github.com/dmitrijs2005/jara/internal/flagx"
	"github.com/dmitrijs2005/jara/internal/timex"
)

// fileConfig is a DTO for the JSON or TOML config file. Absent keys stay
// nil and leave the current value alone.
type fileConfig struct {
	DataDir       *string `json:"data_dir" toml:"data_dir"`
	AssetsBaseURL *string `json:"assets_base_url" toml:"assets_base_url"`
	APIBaseURL    *string `json:"api_base_url" toml:"api_base_url"`

	PosterMax        *int            `json:"poster_max" toml:"poster_max"`
	HealthyThreshold *int            `json:"healthy_threshold" toml:"healthy_threshold"`
	ProbeConcurrency *int            `json:"probe_concurrency" toml:"probe_concurrency"`
	ProbeTimeout     *timex.Duration `json:"probe_timeout" toml:"probe_timeout"`
	WatchInterval    *timex.Duration `json:"watch_interval" toml:"watch_interval"`

	PasswordHash *string `json:"password_hash" toml:"password_hash"`

	S3Bucket       *string `json:"s3_bucket" toml:"s3_bucket"`
	S3Prefix       *string `json:"s3_prefix" toml:"s3_prefix"`
	S3Region       *string `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
	S3AccessKey    *string `json:"s3_access_key" toml:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key" toml:"s3_secret_key"`

	LogLevel  *string `json:"log_level" toml:"log_level"`
	LogFormat *string `json:"log_format" toml:"log_format"`
}

// parseFile overlays cfg with the file named by -c/-config in args.
// Without the flag nothing happens. Read or decode errors panic.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	var fc fileConfig
	if err := flagx.LoadFile(path, &fc); err != nil {
		panic(err)
	}

	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.AssetsBaseURL, fc.AssetsBaseURL)
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setInt(&cfg.PosterMax, fc.PosterMax)
	setInt(&cfg.HealthyThreshold, fc.HealthyThreshold)
	setInt(&cfg.ProbeConcurrency, fc.ProbeConcurrency)
	if fc.ProbeTimeout != nil {
		cfg.ProbeTimeout = fc.ProbeTimeout.Duration
	}
	if fc.WatchInterval != nil {
		cfg.WatchInterval = fc.WatchInterval.Duration
	}
	setString(&cfg.PasswordHash, fc.PasswordHash)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Prefix, fc.S3Prefix)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
