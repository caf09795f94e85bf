// Package config loads runtime configuration for the Jara CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .toml are read as TOML, anything else as JSON.
//  3. JARA_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string                 data directory (local database, lock files)
//	-assets string            base URL of the static host serving posters
//	-api string               base URL of the creator/payments API
//	-poster-max int           posters kept by one discovery run
//	-healthy int              cached pool size that skips rediscovery
//	-probe-concurrency int    extensions probed at once per index
//	-probe-timeout duration   timeout of one poster probe
//	-watch-interval duration  shared state polling interval
//	-hash string              sha256 | argon2id | checksum
//	-s3-bucket, -s3-prefix, -s3-region, -s3-endpoint
//	-log-level, -log-format
//
// # File schema
//
// Durations may be strings like "5s" or integer nanoseconds:
//
//	{
//	  "data_dir": "/home/me/.jara",
//	  "assets_base_url": "http://localhost:8080",
//	  "probe_timeout": "5s",
//	  "password_hash": "argon2id"
//	}
package config
