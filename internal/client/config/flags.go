package config

import (
	"flag"

	"github.com/dmitrijs2005/jara/internal/flagx"
)

var knownFlags = []string{
	"-d", "-assets", "-api",
	"-poster-max", "-healthy", "-probe-concurrency", "-probe-timeout", "-watch-interval",
	"-hash",
	"-s3-bucket", "-s3-prefix", "-s3-region", "-s3-endpoint",
	"-log-level", "-log-format",
}

// parseFlags populates Config fields from command-line flags. args is
// filtered with flagx.FilterArgs first, so flags owned by other loaders do
// not break parsing. A malformed value panics.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("jara", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "directory holding the local database")
	fs.StringVar(&cfg.AssetsBaseURL, "assets", cfg.AssetsBaseURL, "base URL of the static host serving posters")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "base URL of the creator/payments API")
	fs.IntVar(&cfg.PosterMax, "poster-max", cfg.PosterMax, "maximum posters kept by one discovery run")
	fs.IntVar(&cfg.HealthyThreshold, "healthy", cfg.HealthyThreshold, "cached pool size below which posters are rediscovered")
	fs.IntVar(&cfg.ProbeConcurrency, "probe-concurrency", cfg.ProbeConcurrency, "extensions probed at once per poster index")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "timeout of one poster probe")
	fs.DurationVar(&cfg.WatchInterval, "watch-interval", cfg.WatchInterval, "how often shared state is polled for changes")
	fs.StringVar(&cfg.PasswordHash, "hash", cfg.PasswordHash, "password hash scheme: sha256, argon2id or checksum")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "probe posters in this S3 bucket instead of over HTTP")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", cfg.S3Prefix, "key prefix of the static site in the bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "custom S3 endpoint (MinIO and the like)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}
}
