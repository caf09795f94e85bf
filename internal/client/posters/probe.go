package posters

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/netx"
)

// Prober checks whether the image at path can be loaded. Any non-nil
// error is a miss and wraps common.ErrProbeFailure.
type Prober interface {
	Probe(ctx context.Context, path string) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, path string) error

func (f ProberFunc) Probe(ctx context.Context, path string) error { return f(ctx, path) }

// DefaultProbeTimeout bounds a single probe.
const DefaultProbeTimeout = 5 * time.Second

// HTTPProber fetches BaseURL+path and accepts image responses.
type HTTPProber struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

func NewHTTPProber(client *http.Client, baseURL string, timeout time.Duration) *HTTPProber {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HTTPProber{client: client, baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (p *HTTPProber) Probe(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := netx.ProbeImage(ctx, p.client, p.baseURL+path); err != nil {
		return fmt.Errorf("%w: %v", common.ErrProbeFailure, err)
	}
	return nil
}

// HeadObjectAPI is the part of the S3 client the prober needs.
type HeadObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// S3Options locate the bucket behind a static host.
type S3Options struct {
	Region       string
	Bucket       string
	Prefix       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Prober checks candidates with HeadObject on Prefix+path.
type S3Prober struct {
	api     HeadObjectAPI
	bucket  string
	prefix  string
	timeout time.Duration
}

// NewS3Prober builds an S3 client from opts. Static credentials are used
// when AccessKey is set, the default AWS chain otherwise.
func NewS3Prober(ctx context.Context, opts S3Options) (*S3Prober, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3ProberWithAPI(client, opts.Bucket, opts.Prefix), nil
}

func NewS3ProberWithAPI(api HeadObjectAPI, bucket, prefix string) *S3Prober {
	return &S3Prober{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/"), timeout: DefaultProbeTimeout}
}

// Key maps a candidate path to its object key.
func (p *S3Prober) Key(path string) string {
	key := strings.TrimPrefix(path, "/")
	if p.prefix != "" {
		key = p.prefix + "/" + key
	}
	return key
}

func (p *S3Prober) Probe(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.Key(path)),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrProbeFailure, err)
	}
	if ct := aws.ToString(out.ContentType); ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: %s is %s", common.ErrProbeFailure, path, ct)
	}
	return nil
}
