package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxDocumentBytes is the default size cap for remote documents.
const maxDocumentBytes = 32 << 20

// ErrDocumentTooLarge is returned when a remote document exceeds the
// configured size cap. Oversized documents are rejected, never truncated.
var ErrDocumentTooLarge = errors.New("ingestion: document exceeds size limit")

// S3Config holds settings for fetching documents from S3 or an
// S3-compatible object store.
type S3Config struct {
	// Endpoint overrides the service URL (e.g. a MinIO or RustFS address).
	Endpoint string
	// Region is the bucket region (default: us-east-1).
	Region string
	// AccessKeyID and SecretAccessKey select static credentials. When empty
	// the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	// UsePathStyle forces path-style addressing, required by most
	// S3-compatible servers.
	UsePathStyle bool
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// S3 is used for s3:// locations.
	S3 S3Config
	// HTTPTimeout bounds http(s) fetches (default: 30s).
	HTTPTimeout time.Duration
	// UserAgent is sent with http(s) fetches.
	UserAgent string
	// MaxBytes caps remote document size (default: 32 MiB).
	MaxBytes int64
}

// s3Getter is the part of *s3.Client used by Loader.
type s3Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads a source document from a local path, an http(s) URL or an
// s3://bucket/key location.
type Loader struct {
	// cfg holds the resolved loader configuration.
	cfg LoaderConfig
	// httpClient fetches http(s) documents.
	httpClient *http.Client
	// s3 is created on first use unless injected.
	s3 s3Getter
}

// NewLoader constructs a Loader. No network connection is made until Load.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "supportrag/1.0 (document ingestion)"
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = maxDocumentBytes
	}
	return &Loader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// Load returns the document text at location.
func (l *Loader) Load(ctx context.Context, location string) (string, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		return l.loadS3(ctx, location)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return l.loadHTTP(ctx, location)
	default:
		data, err := os.ReadFile(location)
		if err != nil {
			return "", fmt.Errorf("ingestion: read %s: %w", location, err)
		}
		return string(data), nil
	}
}

// loadHTTP retrieves the raw text content of a URL.
func (l *Loader) loadHTTP(ctx context.Context, location string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", fmt.Errorf("ingestion: creating request: %w", err)
	}
	req.Header.Set("User-Agent", l.cfg.UserAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ingestion: http get %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ingestion: unexpected status %d for %s", resp.StatusCode, location)
	}

	body, err := l.readLimited(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ingestion: reading %s: %w", location, err)
	}
	return body, nil
}

// loadS3 fetches s3://bucket/key.
func (l *Loader) loadS3(ctx context.Context, location string) (string, error) {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return "", err
	}

	if l.s3 == nil {
		client, err := newS3Client(ctx, l.cfg.S3)
		if err != nil {
			return "", err
		}
		l.s3 = client
	}

	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("ingestion: get %s: %w", location, err)
	}
	defer out.Body.Close()

	body, err := l.readLimited(out.Body)
	if err != nil {
		return "", fmt.Errorf("ingestion: reading %s: %w", location, err)
	}
	return body, nil
}

// readLimited reads r to EOF, failing with ErrDocumentTooLarge once more than
// MaxBytes have been seen.
func (l *Loader) readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.cfg.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > l.cfg.MaxBytes {
		return "", fmt.Errorf("%w (%d bytes)", ErrDocumentTooLarge, l.cfg.MaxBytes)
	}
	return string(data), nil
}

// parseS3URI splits s3://bucket/key/with/slashes into bucket and key.
func parseS3URI(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("ingestion: invalid s3 location %q: %w", location, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("ingestion: s3 location must be s3://bucket/key, got %q", location)
	}
	return u.Host, key, nil
}

// newS3Client builds an S3 client honouring custom endpoints for
// S3-compatible stores.
func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ingestion: failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}
