package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/resilience"
)

// gzip magic bytes
var gzipMagic = []byte{0x1f, 0x8b}

// Config defines fetcher behavior.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
}

// DefaultConfig returns production-ready fetcher configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		UserAgent:  "lazyunit/1.0",
	}
}

// Fetcher retrieves unit bundles over HTTP. Transient failures are
// retried at the transport layer; a dead bundle host trips the circuit
// breaker so preload sweeps fail fast instead of piling up.
type Fetcher struct {
	client  *resty.Client
	breaker *resilience.Breaker
	log     *logging.Logger
}

// New creates a bundle fetcher.
func New(cfg Config, log *logging.Logger) *Fetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	breaker := resilience.New("bundle-fetch", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("fetch circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Fetcher{
		client:  client,
		breaker: breaker,
		log:     log,
	}
}

// Source fetches the bundle at url, transparently decompressing
// gzip-encoded payloads.
func (f *Fetcher) Source(ctx context.Context, url string) ([]byte, error) {
	result, err := f.breaker.Execute(func() (interface{}, error) {
		resp, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
		}
		return resp.Body(), nil
	})
	if err != nil {
		return nil, err
	}

	body := result.([]byte)
	if bytes.HasPrefix(body, gzipMagic) {
		return decompress(body)
	}
	return body, nil
}

// Breaker exposes the fetch circuit breaker for observability.
func (f *Fetcher) Breaker() *resilience.Breaker {
	return f.breaker
}

func decompress(body []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decompress bundle: %w", err)
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress bundle: %w", err)
	}
	return plain, nil
}
