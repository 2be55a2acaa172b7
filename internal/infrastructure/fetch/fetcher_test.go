package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/resilience"
)

func testConfig() Config {
	return Config{
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		UserAgent:  "lazyunit-test",
	}
}

func TestSourcePlainBundle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lazyunit-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("exports = { title: 'Home' };"))
	}))
	defer srv.Close()

	f := New(testConfig(), logging.NewNop())
	src, err := f.Source(context.Background(), srv.URL+"/home.js")
	require.NoError(t, err)
	assert.Equal(t, "exports = { title: 'Home' };", string(src))
}

func TestSourceGzipBundle(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("exports = { compressed: true };"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Raw gzip payload, no Content-Encoding negotiation
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := New(testConfig(), logging.NewNop())
	src, err := f.Source(context.Background(), srv.URL+"/big.js")
	require.NoError(t, err)
	assert.Equal(t, "exports = { compressed: true };", string(src))
}

func TestSourceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(testConfig(), logging.NewNop())
	_, err := f.Source(context.Background(), srv.URL+"/missing.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestSourceBreakerTripsOnDeadHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(testConfig(), logging.NewNop())
	for i := 0; i < 5; i++ {
		_, err := f.Source(context.Background(), srv.URL+"/broken.js")
		require.Error(t, err)
	}

	_, err := f.Source(context.Background(), srv.URL+"/broken.js")
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, resilience.StateOpen, f.Breaker().State())
}
