//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/config"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/server"
)

const flowManifest = `
units:
  - id: home
    trigger: /
    eager: true
    script: |
      exports = { title: "Home" };
  - id: dashboard
    trigger: /dashboard
    preload: true
    script: |
      exports = { title: "Dashboard" };
  - id: about
    trigger: /about
    script: |
      exports = { title: "About" };
  - id: profile
    trigger: /profile
    script: |
      exports = { title: "Profile" };
    gates:
      - name: authenticated
        redirect: /login
`

func newFlowServer(t *testing.T) *server.Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "units.yaml")
	require.NoError(t, os.WriteFile(path, []byte(flowManifest), 0o644))

	cfg := config.Default()
	cfg.Units.ManifestPath = path
	cfg.RateLimit.Enabled = false

	srv, err := server.New(cfg, logging.NewNop())
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newFlowServer(t)

	t.Run("health reports registered units", func(t *testing.T) {
		code, body := doJSON(t, srv, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, float64(4), body["units"])
	})

	t.Run("eager unit is loaded at startup", func(t *testing.T) {
		code, body := doJSON(t, srv, http.MethodGet, "/state/", nil, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "home", body["unit"])
		assert.Equal(t, "loaded", body["state"])
	})

	t.Run("preload flag loads the unit in the background", func(t *testing.T) {
		require.Eventually(t, func() bool {
			_, body := doJSON(t, srv, http.MethodGet, "/state/dashboard", nil, nil)
			return body["state"] == "loaded"
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("navigation materializes a lazy unit", func(t *testing.T) {
		code, body := doJSON(t, srv, http.MethodGet, "/state/about", nil, nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "unloaded", body["state"])

		code, body = doJSON(t, srv, http.MethodPost, "/navigate/about", nil, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "loaded", body["status"])

		handle, ok := body["handle"].(map[string]any)
		require.True(t, ok)
		exports, ok := handle["exports"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "About", exports["title"])
	})

	t.Run("gated unit redirects anonymous then loads after login", func(t *testing.T) {
		code, body := doJSON(t, srv, http.MethodPost, "/navigate/profile", nil, nil)
		assert.Equal(t, http.StatusSeeOther, code)
		assert.Equal(t, "/login", body["redirect"])

		_, body = doJSON(t, srv, http.MethodGet, "/state/profile", nil, nil)
		assert.Equal(t, "unloaded", body["state"], "denied navigation must not load the unit")

		code, body = doJSON(t, srv, http.MethodPost, "/auth/login",
			map[string]any{"subject": "alice"}, nil)
		require.Equal(t, http.StatusOK, code)
		token, ok := body["token"].(string)
		require.True(t, ok)
		require.NotEmpty(t, token)

		auth := map[string]string{"Authorization": "Bearer " + token}
		code, body = doJSON(t, srv, http.MethodPost, "/navigate/profile", nil, auth)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "loaded", body["status"])

		code, _ = doJSON(t, srv, http.MethodPost, "/auth/logout",
			map[string]any{"token": token}, nil)
		assert.Equal(t, http.StatusOK, code)

		code, body = doJSON(t, srv, http.MethodPost, "/navigate/profile", nil, auth)
		assert.Equal(t, http.StatusSeeOther, code, "revoked token is anonymous again")
		assert.Equal(t, "/login", body["redirect"])

		_, body = doJSON(t, srv, http.MethodGet, "/state/profile", nil, nil)
		assert.Equal(t, "loaded", body["state"], "denial gates navigation, not the cached handle")
	})

	t.Run("unknown trigger answers 404", func(t *testing.T) {
		code, body := doJSON(t, srv, http.MethodPost, "/navigate/nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("stats aggregates registry and loader", func(t *testing.T) {
		code, body := doJSON(t, srv, http.MethodGet, "/stats", nil, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body, "registry")
		assert.Contains(t, body, "loader")

		fetchStats, ok := body["fetch"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "closed", fetchStats["breaker"])
	})
}

func TestConcurrentNavigationIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newFlowServer(t)

	var wg sync.WaitGroup
	codes := make([]int, 16)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/navigate/about", nil)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	_, body := doJSON(t, srv, http.MethodGet, "/state/about", nil, nil)
	assert.Equal(t, "loaded", body["state"])
}
