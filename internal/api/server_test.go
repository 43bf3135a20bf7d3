package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/auth"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/backend"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/override"
	"github.com/mrpraj7488/VidGro-Admin-sub001/pkg/config"
)

// memBackend is an in-memory backend.Client for request-level tests.
type memBackend struct {
	entries map[string]models.ConfigEntry
	down    bool
}

func newMemBackend() *memBackend {
	return &memBackend{entries: make(map[string]models.ConfigEntry)}
}

func (m *memBackend) FetchPublicConfig(ctx context.Context, env models.Environment) ([]models.ConfigEntry, error) {
	if m.down {
		return nil, errors.New("backend down")
	}
	var out []models.ConfigEntry
	for _, e := range m.entries {
		if e.IsPublic && e.Environment == env {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memBackend) FetchAllConfig(ctx context.Context, env models.Environment) ([]models.ConfigEntry, error) {
	if m.down {
		return nil, errors.New("backend down")
	}
	var out []models.ConfigEntry
	for _, e := range m.entries {
		if e.Environment == env {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memBackend) UpsertConfig(ctx context.Context, p backend.UpsertParams) (*models.ConfigEntry, error) {
	if m.down {
		return nil, errors.New("backend down")
	}
	e := models.ConfigEntry{
		Key:         p.Key,
		Value:       p.Value,
		IsPublic:    p.IsPublic,
		Category:    p.Category,
		Environment: p.Environment,
		UpdatedBy:   p.Audit.AdminEmail,
		UpdatedAt:   time.Now().UTC(),
	}
	m.entries[p.Key+":"+string(p.Environment)] = e
	return &e, nil
}

func (m *memBackend) DeleteConfig(ctx context.Context, key string, env models.Environment, audit models.AuditContext) error {
	if m.down {
		return errors.New("backend down")
	}
	id := key + ":" + string(env)
	if _, ok := m.entries[id]; !ok {
		return backend.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memBackend) FetchAuditLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLogEntry, error) {
	return []models.AuditLogEntry{}, nil
}

func (m *memBackend) Ping(ctx context.Context) error { return nil }

func (m *memBackend) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Mode:     "production",
		CacheTTL: 5 * time.Minute,
		Supabase: config.SupabaseConfig{
			URL:     "https://project.supabase.co",
			AnonKey: "anon-key",
		},
		App: config.AppConfig{
			MinVersion:    "1.0.0",
			LatestVersion: "2.0.0",
		},
		RateLimit: config.RateLimitConfig{
			Window:      time.Minute,
			MaxRequests: 100,
		},
		Admin: config.AdminConfig{
			AllowedEmails: []string{"admin@vidgro.app"},
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, bc backend.Client) *Server {
	t.Helper()
	ov := override.NewStore(filepath.Join(t.TempDir(), "overrides"))
	return NewServer(cfg, bc, ov, nil)
}

func doRequest(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func clientRequest(apiKey string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	req.Header.Set("x-app-version", "1.2.3")
	return req
}

func TestConfigRejectsMissingAPIKey(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	rr := doRequest(t, s, clientRequest(""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid API key", decodeBody(t, rr)["error"])
}

func TestConfigRejectsPlaceholderAPIKey(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	rr := doRequest(t, s, clientRequest("your-api-key"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestConfigRejectsMalformedAppVersion(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	req := clientRequest("real-key")
	req.Header.Set("x-app-version", "2.0")
	rr := doRequest(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "1.0.0")
}

func TestConfigRejectsUnknownEnvironment(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	req := clientRequest("real-key")
	req.Header.Set("x-environment", "qa")
	rr := doRequest(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDevModeBypassesCredentialChecks(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = "development"
	s := newTestServer(t, cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/config?env=sandbox", nil)
	rr := doRequest(t, s, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestConfigServedFreshThenCached(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	rr := doRequest(t, s, clientRequest("real-key"))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, false, body["cached"])
	data := body["data"].(map[string]any)
	meta := data["metadata"].(map[string]any)
	assert.Equal(t, models.SourceProcess, meta["source"])
	assert.Len(t, meta["checksum"], 16)

	rr = doRequest(t, s, clientRequest("real-key"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["cached"])
}

func TestConfigRateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.MaxRequests = 3
	s := newTestServer(t, cfg, nil)

	for i := 0; i < 3; i++ {
		rr := doRequest(t, s, clientRequest("real-key"))
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
	}

	rr := doRequest(t, s, clientRequest("real-key"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	body := decodeBody(t, rr)
	assert.Equal(t, "Too many requests", body["error"])
	assert.Equal(t, float64(60), body["retryAfter"])
}

func TestConfigUnavailableWithoutSources(t *testing.T) {
	cfg := testConfig(t)
	cfg.Supabase = config.SupabaseConfig{}
	s := newTestServer(t, cfg, nil)

	rr := doRequest(t, s, clientRequest("real-key"))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "Service temporarily unavailable", decodeBody(t, rr)["error"])
}

func TestAdminRequiresKnownEmail(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	req := httptest.NewRequest(http.MethodGet, "/admin/config", nil)
	rr := doRequest(t, s, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Admin access denied", decodeBody(t, rr)["error"])

	req = httptest.NewRequest(http.MethodGet, "/admin/config", nil)
	req.Header.Set("x-admin-email", "intruder@example.com")
	rr = doRequest(t, s, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func adminRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("x-admin-email", "admin@vidgro.app")
	return req
}

func TestAdminUpsertInvalidatesClientCache(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	rr := doRequest(t, s, clientRequest("real-key"))
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doRequest(t, s, clientRequest("real-key"))
	require.Equal(t, true, decodeBody(t, rr)["cached"])

	payload, _ := json.Marshal(map[string]any{
		"key":         "FEATURE_VIP_ENABLED",
		"value":       "true",
		"isPublic":    true,
		"environment": "production",
		"reason":      "enable vip tier",
	})
	rr = doRequest(t, s, adminRequest(http.MethodPost, "/admin/config", payload))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "FEATURE_VIP_ENABLED", decodeBody(t, rr)["key"])

	rr = doRequest(t, s, clientRequest("real-key"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decodeBody(t, rr)["cached"], "write must invalidate the cached bundle")
}

func TestAdminUpsertValidation(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	payload, _ := json.Marshal(map[string]any{
		"key":         "PUBLIC_SECRET_KEY",
		"value":       "v",
		"isPublic":    true,
		"environment": "production",
	})
	rr := doRequest(t, s, adminRequest(http.MethodPost, "/admin/config", payload))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminDeleteCriticalKeyForbidden(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	rr := doRequest(t, s, adminRequest(http.MethodDelete, "/admin/config/SUPABASE_SERVICE_ROLE_KEY", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Critical system keys cannot be deleted", body["error"])
	assert.Equal(t, "Consider rotating the key instead", body["suggestion"])
}

func TestAdminDeleteUnknownKey(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	rr := doRequest(t, s, adminRequest(http.MethodDelete, "/admin/config/NO_SUCH_KEY", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminDeleteRoundTrip(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	payload, _ := json.Marshal(map[string]any{
		"key":         "FEATURE_X",
		"value":       "true",
		"environment": "staging",
	})
	rr := doRequest(t, s, adminRequest(http.MethodPost, "/admin/config", payload))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, s, adminRequest(http.MethodDelete, "/admin/config/FEATURE_X?env=staging", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["deleted"])
}

func TestAdminListCountsVisibility(t *testing.T) {
	bc := newMemBackend()
	s := newTestServer(t, testConfig(t), bc)

	for _, e := range []struct {
		key    string
		public bool
	}{
		{"A", true}, {"B", false}, {"C", true},
	} {
		payload, _ := json.Marshal(map[string]any{
			"key":         e.key,
			"value":       "v",
			"isPublic":    e.public,
			"environment": "production",
		})
		rr := doRequest(t, s, adminRequest(http.MethodPost, "/admin/config", payload))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := doRequest(t, s, adminRequest(http.MethodGet, "/admin/config", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(2), body["publicCount"])
	assert.Equal(t, float64(1), body["privateCount"])
}

func TestAdminAuditLogs(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	rr := doRequest(t, s, adminRequest(http.MethodGet, "/admin/audit-logs?days=3&limit=10", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(0), body["count"])
}

func TestAdminClearCache(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	rr := doRequest(t, s, clientRequest("real-key"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, s, adminRequest(http.MethodPost, "/admin/clear-cache", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), decodeBody(t, rr)["cleared"])

	rr = doRequest(t, s, clientRequest("real-key"))
	assert.Equal(t, false, decodeBody(t, rr)["cached"])
}

func TestAdminEnvSyncAppliesOverrides(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	payload, _ := json.Marshal(map[string]any{
		"supabaseUrl":     "https://synced.supabase.co",
		"supabaseAnonKey": "synced-key",
	})
	rr := doRequest(t, s, adminRequest(http.MethodPost, "/admin/env-sync", payload))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["synced"])

	rr = doRequest(t, s, clientRequest("real-key"))
	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]any)
	supabase := data["supabase"].(map[string]any)
	assert.Equal(t, "https://synced.supabase.co", supabase["url"])
	meta := data["metadata"].(map[string]any)
	assert.Equal(t, models.SourceOverride, meta["source"])
}

func TestAdminEnvSyncClearsAdHocEnvironmentEntries(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = "development"
	s := newTestServer(t, cfg, newMemBackend())

	// Development mode admits arbitrary environment labels into the cache.
	req := httptest.NewRequest(http.MethodGet, "/config?env=sandbox", nil)
	rr := doRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)
	req = httptest.NewRequest(http.MethodGet, "/config?env=sandbox", nil)
	rr = doRequest(t, s, req)
	require.Equal(t, true, decodeBody(t, rr)["cached"])

	payload, _ := json.Marshal(map[string]any{
		"supabaseUrl":     "https://synced.supabase.co",
		"supabaseAnonKey": "synced-key",
	})
	rr = doRequest(t, s, adminRequest(http.MethodPost, "/admin/env-sync", payload))
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/config?env=sandbox", nil)
	rr = doRequest(t, s, req)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, false, body["cached"], "env-sync must drop every cached bundle")
	data := body["data"].(map[string]any)
	assert.Equal(t, "https://synced.supabase.co", data["supabase"].(map[string]any)["url"])
}

func TestAdminEnvSyncRejectsEmptyBody(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	rr := doRequest(t, s, adminRequest(http.MethodPost, "/admin/env-sync", []byte(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminRotateKeysScheduled(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	payload, _ := json.Marshal(map[string]any{
		"keys":   []string{"JWT_SECRET"},
		"reason": "quarterly rotation",
	})
	rr := doRequest(t, s, adminRequest(http.MethodPost, "/admin/rotate-keys", payload))
	require.Equal(t, http.StatusAccepted, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "scheduled", body["status"])
	assert.NotEmpty(t, body["rotationId"])
}

func TestAdminBearerTokenAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.Admin.JWTSecret = "test-secret-at-least-32-characters-long"
	cfg.Admin.AllowedEmails = nil
	s := newTestServer(t, cfg, newMemBackend())

	token := mustToken(t, cfg.Admin.JWTSecret, "admin@vidgro.app", "admin")
	req := httptest.NewRequest(http.MethodGet, "/admin/config", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := doRequest(t, s, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	viewer := mustToken(t, cfg.Admin.JWTSecret, "viewer@vidgro.app", "viewer")
	req = httptest.NewRequest(http.MethodGet, "/admin/config", nil)
	req.Header.Set("Authorization", "Bearer "+viewer)
	rr = doRequest(t, s, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func mustToken(t *testing.T, secret, email, role string) string {
	t.Helper()
	token, err := auth.GenerateAdminToken([]byte(secret), email, role, time.Hour)
	require.NoError(t, err)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig(t), newMemBackend())

	rr := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "healthy", body["status"])
}
