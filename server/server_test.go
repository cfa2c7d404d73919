package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeychilson/redirector/api"
	"github.com/joeychilson/redirector/engine"
	"github.com/joeychilson/redirector/history"
	"github.com/joeychilson/redirector/logger"
	"github.com/joeychilson/redirector/settings"
	"github.com/joeychilson/redirector/store"
)

func newTestServer(t *testing.T, cfg *Config) *Server {
	t.Helper()

	kv := store.NewMemory()
	settingsStore := settings.NewStore(kv)
	historyStore := history.NewStore(kv, 0)
	eng := engine.New(settingsStore, historyStore, nil, nil, logger.Noop())
	h := api.NewHandler(settingsStore, historyStore, eng, logger.Noop())
	return New(h, logger.Noop(), cfg)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := bytes.NewReader([]byte(`{"type":"GET_SETTINGS"}`))
	req = httptest.NewRequest(http.MethodPost, "/v1/message", body)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, &Config{
		RateLimit: RateLimitConfig{
			RequestLimit:   3,
			WindowDuration: time.Minute,
		},
	})

	var lastCode int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	require.Equal(t, http.StatusTooManyRequests, lastCode)
}
