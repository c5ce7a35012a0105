package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/rtctoken/config"
	"github.com/akinalp/rtctoken/database"
)

func newTestRouter(t *testing.T, opts ...func(*config.Config)) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 0, CORSOrigins: []string{"http://app.test"}},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")},
		JWT:      config.JWTConfig{Secret: "routes-test-secret", Expiry: time.Hour},
		RTC:      config.RTCConfig{AppID: "APIappid", AppCertificate: "app-certificate-with-enough-length", ExpireSeconds: 3600},
		Chat:     config.ChatConfig{AppKey: "org#app", AppSecret: "secret", APIHost: "http://127.0.0.1:1", Timeout: time.Second},
		RateLimit: config.RateLimitConfig{
			LoginAttempts: 100, LoginWindow: time.Minute,
			TokenRequests: 100, TokenWindow: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := database.New(cfg.Database.Path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := initRepositories(db, nil)
	limiters := initRateLimiters(cfg)
	t.Cleanup(limiters.Stop)
	svcs := initServices(cfg, repos, logger)
	h := initHandlers(svcs, limiters, db)

	return initRoutes(cfg, h, svcs, limiters, logger)
}

func TestRoutes_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		bytes.NewBufferString(`{"name":"Alice","email":"alice@example.com","password":"hunter2"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)

	req := httptest.NewRequest(http.MethodPost, "/api/token/rtm", bytes.NewBufferString(`{"account":"alice"}`))
	req.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/token/rtm", bytes.NewBufferString(`{"account":"alice"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/token/rtc", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func loginFrom(router http.Handler, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"email":"nobody@example.com","password":"wrong"}`))
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRoutes_ForwardedForIgnoredByDefault(t *testing.T) {
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.RateLimit.LoginAttempts = 1
	})

	assert.Equal(t, http.StatusBadRequest, loginFrom(router, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(router, "203.0.113.2"))
}

func TestRoutes_ForwardedForHonouredBehindTrustedProxy(t *testing.T) {
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.RateLimit.LoginAttempts = 1
		cfg.Server.TrustProxy = true
	})

	assert.Equal(t, http.StatusBadRequest, loginFrom(router, "203.0.113.1"))
	assert.Equal(t, http.StatusBadRequest, loginFrom(router, "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(router, "203.0.113.1"))
}
