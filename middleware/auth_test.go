package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akinalp/rtctoken/handlers"
	"github.com/akinalp/rtctoken/models"
	"github.com/akinalp/rtctoken/pkg"
	"github.com/akinalp/rtctoken/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	valid map[string]string // token -> user id
	seen  []string
}

func (v *stubValidator) ValidateSessionToken(_ context.Context, raw string) (*models.SessionClaims, error) {
	v.seen = append(v.seen, raw)
	userID, ok := v.valid[raw]
	if !ok {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthenticated)
	}
	return &models.SessionClaims{UserID: userID}, nil
}

// echoUser writes the user id the gate attached.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"userId": handlers.UserIDFrom(r.Context())})
})

func serveWithHeader(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/token/rtc", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionGate_AttachesCaller(t *testing.T) {
	validator := &stubValidator{valid: map[string]string{"good-token": "user-1"}}
	gate := NewSessionGate(validator)

	rec := serveWithHeader(gate.Require(echoUser), "Bearer good-token")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.Data["userId"])
}

func TestSessionGate_Rejects(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		wantValidated bool
	}{
		{"missing header", "", false},
		{"wrong scheme", "Basic dXNlcjpwYXNz", false},
		{"empty bearer", "Bearer ", false},
		{"no token", "Bearer", false},
		{"unknown token", "Bearer forged", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &stubValidator{valid: map[string]string{"good-token": "user-1"}}
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

			rec := serveWithHeader(NewSessionGate(validator).Require(next), tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
			assert.Equal(t, tt.wantValidated, len(validator.seen) > 0)

			var resp pkg.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestSessionGate_SchemeIsCaseInsensitive(t *testing.T) {
	validator := &stubValidator{valid: map[string]string{"good-token": "user-1"}}

	rec := serveWithHeader(NewSessionGate(validator).Require(echoUser), "bearer good-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitByUser(t *testing.T) {
	limiter := ratelimit.New(2, time.Hour)
	defer limiter.Stop()

	validator := &stubValidator{valid: map[string]string{"a": "user-a", "b": "user-b"}}
	h := NewSessionGate(validator).Require(RateLimitByUser(limiter)(echoUser))

	assert.Equal(t, http.StatusOK, serveWithHeader(h, "Bearer a").Code)
	assert.Equal(t, http.StatusOK, serveWithHeader(h, "Bearer a").Code)

	limited := serveWithHeader(h, "Bearer a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serveWithHeader(h, "Bearer b").Code)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
