// Package handlers turns HTTP requests into service calls.
//
// A handler stays thin:
//  1. decode the request body (JSON → struct)
//  2. call the service
//  3. write the result with the standard envelope
//
// A handler never holds business logic and never touches the database.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akinalp/rtctoken/models"
	"github.com/akinalp/rtctoken/pkg"
	"github.com/akinalp/rtctoken/pkg/ratelimit"
	"github.com/akinalp/rtctoken/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// AuthHandler serves the credential endpoints.
type AuthHandler struct {
	authService services.AuthService
	limiter     *ratelimit.Limiter
}

// NewAuthHandler is the constructor. limiter guards register and login per
// client IP; nil disables rate limiting.
func NewAuthHandler(authService services.AuthService, limiter *ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		limiter:     limiter,
	}
}

// Register godoc
// POST /api/auth/register
// Body: { "name": "...", "email": "...", "password": "..." }
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}

	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, result)
}

// Login godoc
// POST /api/auth/login
// Body: { "email": "...", "password": "..." }
//
// Every attempt counts against the caller's IP; a successful login clears
// the counter so a legitimate user is never locked out afterwards.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}

	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if h.limiter != nil {
		h.limiter.Reset(ratelimit.ExtractIP(r))
	}

	pkg.JSON(w, http.StatusOK, result)
}

// Users godoc
// GET /api/auth/users
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}

// Logout godoc
// POST /api/auth/logout
//
// Revokes the presented credential when a denylist is configured. Without
// one the call still succeeds; the client simply drops its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		pkg.Error(w, pkg.ErrUnauthenticated)
		return
	}

	if err := h.authService.Logout(r.Context(), claims); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// allow applies the per-IP limiter and writes a 429 when it refuses.
func (h *AuthHandler) allow(w http.ResponseWriter, r *http.Request) bool {
	if h.limiter == nil {
		return true
	}

	ip := ratelimit.ExtractIP(r)
	if h.limiter.Allow(ip) {
		return true
	}

	retryAfter := h.limiter.RetryAfterSeconds(ip)
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
		fmt.Sprintf("too many attempts, please try again in %s",
			ratelimit.FormatRetryMessage(retryAfter)))
	return false
}

// decodeBody parses a JSON body into dst and writes a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
