// Package middleware holds the layers wrapped around HTTP handlers.
//
// A middleware is a function:
//
//	func(next http.Handler) http.Handler
//
// It does its own work (verify a token, log a request) and then calls next.
// When it rejects the request it writes the response itself and next is
// never called.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/rtctoken/handlers"
	"github.com/akinalp/rtctoken/models"
	"github.com/akinalp/rtctoken/pkg"
)

// SessionValidator verifies a raw session credential.
// Implemented by services.AuthService.
type SessionValidator interface {
	ValidateSessionToken(ctx context.Context, raw string) (*models.SessionClaims, error)
}

// SessionGate guards every protected route.
//
// Verification is stateless: the gate trusts the signature and expiry of
// the credential and does not look the user up. A deleted user keeps
// access until their credential expires.
type SessionGate struct {
	validator SessionValidator
}

// NewSessionGate is the constructor.
func NewSessionGate(validator SessionValidator) *SessionGate {
	return &SessionGate{validator: validator}
}

// Require rejects the request with 401 unless it carries a valid
// credential in the form `Authorization: Bearer <token>`. On success the
// claims are attached to the request context for handlers.ClaimsFrom.
func (g *SessionGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			pkg.Error(w, pkg.ErrUnauthenticated)
			return
		}

		claims, err := g.validator.ValidateSessionToken(r.Context(), raw)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithClaims(r.Context(), claims)))
	})
}

// bearerToken extracts the credential. The scheme is matched
// case-insensitively; an empty token counts as missing.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
