package handlers

import (
	"context"

	"github.com/akinalp/rtctoken/models"
)

// contextKey is a private type for request-scoped values. A string key
// could collide with another package's; a distinct type cannot.
type contextKey string

// SessionContextKey carries the caller's *models.SessionClaims. The session
// gate sets it; handlers behind the gate read it with ClaimsFrom.
const SessionContextKey contextKey = "session"

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, SessionContextKey, claims)
}

// ClaimsFrom returns the session claims attached by the gate.
func ClaimsFrom(ctx context.Context) (*models.SessionClaims, bool) {
	claims, ok := ctx.Value(SessionContextKey).(*models.SessionClaims)
	return claims, ok && claims != nil
}

// UserIDFrom returns the authenticated caller's user id, or "".
func UserIDFrom(ctx context.Context) string {
	if claims, ok := ClaimsFrom(ctx); ok {
		return claims.UserID
	}
	return ""
}
