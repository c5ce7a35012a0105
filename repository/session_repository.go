package repository

import (
	"context"
	"time"
)

// SessionDenylist records session credentials revoked before their natural
// expiry. Credentials are identified by their `jti` claim.
//
// It is optional: with no denylist wired, session credentials are fully
// stateless and cannot be revoked.
type SessionDenylist interface {
	// Revoke denylists jti for ttl. A non-positive ttl is a no-op because
	// the credential has already expired.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
