package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of a session credential.
//
// The credential is a signed JWT: the server keeps no session table and
// learns who the caller is from the claims alone, without touching the
// database. `jti` identifies one credential so it can be revoked when a
// denylist is configured.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}
