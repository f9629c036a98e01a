package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the decoded payload of a session token.
//
// Subject (sub), IssuedAt (iat) and ExpiresAt (exp) live in the embedded
// registered claims; every other payload member lands in Extra.
type TokenClaims struct {
	jwt.RegisteredClaims
	Extra map[string]any `json:"-"`
}

// Username is the token subject.
func (c *TokenClaims) Username() string {
	return c.Subject
}
