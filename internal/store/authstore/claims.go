package authstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the displayable part of a JWT bearer token.
type TokenClaims struct {
	Subject   string
	Issuer    string
	ExpiresAt *time.Time
	IssuedAt  *time.Time
}

// Expired reports whether the token carries an expiry in the past.
func (c TokenClaims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Claims decodes token without verifying its signature. The result is for
// display only; ok is false when the token is not a JWT.
func Claims(token string) (TokenClaims, bool) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return TokenClaims{}, false
	}

	c := TokenClaims{Subject: rc.Subject, Issuer: rc.Issuer}
	if rc.ExpiresAt != nil {
		t := rc.ExpiresAt.Time
		c.ExpiresAt = &t
	}
	if rc.IssuedAt != nil {
		t := rc.IssuedAt.Time
		c.IssuedAt = &t
	}
	return c, true
}
