// Package auth exchanges platform API keys for short-lived JWTs and decides
// which tier a proxy session runs under. Every failure here degrades the
// session to the free tier instead of stopping the proxy.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a platform session token plus everything needed to reuse it.
type Token struct {
	Token        string `json:"token"`
	ExpiresAt    int64  `json:"expires_at"`
	Claims       Claims `json:"claims"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Claims is the subset of JWT claims the proxy consumes.
type Claims struct {
	Subject   string `json:"sub,omitempty"`
	Tier      string `json:"tier,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// expiryBuffer forces a refresh slightly before the platform would reject
// the token, so an exchange never races the deadline mid-session.
const expiryBuffer = 60 * time.Second

// IsExpired reports whether tok should be refreshed at the given instant.
func IsExpired(tok *Token, now time.Time) bool {
	if tok == nil {
		return true
	}
	return tok.ExpiresAt <= now.Add(expiryBuffer).Unix()
}

// ParseClaims extracts claims from a JWT without verifying its signature.
// The platform verifies tokens server-side; locally the claims only steer
// pipeline composition. Unknown or malformed tokens yield zero claims.
func ParseClaims(raw string) Claims {
	var out Claims
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return out
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return out
	}
	out.Subject = stringClaim(mc, "sub")
	out.Tier = stringClaim(mc, "tier")
	if out.Tier == "" {
		out.Tier = stringClaim(mc, "plan")
	}
	out.UserID = stringClaim(mc, "user_id")
	if out.UserID == "" {
		out.UserID = stringClaim(mc, "customer_id")
	}
	out.ExpiresAt = intClaim(mc, "exp")
	out.IssuedAt = intClaim(mc, "iat")
	return out
}

func stringClaim(mc jwt.MapClaims, key string) string {
	if v, ok := mc[key].(string); ok {
		return v
	}
	return ""
}

func intClaim(mc jwt.MapClaims, key string) int64 {
	switch v := mc[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
