package jwt

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserClaims identifies an authenticated user. The user id is the subject.
type UserClaims struct {
	gojwt.RegisteredClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// NewUserClaims returns an empty claims value for Service.Parse.
func NewUserClaims() *UserClaims { return &UserClaims{} }

// UserID returns the subject claim.
func (c *UserClaims) UserID() string { return c.Subject }

// SetDefaults fills IssuedAt, NotBefore, ExpiresAt, issuer, audience and a
// token id. Fields already set are kept.
func (c *UserClaims) SetDefaults(now time.Time, ttl time.Duration, issuer string, audience []string) {
	if c.IssuedAt == nil {
		c.IssuedAt = gojwt.NewNumericDate(now)
	}
	if c.NotBefore == nil {
		c.NotBefore = gojwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil {
		c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
	if c.Issuer == "" {
		c.Issuer = issuer
	}
	if len(c.Audience) == 0 && len(audience) > 0 {
		c.Audience = audience
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
}
