// Package jwt issues and verifies bearer tokens with golang-jwt.
//
// The service is generic over the claims type so applications can carry
// their own fields. UserClaims covers the common case:
//
//	svc, err := jwt.NewService(&cfg, jwt.NewUserClaims)
//	token, err := svc.GenerateAccess(&jwt.UserClaims{Name: "ada"})
//	claims, err := svc.Parse(token)
//
// ValidatorFunc and Subject plug the service into middleware.Auth.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is wrapped by every Parse failure.
var ErrInvalidToken = errors.New("invalid token")

// Service provides JWT token generation and parsing for claims type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	now      func() time.Time
}

// NewService creates a JWT service. newEmpty returns a zero claims value
// that Parse decodes into.
func NewService[T gojwt.Claims](cfg *Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	return &Service[T]{cfg: *cfg, newEmpty: newEmpty, now: time.Now}, nil
}

// Generate signs claims as they are.
func (s *Service[T]) Generate(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString(s.cfg.signKey())
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// GenerateAccess fills time, issuer and audience claims using AccessTokenTTL
// and signs the result.
func (s *Service[T]) GenerateAccess(claims T) (string, error) {
	s.prepareClaims(claims, s.cfg.AccessTokenTTL)
	return s.Generate(claims)
}

// GenerateRefresh is GenerateAccess with RefreshTokenTTL.
func (s *Service[T]) GenerateRefresh(claims T) (string, error) {
	s.prepareClaims(claims, s.cfg.RefreshTokenTTL)
	return s.Generate(claims)
}

// AccessTTL returns the configured access token lifetime.
func (s *Service[T]) AccessTTL() time.Duration { return s.cfg.AccessTokenTTL }

// Parse verifies signature, expiry and the configured issuer/audience.
// Errors wrap ErrInvalidToken.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	claims := s.newEmpty()
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return zero, fmt.Errorf("jwt: %w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return zero, fmt.Errorf("jwt: %w", ErrInvalidToken)
	}
	parsed, ok := token.Claims.(T)
	if !ok {
		return zero, fmt.Errorf("jwt: %w: unexpected claims type %T", ErrInvalidToken, token.Claims)
	}
	return parsed, nil
}

// ValidatorFunc adapts Parse to middleware.AuthConfig.TokenValidator.
func (s *Service[T]) ValidatorFunc() func(string) (any, error) {
	return func(token string) (any, error) {
		return s.Parse(token)
	}
}

// Subject returns the "sub" claim of any gojwt.Claims value, for
// middleware.AuthConfig.SubjectFunc.
func Subject(claims any) string {
	c, ok := claims.(gojwt.Claims)
	if !ok {
		return ""
	}
	sub, err := c.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (any, error) {
	expected := s.cfg.signingMethod()
	if token.Method.Alg() != expected.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return s.cfg.verifyKey(), nil
}

func (s *Service[T]) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience[0]))
	}
	return opts
}

// prepareClaims sets standard fields on claims types that support it.
func (s *Service[T]) prepareClaims(claims T, ttl time.Duration) {
	if setter, ok := any(claims).(interface {
		SetDefaults(time.Time, time.Duration, string, []string)
	}); ok {
		setter.SetDefaults(s.now(), ttl, s.cfg.Issuer, s.cfg.Audience)
	}
}
