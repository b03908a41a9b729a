package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newHMACService(t *testing.T, cfg Config) *Service[*UserClaims] {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	svc, err := NewService(&cfg, NewUserClaims)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_RoundTrip(t *testing.T) {
	svc := newHMACService(t, Config{Issuer: "articles-api", Audience: []string{"articles"}})

	token, err := svc.GenerateAccess(&UserClaims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-1"},
		Name:             "Ada",
	})
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID() != "user-1" || claims.Name != "Ada" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.Issuer != "articles-api" || claims.ID == "" {
		t.Errorf("defaults not applied: %+v", claims.RegisteredClaims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 15*time.Minute {
		t.Errorf("expected 15m lifetime, got %v", got)
	}
	if Subject(claims) != "user-1" {
		t.Errorf("Subject() = %q", Subject(claims))
	}
}

func TestService_ParseFailures(t *testing.T) {
	svc := newHMACService(t, Config{})
	other := newHMACService(t, Config{Secret: "another-secret-of-enough-length"})

	foreign, err := other.GenerateAccess(&UserClaims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "u"}})
	if err != nil {
		t.Fatal(err)
	}

	expired := &UserClaims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}
	expiredToken, err := svc.Generate(expired)
	if err != nil {
		t.Fatal(err)
	}

	noExpiry, err := svc.Generate(&UserClaims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "u"}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong key", foreign},
		{"expired", expiredToken},
		{"missing expiry", noExpiry},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Parse(tc.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestService_ValidatorFunc(t *testing.T) {
	svc := newHMACService(t, Config{})
	token, _ := svc.GenerateAccess(&UserClaims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "7"}})

	claims, err := svc.ValidatorFunc()(token)
	if err != nil {
		t.Fatal(err)
	}
	if Subject(claims) != "7" {
		t.Errorf("expected subject 7, got %q", Subject(claims))
	}
	if Subject("not claims") != "" {
		t.Error("non-claims value should have empty subject")
	}
}

func TestService_AsymmetricMethods(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		method SigningMethod
		key    any
	}{
		{RS256, rsaKey},
		{ES256, ecKey},
	}
	for _, tc := range tests {
		t.Run(string(tc.method), func(t *testing.T) {
			svc, err := NewService(&Config{Method: tc.method, PrivateKey: tc.key}, NewUserClaims)
			if err != nil {
				t.Fatal(err)
			}
			token, err := svc.GenerateRefresh(&UserClaims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "u"}})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := svc.Parse(token); err != nil {
				t.Errorf("Parse: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"hmac ok", Config{Secret: testSecret}, false},
		{"hmac missing secret", Config{}, true},
		{"hmac short secret", Config{Secret: "short"}, true},
		{"rsa missing key", Config{Method: RS256}, true},
		{"rsa wrong key type", Config{Method: RS256, PrivateKey: "pem"}, true},
		{"unknown method", Config{Method: "none", Secret: testSecret}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
