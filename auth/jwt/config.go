package jwt

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod defines supported JWT signing algorithms.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
	RS256 SigningMethod = "RS256"
	RS384 SigningMethod = "RS384"
	RS512 SigningMethod = "RS512"
	ES256 SigningMethod = "ES256"
	ES384 SigningMethod = "ES384"
	ES512 SigningMethod = "ES512"
)

// minSecretLength is the shortest accepted HMAC secret.
const minSecretLength = 16

// Config configures the JWT token service.
type Config struct {
	// Secret is the HMAC signing key (required for HS* methods).
	Secret string `yaml:"secret" mapstructure:"secret"`

	// PrivateKey is the RSA or ECDSA private key (required for RS*/ES* methods).
	PrivateKey any `yaml:"-" mapstructure:"-"`

	// PublicKey is the RSA or ECDSA public key for verification.
	// If not set it is derived from PrivateKey.
	PublicKey any `yaml:"-" mapstructure:"-"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`

	Issuer   string   `yaml:"issuer" mapstructure:"issuer"`
	Audience []string `yaml:"audience" mapstructure:"audience"`

	// AccessTokenTTL is the lifetime of access tokens (default: 15m).
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" mapstructure:"access_token_ttl"`

	// RefreshTokenTTL is the lifetime of refresh tokens (default: 7d).
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" mapstructure:"refresh_token_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 7 * 24 * time.Hour
	}
}

// Validate checks required fields based on the signing method.
func (c *Config) Validate() error {
	switch c.Method {
	case HS256, HS384, HS512:
		if c.Secret == "" {
			return errors.New("secret is required for HMAC signing methods")
		}
		if len(c.Secret) < minSecretLength {
			return fmt.Errorf("secret must be at least %d bytes", minSecretLength)
		}
	case RS256, RS384, RS512:
		if c.PrivateKey == nil {
			return errors.New("private key is required for RSA signing methods")
		}
		if _, ok := c.PrivateKey.(*rsa.PrivateKey); !ok {
			return errors.New("private key must be *rsa.PrivateKey for RSA signing methods")
		}
	case ES256, ES384, ES512:
		if c.PrivateKey == nil {
			return errors.New("private key is required for ECDSA signing methods")
		}
		if _, ok := c.PrivateKey.(*ecdsa.PrivateKey); !ok {
			return errors.New("private key must be *ecdsa.PrivateKey for ECDSA signing methods")
		}
	default:
		return fmt.Errorf("unsupported signing method %q", c.Method)
	}
	return nil
}

// signingMethod returns the golang-jwt SigningMethod instance.
func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	case RS256:
		return gojwt.SigningMethodRS256
	case RS384:
		return gojwt.SigningMethodRS384
	case RS512:
		return gojwt.SigningMethodRS512
	case ES256:
		return gojwt.SigningMethodES256
	case ES384:
		return gojwt.SigningMethodES384
	case ES512:
		return gojwt.SigningMethodES512
	default:
		return gojwt.SigningMethodHS256
	}
}

// signKey returns the key used for signing tokens.
func (c *Config) signKey() any {
	switch c.Method {
	case HS256, HS384, HS512:
		return []byte(c.Secret)
	default:
		return c.PrivateKey
	}
}

// verifyKey returns the key used for verifying tokens.
func (c *Config) verifyKey() any {
	switch c.Method {
	case HS256, HS384, HS512:
		return []byte(c.Secret)
	case RS256, RS384, RS512:
		if c.PublicKey != nil {
			return c.PublicKey
		}
		if pk, ok := c.PrivateKey.(*rsa.PrivateKey); ok {
			return &pk.PublicKey
		}
		return c.PrivateKey
	case ES256, ES384, ES512:
		if c.PublicKey != nil {
			return c.PublicKey
		}
		if pk, ok := c.PrivateKey.(*ecdsa.PrivateKey); ok {
			return &pk.PublicKey
		}
		return c.PrivateKey
	default:
		return []byte(c.Secret)
	}
}
