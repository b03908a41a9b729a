// Package password hashes and verifies user passwords with bcrypt or
// argon2id. The demo service stores hashes in its user list and checks them
// at login.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names a hashing scheme.
type Algorithm string

const (
	Bcrypt   Algorithm = "bcrypt"
	Argon2id Algorithm = "argon2id"
)

// ErrMismatch is returned by Verify when the password does not match.
var ErrMismatch = errors.New("password: mismatch")

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// Config selects and tunes a Hasher.
type Config struct {
	Algorithm  Algorithm `yaml:"algorithm" mapstructure:"algorithm"`
	BcryptCost int       `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
	MinLength  int       `yaml:"min_length" mapstructure:"min_length"`
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = Bcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.MinLength == 0 {
		c.MinLength = 8
	}
}

// NewHasher builds the Hasher named by cfg.Algorithm.
func NewHasher(cfg Config) (Hasher, error) {
	cfg.ApplyDefaults()
	switch cfg.Algorithm {
	case Bcrypt:
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("password: bcrypt cost %d out of range", cfg.BcryptCost)
		}
		return &BcryptHasher{Cost: cfg.BcryptCost, MinLength: cfg.MinLength}, nil
	case Argon2id:
		return NewArgon2Hasher(cfg.MinLength), nil
	default:
		return nil, fmt.Errorf("password: unsupported algorithm %q", cfg.Algorithm)
	}
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	Cost      int
	MinLength int
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if err := checkLength(password, h.MinLength); err != nil {
		return "", err
	}
	// bcrypt silently ignores input beyond 72 bytes.
	if len(password) > 72 {
		return "", errors.New("password: longer than 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("password: verify: %w", err)
	}
}

// Argon2Hasher implements Hasher with argon2id. Hashes use the PHC string
// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
type Argon2Hasher struct {
	Time      uint32
	Memory    uint32
	Threads   uint8
	MinLength int
}

// NewArgon2Hasher returns an argon2id hasher with time=1, 64 MiB, 4 threads.
func NewArgon2Hasher(minLength int) *Argon2Hasher {
	return &Argon2Hasher{Time: 1, Memory: 64 * 1024, Threads: 4, MinLength: minLength}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	if err := checkLength(password, h.MinLength); err != nil {
		return "", err
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(password, encoded string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != string(Argon2id) {
		return errors.New("password: malformed argon2id hash")
	}
	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return fmt.Errorf("password: argon2id params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("password: argon2id salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("password: argon2id key: %w", err)
	}
	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}

func checkLength(password string, minLength int) error {
	if len(password) < minLength {
		return fmt.Errorf("password: shorter than %d characters", minLength)
	}
	return nil
}
