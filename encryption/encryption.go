package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Encryptor seals and opens strings.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Algorithm names an AEAD construction.
type Algorithm string

const (
	AESGCM   Algorithm = "aes-256-gcm"
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ErrDecrypt is returned for tampered input and for input sealed with a
// different key or algorithm.
var ErrDecrypt = errors.New("encryption: message authentication failed")

// Option configures New.
type Option func(*options)

type options struct {
	algorithm Algorithm
}

// WithAlgorithm selects the cipher. Defaults to AESGCM.
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

type aead struct {
	alg    Algorithm
	cipher cipher.AEAD
}

// New derives a 256-bit key from passphrase with HKDF-SHA256 and returns an
// Encryptor for the chosen algorithm.
func New(passphrase string, opts ...Option) (Encryptor, error) {
	if passphrase == "" {
		return nil, errors.New("encryption: empty passphrase")
	}
	o := options{algorithm: AESGCM}
	for _, opt := range opts {
		opt(&o)
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("errkit/"+string(o.algorithm)))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("encryption: derive key: %w", err)
	}

	var (
		c   cipher.AEAD
		err error
	)
	switch o.algorithm {
	case AESGCM:
		var block cipher.Block
		if block, err = aes.NewCipher(key); err == nil {
			c, err = cipher.NewGCM(block)
		}
	case ChaCha20:
		c, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("encryption: unknown algorithm %q", o.algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("encryption: %s: %w", o.algorithm, err)
	}
	return &aead{alg: o.algorithm, cipher: c}, nil
}

func (a *aead) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, a.cipher.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("encryption: nonce: %w", err)
	}
	sealed := a.cipher.Seal(nonce, nonce, []byte(plaintext), []byte(a.alg))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (a *aead) Decrypt(ciphertext string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("encryption: decode: %w", err)
	}
	n := a.cipher.NonceSize()
	if len(data) < n+a.cipher.Overhead() {
		return "", ErrDecrypt
	}
	plain, err := a.cipher.Open(nil, data[:n], data[n:], []byte(a.alg))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
