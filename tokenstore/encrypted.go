package tokenstore

import (
	"context"
	"fmt"

	"github.com/kbukum/errkit/encryption"
)

// Encrypted seals the token before it reaches the wrapped store, so a file
// or Redis key never holds the bearer token in clear.
type Encrypted struct {
	inner Store
	enc   encryption.Encryptor
}

var _ Store = (*Encrypted)(nil)

// NewEncrypted wraps inner.
func NewEncrypted(inner Store, enc encryption.Encryptor) *Encrypted {
	return &Encrypted{inner: inner, enc: enc}
}

// Get returns an error when the stored value does not open with the current
// key. Clear recovers from that.
func (e *Encrypted) Get(ctx context.Context) (string, bool, error) {
	sealed, ok, err := e.inner.Get(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	token, err := e.enc.Decrypt(sealed)
	if err != nil {
		return "", false, fmt.Errorf("tokenstore: open stored token: %w", err)
	}
	return token, true, nil
}

func (e *Encrypted) Set(ctx context.Context, token string) error {
	sealed, err := e.enc.Encrypt(token)
	if err != nil {
		return fmt.Errorf("tokenstore: seal token: %w", err)
	}
	return e.inner.Set(ctx, sealed)
}

func (e *Encrypted) Clear(ctx context.Context) error {
	return e.inner.Clear(ctx)
}
