// Package tokenstore holds the single bearer token of an API client session.
//
// A Store is shared by the outbound interceptor that attaches the token and
// the normalizer that clears it on a 401. Three backends are provided:
// Memory for tests and short-lived processes, File for CLIs that keep a
// session across runs, and Redis for sessions shared between processes.
package tokenstore

import (
	"context"
	"sync"
)

// Store is one token slot. Clear on an empty store is a no-op.
type Store interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	token string
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get(context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != "", nil
}

func (m *Memory) Set(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
