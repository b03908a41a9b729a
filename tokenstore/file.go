package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File persists the token as JSON. A missing file is an empty store.
type File struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*File)(nil)

type fileRecord struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// NewFile returns a store backed by path. The file is created on first Set
// with mode 0600.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath returns <user config dir>/<app>/token.json.
func DefaultPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("tokenstore: resolve config dir: %w", err)
	}
	return filepath.Join(dir, app, "token.json"), nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Get(context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("tokenstore: read %s: %w", f.path, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", false, fmt.Errorf("tokenstore: decode %s: %w", f.path, err)
	}
	return rec.Token, rec.Token != "", nil
}

// Set writes to a temporary file and renames it over the target, so readers
// never observe a partial write.
func (f *File) Set(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(fileRecord{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("tokenstore: encode: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("tokenstore: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("tokenstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenstore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("tokenstore: rename: %w", err)
	}
	return nil
}

func (f *File) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokenstore: remove %s: %w", f.path, err)
	}
	return nil
}
