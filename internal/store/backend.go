package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Backend is a string key/value store. Every collection is kept as one JSON
// document under its own key.
type Backend interface {
	// Get returns ok=false for a key that was never written.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

var ErrInvalidKey = errors.New("invalid storage key")

var keyRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func checkKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// FileBackend keeps one <key>.json file per key in a directory.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) Get(key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	raw, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return string(raw), true, nil
}

// Set replaces the file through a rename so a crash never leaves half a document.
func (b *FileBackend) Set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(b.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), b.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// OpenBackend opens the backend named kind under dir.
func OpenBackend(kind, dir string) (Backend, error) {
	switch kind {
	case KindFile, "":
		return NewFileBackend(dir)
	case KindSQLite:
		return OpenSQLite(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
