package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

// File persists the store as a single JSON document. Every call re-reads
// the file so separate processes (e.g. successive CLI invocations) see each
// other's writes. Writes go to a temp file that is renamed into place.
type File struct {
	mu     sync.Mutex
	path   string
	sealer *sealer
}

var _ Store = (*File)(nil)

type FileOption func(*File)

// WithPassphrase encrypts the document at rest. An empty passphrase
// leaves the file in plain JSON.
func WithPassphrase(passphrase string) FileOption {
	return func(f *File) {
		if passphrase != "" {
			f.sealer = newSealer(passphrase)
		}
	}
}

// NewFile returns a store backed by path. The file and its parent
// directory are created on first write.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{path: path}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the backing file location
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// An unreadable document is replaced rather than left blocking login.
	values, err := f.load()
	if errors.Is(err, autherrors.ErrStoreCorrupt) {
		values = make(map[string]string)
	} else if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *File) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if errors.Is(err, autherrors.ErrStoreCorrupt) {
		return f.reset()
	}
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := values[k]; ok {
			delete(values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.save(values)
}

// reset removes a document that can no longer be opened, so that clearing
// the session still succeeds.
func (f *File) reset() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return autherrors.Wrapf(autherrors.ErrStoreUnavailable, "remove %s: %v", f.path, err)
	}
	return nil
}

func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrStoreUnavailable, "read %s: %v", f.path, err)
	}
	if len(raw) == 0 {
		return make(map[string]string), nil
	}

	if f.sealer != nil {
		if raw, err = f.sealer.open(raw); err != nil {
			return nil, fmt.Errorf("open %s: %w", f.path, err)
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrStoreCorrupt, "decode %s: %v", f.path, err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}
	if f.sealer != nil {
		if raw, err = f.sealer.seal(raw); err != nil {
			return err
		}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return autherrors.Wrapf(autherrors.ErrStoreUnavailable, "mkdir %s: %v", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return autherrors.Wrapf(autherrors.ErrStoreUnavailable, "create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return autherrors.Wrapf(autherrors.ErrStoreUnavailable, "write %s: %v", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return autherrors.Wrapf(autherrors.ErrStoreUnavailable, "close %s: %v", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return autherrors.Wrapf(autherrors.ErrStoreUnavailable, "rename to %s: %v", f.path, err)
	}
	return nil
}
