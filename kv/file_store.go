package kv

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore keeps a namespace in a single file, optionally sealed with a Cipher.
// Every committed Update rewrites the file through a temp file and a rename, so a
// crash leaves either the old or the new contents on disk.
type FileStore struct {
	path   string
	cipher Cipher

	mu     sync.RWMutex
	values Values
}

var _ Store = (*FileStore)(nil)

type FileStoreOption func(*FileStore)

// WithCipher encrypts the namespace file.
func WithCipher(c Cipher) FileStoreOption {
	return func(fs *FileStore) {
		fs.cipher = c
	}
}

// OpenFile loads the namespace at path. A missing file is an empty namespace.
func OpenFile(path string, options ...FileStoreOption) (*FileStore, error) {
	fs := &FileStore{
		path:   path,
		values: make(Values),
	}
	for _, opt := range options {
		opt(fs)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	if fs.cipher != nil {
		if data, err = fs.cipher.Open(data); err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
	}
	if err := json.Unmarshal(data, &fs.values); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if fs.values == nil {
		fs.values = make(Values)
	}
	return fs, nil
}

func (fs *FileStore) View(fn func(v Values)) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	fn(fs.values)
}

func (fs *FileStore) Update(fn func(v Values) error) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	next := fs.values.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := fs.persist(next); err != nil {
		return err
	}
	fs.values = next
	return nil
}

func (fs *FileStore) persist(v Values) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal namespace")
	}
	if fs.cipher != nil {
		if data, err = fs.cipher.Seal(data); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "create data folder")
	}

	tempFile := fs.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := os.Rename(tempFile, fs.path); err != nil {
		_ = os.Remove(tempFile)
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
