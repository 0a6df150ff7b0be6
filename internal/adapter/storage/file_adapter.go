package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/shoes-cart/internal/core/domain"
)

// FileAdapter persists the cart in a local JSON file shaped like browser
// local storage: one object of string values, several keys per file.
type FileAdapter struct {
	path string
	key  string
	log  *logrus.Logger

	mu sync.Mutex
}

func NewFileAdapter(path, key string, log *logrus.Logger) *FileAdapter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FileAdapter{path: path, key: key, log: log}
}

func (f *FileAdapter) Load(ctx context.Context) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, _, err := f.readEntries()
	if err != nil {
		return nil, err
	}

	value, ok := entries[f.key]
	if !ok {
		return domain.Cart{}, nil
	}
	return decodeCart([]byte(value), f.log), nil
}

func (f *FileAdapter) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, corrupt, err := f.readEntries()
	if err != nil {
		return err
	}
	if corrupt {
		if err := f.quarantine(); err != nil {
			return err
		}
	}
	entries[f.key] = string(data)

	return f.writeEntries(entries)
}

// readEntries returns an empty map when the file does not exist or is not a
// JSON object of strings; corrupt reports the latter. Any other read error is
// returned.
func (f *FileAdapter) readEntries() (entries map[string]string, corrupt bool, err error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", f.path, err)
	}

	entries = map[string]string{}
	if len(data) == 0 {
		return entries, false, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		f.log.WithError(err).WithField("path", f.path).Warn("malformed storage file")
		return map[string]string{}, true, nil
	}
	return entries, false, nil
}

// quarantine moves a malformed storage file aside so other keys in it can be
// recovered by hand.
func (f *FileAdapter) quarantine() error {
	target := f.path + ".corrupt"
	if err := os.Rename(f.path, target); err != nil {
		return fmt.Errorf("move malformed %s: %w", f.path, err)
	}
	f.log.WithField("path", target).Warn("malformed storage file moved aside")
	return nil
}

func (f *FileAdapter) writeEntries(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
