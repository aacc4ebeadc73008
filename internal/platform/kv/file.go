package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
)

// File keeps every key in one JSON document on disk. The whole document is
// rewritten (temp file + rename) after each mutation.
type File struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

// OpenFile loads path, creating parent directories as needed. A corrupt
// document is logged and replaced by an empty one on the next write.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("kv/file: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("kv/file: mkdir: %w", err)
	}

	f := &File{path: path, data: map[string]json.RawMessage{}}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("kv/file: read %s: %w", path, err)
	case len(raw) == 0:
		return f, nil
	}

	if err := json.Unmarshal(raw, &f.data); err != nil {
		logger.Warn("kv/file: discarding unreadable store", "path", path, "error", err)
		f.data = map[string]json.RawMessage{}
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fmt.Errorf("kv/file: decode %s: %w", key, err)
	}
	return []byte(s), nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	// Values are stored as JSON strings so text that is not itself valid
	// JSON can still be kept.
	enc, err := json.Marshal(string(value))
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	f.data[key] = enc
	if err := f.flushLocked(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flushLocked(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func (f *File) flushLocked() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("kv/file: encode: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("kv/file: write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("kv/file: rename: %w", err)
	}
	return nil
}
