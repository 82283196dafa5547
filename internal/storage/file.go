package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// File keeps every key in a single JSON document on disk, values stored as strings.
// The whole document is rewritten on each Put/Delete via a temp file and rename.
type File struct {
	mu       sync.Mutex
	filePath string
	data     map[string]string
	logger   *slog.Logger
}

// NewFile opens (or creates) the JSON document at path.
// An unreadable or malformed document is logged and replaced with an empty one.
func NewFile(path string, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	f := &File{
		filePath: path,
		data:     make(map[string]string),
		logger:   logger,
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if len(content) == 0 {
		return f, nil
	}

	if err := json.Unmarshal(content, &f.data); err != nil {
		logger.Warn("store file is corrupt, starting empty", "file_path", path, "error", err)
		f.data = make(map[string]string)
	}
	if f.data == nil {
		f.data = make(map[string]string)
	}

	return f, nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.data == nil {
		return nil, ErrClosed
	}
	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (f *File) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.data == nil {
		return ErrClosed
	}

	prev, had := f.data[key]
	f.data[key] = string(value)
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.data == nil {
		return ErrClosed
	}
	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func (f *File) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.data == nil {
		return ErrClosed
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data = nil
	return nil
}

// flush must be called with f.mu held.
func (f *File) flush() error {
	content, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.filePath), ".carts-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	f.logger.Debug("store file written", "file_path", f.filePath, "keys", len(f.data))
	return nil
}
