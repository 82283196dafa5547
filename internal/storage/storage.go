// Package storage provides the key-value backends that hold serialized cart state.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lixing-Zhang/storefront/internal/config"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("store is closed")
)

// KV is a durable key-value store for opaque byte values
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg.Driver
// It returns a nil KV for the "none" driver
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (KV, error) {
	switch cfg.Driver {
	case config.DriverNone:
		return nil, nil
	case config.DriverMemory:
		return NewMemory(), nil
	case config.DriverFile:
		return NewFile(cfg.Path, log)
	case config.DriverSQLite:
		return NewSQLite(ctx, cfg.Path)
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.DatabaseURL, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
