// Package storage provides the opaque key-value persistence adapter. Stores
// read and write whole JSON blobs under fixed keys; the backend is selected
// by configuration and the rest of the application never sees past the
// Store interface.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Backend identifies a storage backend driver.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

var (
	// ErrNotFound indicates the key has no stored blob.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("storage: backend unavailable")
)

// Store is the opaque blob adapter. Values are JSON-serializable byte slices.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend     Backend
	DataDir     string // file backend
	DatabaseURL string // postgres backend
	RedisURL    string // redis backend
}

// Open constructs the configured Store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(cfg.DataDir)
	case BackendPostgres:
		return NewPostgres(ctx, cfg.DatabaseURL)
	case BackendRedis:
		return NewRedis(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
