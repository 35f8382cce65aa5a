// Package kv persists session state (carts, auto-weight progress) as string
// values under string keys.
package kv

import (
	"fmt"

	"github.com/Victor-armando18/storefront-pricing/internal/interfaces"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	FilePath    string
	DatabaseURL string
}

// Open returns the store named by opts.Backend. An empty backend means memory.
func Open(opts Options) (interfaces.KeyValueStore, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.FilePath)
	case BackendPostgres:
		return NewPostgresStore(opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown kv backend %q", opts.Backend)
	}
}
