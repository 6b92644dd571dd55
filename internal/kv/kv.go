// Package kv provides the key-value blob stores the ledger persists into.
//
// Every backend offers the same two operations, Get and Set, addressed by a
// short key. Values are opaque bytes; the ledger stores one JSON document per
// key.
package kv

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Store is a key-value blob store.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// has never been set.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Backends lists every supported backend name.
var Backends = []string{BackendFile, BackendSQLite, BackendPostgres, BackendMemory}

// ErrInvalidKey is returned for keys outside [A-Za-z0-9_.-] or empty keys.
var ErrInvalidKey = errors.New("invalid key")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateKey checks that key is safe to use as a file name and table key.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string // file: directory; sqlite: database file
	DSN     string // postgres connection string
}

// Open creates the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile:
		return NewFile(opts.Path)
	case BackendSQLite:
		return OpenSQLite(ctx, opts.Path)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DSN)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", opts.Backend)
	}
}
