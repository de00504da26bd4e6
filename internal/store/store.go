// Package store implements persistence for identities, signature records,
// and verification attempts. MemoryStore keeps everything in process;
// FileStore keeps JSON files under a data directory guarded by file locks.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrz1836/signet/internal/audit"
	"github.com/mrz1836/signet/internal/constants"
	signeterrors "github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/identity"
	"github.com/mrz1836/signet/internal/ledger"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Backend is a store serving every service.
type Backend interface {
	identity.Store
	ledger.Store
	audit.Store

	// Health reports whether the backend can serve requests.
	Health(ctx context.Context) error

	// Name returns the backend name.
	Name() string
}

// Open returns the backend named by backend. dir is required for the file
// backend and ignored otherwise.
func Open(backend, dir string, lockTimeout time.Duration) (Backend, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		if dir == "" {
			return nil, fmt.Errorf("%w: file backend requires a directory", signeterrors.ErrConfigInvalidStorage)
		}
		return NewFileStore(dir, WithLockTimeout(lockTimeout)), nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", signeterrors.ErrConfigInvalidStorage, backend)
}

// compositeKey joins a hash and a base64 signature into one lookup key.
func compositeKey(hash, signature string) string {
	return hash + "|" + signature
}

// indexName maps a composite key to a file name. Base64 may contain '/',
// so the signature is digested.
func indexName(hash, signature string) string {
	return hash + "-" + sha256Hex(signature)
}

// validKey reports whether key can be used as a file name component.
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return false
	}
	return filepath.Base(key) == key && !strings.HasSuffix(key, constants.LockExt)
}

var (
	_ Backend = (*MemoryStore)(nil)
	_ Backend = (*FileStore)(nil)
)
