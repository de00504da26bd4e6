package flock

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mrz1836/signet/internal/constants"
	signeterrors "github.com/mrz1836/signet/internal/errors"
)

// Lock is an exclusive advisory lock held on a dedicated lock file.
// A Lock is not reentrant; each holder opens its own file description so
// goroutines in one process contend with each other as well as with other
// processes.
type Lock struct {
	path string
	file *os.File
}

// New returns an unheld Lock for the lock file at path.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock, retrying every constants.LockRetryInterval until
// timeout elapses or ctx is canceled. On timeout the error wraps
// errors.ErrLockTimedOut.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) error {
	file, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // path is built by the store
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)

	for {
		select {
		case <-ctx.Done():
			_ = file.Close()
			return ctx.Err()
		default:
		}

		if err := Exclusive(file.Fd()); err == nil {
			l.file = file
			return nil
		}

		if time.Now().After(deadline) {
			_ = file.Close()
			return fmt.Errorf("%w after %v: %s", signeterrors.ErrLockTimedOut, timeout, l.path)
		}

		timer := time.NewTimer(constants.LockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = file.Close()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Release unlocks and closes the lock file. Releasing an unheld Lock is a no-op.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	_ = Unlock(l.file.Fd())
	err := l.file.Close()
	l.file = nil
	return err
}
