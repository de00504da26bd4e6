// Package flock provides cross-platform file locking utilities.
//
// Exclusive and Unlock are thin, non-blocking wrappers over the platform
// primitive (flock(2) on Unix, LockFileEx on Windows). Lock layers a
// context-aware, time-bounded acquisition loop on top, which is what the
// file-backed signature store uses to serialize writers across goroutines
// and processes.
//
// Usage:
//
//	lock := flock.New(path + ".lock")
//	if err := lock.Acquire(ctx, 5*time.Second); err != nil {
//	    return err
//	}
//	defer func() { _ = lock.Release() }()
package flock
