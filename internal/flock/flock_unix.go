//go:build unix

package flock

import "syscall"

// Exclusive takes an exclusive lock on fd without blocking.
// It fails immediately (EWOULDBLOCK or ERROR_LOCK_VIOLATION) when another holder exists.
func Exclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock releases the lock on the file descriptor.
func Unlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
