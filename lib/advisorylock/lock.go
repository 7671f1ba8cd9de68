// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package advisorylock

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by non-blocking acquisitions when another
// process holds a conflicting lock.
var ErrLocked = errors.New("advisory lock held by another process")

// Lock is an acquired advisory lock on a file. Release it when done;
// the lock is also dropped by the OS if the process exits.
type Lock struct {
	file *os.File
}

// AcquireShared opens path (creating it if absent) and takes a shared
// advisory lock, blocking until the lock is available. Shared holders
// never block each other.
func AcquireShared(path string) (*Lock, error) {
	return acquire(path, unix.LOCK_SH)
}

// AcquireExclusive opens path (creating it if absent) and takes an
// exclusive advisory lock, blocking until every other holder releases.
func AcquireExclusive(path string) (*Lock, error) {
	return acquire(path, unix.LOCK_EX)
}

// TryAcquireExclusive opens path (creating it if absent) and attempts
// an exclusive advisory lock without blocking. Returns ErrLocked
// immediately if any other process holds the lock; the request is
// never queued.
func TryAcquireExclusive(path string) (*Lock, error) {
	lock, err := acquire(path, unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, err
	}
	return lock, nil
}

// acquire opens the lock file and applies the flock operation.
func acquire(path string, how int) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file %s: %w", path, err)
	}
	if err := unix.Flock(int(file.Fd()), how); err != nil {
		file.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return &Lock{file: file}, nil
}

// Release drops the lock and closes the underlying file. Safe to call
// once; the Lock must not be used afterwards.
func (l *Lock) Release() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("unlocking %s: %w", l.file.Name(), err)
	}
	return l.file.Close()
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.file.Name()
}
