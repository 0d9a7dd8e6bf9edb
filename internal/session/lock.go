package session

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Lock takes an exclusive advisory flock on the sidecar ".lock" file,
// guarding the session document against a second writer process. The lock is
// non-blocking: a held lock is reported immediately so the caller can
// degrade to read-only operation instead of stalling startup.
func (s *Store) Lock() error {
	if s.lockFile != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open session lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		return fmt.Errorf("session file held by another process: %w", err)
	}
	s.lockFile = f
	return nil
}

// Unlock releases the advisory lock. The kernel drops flocks on close, so
// a crashed process never leaves the session wedged.
func (s *Store) Unlock() {
	if s.lockFile == nil {
		return
	}
	_ = unix.Flock(int(s.lockFile.Fd()), unix.LOCK_UN)
	_ = s.lockFile.Close()
	s.lockFile = nil
}
