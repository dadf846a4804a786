package store

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked signals that another worker currently owns a procedure. It is
// an expected, recoverable condition: the scheduler retries or skips the
// procedure, and it must never surface as a user-facing defect.
type ErrLocked struct {
	Proc string
}

func (e *ErrLocked) Error() string {
	return fmt.Sprintf("procedure %q is locked by another worker", e.Proc)
}

// ProcLocker hands out per-procedure advisory file locks so that workers in
// different processes never analyze the same procedure concurrently. Locks
// are only tried, never waited for.
type ProcLocker struct {
	dir  string
	held map[string]*flock.Flock
}

func NewProcLocker(dir string) (*ProcLocker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory %s: %w", dir, err)
	}
	return &ProcLocker{dir: dir, held: make(map[string]*flock.Flock)}, nil
}

func (l *ProcLocker) path(proc string) string {
	// Procedure names may contain path separators.
	return filepath.Join(l.dir, url.PathEscape(proc)+".lock")
}

// Lock attempts to take the lock for a procedure. If another process holds
// it, Lock fails fast with an ErrLocked naming the procedure.
func (l *ProcLocker) Lock(proc string) error {
	if _, ok := l.held[proc]; ok {
		return nil
	}
	fl := flock.New(l.path(proc))
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("locking procedure %q: %w", proc, err)
	}
	if !locked {
		return &ErrLocked{Proc: proc}
	}
	l.held[proc] = fl
	return nil
}

// Unlock releases a lock taken by this locker; unlocking a procedure that
// is not held is a no-op.
func (l *ProcLocker) Unlock(proc string) error {
	fl, ok := l.held[proc]
	if !ok {
		return nil
	}
	delete(l.held, proc)
	return fl.Unlock()
}

// UnlockAll releases every held lock, keeping the first error.
func (l *ProcLocker) UnlockAll() error {
	var first error
	for proc, fl := range l.held {
		if err := fl.Unlock(); err != nil && first == nil {
			first = err
		}
		delete(l.held, proc)
	}
	return first
}
