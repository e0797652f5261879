// Package lockfile provides the cross-process advisory lock that guards
// the shared result file. The lock file lives in the system temp directory
// so stale locks are cleaned up by the OS, and its name is derived from
// the result path so every process targeting the same result shares one lock.
package lockfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// retryInterval is how often acquisition is retried while waiting.
const retryInterval = 50 * time.Millisecond

// Mutex is an advisory file lock with a bounded-wait Acquire.
// It only excludes participants that honor the same lock file.
type Mutex struct {
	fl      *flock.Flock
	timeout time.Duration
}

// New creates a lock for the given result path. Processes using the same
// result path always derive the same lock file.
func New(resultPath string, timeout time.Duration) *Mutex {
	if timeout < 0 {
		timeout = 0
	}
	return &Mutex{
		fl:      flock.New(PathFor(resultPath)),
		timeout: timeout,
	}
}

// PathFor returns the lock file path derived from a result path.
func PathFor(resultPath string) string {
	abs, err := filepath.Abs(resultPath)
	if err != nil {
		abs = resultPath
	}
	name := strings.ReplaceAll(abs, string(os.PathSeparator), "_") + ".lock"
	return filepath.Join(os.TempDir(), name)
}

// Acquire blocks until the lock is held or the timeout expires.
// It returns false when the wait timed out; errors are reserved for
// filesystem failures on the lock file itself.
func (m *Mutex) Acquire() (bool, error) {
	// One attempt happens unconditionally: a zero timeout means
	// "try, don't wait", never "fail without trying"
	locked, err := m.fl.TryLock()
	if err != nil {
		return false, err
	}
	if locked || m.timeout == 0 {
		return locked, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	locked, err = m.fl.TryLockContext(ctx, retryInterval)
	if err != nil {
		if ctx.Err() != nil {
			// Wait expired, not a lock-file failure
			return false, nil
		}
		return false, err
	}
	return locked, nil
}

// Release drops the lock. Safe to call when the lock is not held.
func (m *Mutex) Release() error {
	return m.fl.Unlock()
}

// Path returns the lock file location, mainly for diagnostics and tests.
func (m *Mutex) Path() string {
	return m.fl.Path()
}
