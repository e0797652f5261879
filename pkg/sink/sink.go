package sink

import (
	"errors"
	"fmt"
	"time"

	"github.com/psantana5/timeprofile/pkg/models"
)

// Sink persists finished measurement rows. The CSV sink is the
// canonical implementation; SQLite and PostgreSQL delegate concurrency
// control to the database engine instead of the file lock.
type Sink interface {
	WriteRow(row models.Row) error
	Close() error
}

// Config holds sink configuration
type Config struct {
	Type string // "csv" (default), "sqlite", "postgres" or "memory"

	// CSV / SQLite
	ResultPath string        // output location, extension replaced per backend
	Timeout    time.Duration // max wait for the CSV write lock

	// PostgreSQL specific
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSink creates a sink based on configuration
func NewSink(config Config) (Sink, error) {
	switch config.Type {
	case "csv", "":
		path := config.ResultPath
		if path == "" {
			path = "./profile"
		}
		return NewCSVSink(path, config.Timeout), nil
	case "sqlite":
		path := config.ResultPath
		if path == "" {
			path = "./profile"
		}
		return NewSQLiteSink(path)
	case "postgres", "postgresql":
		return NewPostgresSink(config)
	case "memory":
		return NewMemorySink(), nil
	default:
		return nil, fmt.Errorf("unsupported sink type %q", config.Type)
	}
}

// LockTimeoutError reports that the CSV write lock could not be
// acquired within the configured wait.
type LockTimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for lock on %s", e.Timeout, e.Path)
}

// IsLockTimeout reports whether err is (or wraps) a lock timeout
func IsLockTimeout(err error) bool {
	var lte *LockTimeoutError
	return errors.As(err, &lte)
}
