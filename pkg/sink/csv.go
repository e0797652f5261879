package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/psantana5/timeprofile/internal/lockfile"
	"github.com/psantana5/timeprofile/pkg/models"
)

// CSVSink appends rows to a shared CSV file guarded by a cross-process
// advisory lock. The file is created lazily on the first write and is
// never truncated; concurrent first writes still produce exactly one
// header because the empty-file check happens under the lock.
type CSVSink struct {
	path    string
	lock    *lockfile.Mutex
	timeout time.Duration
}

// NewCSVSink creates a CSV sink for the given result path. Any
// existing extension is replaced with .csv.
func NewCSVSink(resultPath string, timeout time.Duration) *CSVSink {
	path := ForceCSVSuffix(resultPath)
	return &CSVSink{
		path:    path,
		lock:    lockfile.New(path, timeout),
		timeout: timeout,
	}
}

// ForceCSVSuffix replaces the extension of a result path with .csv
func ForceCSVSuffix(resultPath string) string {
	return strings.TrimSuffix(resultPath, filepath.Ext(resultPath)) + ".csv"
}

// Path returns the resolved output file location
func (s *CSVSink) Path() string {
	return s.path
}

// WriteRow appends one row under the lock. Returns *LockTimeoutError
// when the lock wait expires; the timeout policy (drop vs surface)
// belongs to the caller, not the sink.
func (s *CSVSink) WriteRow(row models.Row) error {
	locked, err := s.lock.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire result lock: %w", err)
	}
	if !locked {
		return &LockTimeoutError{Path: s.path, Timeout: s.timeout}
	}
	defer s.lock.Release()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open result file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat result file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		// File is empty - write the header first, same critical section
		if err := w.Write(models.Header()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(row.Record()); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush row: %w", err)
	}

	// Durable before the lock is released so the next holder never
	// observes a torn write
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync result file: %w", err)
	}

	return nil
}

// Close is a no-op; the file is opened per write
func (s *CSVSink) Close() error {
	return nil
}

// ReadRows reads back every data row currently in the file, under the
// same lock the writers hold so a row mid-append is never observed.
// Used by the CLI and tests; returns an empty slice when the file does
// not exist yet, and *LockTimeoutError when the lock wait expires.
func (s *CSVSink) ReadRows() ([]models.Row, error) {
	locked, err := s.lock.Acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire result lock: %w", err)
	}
	if !locked {
		return nil, &LockTimeoutError{Path: s.path, Timeout: s.timeout}
	}
	defer s.lock.Release()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open result file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(models.Header())
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]models.Row, 0, len(records)-1)
	for _, record := range records[1:] { // skip header
		row, err := models.ParseRecord(record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
