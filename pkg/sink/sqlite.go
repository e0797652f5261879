package sink

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/psantana5/timeprofile/pkg/models"
)

// SQLiteSink appends rows to a SQLite database. Cross-process safety
// comes from the engine (WAL + busy_timeout), not from the file lock
// the CSV sink uses.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink creates a SQLite sink at the result path (extension
// replaced with .db).
func NewSQLiteSink(resultPath string) (*SQLiteSink, error) {
	path := strings.TrimSuffix(resultPath, filepath.Ext(resultPath)) + ".db"

	// Configure SQLite connection string for concurrent appenders
	// - _journal_mode=WAL: Write-Ahead Logging for better concurrency
	// - _busy_timeout=10000: wait up to 10 seconds when the database is locked
	// - _synchronous=NORMAL: balance between safety and performance
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY under goroutine fan-out
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLiteSink{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS measurements (
		id TEXT NOT NULL,
		time REAL NOT NULL,
		pid INTEGER NOT NULL,
		ppid INTEGER NOT NULL,
		process_name TEXT,
		parent_process_name TEXT,
		broken BOOLEAN NOT NULL,
		error_type TEXT,
		error_value TEXT,
		traceback TEXT,
		recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_id ON measurements(id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WriteRow inserts one row
func (s *SQLiteSink) WriteRow(row models.Row) error {
	_, err := s.db.Exec(`
		INSERT INTO measurements
		(id, time, pid, ppid, process_name, parent_process_name, broken, error_type, error_value, traceback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Seconds, row.PID, row.PPID, row.ProcessName, row.ParentProcessName,
		row.Broken, row.ErrorType, row.ErrorValue, row.Traceback)
	if err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}
	return nil
}

// ReadRows returns every recorded row in insertion order
func (s *SQLiteSink) ReadRows() ([]models.Row, error) {
	result, err := s.db.Query(`
		SELECT id, time, pid, ppid, process_name, parent_process_name, broken, error_type, error_value, traceback
		FROM measurements ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer result.Close()

	var rows []models.Row
	for result.Next() {
		var row models.Row
		if err := result.Scan(&row.ID, &row.Seconds, &row.PID, &row.PPID,
			&row.ProcessName, &row.ParentProcessName, &row.Broken,
			&row.ErrorType, &row.ErrorValue, &row.Traceback); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, result.Err()
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable
func (s *SQLiteSink) HealthCheck() error {
	return s.db.Ping()
}
