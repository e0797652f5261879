package sink

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/psantana5/timeprofile/pkg/models"
)

// PostgresSink appends rows to a PostgreSQL table for deployments that
// share one result store across many hosts. Server-side MVCC makes
// concurrent appends safe without any client-side lock.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink creates a PostgreSQL sink from config (DSN required)
func NewPostgresSink(config Config) (*PostgresSink, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("postgres sink requires a DSN")
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 10
	}
	maxIdle := config.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 5
	}
	lifetime := config.ConnMaxLifetime
	if lifetime == 0 {
		lifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresSink{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *PostgresSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS measurements (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL,
		time DOUBLE PRECISION NOT NULL,
		pid INTEGER NOT NULL,
		ppid INTEGER NOT NULL,
		process_name TEXT,
		parent_process_name TEXT,
		broken BOOLEAN NOT NULL,
		error_type TEXT,
		error_value TEXT,
		traceback TEXT,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_id ON measurements(id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WriteRow inserts one row
func (s *PostgresSink) WriteRow(row models.Row) error {
	_, err := s.db.Exec(`
		INSERT INTO measurements
		(id, time, pid, ppid, process_name, parent_process_name, broken, error_type, error_value, traceback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, row.ID, row.Seconds, row.PID, row.PPID, row.ProcessName, row.ParentProcessName,
		row.Broken, row.ErrorType, row.ErrorValue, row.Traceback)
	if err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}
	return nil
}

// Close closes the database
func (s *PostgresSink) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable
func (s *PostgresSink) HealthCheck() error {
	return s.db.Ping()
}
