package sink

import (
	"sync"

	"github.com/psantana5/timeprofile/pkg/models"
)

// MemorySink collects rows in memory. Used by tests and as the inner
// sink when only the span bridge output is wanted.
type MemorySink struct {
	mu   sync.Mutex
	rows []models.Row
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// WriteRow appends the row
func (s *MemorySink) WriteRow(row models.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return nil
}

// Rows returns a copy of everything written so far
func (s *MemorySink) Rows() []models.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Close is a no-op
func (s *MemorySink) Close() error {
	return nil
}
