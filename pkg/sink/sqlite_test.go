package sink

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/timeprofile/pkg/models"
)

// TestSQLiteConcurrentAppends verifies concurrent appenders don't lose
// rows or hit SQLITE_BUSY with the WAL configuration.
func TestSQLiteConcurrentAppends(t *testing.T) {
	s, err := NewSQLiteSink(filepath.Join(t.TempDir(), "profile"))
	require.NoError(t, err)
	defer s.Close()

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			row := models.Row{
				ID:      fmt.Sprintf("writer-%d", idx),
				Seconds: 0.01,
				PID:     idx,
			}
			if err := s.WriteRow(row); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("writer failed: %v", err)
	}

	rows, err := s.ReadRows()
	require.NoError(t, err)
	assert.Len(t, rows, writers)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s, err := NewSQLiteSink(filepath.Join(t.TempDir(), "profile"))
	require.NoError(t, err)
	defer s.Close()

	want := models.Row{
		ID:                "broken-run",
		Seconds:           2.5,
		PID:               100,
		PPID:              1,
		ProcessName:       "worker",
		ParentProcessName: "init",
		Broken:            true,
		ErrorType:         "*errors.errorString",
		ErrorValue:        "boom",
		Traceback:         "stack",
	}
	require.NoError(t, s.WriteRow(want))

	rows, err := s.ReadRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, want, rows[0])

	assert.NoError(t, s.HealthCheck())
}
