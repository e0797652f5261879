package report

import (
	"fmt"
	"strings"
	"testing"
)

func TestSnapshotReflectsCounters(t *testing.T) {
	m := &Metrics{}
	m.MeasurementsStarted.Add(3)
	m.MeasurementsFinished.Add(2)
	m.RowsWritten.Add(1)
	m.RowsDropped.Add(1)
	m.LockTimeouts.Add(1)

	snap := m.Snapshot()
	if snap["measurements_started"] != 3 {
		t.Errorf("measurements_started = %d, want 3", snap["measurements_started"])
	}
	if snap["rows_written"] != 1 || snap["rows_dropped"] != 1 {
		t.Errorf("writer outcomes = %d/%d, want 1/1", snap["rows_written"], snap["rows_dropped"])
	}
	if snap["lock_timeouts"] != 1 {
		t.Errorf("lock_timeouts = %d, want 1", snap["lock_timeouts"])
	}
}

func TestDropLogRing(t *testing.T) {
	log := NewDropLog(3)
	for i := 0; i < 5; i++ {
		log.Record(DropSample{ID: fmt.Sprintf("m-%d", i), Reason: "lock timeout"})
	}

	if log.Len() != 3 {
		t.Fatalf("ring retained %d samples, want 3", log.Len())
	}

	recent := log.Recent(3)
	// Oldest two must have been evicted
	if recent[0].ID != "m-2" || recent[2].ID != "m-4" {
		t.Errorf("ring contents = %v, want m-2..m-4", recent)
	}
}

func TestDropLogRecentBounds(t *testing.T) {
	log := NewDropLog(10)
	log.Record(DropSample{ID: "only"})

	if got := log.Recent(5); len(got) != 1 || got[0].ID != "only" {
		t.Errorf("Recent(5) = %v, want the single sample", got)
	}
}

func TestPrometheusExportFormat(t *testing.T) {
	out := PrometheusExport()

	for _, want := range []string{
		"timeprofile_measurements_total{state=\"started\"}",
		"timeprofile_rows_total{outcome=\"written\"}",
		"timeprofile_lock_timeouts_total",
		"# TYPE timeprofile_rows_total counter",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}
}

func TestDropsJSONEmpty(t *testing.T) {
	log := NewDropLog(5)
	// The global export uses the global log; test the empty shape on a
	// fresh ring via the same encoding path.
	if log.Len() != 0 {
		t.Fatal("fresh log not empty")
	}
	if out := DropsJSON(); !strings.HasPrefix(out, "[") {
		t.Errorf("DropsJSON not a JSON array: %s", out)
	}
}
