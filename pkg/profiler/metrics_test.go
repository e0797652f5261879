package profiler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/psantana5/timeprofile/pkg/sink"
)

func TestCountersTrackOutcomes(t *testing.T) {
	ms := sink.NewMemorySink()

	before := Counters()

	m, _ := Start("counted", testConfig(ms))
	m.Stop()

	after := Counters()
	if after["measurements_started"] != before["measurements_started"]+1 {
		t.Error("measurements_started did not advance")
	}
	if after["measurements_finished"] != before["measurements_finished"]+1 {
		t.Error("measurements_finished did not advance")
	}
	if after["rows_written"] != before["rows_written"]+1 {
		t.Error("rows_written did not advance")
	}
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := RegisterMetrics(reg); err != nil {
		t.Fatalf("RegisterMetrics: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"timeprofile_rows_written_total",
		"timeprofile_lock_timeouts_total",
		"timeprofile_measurements_started_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered (got %v)", want, names)
		}
	}

	// Double registration must error, not panic
	if err := RegisterMetrics(reg); err == nil {
		t.Error("duplicate registration did not error")
	}
}

func TestMetricsHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body := rr.Body.String()
	if !strings.Contains(body, "timeprofile_measurements_total") {
		t.Errorf("metrics output missing counters:\n%s", body)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
}

func TestDropsHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	DropsHandler().ServeHTTP(rr, httptest.NewRequest("GET", "/drops", nil))

	body := strings.TrimSpace(rr.Body.String())
	if !strings.HasPrefix(body, "[") {
		t.Errorf("drops output is not a JSON array: %q", body)
	}
}
