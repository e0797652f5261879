package profiler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/psantana5/timeprofile/internal/report"
)

// Counters returns a snapshot of the machinery counters: measurements
// started/finished/broken and writer outcomes. These describe the
// profiler itself, never the contents of recorded rows.
func Counters() map[string]uint64 {
	return report.Global().Snapshot()
}

// counterNames maps snapshot keys to metric help text
var counterNames = map[string]string{
	"measurements_started":  "Measurements started",
	"measurements_finished": "Measurements finalized (row assembled)",
	"measurements_broken":   "Measurements finalized by an error",
	"rows_written":          "Rows durably appended to the result sink",
	"rows_dropped":          "Rows abandoned under the ignore-timeout policy",
	"write_errors":          "Sink failures other than lock timeouts",
	"lock_timeouts":         "Lock waits that expired",
}

// RegisterMetrics exposes the machinery counters through a Prometheus
// registerer.
func RegisterMetrics(reg prometheus.Registerer) error {
	for name, help := range counterNames {
		key := name
		c := prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: "timeprofile",
				Name:      key + "_total",
				Help:      help,
			},
			func() float64 {
				return float64(report.Global().Snapshot()[key])
			},
		)
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MetricsHandler serves the counters in Prometheus text format,
// merging anything registered with the default registry.
func MetricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")

		io.WriteString(w, report.PrometheusExport())

		families, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			return
		}
		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range families {
			if err := encoder.Encode(mf); err != nil {
				return
			}
		}
		w.Write([]byte("\n"))
		w.Write(buf.Bytes())
	})
}

// DropsHandler serves the recent dropped-row samples as JSON
func DropsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, report.DropsJSON())
	})
}
