package report

import (
	"fmt"
	"strings"
)

// PrometheusExport generates the counters in Prometheus text format.
// These are projections of per-row outcomes, nothing derived beyond
// the write success rate.
func PrometheusExport() string {
	snapshot := Global().Snapshot()

	var b strings.Builder

	b.WriteString("# HELP timeprofile_measurements_total Measurements by lifecycle state\n")
	b.WriteString("# TYPE timeprofile_measurements_total counter\n")
	b.WriteString(fmt.Sprintf("timeprofile_measurements_total{state=\"started\"} %d\n", snapshot["measurements_started"]))
	b.WriteString(fmt.Sprintf("timeprofile_measurements_total{state=\"finished\"} %d\n", snapshot["measurements_finished"]))
	b.WriteString(fmt.Sprintf("timeprofile_measurements_total{state=\"broken\"} %d\n", snapshot["measurements_broken"]))

	b.WriteString("\n# HELP timeprofile_rows_total Row writer outcomes\n")
	b.WriteString("# TYPE timeprofile_rows_total counter\n")
	b.WriteString(fmt.Sprintf("timeprofile_rows_total{outcome=\"written\"} %d\n", snapshot["rows_written"]))
	b.WriteString(fmt.Sprintf("timeprofile_rows_total{outcome=\"dropped\"} %d\n", snapshot["rows_dropped"]))
	b.WriteString(fmt.Sprintf("timeprofile_rows_total{outcome=\"error\"} %d\n", snapshot["write_errors"]))

	b.WriteString("\n# HELP timeprofile_lock_timeouts_total Lock waits that expired\n")
	b.WriteString("# TYPE timeprofile_lock_timeouts_total counter\n")
	b.WriteString(fmt.Sprintf("timeprofile_lock_timeouts_total %d\n", snapshot["lock_timeouts"]))

	finished := snapshot["measurements_finished"]
	if finished > 0 {
		rate := float64(snapshot["rows_written"]) / float64(finished)
		b.WriteString("\n# HELP timeprofile_write_rate Rows written per finished measurement (0-1)\n")
		b.WriteString("# TYPE timeprofile_write_rate gauge\n")
		b.WriteString(fmt.Sprintf("timeprofile_write_rate %.6f\n", rate))
	}

	return b.String()
}

// DropsJSON exports recent drops in JSON format
func DropsJSON() string {
	drops := GlobalDrops().Recent(50)

	if len(drops) == 0 {
		return "[]"
	}

	var b strings.Builder
	b.WriteString("[\n")
	for i, d := range drops {
		b.WriteString(fmt.Sprintf("  {\"id\":%q,\"pid\":%d,\"seconds\":%.6f,\"reason\":%q}",
			d.ID, d.PID, d.Seconds, d.Reason))
		if i < len(drops)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]")

	return b.String()
}
