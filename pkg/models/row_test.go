package models

import (
	"testing"
)

func TestHeaderOrder(t *testing.T) {
	want := []string{
		"id", "time", "pid", "ppid", "process_name",
		"parent_process_name", "broken", "error_type", "error_value", "traceback",
	}
	got := Header()
	if len(got) != len(want) {
		t.Fatalf("header has %d columns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	row := Row{
		ID:                "computeTotal",
		Seconds:           1.234567,
		PID:               4321,
		PPID:              1,
		ProcessName:       "worker",
		ParentProcessName: "systemd",
		Broken:            true,
		ErrorType:         "*errors.errorString",
		ErrorValue:        "boom",
		Traceback:         "goroutine 1 [running]:\nmain.main()",
	}

	parsed, err := ParseRecord(row.Record())
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	if parsed != row {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, row)
	}
}

func TestRecordTimePrecision(t *testing.T) {
	// Spec requires at least millisecond precision; we encode microseconds
	row := Row{ID: "x", Seconds: 0.001234}
	if got := row.Record()[1]; got != "0.001234" {
		t.Errorf("time field = %q, want 0.001234", got)
	}
}

func TestParseRecordErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
	}{
		{"too few fields", []string{"a", "1.0"}},
		{"bad time", []string{"a", "nope", "1", "1", "p", "pp", "false", "", "", ""}},
		{"bad pid", []string{"a", "1.0", "nope", "1", "p", "pp", "false", "", "", ""}},
		{"bad broken", []string{"a", "1.0", "1", "1", "p", "pp", "maybe", "", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRecord(tt.fields); err == nil {
				t.Errorf("expected error for %v", tt.fields)
			}
		})
	}
}
