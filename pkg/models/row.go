package models

import (
	"fmt"
	"strconv"
)

// Row is one immutable record written to the shared result file.
// One row is produced per finished measurement and is never mutated
// after assembly.
type Row struct {
	ID                string  `json:"id"`
	Seconds           float64 `json:"time"`
	PID               int     `json:"pid"`
	PPID              int     `json:"ppid"`
	ProcessName       string  `json:"process_name"`
	ParentProcessName string  `json:"parent_process_name"`
	Broken            bool    `json:"broken"`
	ErrorType         string  `json:"error_type"`
	ErrorValue        string  `json:"error_value"`
	Traceback         string  `json:"traceback"`
}

// Header returns the column names in file order.
func Header() []string {
	return []string{
		"id", "time", "pid", "ppid", "process_name",
		"parent_process_name", "broken", "error_type", "error_value", "traceback",
	}
}

// Record encodes the row as CSV fields in header order.
// Elapsed time is fixed to six decimals (microsecond resolution).
func (r Row) Record() []string {
	return []string{
		r.ID,
		strconv.FormatFloat(r.Seconds, 'f', 6, 64),
		strconv.Itoa(r.PID),
		strconv.Itoa(r.PPID),
		r.ProcessName,
		r.ParentProcessName,
		strconv.FormatBool(r.Broken),
		r.ErrorType,
		r.ErrorValue,
		r.Traceback,
	}
}

// ParseRecord decodes CSV fields back into a Row
func ParseRecord(fields []string) (Row, error) {
	if len(fields) != len(Header()) {
		return Row{}, fmt.Errorf("expected %d fields, got %d", len(Header()), len(fields))
	}

	seconds, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid time field %q: %w", fields[1], err)
	}
	pid, err := strconv.Atoi(fields[2])
	if err != nil {
		return Row{}, fmt.Errorf("invalid pid field %q: %w", fields[2], err)
	}
	ppid, err := strconv.Atoi(fields[3])
	if err != nil {
		return Row{}, fmt.Errorf("invalid ppid field %q: %w", fields[3], err)
	}
	broken, err := strconv.ParseBool(fields[6])
	if err != nil {
		return Row{}, fmt.Errorf("invalid broken field %q: %w", fields[6], err)
	}

	return Row{
		ID:                fields[0],
		Seconds:           seconds,
		PID:               pid,
		PPID:              ppid,
		ProcessName:       fields[4],
		ParentProcessName: fields[5],
		Broken:            broken,
		ErrorType:         fields[7],
		ErrorValue:        fields[8],
		Traceback:         fields[9],
	}, nil
}
