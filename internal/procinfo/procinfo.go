// Package procinfo answers point-in-time questions about the current
// process and its parent. Lookups are evaluated when a measurement
// finishes, not when it starts, so a long-running measurement reports
// the process that existed at stop time.
package procinfo

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot holds the process identity recorded on each row.
type Snapshot struct {
	PID               int
	PPID              int
	ProcessName       string
	ParentProcessName string
}

// Take captures the current process identity. Name lookups that fail
// (process gone, permission denied) degrade to empty strings instead
// of failing the caller.
func Take() Snapshot {
	pid := os.Getpid()
	ppid := os.Getppid()
	return Snapshot{
		PID:               pid,
		PPID:              ppid,
		ProcessName:       NameFor(pid),
		ParentProcessName: NameFor(ppid),
	}
}

// NameFor returns the executable name for a pid, or "" if it cannot
// be resolved.
func NameFor(pid int) string {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := proc.Name()
	if err != nil {
		return ""
	}
	return name
}
