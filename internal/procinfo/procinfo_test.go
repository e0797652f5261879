package procinfo

import (
	"os"
	"testing"
)

func TestTakeIdentity(t *testing.T) {
	snap := Take()

	if snap.PID != os.Getpid() {
		t.Errorf("PID = %d, want %d", snap.PID, os.Getpid())
	}
	if snap.PPID != os.Getppid() {
		t.Errorf("PPID = %d, want %d", snap.PPID, os.Getppid())
	}
	// Our own process always has a resolvable name
	if snap.ProcessName == "" {
		t.Error("ProcessName is empty for the current process")
	}
}

func TestNameForUnknownPid(t *testing.T) {
	// Pid close to the max is effectively never alive; the lookup must
	// degrade to "" rather than fail.
	if name := NameFor(1 << 22); name != "" {
		t.Errorf("NameFor(unused pid) = %q, want empty", name)
	}
}
