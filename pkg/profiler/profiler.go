// Package profiler measures elapsed wall-clock time around regions of
// code and appends one row per measurement to a shared result file.
// Many processes and goroutines can target the same file; the CSV sink
// serializes them with a cross-process advisory lock. The governing
// rule is that instrumentation must never crash or deadlock the
// measured workload: the only configurable trade-off is whether a lock
// timeout drops the row (default) or surfaces an error.
package profiler

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/psantana5/timeprofile/internal/procinfo"
	"github.com/psantana5/timeprofile/internal/report"
	"github.com/psantana5/timeprofile/pkg/models"
	"github.com/psantana5/timeprofile/pkg/sink"
)

// State is the lifecycle position of a measurement
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// fallbackID is used when no identifier is given and autonaming is off
// or fails.
const fallbackID = "unknown"

// Measurement tracks elapsed active time across start/pause/resume/stop
// for one eventual output row. Instances are owned by the code that
// creates them; only the result file is shared.
type Measurement struct {
	mu  sync.Mutex
	id  string
	cfg Config
	out sink.Sink

	state       State
	accumulated time.Duration
	lastResume  time.Time

	broken   bool
	errType  string
	errValue string
	trace    string

	emitted bool

	// now is swapped for a synthetic clock in tests
	now func() time.Time
}

// New creates an idle measurement. With an empty id and autonaming
// enabled, the identifier is derived from the calling function.
func New(id string, cfg Config) *Measurement {
	return newMeasurement(id, cfg, 3)
}

// newMeasurement builds a measurement; skip is the stack depth of the
// autonaming caller relative to callerName.
func newMeasurement(id string, cfg Config, skip int) *Measurement {
	cfg = cfg.normalized()

	if id == "" && cfg.Autonaming {
		id = callerName(skip)
	}
	if id == "" {
		id = fallbackID
	}

	out := cfg.Sink
	if out == nil {
		out = sink.NewCSVSink(cfg.ResultPath, cfg.Timeout)
	}

	m := &Measurement{
		id:    id,
		cfg:   cfg,
		out:   out,
		state: StateIdle,
		now:   time.Now,
	}

	// Safety net: an abandoned measurement still emits its row when
	// the collector reclaims it. Cleared on explicit Stop.
	runtime.SetFinalizer(m, (*Measurement).reclaim)

	return m
}

// ID returns the resolved identifier
func (m *Measurement) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// State returns the current lifecycle state
func (m *Measurement) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Elapsed returns the active time accumulated so far, including the
// open interval when running.
func (m *Measurement) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateRunning {
		return m.accumulated + m.now().Sub(m.lastResume)
	}
	return m.accumulated
}

// Start begins timing. Valid only from idle: starting twice is an
// error, not a no-op.
func (m *Measurement) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return &InvalidStateError{Op: "start", State: m.state}
	}

	m.lastResume = m.now()
	m.state = StateRunning
	report.Global().MeasurementsStarted.Add(1)
	return nil
}

// Pause excludes the following interval from the measurement. Valid
// only while running.
func (m *Measurement) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRunning {
		return &InvalidStateError{Op: "pause", State: m.state}
	}

	m.accumulated += m.now().Sub(m.lastResume)
	m.lastResume = time.Time{}
	m.state = StatePaused
	return nil
}

// Resume continues timing after a pause
func (m *Measurement) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePaused {
		return &InvalidStateError{Op: "resume", State: m.state}
	}

	m.lastResume = m.now()
	m.state = StateRunning
	return nil
}

// Stop freezes the measurement and writes its row. Calling Stop on an
// already stopped measurement is a no-op; stopping before Start is an
// error. The returned error is non-nil only for an idle stop, a lock
// timeout with IgnoreTimeout disabled, or a sink failure.
func (m *Measurement) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateStopped:
		return nil
	case StateIdle:
		return &InvalidStateError{Op: "stop", State: m.state}
	case StateRunning:
		m.accumulated += m.now().Sub(m.lastResume)
		m.lastResume = time.Time{}
	}
	m.state = StateStopped

	runtime.SetFinalizer(m, nil)
	return m.emitLocked()
}

// MarkBroken attaches failure context to the eventual row. The scoped
// and wrapped entry points call it on panics and returned errors; in
// manual mode it is available for parity and has no effect after the
// row is emitted.
func (m *Measurement) MarkBroken(kind, message, trace string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emitted {
		return
	}
	m.broken = true
	m.errType = kind
	m.errValue = message
	m.trace = trace
}

// reclaim is the finalizer path: force-stop and emit exactly one row
// for a measurement abandoned without Stop. Timing is best-effort and
// up to the collector; errors never surface here.
func (m *Measurement) reclaim() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateStopped:
		return
	case StateIdle:
		// Never started, nothing was measured
		return
	case StateRunning:
		m.accumulated += m.now().Sub(m.lastResume)
		m.lastResume = time.Time{}
	}
	m.state = StateStopped
	m.emitLocked()
}

// emitLocked assembles and writes the row. Caller holds m.mu.
func (m *Measurement) emitLocked() error {
	if m.emitted {
		return nil
	}
	m.emitted = true

	report.Global().MeasurementsFinished.Add(1)
	if m.broken {
		report.Global().MeasurementsBroken.Add(1)
	}

	meta := procinfo.Take()
	row := assembleRow(m.id, m.accumulated, meta, m.broken, m.errType, m.errValue, m.trace)

	if m.cfg.Verbose {
		m.cfg.LogFunction(m.formatResult(row))
	}

	if err := m.out.WriteRow(row); err != nil {
		if sink.IsLockTimeout(err) {
			report.Global().LockTimeouts.Add(1)
			if m.cfg.IgnoreTimeout {
				// Deliberate policy: the row is sacrificed so the
				// measured workload is never blocked
				report.Global().RowsDropped.Add(1)
				report.GlobalDrops().Record(report.DropSample{
					ID:      row.ID,
					PID:     row.PID,
					Seconds: row.Seconds,
					Reason:  "lock timeout",
				})
				if m.cfg.Verbose {
					m.cfg.LogFunction(fmt.Sprintf(
						"[profiler] skipped saving results from %s (%s / pid %d), lock timed out after %s",
						row.ID, row.ProcessName, row.PID, m.cfg.Timeout))
				}
				return nil
			}
			return err
		}
		report.Global().WriteErrors.Add(1)
		return err
	}

	report.Global().RowsWritten.Add(1)
	return nil
}

// assembleRow is the pure row assembler: a measurement outcome plus a
// metadata snapshot, no side effects.
func assembleRow(id string, elapsed time.Duration, meta procinfo.Snapshot, broken bool, errType, errValue, trace string) models.Row {
	return models.Row{
		ID:                id,
		Seconds:           elapsed.Seconds(),
		PID:               meta.PID,
		PPID:              meta.PPID,
		ProcessName:       meta.ProcessName,
		ParentProcessName: meta.ParentProcessName,
		Broken:            broken,
		ErrorType:         errType,
		ErrorValue:        errValue,
		Traceback:         trace,
	}
}

// formatResult builds the verbose result line
func (m *Measurement) formatResult(row models.Row) string {
	id := row.ID
	if m.cfg.AllowFormatting && len(id) > 30 {
		id = id[:27] + "..."
	}
	flag := ""
	if row.Broken {
		flag = "(broken)"
	}
	return fmt.Sprintf("[profiler] %-30s - %-23s - process %s/%d %s",
		id, fmt.Sprintf("%.5f seconds", row.Seconds), row.ProcessName, row.PID, flag)
}

// callerName resolves the function name skip frames up the stack,
// trimmed to its base name. Returns "" when the stack cannot be read.
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return funcBaseName(fn.Name())
}

// funcBaseName trims a fully qualified function name like
// "github.com/x/pkg.(*T).Method" down to "Method".
func funcBaseName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	if i := strings.LastIndex(full, "."); i >= 0 {
		full = full[i+1:]
	}
	return full
}
