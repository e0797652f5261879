package profiler

import (
	"fmt"
	"reflect"
	"runtime"
	"runtime/debug"
)

// Start creates a measurement and begins timing immediately. The
// caller owns the Stop; pair it with defer for scoped usage:
//
//	m, _ := profiler.Start("load", profiler.DefaultConfig())
//	defer m.Stop()
func Start(id string, cfg Config) (*Measurement, error) {
	m := newMeasurement(id, cfg, 3)
	if err := m.Start(); err != nil {
		return nil, err
	}
	return m, nil
}

// Do runs fn inside a measurement: the scoped-block entry point. A
// panic or a returned error marks the row broken before it is written,
// and then propagates unchanged; the profiler observes failures, it
// never swallows them.
func Do(id string, cfg Config, fn func() error) error {
	m := newMeasurement(id, cfg, 3)
	return m.run(fn)
}

// Wrap turns fn into a measured function: the decorator entry point.
// Each invocation creates a fresh measurement. With an empty id and
// autonaming enabled the identifier is the wrapped function's name.
// The adapter holds only plain data, so it can be rebuilt identically
// in a different process image.
func Wrap(id string, cfg Config, fn func() error) func() error {
	if id == "" && cfg.Autonaming {
		id = funcName(fn)
	}
	if id == "" {
		id = fallbackID
	}
	return func() error {
		m := newMeasurement(id, cfg, 3)
		return m.run(fn)
	}
}

// run drives one wrapped invocation with error capture
func (m *Measurement) run(fn func() error) error {
	if err := m.Start(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			m.MarkBroken(fmt.Sprintf("%T", r), fmt.Sprint(r), string(debug.Stack()))
			m.Stop()
			// The row is out; the panic continues unchanged
			panic(r)
		}
	}()

	err := fn()
	if err != nil {
		m.MarkBroken(fmt.Sprintf("%T", err), err.Error(), string(debug.Stack()))
	}

	if stopErr := m.Stop(); stopErr != nil && err == nil {
		return stopErr
	}
	return err
}

// funcName resolves the name of a wrapped function
func funcName(fn func() error) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return ""
	}
	return funcBaseName(f.Name())
}
