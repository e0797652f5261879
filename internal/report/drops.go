package report

import "sync"

// DropSample records one abandoned row for debugging: instant root
// cause for missing data without log diving.
type DropSample struct {
	ID      string  `json:"id"`
	PID     int     `json:"pid"`
	Seconds float64 `json:"seconds"`
	Reason  string  `json:"reason"`
}

// DropLog maintains a ring buffer of the most recent drops (last N)
type DropLog struct {
	samples []DropSample
	maxSize int
	mu      sync.RWMutex
}

var globalDropLog = NewDropLog(50) // Keep last 50 drops

// NewDropLog creates a drop log with fixed size
func NewDropLog(maxSize int) *DropLog {
	return &DropLog{
		samples: make([]DropSample, 0, maxSize),
		maxSize: maxSize,
	}
}

// GlobalDrops returns the global drop log
func GlobalDrops() *DropLog {
	return globalDropLog
}

// Record adds a drop sample (ring buffer: full means drop oldest)
func (d *DropLog) Record(sample DropSample) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.samples) >= d.maxSize {
		d.samples = d.samples[1:]
	}
	d.samples = append(d.samples, sample)
}

// Recent returns up to n most recent samples, newest last
func (d *DropLog) Recent(n int) []DropSample {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if n > len(d.samples) {
		n = len(d.samples)
	}
	out := make([]DropSample, n)
	copy(out, d.samples[len(d.samples)-n:])
	return out
}

// Len returns the number of retained samples
func (d *DropLog) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.samples)
}
