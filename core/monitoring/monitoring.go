// Package monitoring defines the error reporting hook used for failures that
// are handled locally but should still reach an operator, such as a trainset
// skipped during a scheduling run.
package monitoring

import (
	"fmt"
	"sync"
	"time"
)

// Monitor reports errors to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards every report.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// RecordingMonitor keeps reported errors in memory. It is meant for tests and
// scenario runs.
type RecordingMonitor struct {
	mu     sync.Mutex
	Errors []error
	Tags   []map[string]string
}

func (m *RecordingMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, err)
	m.Tags = append(m.Tags, tags)
}

// Recover records a panic as an error tagged "panic" and panics again. It
// must be deferred directly.
func (m *RecordingMonitor) Recover() {
	if r := recover(); r != nil {
		m.CaptureException(fmt.Errorf("panic: %v", r), map[string]string{"panic": "true"})
		panic(r)
	}
}

func (m *RecordingMonitor) Flush(time.Duration) {}
