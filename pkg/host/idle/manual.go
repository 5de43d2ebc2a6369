package idle

import (
	"time"

	"github.com/vango-dev/didact/pkg/host"
)

// Manual is a step-budget IdleScheduler. It is not safe for concurrent use.
type Manual struct {
	pending []func(host.Deadline)
	slices  int
}

// NewManual creates an empty Manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// RequestIdle implements host.IdleScheduler.
func (m *Manual) RequestIdle(cb func(host.Deadline)) {
	m.pending = append(m.pending, cb)
}

// Pending returns the number of queued callbacks.
func (m *Manual) Pending() int {
	return len(m.pending)
}

// Slices returns the number of slices run so far.
func (m *Manual) Slices() int {
	return m.slices
}

// RunSlice runs every callback queued before the call, each with a deadline
// that allows steps checks of TimeRemaining before reporting zero. Callbacks
// queued while running wait for the next slice. It returns the number of
// callbacks run.
func (m *Manual) RunSlice(steps int) int {
	batch := m.pending
	m.pending = nil
	for _, cb := range batch {
		cb(&StepDeadline{remaining: steps})
	}
	if len(batch) > 0 {
		m.slices++
	}
	return len(batch)
}

// Drain runs slices of the given size until no callbacks are pending or
// maxSlices slices have run (maxSlices <= 0 means no limit). It returns the
// number of slices run.
func (m *Manual) Drain(steps, maxSlices int) int {
	n := 0
	for len(m.pending) > 0 {
		if maxSlices > 0 && n >= maxSlices {
			break
		}
		m.RunSlice(steps)
		n++
	}
	return n
}

// StepDeadline is a host.Deadline that counts checks instead of time.
type StepDeadline struct {
	remaining int
}

// NewStepDeadline returns a deadline good for steps checks.
func NewStepDeadline(steps int) *StepDeadline {
	return &StepDeadline{remaining: steps}
}

// TimeRemaining consumes one step. It reports one millisecond per step left
// after this one, so a budget of N lets a caller that checks after each unit
// of work perform N units.
func (d *StepDeadline) TimeRemaining() time.Duration {
	if d.remaining > 0 {
		d.remaining--
	}
	return time.Duration(d.remaining) * time.Millisecond
}

// DidTimeout reports whether the budget is used up.
func (d *StepDeadline) DidTimeout() bool {
	return d.remaining <= 0
}

// Unlimited is a deadline that never runs out.
type Unlimited struct{}

// TimeRemaining implements host.Deadline.
func (Unlimited) TimeRemaining() time.Duration { return time.Duration(1<<63 - 1) }

// DidTimeout implements host.Deadline.
func (Unlimited) DidTimeout() bool { return false }
