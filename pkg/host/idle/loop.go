package idle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/didact/pkg/host"
)

// DefaultSliceBudget is the wall-clock budget given to each idle callback.
const DefaultSliceBudget = 5 * time.Millisecond

// Loop errors.
var (
	ErrLoopClosed  = errors.New("idle: loop closed")
	ErrLoopRunning = errors.New("idle: loop already running")
)

// PanicError is returned by Run when a task or idle callback panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("idle: task panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithSliceBudget sets the wall-clock budget per idle callback.
func WithSliceBudget(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.budget = d
		}
	}
}

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// withClock replaces time.Now in tests.
func withClock(now func() time.Time) LoopOption {
	return func(l *Loop) {
		l.now = now
	}
}

// Loop is a single-goroutine event loop implementing host.IdleScheduler.
//
// Everything submitted to the loop runs on the goroutine that called Run,
// one item at a time. Tasks run before idle callbacks; an idle callback
// requested while another runs waits until queued tasks have been drained.
type Loop struct {
	mu      sync.Mutex
	tasks   []func()
	idle    []func(host.Deadline)
	running bool
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	budget time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewLoop creates a loop. Call Run to start it.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		budget: DefaultSliceBudget,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SliceBudget returns the configured slice budget.
func (l *Loop) SliceBudget() time.Duration {
	return l.budget
}

// Submit queues task to run on the loop goroutine. Safe for concurrent use.
func (l *Loop) Submit(task func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()
	l.signal()
	return nil
}

// RequestIdle implements host.IdleScheduler. Safe for concurrent use;
// requests after Shutdown are dropped.
func (l *Loop) RequestIdle(cb func(host.Deadline)) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.idle = append(l.idle, cb)
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes tasks and idle callbacks until Shutdown is called or ctx is
// done. It returns nil after Shutdown, ctx.Err() on cancellation, or a
// *PanicError if a task panicked.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.done)

	for {
		if err := l.runTasks(); err != nil {
			l.close()
			return err
		}

		cb := l.popIdle()
		if cb != nil {
			if err := l.runIdle(cb); err != nil {
				l.close()
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			l.close()
			return ctx.Err()
		case <-l.stop:
			return nil
		case <-l.wake:
		}
	}
}

// Shutdown stops the loop after the item in progress and waits for Run to
// return or ctx to be done. Pending items are dropped.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	running := l.running
	l.mu.Unlock()
	l.close()
	if !running {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.tasks = nil
	l.idle = nil
	close(l.stop)
}

func (l *Loop) runTasks() error {
	for {
		select {
		case <-l.stop:
			return nil
		default:
		}
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return nil
		}
		task := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		if err := l.safeExecute(func() { task() }); err != nil {
			return err
		}
	}
}

func (l *Loop) popIdle() func(host.Deadline) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.idle) == 0 {
		return nil
	}
	cb := l.idle[0]
	l.idle = l.idle[1:]
	return cb
}

func (l *Loop) runIdle(cb func(host.Deadline)) error {
	d := &wallDeadline{end: l.now().Add(l.budget), now: l.now}
	return l.safeExecute(func() { cb(d) })
}

func (l *Loop) safeExecute(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("idle loop task panicked", "panic", r)
			err = &PanicError{Value: r}
		}
	}()
	fn()
	return nil
}

type wallDeadline struct {
	end time.Time
	now func() time.Time
}

func (d *wallDeadline) TimeRemaining() time.Duration {
	rem := d.end.Sub(d.now())
	if rem < 0 {
		return 0
	}
	return rem
}

func (d *wallDeadline) DidTimeout() bool {
	return d.TimeRemaining() == 0
}
