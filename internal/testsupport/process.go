package testsupport

import (
	"context"
	"sync"

	"clipdeck/internal/encoder"
	"clipdeck/internal/process"
)

// FakeHost records spawned invocations and hands out FakeHandles.
type FakeHost struct {
	// Err, when set, is returned by Spawn instead of a handle.
	Err error
	// SpawnFunc overrides Spawn entirely when set.
	SpawnFunc func(inv encoder.Invocation) (process.Handle, error)

	mu      sync.Mutex
	spawned []encoder.Invocation
	handles []*FakeHandle
	nextPID int
}

// Spawn implements process.Host.
func (h *FakeHost) Spawn(inv encoder.Invocation) (process.Handle, error) {
	if h.SpawnFunc != nil {
		return h.SpawnFunc(inv)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return nil, h.Err
	}
	h.nextPID++
	handle := NewFakeHandle(1000 + h.nextPID)
	h.spawned = append(h.spawned, inv)
	h.handles = append(h.handles, handle)
	return handle, nil
}

// Spawned returns a copy of every invocation passed to Spawn.
func (h *FakeHost) Spawned() []encoder.Invocation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]encoder.Invocation(nil), h.spawned...)
}

// Last returns the most recently spawned handle, or nil.
func (h *FakeHost) Last() *FakeHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.handles) == 0 {
		return nil
	}
	return h.handles[len(h.handles)-1]
}

// FakeHandle simulates a child process. By default it exits with
// InterruptExitCode when interrupted.
type FakeHandle struct {
	pid int

	mu                sync.Mutex
	interrupts        int
	InterruptErr      error
	ExitOnInterrupt   bool
	InterruptExitCode int

	once   sync.Once
	done   chan struct{}
	status process.ExitStatus
}

// NewFakeHandle returns a running fake process.
func NewFakeHandle(pid int) *FakeHandle {
	return &FakeHandle{
		pid:               pid,
		ExitOnInterrupt:   true,
		InterruptExitCode: 255,
		done:              make(chan struct{}),
	}
}

func (f *FakeHandle) PID() int { return f.pid }

func (f *FakeHandle) Interrupt() error {
	f.mu.Lock()
	f.interrupts++
	exit, code, err := f.ExitOnInterrupt, f.InterruptExitCode, f.InterruptErr
	f.mu.Unlock()
	if exit {
		f.Exit(code)
	}
	return err
}

func (f *FakeHandle) Wait() process.ExitStatus {
	<-f.done
	return f.status
}

func (f *FakeHandle) Exited() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Exit simulates the process ending on its own. Only the first call counts.
func (f *FakeHandle) Exit(code int) {
	f.once.Do(func() {
		f.status = process.ExitStatus{Code: code}
		close(f.done)
	})
}

// Interrupts reports how many times Interrupt was called.
func (f *FakeHandle) Interrupts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interrupts
}

// FakeRunner records invocations and returns canned output.
type FakeRunner struct {
	Output process.Output
	Err    error
	// Func overrides the canned result when set.
	Func func(ctx context.Context, inv encoder.Invocation) (process.Output, error)

	mu    sync.Mutex
	calls []encoder.Invocation
}

// Run implements process.Runner.
func (r *FakeRunner) Run(ctx context.Context, inv encoder.Invocation) (process.Output, error) {
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()
	if r.Func != nil {
		return r.Func(ctx, inv)
	}
	return r.Output, r.Err
}

// Calls returns a copy of every invocation passed to Run.
func (r *FakeRunner) Calls() []encoder.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]encoder.Invocation(nil), r.calls...)
}
