package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipdeck/internal/apperrors"
	"clipdeck/internal/encoder"
	"clipdeck/internal/logging"
	"clipdeck/internal/process"
)

// Finish reasons reported in Result.
const (
	ReasonStopped = "stopped"
	ReasonExited  = "exited"
)

// Info describes the active recording.
type Info struct {
	ID         string              `json:"id"`
	OutputPath string              `json:"output_path"`
	Type       encoder.CaptureKind `json:"recording_type"`
	StartedAt  time.Time           `json:"started_at"`
	PID        int                 `json:"pid"`
}

// Result describes a recording that has ended, either through Stop or
// because the encoder exited on its own.
type Result struct {
	Info
	ExitCode   int       `json:"exit_code"`
	FinishedAt time.Time `json:"finished_at"`
	Reason     string    `json:"reason"`
	Error      string    `json:"error,omitempty"`
}

// Duration is the wall-clock length of the session.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Status is a point-in-time view of the session slot.
type Status struct {
	Active  bool  `json:"active"`
	Current *Info `json:"current,omitempty"`
}

type activeSession struct {
	info   Info
	handle process.Handle
}

// Manager owns the single recording slot. At most one capture process exists
// at a time; every read and transition of the slot holds mu.
type Manager struct {
	host    process.Host
	builder *encoder.Builder
	logger  *slog.Logger

	mu          sync.Mutex
	slot        *activeSession
	onFinish    func(Result)
	beforeSpawn func(encoder.CaptureIntent) error
}

// NewManager constructs an idle manager.
func NewManager(host process.Host, builder *encoder.Builder, logger *slog.Logger) *Manager {
	return &Manager{
		host:    host,
		builder: builder,
		logger:  logging.NewComponentLogger(logger, "session"),
	}
}

// OnFinish registers fn to run, outside the lock, for every ended session.
func (m *Manager) OnFinish(fn func(Result)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFinish = fn
}

// BeforeSpawn registers fn to run once the slot is known to be free and the
// invocation has been built. An error from fn aborts the start.
func (m *Manager) BeforeSpawn(fn func(encoder.CaptureIntent) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeSpawn = fn
}

// Start builds and spawns a capture for intent. It fails with
// ErrAlreadyRecording while another capture is live.
func (m *Manager) Start(intent encoder.CaptureIntent) (Info, error) {
	info, reaped, err := m.start(intent)
	m.publish(reaped)
	if err != nil {
		return Info{}, err
	}
	m.logger.Info("recording started",
		logging.String(logging.FieldEventType, "recording_started"),
		logging.String(logging.FieldRecordingID, info.ID),
		logging.String("recording_type", string(info.Type)),
		logging.String("output", info.OutputPath),
		logging.Int("pid", info.PID),
	)
	return info, nil
}

func (m *Manager) start(intent encoder.CaptureIntent) (Info, *Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := m.reapLocked()
	if m.slot != nil {
		return Info{}, reaped, apperrors.Wrap(apperrors.ErrAlreadyRecording, "start recording",
			fmt.Sprintf("recording to %s is in progress", m.slot.info.OutputPath), nil)
	}

	inv, err := m.builder.Capture(intent)
	if err != nil {
		return Info{}, reaped, err
	}
	if m.beforeSpawn != nil {
		if err := m.beforeSpawn(intent); err != nil {
			return Info{}, reaped, err
		}
	}
	m.logger.Debug("spawning capture",
		logging.String(logging.FieldEventType, "capture_invocation"),
		logging.String("command", inv.String()),
	)
	handle, err := m.host.Spawn(inv)
	if err != nil {
		return Info{}, reaped, err
	}

	info := Info{
		ID:         uuid.NewString(),
		OutputPath: intent.OutputPath,
		Type:       intent.Kind,
		StartedAt:  time.Now().UTC(),
		PID:        handle.PID(),
	}
	m.slot = &activeSession{info: info, handle: handle}
	return info, reaped, nil
}

// Stop takes the active capture out of the slot, interrupts it so the encoder
// can finalize the container, and waits for it to exit. The slot is empty as
// soon as Stop is called, even if the interrupt fails.
func (m *Manager) Stop() (Result, error) {
	active := m.take()
	if active == nil {
		return Result{}, apperrors.Wrap(apperrors.ErrNoActiveRecording, "stop recording", "no recording in progress", nil)
	}
	logger := m.logger.With(logging.String(logging.FieldRecordingID, active.info.ID))

	reason := ReasonExited
	if !active.handle.Exited() {
		reason = ReasonStopped
		if err := active.handle.Interrupt(); err != nil {
			logging.WarnWithContext(logger, "interrupt failed; waiting for encoder exit", "interrupt_failed",
				logging.Error(err),
				logging.Int("pid", active.info.PID),
				logging.String(logging.FieldImpact, "output may be truncated if the encoder cannot finalize"),
				logging.String(logging.FieldErrorHint, "check the tool log for the encoder's last messages"),
			)
		}
	}
	status := active.handle.Wait()
	result := finish(active, status, reason)

	logger.Info("recording stopped",
		logging.String(logging.FieldEventType, "recording_stopped"),
		logging.String("output", result.OutputPath),
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("duration", result.Duration()),
	)
	m.publish(&result)
	return result, nil
}

func (m *Manager) take() *activeSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := m.slot
	m.slot = nil
	return active
}

// Status reports whether a capture is live. A capture whose process already
// exited is reaped first.
func (m *Manager) Status() Status {
	st, reaped := m.status()
	m.publish(reaped)
	return st
}

func (m *Manager) status() (Status, *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reaped := m.reapLocked()
	if m.slot == nil {
		return Status{}, reaped
	}
	info := m.slot.info
	return Status{Active: true, Current: &info}, reaped
}

// Active is shorthand for Status().Active.
func (m *Manager) Active() bool {
	return m.Status().Active
}

// reapLocked clears a slot whose process has exited. Callers hold mu.
func (m *Manager) reapLocked() *Result {
	if m.slot == nil || !m.slot.handle.Exited() {
		return nil
	}
	active := m.slot
	m.slot = nil
	result := finish(active, active.handle.Wait(), ReasonExited)
	logging.WarnWithContext(m.logger, "encoder exited before stop", "recording_exited",
		logging.String(logging.FieldRecordingID, result.ID),
		logging.Int("exit_code", result.ExitCode),
		logging.Alert("capture_ended_early"),
		logging.String(logging.FieldImpact, "recording ended early"),
		logging.String(logging.FieldErrorHint, "check the tool log in log_dir/tool"),
	)
	return &result
}

func (m *Manager) publish(result *Result) {
	if result == nil {
		return
	}
	m.mu.Lock()
	fn := m.onFinish
	m.mu.Unlock()
	if fn != nil {
		fn(*result)
	}
}

func finish(active *activeSession, status process.ExitStatus, reason string) Result {
	result := Result{
		Info:       active.info,
		ExitCode:   status.Code,
		FinishedAt: time.Now().UTC(),
		Reason:     reason,
	}
	if status.Err != nil {
		result.Error = status.Err.Error()
	}
	return result
}
