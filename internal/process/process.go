package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"clipdeck/internal/apperrors"
	"clipdeck/internal/encoder"
	"clipdeck/internal/logging"
)

// ExitStatus describes how a child process ended.
type ExitStatus struct {
	Code int
	Err  error
}

// Success reports a clean zero exit.
func (s ExitStatus) Success() bool { return s.Err == nil && s.Code == 0 }

// Handle is a live child process.
type Handle interface {
	PID() int
	// Interrupt asks the process to finish gracefully. It is a no-op once the
	// process has exited or where the platform has no interrupt signal.
	Interrupt() error
	// Wait blocks until exit. It may be called any number of times.
	Wait() ExitStatus
	// Exited reports whether the process has already been reaped.
	Exited() bool
}

// Host starts long-running child processes.
type Host interface {
	Spawn(inv encoder.Invocation) (Handle, error)
}

// ExecHost spawns real processes and streams their stderr into LogDir.
type ExecHost struct {
	LogDir string
	Logger *slog.Logger
}

// Spawn starts inv. Its stderr is written to a per-process log under LogDir
// when LogDir is set.
func (h *ExecHost) Spawn(inv encoder.Invocation) (Handle, error) {
	logger := logging.NewComponentLogger(h.Logger, "process")
	cmd := exec.Command(inv.Program, inv.Args...) //nolint:gosec

	var logFile *os.File
	if h.LogDir != "" {
		if err := os.MkdirAll(h.LogDir, 0o755); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrIO, "spawn", "create tool log directory", err)
		}
		name := fmt.Sprintf("capture-%s.log", time.Now().UTC().Format("20060102T150405.000Z"))
		file, err := os.Create(filepath.Join(h.LogDir, name))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrIO, "spawn", "create tool log", err)
		}
		fmt.Fprintf(file, "# %s\n", inv.String())
		logFile = file
		cmd.Stderr = file
	}

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, startError(inv.Program, err)
	}

	handle := &execHandle{cmd: cmd, done: make(chan struct{}), logFile: logFile}
	go handle.reap()

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "process_spawned"),
		logging.Int("pid", cmd.Process.Pid),
		logging.String("program", inv.Program),
	}
	if logFile != nil {
		attrs = append(attrs, logging.String("tool_log", logFile.Name()))
	}
	logger.Debug("process spawned", logging.Args(attrs...)...)
	return handle, nil
}

type execHandle struct {
	cmd     *exec.Cmd
	done    chan struct{}
	logFile *os.File

	once   sync.Once
	status ExitStatus
}

func (h *execHandle) reap() {
	err := h.cmd.Wait()
	status := ExitStatus{Code: h.cmd.ProcessState.ExitCode()}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		status.Err = err
	}
	if h.logFile != nil {
		h.logFile.Close()
	}
	h.once.Do(func() {
		h.status = status
		close(h.done)
	})
}

func (h *execHandle) PID() int { return h.cmd.Process.Pid }

func (h *execHandle) Interrupt() error {
	if h.Exited() {
		return nil
	}
	err := interrupt(h.cmd.Process)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (h *execHandle) Wait() ExitStatus {
	<-h.done
	return h.status
}

func (h *execHandle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Output is the captured result of a one-shot invocation.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes one-shot invocations to completion.
type Runner interface {
	Run(ctx context.Context, inv encoder.Invocation) (Output, error)
}

// ExecRunner runs invocations with os/exec.
type ExecRunner struct{}

// Run executes inv and captures its output. Only a failure to start the
// program is an error; a non-zero exit is reported in Output.ExitCode.
func (ExecRunner) Run(ctx context.Context, inv encoder.Invocation) (Output, error) {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, apperrors.Wrap(apperrors.ErrExternalToolFailed, "run "+inv.Program, "cancelled", ctxErr)
		}
		return out, nil
	}
	return out, startError(inv.Program, err)
}

func startError(program string, err error) error {
	return apperrors.Wrap(apperrors.ErrExternalToolUnavailable, "start "+program, "", err)
}
