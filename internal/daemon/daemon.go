package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"clipdeck/internal/api"
	"clipdeck/internal/apperrors"
	"clipdeck/internal/config"
	"clipdeck/internal/devices"
	"clipdeck/internal/encoder"
	"clipdeck/internal/exporter"
	"clipdeck/internal/fileutil"
	"clipdeck/internal/library"
	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/preflight"
	"clipdeck/internal/process"
	"clipdeck/internal/session"
)

// Options supplies the collaborators a Daemon drives. Nil Host and Runner
// fall back to the real process implementations.
type Options struct {
	Host    process.Host
	Runner  process.Runner
	Library *library.Store
	LogPath string
}

// Daemon owns the recording slot, the device catalog and the export
// pipeline, and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	runner   process.Runner
	builder  *encoder.Builder
	sessions *session.Manager
	catalog  *devices.Catalog
	exporter *exporter.Exporter
	prober   *media.Prober
	library  *library.Store
	logPath  string

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	api     *apiServer
	hotplug *hotplugMonitor
	cancel  context.CancelFunc

	running      atomic.Bool
	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running           bool
	PID               int
	Recording         session.Status
	LibraryDBPath     string
	LibraryCounts     map[library.Category]int
	LockFilePath      string
	LogPath           string
	HotplugMonitoring bool
	Checks            []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	host := opts.Host
	if host == nil {
		host = &process.ExecHost{LogDir: cfg.ToolLogDir(), Logger: logger}
	}
	runner := opts.Runner
	if runner == nil {
		runner = process.ExecRunner{}
	}

	builder := encoder.NewBuilder(api.BuilderOptions(cfg))
	prober := media.NewProber(runner, cfg.FFprobeBinary(), logger)
	logPath := opts.LogPath
	if logPath == "" {
		logPath = filepath.Join(cfg.Paths.LogDir, "clipdeck.log")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "clipdeck.lock")

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		runner:   runner,
		builder:  builder,
		sessions: session.NewManager(host, builder, logger),
		catalog:  devices.NewCatalog(runner, builder.DeviceProbe(), logger),
		exporter: exporter.New(runner, builder, prober, logger),
		prober:   prober,
		library:  opts.Library,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		shutdown: make(chan struct{}),
	}
	d.sessions.OnFinish(d.recordSession)
	d.sessions.BeforeSpawn(func(intent encoder.CaptureIntent) error {
		return fileutil.EnsureParentDir(intent.OutputPath)
	})
	return d, nil
}

// Start acquires the daemon lock and brings up the HTTP API and the hotplug monitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipdeck daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	srv, err := newAPIServer(d.cfg, d, d.logger)
	if err == nil {
		err = srv.start(runCtx)
	}
	if err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	var monitor *hotplugMonitor
	if d.cfg.Devices.HotplugMonitor {
		monitor = newHotplugMonitor(d.logger, d.catalog.Invalidate)
		if err := monitor.Start(runCtx); err != nil {
			logging.WarnWithContext(d.logger, "hotplug monitor unavailable", "hotplug_start_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "device catalog refreshes only on request"),
			)
		}
	}

	d.mu.Lock()
	d.api = srv
	d.hotplug = monitor
	d.cancel = cancel
	d.mu.Unlock()

	d.running.Store(true)
	d.logPreflight(runCtx)
	d.logger.Info("clipdeck daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop takes the API down, finalizes any active recording and releases the
// lock. The recording is finalized even when Start never succeeded, since
// IPC callers can record without the API.
func (d *Daemon) Stop() {
	d.mu.Lock()
	srv, monitor, cancel := d.api, d.hotplug, d.cancel
	d.api, d.hotplug, d.cancel = nil, nil, nil
	d.mu.Unlock()

	srv.stop()
	monitor.Stop()
	d.finalizeRecording()
	if cancel != nil {
		cancel()
	}

	if !d.running.Load() {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("clipdeck daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stopped"),
	)
}

func (d *Daemon) finalizeRecording() {
	if !d.sessions.Active() {
		return
	}
	result, err := d.sessions.Stop()
	switch {
	case errors.Is(err, apperrors.ErrNoActiveRecording):
	case err != nil:
		logging.WarnWithContext(d.logger, "failed to finalize recording on shutdown", "recording_finalize_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the recording file may be truncated"),
		)
	default:
		d.logger.Info("recording finalized on shutdown",
			logging.String(logging.FieldEventType, "recording_finalized"),
			logging.String(logging.FieldRecordingID, result.ID),
			logging.String("output_path", result.OutputPath),
		)
	}
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.library != nil {
		return d.library.Close()
	}
	return nil
}

// RequestShutdown asks the hosting process to exit. It is safe to call more than once.
func (d *Daemon) RequestShutdown() {
	d.shutdownOnce.Do(func() { close(d.shutdown) })
}

// ShutdownRequested is closed once RequestShutdown has been called.
func (d *Daemon) ShutdownRequested() <-chan struct{} {
	return d.shutdown
}

// Config returns the configuration the daemon was built with.
func (d *Daemon) Config() *config.Config {
	return d.cfg
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// APIAddress returns the bound HTTP address, or "" when the API is down.
func (d *Daemon) APIAddress() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	d.mu.Lock()
	monitor := d.hotplug
	d.mu.Unlock()

	status := Status{
		Running:           d.running.Load(),
		PID:               os.Getpid(),
		Recording:         d.sessions.Status(),
		LockFilePath:      d.lockPath,
		LogPath:           d.logPath,
		HotplugMonitoring: monitor.Running(),
		Checks:            preflight.RunAll(ctx, d.cfg, nil),
	}
	if d.library != nil {
		status.LibraryDBPath = d.library.Path()
		counts, err := d.library.Stats(ctx)
		if err != nil {
			d.logger.Warn("library stats unavailable", logging.Error(err))
		} else {
			status.LibraryCounts = counts
		}
	}
	return status
}

// StatusPayload converts a Status into its API representation.
func StatusPayload(cfg *config.Config, status Status) api.DaemonStatus {
	payload := api.DaemonStatus{
		Running:           status.Running,
		PID:               status.PID,
		Recording:         api.FromSessionStatus(status.Recording),
		LibraryDBPath:     status.LibraryDBPath,
		LockFilePath:      status.LockFilePath,
		LogPath:           status.LogPath,
		HotplugMonitoring: status.HotplugMonitoring,
		Dependencies:      api.FromDependencies(preflight.CheckSystemDeps(cfg)),
		Checks:            api.FromPreflight(status.Checks),
	}
	if len(status.LibraryCounts) > 0 {
		payload.LibraryCounts = make(map[string]int, len(status.LibraryCounts))
		for category, count := range status.LibraryCounts {
			payload.LibraryCounts[string(category)] = count
		}
	}
	return payload
}

func (d *Daemon) logPreflight(ctx context.Context) {
	for _, result := range preflight.RunAll(ctx, d.cfg, d.runner) {
		if result.Passed {
			d.logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "recordings or exports may fail"),
		)
	}
}
