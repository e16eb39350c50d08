package daemonrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"clipdeck/internal/config"
	"clipdeck/internal/daemon"
	"clipdeck/internal/daemonctl"
	"clipdeck/internal/deps"
	"clipdeck/internal/ipc"
	"clipdeck/internal/library"
	"clipdeck/internal/logging"
	"clipdeck/internal/preflight"
	"clipdeck/internal/process"
)

const currentLogName = "clipdeck.log"

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	Diagnostic  bool
	SocketPath  string
}

// Run starts the clipdeck daemon runtime loop. It returns when the process
// is signalled or a client asks the daemon to stop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("clipdeck-%s.log", runID))

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if opts.Diagnostic {
		var closer io.Closer
		logger, closer = enableDiagnostics(logger, cfg, runID)
		if closer != nil {
			defer closer.Close()
		}
	}

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", currentLogName, err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "clipdeck-*.log", Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: filepath.Join(cfg.Paths.LogDir, "debug"), Pattern: "clipdeck-*.log"},
		logging.RetentionTarget{Dir: cfg.ToolLogDir(), Pattern: "*.log"},
	)
	pidPath := filepath.Join(cfg.Paths.LogDir, daemonctl.PIDFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	var store *library.Store
	if cfg.Library.Enabled {
		store, err = library.Open(cfg)
		if err != nil {
			logging.ErrorWithContext(logger, "open library store", "library_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove library.db if the schema is from another version"),
			)
			return err
		}
	}

	d, err := daemon.New(cfg, logger, daemon.Options{
		Host:    &process.ExecHost{LogDir: cfg.ToolLogDir(), Logger: logger},
		Runner:  process.ExecRunner{},
		Library: store,
		LogPath: logPath,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := strings.TrimSpace(opts.SocketPath)
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logging.WarnWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check api_bind and that no other daemon holds the lock"),
			logging.String(logging.FieldImpact, "HTTP API unavailable until started over IPC"),
		)
	}

	select {
	case <-signalCtx.Done():
		logger.Info("clipdeck daemon shutting down", logging.String("reason", "signal"))
	case <-d.ShutdownRequested():
		logger.Info("clipdeck daemon shutting down", logging.String("reason", "stop requested"))
	}
	return nil
}

// enableDiagnostics tees every record into a JSON debug log tagged with a
// fresh session ID. On failure the base logger is returned unchanged.
func enableDiagnostics(logger *slog.Logger, cfg *config.Config, runID string) (*slog.Logger, io.Closer) {
	sessionID := uuid.NewString()
	debugDir := filepath.Join(cfg.Paths.LogDir, "debug")
	debugLogPath := filepath.Join(debugDir, fmt.Sprintf("clipdeck-%s.log", runID))

	handler, closer, err := logging.NewJSONFileHandler(debugLogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to initialize debug logger: %v\n", err)
		return logger, nil
	}
	logger = logging.WithSessionID(logging.TeeLogger(logger, handler), sessionID)
	if err := ensureCurrentLogPointer(debugDir, debugLogPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update debug/%s link: %v\n", currentLogName, err)
	}
	logger.Info("diagnostic mode enabled",
		logging.String(logging.FieldEventType, "diagnostic_mode_enabled"),
		logging.String("debug_log_path", debugLogPath),
	)
	return logger, closer
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, currentLogName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("input_format", cfg.Encoder.InputFormat),
		logging.Bool("library_enabled", cfg.Library.Enabled),
		logging.Bool("hotplug_monitor", cfg.Devices.HotplugMonitor),
		logging.Bool("api_token_present", strings.TrimSpace(cfg.Paths.APIToken) != ""),
	}
	statuses := preflight.CheckSystemDeps(cfg)
	for _, status := range statuses {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
	for _, status := range statuses {
		if status.Available || status.Optional {
			continue
		}
		logMissing(logger, status)
	}
}

func logMissing(logger *slog.Logger, status deps.Status) {
	logging.WarnWithContext(logger, "required dependency missing", "dependency_missing",
		logging.String("dependency", status.Name),
		logging.String("detail", status.Detail),
		logging.String(logging.FieldErrorHint, "install "+status.Command+" or set its path in the [encoder] config section"),
		logging.String(logging.FieldImpact, "recordings and exports will fail"),
	)
}
