package daemon

import (
	"context"
	"log/slog"
	"path"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"clipdeck/internal/logging"
)

// hotplugMonitor listens for udev netlink events on capture-capable
// subsystems and drops the cached device catalog when hardware changes.
type hotplugMonitor struct {
	logger     *slog.Logger
	invalidate func()

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newHotplugMonitor(logger *slog.Logger, invalidate func()) *hotplugMonitor {
	if invalidate == nil {
		return nil
	}
	return &hotplugMonitor{
		logger:     logging.NewComponentLogger(logger, "hotplug-monitor"),
		invalidate: invalidate,
	}
}

// Start begins listening for udev netlink events. A socket failure is logged
// and leaves the monitor stopped; the catalog then only refreshes on demand.
func (m *hotplugMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(m.logger, "failed to connect to netlink socket", "hotplug_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "pass refresh=1 when listing devices after plugging hardware"),
			logging.String(logging.FieldImpact, "device catalog will not refresh automatically"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, conn, quit)

	m.logger.Info("hotplug monitor started",
		logging.String(logging.FieldEventType, "hotplug_monitor_started"),
	)
	return nil
}

// Stop shuts down the monitor.
func (m *hotplugMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("hotplug monitor stopped",
		logging.String(logging.FieldEventType, "hotplug_monitor_stopped"),
	)
}

// Running reports whether the monitor is active.
func (m *hotplugMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *hotplugMonitor) monitorLoop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, m.buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			logging.WarnWithContext(m.logger, "hotplug monitor error", "hotplug_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "device changes may go unnoticed"),
			)
		}
	}
}

// buildMatcher accepts add and remove events for video and sound devices.
func (m *hotplugMonitor) buildMatcher() netlink.Matcher {
	action := "^(add|remove)$"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "^(video4linux|sound)$",
		},
	})
	return rules
}

func (m *hotplugMonitor) handleEvent(uevent netlink.UEvent) {
	m.logger.Info("capture device change detected",
		logging.String(logging.FieldEventType, "hotplug_device_changed"),
		logging.String("action", string(uevent.Action)),
		logging.String("subsystem", uevent.Env["SUBSYSTEM"]),
		logging.String("device", deviceName(uevent)),
	)
	if m.invalidate != nil {
		m.invalidate()
	}
}

func deviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		return devname
	}
	if devpath := uevent.Env["DEVPATH"]; devpath != "" {
		return path.Base(devpath)
	}
	return uevent.KObj
}
