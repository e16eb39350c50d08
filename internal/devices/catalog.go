package devices

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"clipdeck/internal/encoder"
	"clipdeck/internal/logging"
	"clipdeck/internal/process"
)

// Runner executes one-shot encoder invocations.
type Runner interface {
	Run(ctx context.Context, inv encoder.Invocation) (process.Output, error)
}

// Catalog lists capture devices through the encoder and caches the result
// until Invalidate is called.
type Catalog struct {
	runner Runner
	probe  encoder.Invocation
	logger *slog.Logger

	mu        sync.Mutex
	cached    []Device
	valid     bool
	refreshed time.Time
}

// NewCatalog constructs a catalog that runs probe through runner.
func NewCatalog(runner Runner, probe encoder.Invocation, logger *slog.Logger) *Catalog {
	return &Catalog{
		runner: runner,
		probe:  probe,
		logger: logging.NewComponentLogger(logger, "devices"),
	}
}

// List returns the cached catalog, probing the encoder on a cache miss.
func (c *Catalog) List(ctx context.Context) ([]Device, error) {
	c.mu.Lock()
	if c.valid {
		out := append([]Device(nil), c.cached...)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh probes the encoder regardless of the cache.
func (c *Catalog) Refresh(ctx context.Context) ([]Device, error) {
	out, err := c.runner.Run(ctx, c.probe)
	if err != nil {
		return nil, err
	}
	// The listing is written to the diagnostic stream and the encoder exits
	// non-zero because no input was opened.
	text := out.Stderr
	if strings.TrimSpace(out.Stdout) != "" {
		text += "\n" + out.Stdout
	}
	found := Parse(text)

	c.logger.Debug("device catalog probed",
		logging.String(logging.FieldEventType, "devices_probed"),
		logging.Int("device_count", len(found)),
		logging.Int("exit_code", out.ExitCode),
	)
	if len(found) == 0 {
		logging.WarnWithContext(c.logger, "no capture devices found", "devices_empty",
			logging.String(logging.FieldImpact, "recordings cannot select a device"),
			logging.String(logging.FieldErrorHint, "grant screen and camera permissions to the encoder"),
		)
	}

	c.mu.Lock()
	c.cached = found
	c.valid = true
	c.refreshed = time.Now()
	c.mu.Unlock()
	return append([]Device(nil), found...), nil
}

// Invalidate drops the cached catalog so the next List probes again.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// RefreshedAt reports when the cached catalog was last probed.
func (c *Catalog) RefreshedAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshed, c.valid
}
