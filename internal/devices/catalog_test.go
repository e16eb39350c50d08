package devices_test

import (
	"context"
	"errors"
	"testing"

	"clipdeck/internal/apperrors"
	"clipdeck/internal/devices"
	"clipdeck/internal/encoder"
	"clipdeck/internal/logging"
	"clipdeck/internal/process"
	"clipdeck/internal/testsupport"
)

func TestCatalogParsesStderrAndIgnoresExitCode(t *testing.T) {
	runner := &testsupport.FakeRunner{Output: process.Output{Stderr: avfoundationListing, ExitCode: 1}}
	probe := encoder.NewBuilder(encoder.DefaultOptions()).DeviceProbe()
	catalog := devices.NewCatalog(runner, probe, logging.NewNop())

	list, err := catalog.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("expected 5 devices, got %d", len(list))
	}
	if calls := runner.Calls(); len(calls) != 1 || calls[0].Args[len(calls[0].Args)-1] != "" {
		t.Fatalf("unexpected probe calls %+v", calls)
	}
}

func TestCatalogCachesUntilInvalidated(t *testing.T) {
	runner := &testsupport.FakeRunner{Output: process.Output{Stderr: avfoundationListing, ExitCode: 1}}
	catalog := devices.NewCatalog(runner, encoder.Invocation{Program: "ffmpeg"}, nil)

	for i := 0; i < 3; i++ {
		if _, err := catalog.List(context.Background()); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if n := len(runner.Calls()); n != 1 {
		t.Fatalf("expected one probe, got %d", n)
	}
	if _, ok := catalog.RefreshedAt(); !ok {
		t.Fatal("expected cache to be valid")
	}

	catalog.Invalidate()
	if _, err := catalog.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if n := len(runner.Calls()); n != 2 {
		t.Fatalf("expected a second probe after invalidation, got %d", n)
	}
}

func TestCatalogSurfacesMissingEncoder(t *testing.T) {
	runner := &testsupport.FakeRunner{Err: apperrors.Wrap(apperrors.ErrExternalToolUnavailable, "start ffmpeg", "", nil)}
	catalog := devices.NewCatalog(runner, encoder.Invocation{Program: "ffmpeg"}, nil)

	if _, err := catalog.List(context.Background()); !errors.Is(err, apperrors.ErrExternalToolUnavailable) {
		t.Fatalf("expected ErrExternalToolUnavailable, got %v", err)
	}
	if _, ok := catalog.RefreshedAt(); ok {
		t.Fatal("failed probe must not populate the cache")
	}
}
