package library_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"clipdeck/internal/library"
	"clipdeck/internal/testsupport"
)

func TestAddAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	finished := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	entry := &library.Entry{
		Category:       library.CategoryExport,
		Kind:           "pip",
		OutputPath:     "/exports/pip.mp4",
		Inputs:         []string{"/rec/main.mp4", "/rec/cam.mp4"},
		StartedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:     &finished,
		DurationSec:    12.5,
		DurationSource: "ffprobe",
		SizeBytes:      2048,
	}
	if err := store.Add(ctx, entry); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Fatalf("expected ID and created time to be assigned: %#v", entry)
	}

	got, err := store.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry to be found")
	}
	if got.OutputPath != entry.OutputPath || got.Kind != "pip" || got.Category != library.CategoryExport {
		t.Fatalf("unexpected entry: %#v", got)
	}
	if len(got.Inputs) != 2 || got.Inputs[1] != "/rec/cam.mp4" {
		t.Fatalf("unexpected inputs: %#v", got.Inputs)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Fatalf("unexpected finished time: %v", got.FinishedAt)
	}
	if got.DurationSec != 12.5 || got.DurationSource != "ffprobe" || got.SizeBytes != 2048 {
		t.Fatalf("unexpected media fields: %#v", got)
	}
	if !got.Succeeded() {
		t.Fatal("expected entry without error to be successful")
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil entry for unknown id, got %#v, %v", missing, err)
	}
}

func TestAddRejectsInvalidEntries(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := store.Add(ctx, nil); err == nil {
		t.Fatal("expected error for nil entry")
	}
	if err := store.Add(ctx, &library.Entry{Category: library.CategoryRecording}); err == nil {
		t.Fatal("expected error for missing output path")
	}
	if err := store.Add(ctx, &library.Entry{Category: "other", OutputPath: "x"}); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestListNewestFirstWithFilter(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	testsupport.AddEntry(t, store, library.CategoryRecording, "/rec/1.mp4", base)
	testsupport.AddEntry(t, store, library.CategoryExport, "/exp/1.mp4", base.Add(500*time.Millisecond))
	testsupport.AddEntry(t, store, library.CategoryRecording, "/rec/2.mp4", base.Add(1500*time.Millisecond))

	all, err := store.List(ctx, library.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"/rec/2.mp4", "/exp/1.mp4", "/rec/1.mp4"}
	if len(all) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(all))
	}
	for i, path := range want {
		if all[i].OutputPath != path {
			t.Fatalf("entry %d = %s, want %s", i, all[i].OutputPath, path)
		}
	}

	recordings, err := store.List(ctx, library.ListFilter{Category: library.CategoryRecording, Limit: 1})
	if err != nil {
		t.Fatalf("List recordings: %v", err)
	}
	if len(recordings) != 1 || recordings[0].OutputPath != "/rec/2.mp4" {
		t.Fatalf("unexpected filtered list: %#v", recordings)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[library.CategoryRecording] != 2 || stats[library.CategoryExport] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}
}

func TestClearAndRemove(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()

	rec := testsupport.AddEntry(t, store, library.CategoryRecording, "/rec/1.mp4", now)
	testsupport.AddEntry(t, store, library.CategoryExport, "/exp/1.mp4", now)
	testsupport.AddEntry(t, store, library.CategoryExport, "/exp/2.mp4", now)

	removed, err := store.Remove(ctx, rec.ID)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, rec.ID)
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}

	n, err := store.Clear(ctx, library.CategoryExport)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}
	testsupport.AddEntry(t, store, library.CategoryRecording, "/rec/3.mp4", now)
	if n, err := store.Clear(ctx, ""); err != nil || n != 1 {
		t.Fatalf("Clear all = %d, %v", n, err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	path := store.Path()
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	_, err = library.Open(cfg)
	if !errors.Is(err, library.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want library.Category
		ok   bool
	}{
		{"", "", true},
		{"recordings", library.CategoryRecording, true},
		{"export", library.CategoryExport, true},
		{"clips", "", false},
	}
	for _, tc := range tests {
		got, ok := library.ParseCategory(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseCategory(%q) = %q, %v", tc.in, got, ok)
		}
	}
}
