package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipdeck/internal/apperrors"
)

func TestWriteTempUsesBaseName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tmp")

	path, err := WriteTemp(dir, "../../etc/clip.webm", []byte("data"))
	if err != nil {
		t.Fatalf("WriteTemp: %v", err)
	}
	if want := filepath.Join(dir, "clip.webm"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestWriteTempOverwrites(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteTemp(dir, "a.bin", []byte("first")); err != nil {
		t.Fatal(err)
	}
	path, err := WriteTemp(dir, "a.bin", []byte("second"))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "second" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestWriteTempRejectsEmptyName(t *testing.T) {
	for _, name := range []string{"", "  ", ".", "..", "/"} {
		if _, err := WriteTemp(t.TempDir(), name, nil); !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Fatalf("WriteTemp(%q) error = %v, want invalid argument", name, err)
		}
	}
}

func TestReadBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadBytes(path)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("unexpected content %q", got)
	}

	if _, err := ReadBytes(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, apperrors.ErrIO) {
		t.Fatalf("expected io error for missing file, got %v", err)
	}
	if _, err := ReadBytes(""); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty path, got %v", err)
	}
}

func TestDocumentsDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := DocumentsDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "Documents"); got != want {
		t.Fatalf("DocumentsDir = %q, want %q", got, want)
	}
}

func TestEnsureParentDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "out.mp4")
	if err := EnsureParentDir(target); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Dir(target))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected parent directory to exist: %v", err)
	}
}
