package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"clipdeck/internal/apperrors"
)

// WriteTemp writes data into dir under the base name of filename and returns
// the resulting path. Directory components in filename are discarded, so a
// caller cannot escape dir.
func WriteTemp(dir, filename string, data []byte) (string, error) {
	name := filepath.Base(strings.TrimSpace(filepath.ToSlash(filename)))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", apperrors.Invalid("write temp file", "filename %q has no base name", filename)
	}
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.ErrIO, "write temp file", "create directory", err)
	}
	target := filepath.Join(dir, name)
	if err := writeFileAtomic(target, data, 0o644); err != nil {
		return "", apperrors.Wrap(apperrors.ErrIO, "write temp file", target, err)
	}
	return target, nil
}

// ReadBytes returns the contents of path.
func ReadBytes(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.Invalid("read file", "path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.ErrIO, "read file", "file does not exist", err)
		}
		return nil, apperrors.Wrap(apperrors.ErrIO, "read file", path, err)
	}
	return data, nil
}

// DocumentsDir returns $HOME/Documents. The directory is not required to exist.
func DocumentsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrIO, "documents path", "resolve home directory", err)
	}
	return filepath.Join(home, "Documents"), nil
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.ErrIO, "create output directory", dir, err)
	}
	return nil
}

// writeFileAtomic writes to a sibling temp file and renames it over target so
// readers never observe a partially written file.
func writeFileAtomic(target string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
