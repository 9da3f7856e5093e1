package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Result reports what Install did.
type Result struct {
	// Path is the unit file location.
	Path string

	// Unchanged is set when an equivalent unit was already present and
	// nothing was written.
	Unchanged bool

	// CreatedDirectory is set when the working directory did not exist.
	CreatedDirectory bool
}

// Install writes u to dir. An existing file with equivalent directives is left
// alone unless force is set. The unit's working directory is created if missing.
// Reloading, enabling or starting the unit is left to the operator.
func Install(u Unit, dir string, force bool) (Result, error) {
	content, err := Render(u)
	if err != nil {
		return Result{}, err
	}

	res := Result{Path: filepath.Join(dir, u.FileName())}

	if !force {
		// #nosec G304
		current, err := os.ReadFile(res.Path)
		switch {
		case err == nil && Equivalent(current, content):
			res.Unchanged = true
			return res, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return res, fmt.Errorf("failed to read existing unit %s: %w", res.Path, err)
		}
	}

	if u.WorkingDirectory != "" {
		created, err := ensureDir(u.WorkingDirectory)
		if err != nil {
			return res, err
		}
		res.CreatedDirectory = created
	}

	if err := writeFile(res.Path, content); err != nil {
		return res, err
	}
	return res, nil
}

func ensureDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("working directory %s is not a directory", path)
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat working directory: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, fmt.Errorf("failed to create working directory: %w", err)
	}
	return true, nil
}

// writeFile replaces path through a temporary file in the same directory so a
// partially written unit is never observed.
func writeFile(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create unit file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write unit file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set unit file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install unit file %s: %w", path, err)
	}
	return nil
}
