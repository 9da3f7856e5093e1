package service

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// CurrentAccount returns the invoking user's name and primary group name.
func CurrentAccount() (string, string, error) {
	u, err := user.Current()
	if err != nil {
		return "", "", fmt.Errorf("failed to look up current user: %w", err)
	}
	g, err := user.LookupGroupId(u.Gid)
	if err != nil {
		// Fall back to a group named after the user.
		return u.Username, u.Username, nil
	}
	return u.Username, g.Name, nil
}

// ExpandHome replaces a leading ~ in path with the user's home directory and
// returns an absolute path.
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return abs, nil
}
