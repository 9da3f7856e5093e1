package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WriteFile writes cfg as YAML to path with a descriptive header.
func WriteFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(path))
	sb.WriteString("\n")
	sb.Write(data)

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// generateHeader creates the YAML file header comment.
func generateHeader(path string) string {
	return fmt.Sprintf(`# revtunnel configuration
# Generated by: revtunnel init
# Generated at: %s
#
# Every key can be overridden with a %s_* environment variable,
# e.g. %s_REMOTE_PORT=2223.
#
# Usage:
#   revtunnel check -c %s
#   revtunnel tunnel -c %s
`, time.Now().Format(time.RFC3339), EnvPrefix, EnvPrefix, path, path)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
