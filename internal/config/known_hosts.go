package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnownHosts maps a local hostname to the remote port its tunnel forwards through.
//
//	vessel-1: 2222
//	vessel-2: 2223
type KnownHosts map[string]int

// LoadKnownHosts reads a known-hosts YAML file.
func LoadKnownHosts(path string) (KnownHosts, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read known hosts file: %w", err)
	}

	var hosts KnownHosts
	if err := yaml.Unmarshal(data, &hosts); err != nil {
		return nil, fmt.Errorf("failed to parse known hosts file %s: %w", path, err)
	}
	for name, port := range hosts {
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("known host %q has invalid port %d", name, port)
		}
	}
	return hosts, nil
}

// Lookup returns the port for hostname. A fully qualified name also matches its
// short form.
func (k KnownHosts) Lookup(hostname string) (int, bool) {
	if port, ok := k[hostname]; ok {
		return port, true
	}
	if short, _, found := strings.Cut(hostname, "."); found {
		port, ok := k[short]
		return port, ok
	}
	return 0, false
}
