// Package handlers implements the revtunnel commands.
//
// Each handler loads the configuration, applies the explicitly set flags on
// top and then does its work. Dependencies are held in package variables so
// tests can replace them.
package handlers

import (
	"fmt"
	"os"

	"github.com/imamik/revtunnel/internal/config"
)

// hostname returns the local hostname used for known-hosts lookups.
var hostname = os.Hostname

// loadConfig merges defaults, the config file, the environment and override,
// then fills in the remote port from the known-hosts file when needed.
func loadConfig(configPath string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}

	if cfg.RemotePort == 0 && cfg.KnownHosts != "" {
		name, err := hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to get hostname: %w", err)
		}
		if err := cfg.ResolveRemotePort(name); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
