package config

import (
	"fmt"
	"time"

	"github.com/imamik/revtunnel/internal/logging"
	"github.com/imamik/revtunnel/internal/tunnel"
)

// EnvPrefix is the prefix of environment variable overrides, e.g. REVTUNNEL_REMOTE_PORT.
const EnvPrefix = "REVTUNNEL"

// Config is the on-disk and environment representation of the tunnel settings.
type Config struct {
	Host       string `yaml:"host,omitempty" split_words:"true"`
	RemotePort int    `yaml:"remote_port,omitempty" split_words:"true"`
	LocalHost  string `yaml:"local_host" split_words:"true"`
	LocalPort  int    `yaml:"local_port" split_words:"true"`

	Username string `yaml:"username,omitempty" split_words:"true"`
	Identity string `yaml:"identity,omitempty" split_words:"true"`
	Port     int    `yaml:"port,omitempty" split_words:"true"`

	// KeepAliveInterval of 0 disables ServerAliveInterval, so it is never omitted.
	KeepAliveInterval int `yaml:"keepalive_interval" split_words:"true"`
	KeepAliveCount    int `yaml:"keepalive_count" split_words:"true"`

	Attempts int           `yaml:"attempts" split_words:"true"`
	Delay    time.Duration `yaml:"delay" split_words:"true"`
	SSH      string        `yaml:"ssh" split_words:"true"`

	// KnownHosts is a YAML file mapping local hostnames to remote ports,
	// consulted when RemotePort is not set.
	KnownHosts string `yaml:"known_hosts,omitempty" split_words:"true"`

	// MetricsAddress enables the Prometheus endpoint when set, e.g. ":9273".
	MetricsAddress string `yaml:"metrics_address,omitempty" split_words:"true"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures the log sink.
type LogConfig struct {
	File       string `yaml:"file,omitempty" split_words:"true"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" split_words:"true"`
	MaxBackups int    `yaml:"max_backups,omitempty" split_words:"true"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" split_words:"true"`
	Compress   bool   `yaml:"compress,omitempty" split_words:"true"`
	Format     string `yaml:"format,omitempty" split_words:"true"`
	Verbosity  int    `yaml:"verbosity,omitempty" split_words:"true"`
}

// Default returns a Config holding the built-in defaults.
func Default() *Config {
	t := tunnel.Default()
	l := logging.DefaultOptions()
	return &Config{
		LocalHost:         t.LocalHost,
		LocalPort:         t.LocalPort,
		KeepAliveInterval: t.KeepAliveInterval,
		KeepAliveCount:    t.KeepAliveCount,
		Attempts:          t.Attempts,
		Delay:             t.Delay,
		SSH:               t.SSH,
		Log: LogConfig{
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			Format:     l.Format,
		},
	}
}

// Options converts the log section to logging options.
func (l LogConfig) Options() logging.Options {
	return logging.Options{
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
		Format:     l.Format,
		Verbosity:  l.Verbosity,
	}
}

// Tunnel converts c into a validated tunnel.Config. A configured identity file
// must be readable.
func (c *Config) Tunnel() (tunnel.Config, error) {
	t := tunnel.Config{
		Host:              c.Host,
		RemotePort:        c.RemotePort,
		LocalHost:         c.LocalHost,
		LocalPort:         c.LocalPort,
		Username:          c.Username,
		Identity:          c.Identity,
		Port:              c.Port,
		KeepAliveInterval: c.KeepAliveInterval,
		KeepAliveCount:    c.KeepAliveCount,
		Attempts:          c.Attempts,
		Delay:             c.Delay,
		SSH:               c.SSH,
	}
	if err := t.Validate(); err != nil {
		return tunnel.Config{}, fmt.Errorf("invalid tunnel configuration: %w", err)
	}
	if t.Identity != "" {
		if err := CheckIdentity(t.Identity); err != nil {
			return tunnel.Config{}, err
		}
	}
	return t, nil
}

// ResolveRemotePort fills in RemotePort from the known-hosts file for hostname
// when it has not been set explicitly.
func (c *Config) ResolveRemotePort(hostname string) error {
	if c.RemotePort != 0 || c.KnownHosts == "" {
		return nil
	}

	hosts, err := LoadKnownHosts(c.KnownHosts)
	if err != nil {
		return err
	}
	port, ok := hosts.Lookup(hostname)
	if !ok {
		return fmt.Errorf("unknown host %q in %s, so a remote port must be specified", hostname, c.KnownHosts)
	}
	c.RemotePort = port
	return nil
}
