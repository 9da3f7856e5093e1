package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/revtunnel/internal/config"
	"github.com/imamik/revtunnel/internal/service"
)

// saveAndRestoreInstallFactories saves and restores install factory functions.
func saveAndRestoreInstallFactories(t *testing.T) {
	origAccount := currentAccount
	origExecutable := executable
	origNow := now

	currentAccount = func() (string, string, error) { return "pat", "staff", nil }
	executable = func() (string, error) { return "/usr/local/bin/revtunnel", nil }
	now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	t.Cleanup(func() {
		currentAccount = origAccount
		executable = origExecutable
		now = origNow
	})
}

func installOptions(t *testing.T) InstallOptions {
	return InstallOptions{
		Name:             service.DefaultName,
		Directory:        t.TempDir(),
		WorkingDirectory: filepath.Join(t.TempDir(), "logs"),
		RestartSeconds:   service.DefaultRestartSeconds,
		Invocation:       "revtunnel install --host shore",
	}
}

func TestInstall(t *testing.T) {
	saveAndRestoreInstallFactories(t)
	opts := installOptions(t)

	var err error
	output := captureOutput(func() {
		err = Install(context.Background(), "", func(c *config.Config) {
			c.Host = "shore"
			c.RemotePort = 2222
		}, opts)
	})
	require.NoError(t, err)

	path := filepath.Join(opts.Directory, "SSHtunnel.service")
	assert.Contains(t, output, "Created "+opts.WorkingDirectory)
	assert.Contains(t, output, "Wrote "+path)
	assert.Contains(t, output, "sudo systemctl enable SSHtunnel")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	unit := string(data)

	logFile := filepath.Join(opts.WorkingDirectory, "SSHtunnel.log")
	assert.Contains(t, unit, "# Generated by: revtunnel install --host shore\n")
	assert.Contains(t, unit, "Description=Reverse SSH tunnel to shore\n")
	assert.Contains(t, unit, "User=pat\n")
	assert.Contains(t, unit, "Group=staff\n")
	assert.Contains(t, unit, "WorkingDirectory="+opts.WorkingDirectory+"\n")
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/revtunnel tunnel --host shore --remote-port 2222 --log-file "+logFile+"\n")
	assert.Contains(t, unit, "RestartSec=300\n")
	assert.DirExists(t, opts.WorkingDirectory)
}

func TestInstall_Unchanged(t *testing.T) {
	saveAndRestoreInstallFactories(t)
	opts := installOptions(t)
	override := func(c *config.Config) {
		c.Host = "shore"
		c.RemotePort = 2222
	}

	captureOutput(func() {
		require.NoError(t, Install(context.Background(), "", override, opts))
	})

	now = func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }
	output := captureOutput(func() {
		require.NoError(t, Install(context.Background(), "", override, opts))
	})
	assert.Contains(t, output, "is up to date, nothing written")

	opts.Force = true
	output = captureOutput(func() {
		require.NoError(t, Install(context.Background(), "", override, opts))
	})
	assert.Contains(t, output, "Wrote")
}

func TestInstall_RequiresHost(t *testing.T) {
	saveAndRestoreInstallFactories(t)
	opts := installOptions(t)

	err := Install(context.Background(), "", func(c *config.Config) {
		c.RemotePort = 2222
	}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
	assert.NoFileExists(t, filepath.Join(opts.Directory, "SSHtunnel.service"))
}

func TestInstall_PortFromKnownHosts(t *testing.T) {
	saveAndRestoreInstallFactories(t)
	saveAndRestoreHostname(t, "vessel-1")
	hosts := writeFile(t, "hostnames.yaml", "vessel-1: 2230\n")
	opts := installOptions(t)

	captureOutput(func() {
		require.NoError(t, Install(context.Background(), "", func(c *config.Config) {
			c.Host = "shore"
			c.KnownHosts = hosts
		}, opts))
	})

	data, err := os.ReadFile(filepath.Join(opts.Directory, "SSHtunnel.service"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "--remote-port 2230")
	assert.NotContains(t, string(data), "--known-hosts")
}

func TestInstall_AccountError(t *testing.T) {
	saveAndRestoreInstallFactories(t)
	currentAccount = func() (string, string, error) { return "", "", errors.New("no passwd entry") }

	err := Install(context.Background(), "", func(c *config.Config) {
		c.Host = "shore"
		c.RemotePort = 2222
	}, installOptions(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no passwd entry")
}

func TestAccount(t *testing.T) {
	saveAndRestoreInstallFactories(t)

	tests := []struct {
		name      string
		user      string
		group     string
		wantUser  string
		wantGroup string
	}{
		{"defaults to current account", "", "", "pat", "staff"},
		{"user without group", "tunnel", "", "tunnel", "tunnel"},
		{"user and group", "tunnel", "ssh", "tunnel", "ssh"},
		{"group only", "", "ssh", "pat", "ssh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, group, err := account(tt.user, tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantGroup, group)
		})
	}
}

func TestExecStart(t *testing.T) {
	cfg := config.Default()
	cfg.Host = "shore"
	cfg.RemotePort = 2222
	cfg.LocalPort = 2022
	cfg.Username = "pat"
	cfg.Identity = "/home/pat/.ssh/id_ed25519"
	cfg.Port = 2200
	cfg.KeepAliveInterval = 0
	cfg.Attempts = 100
	cfg.Delay = 5 * time.Minute
	cfg.MetricsAddress = ":9273"
	cfg.Log.File = "/var/log/revtunnel.log"
	cfg.Log.Format = "json"
	cfg.Log.Verbosity = 2

	assert.Equal(t, []string{
		"/usr/local/bin/revtunnel", "tunnel",
		"--host", "shore",
		"--remote-port", "2222",
		"--local-port", "2022",
		"--username", "pat",
		"--identity", "/home/pat/.ssh/id_ed25519",
		"--port", "2200",
		"--interval", "0",
		"--attempts", "100",
		"--delay", "5m0s",
		"--metrics-address", ":9273",
		"--log-file", "/var/log/revtunnel.log",
		"--log-format", "json",
		"--verbose=2",
	}, execStart("/usr/local/bin/revtunnel", cfg))
}
