package commands

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/revtunnel/internal/config"
)

// parsed returns a command with the tunnel and log flags bound and args parsed.
func parsed(t *testing.T, args ...string) (*cobra.Command, *tunnelFlags, *logFlags) {
	t.Helper()

	tf := &tunnelFlags{}
	lf := &logFlags{}
	cmd := &cobra.Command{Use: "test"}
	bindTunnelFlags(cmd, tf)
	cmd.Flags().StringVar(&lf.file, "log-file", "", "")
	cmd.Flags().IntVar(&lf.maxSizeMB, "log-max-size", 100, "")
	cmd.Flags().IntVar(&lf.maxBackups, "log-max-backups", 3, "")
	cmd.Flags().StringVar(&lf.format, "log-format", "auto", "")
	cmd.Flags().CountVarP(&lf.verbosity, "verbose", "v", "")

	require.NoError(t, cmd.ParseFlags(args))
	return cmd, tf, lf
}

func TestOverrides_OnlyChangedFlags(t *testing.T) {
	cmd, tf, lf := parsed(t, "--host", "shore", "--interval", "0", "--delay", "5m", "-vv")

	cfg := config.Default()
	cfg.RemotePort = 2222
	cfg.Username = "from-file"
	cfg.Attempts = 50

	overrides(cmd, tf, lf)(cfg)

	assert.Equal(t, "shore", cfg.Host)
	assert.Equal(t, 0, cfg.KeepAliveInterval, "explicit zero is applied")
	assert.Equal(t, 5*time.Minute, cfg.Delay)
	assert.Equal(t, 2, cfg.Log.Verbosity)

	assert.Equal(t, 2222, cfg.RemotePort, "unset flag keeps file value")
	assert.Equal(t, "from-file", cfg.Username)
	assert.Equal(t, 50, cfg.Attempts, "flag default does not override")
}

func TestOverrides_AllTunnelFlags(t *testing.T) {
	cmd, tf, lf := parsed(t,
		"--host", "shore",
		"--remote-port", "2222",
		"--local-host", "127.0.0.1",
		"--local-port", "2022",
		"--username", "pat",
		"--identity", "/keys/id",
		"--port", "2200",
		"--interval", "30",
		"--count", "5",
		"--attempts", "10",
		"--delay", "1s",
		"--ssh", "/opt/ssh",
		"--known-hosts", "hosts.yaml",
		"--metrics-address", ":9273",
		"--log-file", "/tmp/t.log",
		"--log-max-size", "5",
		"--log-max-backups", "1",
		"--log-format", "json",
	)

	cfg := config.Default()
	overrides(cmd, tf, lf)(cfg)

	assert.Equal(t, "shore", cfg.Host)
	assert.Equal(t, 2222, cfg.RemotePort)
	assert.Equal(t, "127.0.0.1", cfg.LocalHost)
	assert.Equal(t, 2022, cfg.LocalPort)
	assert.Equal(t, "pat", cfg.Username)
	assert.Equal(t, "/keys/id", cfg.Identity)
	assert.Equal(t, 2200, cfg.Port)
	assert.Equal(t, 30, cfg.KeepAliveInterval)
	assert.Equal(t, 5, cfg.KeepAliveCount)
	assert.Equal(t, 10, cfg.Attempts)
	assert.Equal(t, time.Second, cfg.Delay)
	assert.Equal(t, "/opt/ssh", cfg.SSH)
	assert.Equal(t, "hosts.yaml", cfg.KnownHosts)
	assert.Equal(t, ":9273", cfg.MetricsAddress)
	assert.Equal(t, "/tmp/t.log", cfg.Log.File)
	assert.Equal(t, 5, cfg.Log.MaxSizeMB)
	assert.Equal(t, 1, cfg.Log.MaxBackups)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestTunnelCommands_Flags(t *testing.T) {
	lf := &logFlags{}
	for _, cmd := range []*cobra.Command{Tunnel(lf), Check(lf), Install(lf)} {
		for _, name := range []string{"config", "host", "remote-port", "local-host", "local-port", "username",
			"identity", "port", "interval", "count", "attempts", "delay", "ssh", "known-hosts", "metrics-address"} {
			assert.NotNil(t, cmd.Flags().Lookup(name), "%s is missing --%s", cmd.Name(), name)
		}
		assert.Equal(t, "c", cmd.Flags().Lookup("config").Shorthand)
	}
}

func TestInstall_Flags(t *testing.T) {
	cmd := Install(&logFlags{})

	assert.Equal(t, "SSHtunnel", cmd.Flags().Lookup("service").DefValue)
	assert.Equal(t, "/etc/systemd/system", cmd.Flags().Lookup("service-directory").DefValue)
	assert.Equal(t, "~/logs", cmd.Flags().Lookup("working-directory").DefValue)
	assert.Equal(t, "300", cmd.Flags().Lookup("restart-seconds").DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("force"))
}

func TestInit_Flags(t *testing.T) {
	cmd := Init()

	require.NotNil(t, cmd.Flags().Lookup("output"))
	assert.Equal(t, "tunnel.yaml", cmd.Flags().Lookup("output").DefValue)
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
}

func TestTunnel_RunsThroughRoot(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"tunnel", "--remote-port", "2222"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
}
