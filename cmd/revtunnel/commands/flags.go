package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/imamik/revtunnel/internal/config"
)

// tunnelFlags holds the flags that describe the tunnel. Only flags the user set
// explicitly override the configuration file and environment.
type tunnelFlags struct {
	configPath     string
	host           string
	remotePort     int
	localHost      string
	localPort      int
	username       string
	identity       string
	port           int
	interval       int
	count          int
	attempts       int
	delay          time.Duration
	ssh            string
	knownHosts     string
	metricsAddress string
}

// bindTunnelFlags registers the tunnel flags on cmd. Defaults are shown for
// help output only.
func bindTunnelFlags(cmd *cobra.Command, f *tunnelFlags) {
	d := config.Default()
	flags := cmd.Flags()

	flags.StringVarP(&f.configPath, "config", "c", "", "Path to configuration file")
	flags.StringVar(&f.host, "host", "", "Remote host to open the tunnel to")
	flags.IntVar(&f.remotePort, "remote-port", 0, "Port bound on the remote host (default: looked up in --known-hosts)")
	flags.StringVar(&f.localHost, "local-host", d.LocalHost, "Local host the forwarded port connects to")
	flags.IntVar(&f.localPort, "local-port", d.LocalPort, "Local port the forwarded port connects to")
	flags.StringVar(&f.username, "username", "", "Login name on the remote host")
	flags.StringVar(&f.identity, "identity", "", "Private key file used to authenticate")
	flags.IntVar(&f.port, "port", 0, "Port of the remote ssh server")
	flags.IntVar(&f.interval, "interval", d.KeepAliveInterval, "Seconds between keep-alive probes (0 disables them)")
	flags.IntVar(&f.count, "count", d.KeepAliveCount, "Unanswered keep-alive probes before the connection is dropped")
	flags.IntVar(&f.attempts, "attempts", d.Attempts, "Number of connection attempts before giving up")
	flags.DurationVar(&f.delay, "delay", d.Delay, "Pause between connection attempts")
	flags.StringVar(&f.ssh, "ssh", d.SSH, "Path to the ssh client")
	flags.StringVar(&f.knownHosts, "known-hosts", "", "YAML file mapping local hostnames to remote ports")
	flags.StringVar(&f.metricsAddress, "metrics-address", "", "Serve Prometheus metrics on this address, e.g. :9273")
}

// apply copies the tunnel flags the user set explicitly onto cfg.
func (f *tunnelFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	set := func(name string, fn func()) {
		if flags.Changed(name) {
			fn()
		}
	}

	set("host", func() { cfg.Host = f.host })
	set("remote-port", func() { cfg.RemotePort = f.remotePort })
	set("local-host", func() { cfg.LocalHost = f.localHost })
	set("local-port", func() { cfg.LocalPort = f.localPort })
	set("username", func() { cfg.Username = f.username })
	set("identity", func() { cfg.Identity = f.identity })
	set("port", func() { cfg.Port = f.port })
	set("interval", func() { cfg.KeepAliveInterval = f.interval })
	set("count", func() { cfg.KeepAliveCount = f.count })
	set("attempts", func() { cfg.Attempts = f.attempts })
	set("delay", func() { cfg.Delay = f.delay })
	set("ssh", func() { cfg.SSH = f.ssh })
	set("known-hosts", func() { cfg.KnownHosts = f.knownHosts })
	set("metrics-address", func() { cfg.MetricsAddress = f.metricsAddress })
}

// overrides returns the function handlers use to apply explicitly set flags on
// top of the loaded configuration.
func overrides(cmd *cobra.Command, tf *tunnelFlags, lf *logFlags) func(*config.Config) {
	return func(cfg *config.Config) {
		tf.apply(cmd, cfg)
		lf.apply(cmd, cfg)
	}
}
