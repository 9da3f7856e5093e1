package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/revtunnel/cmd/revtunnel/handlers"
)

// Tunnel returns the command that runs the reconnection supervisor.
//
// Settings are merged in order: built-in defaults, the --config file,
// REVTUNNEL_* environment variables, then explicitly set flags.
func Tunnel(lf *logFlags) *cobra.Command {
	tf := &tunnelFlags{}

	cmd := &cobra.Command{
		Use:   "tunnel",
		Short: "Open the reverse tunnel and keep reconnecting",
		Long: `Open a reverse SSH tunnel and restart it when it drops.

The ssh client is started with -N -R <remote-port>:<local-host>:<local-port>
and restarted up to --attempts times, sleeping --delay between attempts.
A clean exit of the client counts as an attempt like any failure.

revtunnel always exits with a non-zero status once the attempts are used
up, so a process manager can restart it after its own back-off.

Examples:
  # Forward port 2222 on shore back to the local ssh server
  revtunnel tunnel --host shore.example.org --remote-port 2222

  # Keep retrying every five minutes, logging to a rotated file
  revtunnel tunnel -c tunnel.yaml --attempts 100 --delay 5m --log-file ~/logs/SSHtunnel.log

  # Look the remote port up by local hostname
  revtunnel tunnel --host shore.example.org --known-hosts hostnames.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Tunnel(cmd.Context(), tf.configPath, overrides(cmd, tf, lf))
		},
	}

	bindTunnelFlags(cmd, tf)

	return cmd
}
