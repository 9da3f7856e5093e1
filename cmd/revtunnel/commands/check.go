package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/revtunnel/cmd/revtunnel/handlers"
)

// Check returns the command that validates the tunnel settings without
// connecting.
func Check(lf *logFlags) *cobra.Command {
	tf := &tunnelFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print the ssh command",
		Long: `Validate the tunnel configuration without connecting.

Checks that the settings are complete and that the ssh client can be found,
reports what the identity file holds and whether the local target accepts
connections, then prints the exact command the tunnel would run.

Examples:
  revtunnel check -c tunnel.yaml
  revtunnel check --host shore.example.org --remote-port 2222`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Check(cmd.Context(), tf.configPath, overrides(cmd, tf, lf))
		},
	}

	bindTunnelFlags(cmd, tf)

	return cmd
}
