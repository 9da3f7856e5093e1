package commands

import (
	"os"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/imamik/revtunnel/cmd/revtunnel/handlers"
	"github.com/imamik/revtunnel/internal/service"
)

// Install returns the command that writes the systemd unit for the tunnel.
func Install(lf *logFlags) *cobra.Command {
	tf := &tunnelFlags{}
	opts := handlers.InstallOptions{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Write a systemd unit that runs the tunnel",
		Long: `Write a systemd service unit that runs 'revtunnel tunnel'.

The effective tunnel settings are written into the unit's command line.
systemd restarts the service --restart-seconds after each exit.
An existing unit with the same directives is left untouched unless
--force is given.

The unit is only written: reload systemd and enable the service yourself.

Examples:
  sudo revtunnel install --host shore.example.org --known-hosts hostnames.yaml
  sudo systemctl daemon-reload
  sudo systemctl enable --now SSHtunnel`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Invocation = shellquote.Join(os.Args...)
			return handlers.Install(cmd.Context(), tf.configPath, overrides(cmd, tf, lf), opts)
		},
	}

	bindTunnelFlags(cmd, tf)

	flags := cmd.Flags()
	flags.StringVar(&opts.Name, "service", service.DefaultName, "Service name")
	flags.StringVar(&opts.Directory, "service-directory", service.DefaultDirectory, "Directory the unit file is written to")
	flags.StringVar(&opts.User, "user", "", "Local user to run the service as (default: current user)")
	flags.StringVar(&opts.Group, "group", "", "Local group to run the service as (default: the user's primary group)")
	flags.StringVar(&opts.WorkingDirectory, "working-directory", "~/logs", "Directory the service runs in")
	flags.IntVar(&opts.RestartSeconds, "restart-seconds", service.DefaultRestartSeconds, "Seconds before systemd restarts the service after it exits")
	flags.StringVar(&opts.Executable, "executable", "", "revtunnel binary the unit runs (default: this binary)")
	flags.BoolVarP(&opts.Force, "force", "f", false, "Write the unit even if an equivalent one exists")

	return cmd
}
