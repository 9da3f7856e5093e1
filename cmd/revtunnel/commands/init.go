package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/revtunnel/cmd/revtunnel/handlers"
)

// Init returns the command for interactively creating a tunnel configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "tunnel.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a tunnel configuration",
		Long: `Interactively create a tunnel configuration file.

This command asks for:

  - The remote host and the port bound there
  - Optional login name, identity file and ssh port
  - How often to retry and how long to wait in between
  - An optional log file

The result can be passed to 'revtunnel tunnel -c' and
'revtunnel install -c'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "tunnel.yaml", "Output file path")

	return cmd
}
