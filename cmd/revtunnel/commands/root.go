// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/revtunnel/internal/config"
	"github.com/imamik/revtunnel/internal/logging"
)

// logFlags holds the persistent logging flags shared by all subcommands.
type logFlags struct {
	file       string
	maxSizeMB  int
	maxBackups int
	format     string
	verbosity  int
}

// apply copies the logging flags the user set explicitly onto cfg.
func (f *logFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.Log.File = f.file
	}
	if flags.Changed("log-max-size") {
		cfg.Log.MaxSizeMB = f.maxSizeMB
	}
	if flags.Changed("log-max-backups") {
		cfg.Log.MaxBackups = f.maxBackups
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = f.format
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbosity = f.verbosity
	}
}

// Root returns the root command for the revtunnel CLI.
//
// The root command carries the logging flags and organizes the command
// hierarchy.
func Root() *cobra.Command {
	lf := &logFlags{}
	defaults := logging.DefaultOptions()

	cmd := &cobra.Command{
		Use:          "revtunnel",
		Short:        "Keep a reverse SSH tunnel open",
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&lf.file, "log-file", "", "Write logs to this file instead of stderr, rotating it by size")
	pf.IntVar(&lf.maxSizeMB, "log-max-size", defaults.MaxSizeMB, "Size in megabytes at which the log file is rotated")
	pf.IntVar(&lf.maxBackups, "log-max-backups", defaults.MaxBackups, "Number of rotated log files to keep")
	pf.StringVar(&lf.format, "log-format", defaults.Format, "Log format: auto, json or console")
	pf.CountVarP(&lf.verbosity, "verbose", "v", "Increase log verbosity (repeatable)")

	// Core commands
	cmd.AddCommand(Tunnel(lf))
	cmd.AddCommand(Check(lf))
	cmd.AddCommand(Init())
	cmd.AddCommand(Install(lf))

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
