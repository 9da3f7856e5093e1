package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/revtunnel/internal/config"
	"github.com/imamik/revtunnel/internal/tunnel"
	"github.com/imamik/revtunnel/internal/util/netutil"
	"github.com/imamik/revtunnel/internal/util/prerequisites"
)

// Factory function variables for check - can be replaced in tests.
var (
	// checkTools checks the ssh client and the optional tools.
	checkTools = prerequisites.CheckSSH

	// probePort checks that the local end of the forward accepts connections.
	probePort = netutil.ProbePort

	// describeIdentity reports the key material in the identity file.
	describeIdentity = config.DescribeIdentity
)

// Check validates the effective configuration, looks for the ssh client and
// prints the command the tunnel would run.
func Check(ctx context.Context, configPath string, override func(*config.Config)) error {
	cfg, err := loadConfig(configPath, override)
	if err != nil {
		return err
	}

	tcfg, err := cfg.Tunnel()
	if err != nil {
		return err
	}

	results := checkTools(tcfg.SSH)
	// An unreachable local target is reported, not returned.
	localErr := probePort(ctx, tcfg.LocalHost, tcfg.LocalPort, netutil.DefaultProbeTimeout)
	fmt.Print(renderCheck(cfg, tcfg, results, localErr))

	return results.Error()
}

// renderCheck produces a lipgloss-styled summary of the checked settings.
func renderCheck(cfg *config.Config, tcfg tunnel.Config, results *prerequisites.CheckResults, localErr error) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("revtunnel check"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Tunnel"))
	b.WriteString("\n")
	row := func(label, value string) {
		fmt.Fprintf(&b, "  %-14s %s\n", label, value)
	}
	row("Remote:", remoteLabel(tcfg))
	row("Forward:", fmt.Sprintf("%d -> %s:%d", tcfg.RemotePort, tcfg.LocalHost, tcfg.LocalPort))
	if localErr != nil {
		row("Local target:", failStyle.Render("not reachable ("+localErr.Error()+")"))
	} else {
		row("Local target:", okStyle.Render("accepting connections"))
	}
	if tcfg.Identity != "" {
		if kind, err := describeIdentity(tcfg.Identity); err != nil {
			row("Identity:", tcfg.Identity+" "+warningStyle.Render("(warning: "+err.Error()+")"))
		} else {
			row("Identity:", tcfg.Identity+" "+okStyle.Render("("+kind+")"))
		}
	}
	if tcfg.KeepAliveInterval > 0 {
		row("Keep-alive:", fmt.Sprintf("every %ds, %d missed", tcfg.KeepAliveInterval, tcfg.KeepAliveCount))
	} else {
		row("Keep-alive:", dimStyle.Render("disabled"))
	}
	row("Attempts:", fmt.Sprintf("%d, %s apart", tcfg.Attempts, tcfg.Delay))
	if cfg.Log.File != "" {
		row("Log file:", cfg.Log.File)
	}
	if cfg.MetricsAddress != "" {
		row("Metrics:", cfg.MetricsAddress)
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Tools"))
	b.WriteString("\n")
	for _, r := range results.Results {
		switch {
		case r.Found:
			version := r.Version
			if version == "" {
				version = "version unknown"
			}
			fmt.Fprintf(&b, "  %s %s %s\n", okStyle.Render("✓"), r.Path, dimStyle.Render(version))
		case r.Tool.Required:
			fmt.Fprintf(&b, "  %s %s %s\n", failStyle.Render("✗"), r.Tool.Name, failStyle.Render("missing, see "+r.Tool.InstallURL))
		default:
			fmt.Fprintf(&b, "  %s %s %s\n", dimStyle.Render("-"), r.Tool.Name, dimStyle.Render("not found ("+r.Tool.Description+")"))
		}
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Command"))
	b.WriteString("\n")
	b.WriteString(commandStyle.Render(tunnel.CommandLine(tunnel.BuildCommand(tcfg))))
	b.WriteString("\n")

	return b.String()
}

func remoteLabel(tcfg tunnel.Config) string {
	s := tcfg.Host
	if tcfg.Username != "" {
		s = tcfg.Username + "@" + s
	}
	if tcfg.Port != 0 {
		s = fmt.Sprintf("%s (port %d)", s, tcfg.Port)
	}
	return s
}
