package tunnel

import (
	"strconv"

	"github.com/kballard/go-shellquote"
)

// BuildCommand returns the ssh client argument vector for cfg, executable first.
//
// The order is fixed: several flags take the next element as their value.
//
//	<ssh> -N -x -T -o ExitOnForwardFailure=yes [-i <identity>]
//	      [-o ServerAliveInterval=<n> [-o ServerAliveCountMax=<n>]]
//	      -R <remotePort>:<localHost>:<localPort> [-l <user>] [-p <port>] <host>
func BuildCommand(cfg Config) []string {
	cmd := []string{
		cfg.SSH,
		"-N", // no remote command
		"-x", // no X11 forwarding
		"-T", // no pseudo-terminal
		"-o", "ExitOnForwardFailure=yes",
	}

	if cfg.Identity != "" {
		cmd = append(cmd, "-i", cfg.Identity)
	}

	// ServerAliveCountMax has no effect without ServerAliveInterval.
	if cfg.KeepAliveInterval > 0 {
		cmd = append(cmd, "-o", "ServerAliveInterval="+strconv.Itoa(cfg.KeepAliveInterval))
		if cfg.KeepAliveCount > 0 {
			cmd = append(cmd, "-o", "ServerAliveCountMax="+strconv.Itoa(cfg.KeepAliveCount))
		}
	}

	cmd = append(cmd, "-R", cfg.RemoteForward())

	if cfg.Username != "" {
		cmd = append(cmd, "-l", cfg.Username)
	}
	if cfg.Port != 0 {
		cmd = append(cmd, "-p", strconv.Itoa(cfg.Port))
	}

	return append(cmd, cfg.Host)
}

// CommandLine renders argv for display, quoted so it can be pasted into a shell.
func CommandLine(argv []string) string {
	return shellquote.Join(argv...)
}
