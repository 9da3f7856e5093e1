package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/imamik/revtunnel/internal/config"
	"github.com/imamik/revtunnel/internal/service"
)

// InstallOptions configures the unit written by Install.
type InstallOptions struct {
	Name             string
	Directory        string
	User             string
	Group            string
	WorkingDirectory string
	RestartSeconds   int
	Executable       string
	Force            bool

	// Invocation is recorded in the unit header.
	Invocation string
}

// Factory function variables for install - can be replaced in tests.
var (
	currentAccount = service.CurrentAccount
	executable     = os.Executable
	now            = time.Now
)

// Install writes a systemd unit that runs the tunnel with the effective
// settings. It never reloads, enables or starts the unit.
func Install(_ context.Context, configPath string, override func(*config.Config), opts InstallOptions) error {
	cfg, err := loadConfig(configPath, override)
	if err != nil {
		return err
	}

	wd, err := service.ExpandHome(opts.WorkingDirectory)
	if err != nil {
		return err
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(wd, opts.Name+".log")
	}
	if cfg.Log.File, err = service.ExpandHome(cfg.Log.File); err != nil {
		return err
	}
	if cfg.Identity != "" {
		if cfg.Identity, err = service.ExpandHome(cfg.Identity); err != nil {
			return err
		}
	}

	// Validates the settings baked into the unit.
	if _, err := cfg.Tunnel(); err != nil {
		return err
	}

	user, group, err := account(opts.User, opts.Group)
	if err != nil {
		return err
	}

	exe := opts.Executable
	if exe == "" {
		if exe, err = executable(); err != nil {
			return fmt.Errorf("failed to locate revtunnel binary: %w", err)
		}
	}
	absExe, err := filepath.Abs(exe)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", exe, err)
	}

	u := service.Unit{
		Name:             opts.Name,
		Description:      fmt.Sprintf("Reverse SSH tunnel to %s", cfg.Host),
		User:             user,
		Group:            group,
		WorkingDirectory: wd,
		ExecStart:        execStart(absExe, cfg),
		RestartSeconds:   opts.RestartSeconds,
		GeneratedBy:      opts.Invocation,
		GeneratedAt:      now(),
	}

	res, err := service.Install(u, opts.Directory, opts.Force)
	if err != nil {
		return fmt.Errorf("failed to install service %s: %w", opts.Name, err)
	}

	printInstallResult(u, res)
	return nil
}

// account fills in the user and group the service runs as. A user without a
// group runs under the group of the same name.
func account(user, group string) (string, string, error) {
	if user != "" {
		if group == "" {
			group = user
		}
		return user, group, nil
	}

	current, primary, err := currentAccount()
	if err != nil {
		return "", "", err
	}
	if group == "" {
		group = primary
	}
	return current, group, nil
}

// execStart returns the unit's command: the tunnel subcommand with every
// setting that differs from the defaults, plus the log file.
func execStart(exe string, cfg *config.Config) []string {
	d := config.Default()
	args := []string{exe, "tunnel", "--host", cfg.Host, "--remote-port", strconv.Itoa(cfg.RemotePort)}
	add := func(flag, value string) {
		args = append(args, flag, value)
	}

	if cfg.LocalHost != d.LocalHost {
		add("--local-host", cfg.LocalHost)
	}
	if cfg.LocalPort != d.LocalPort {
		add("--local-port", strconv.Itoa(cfg.LocalPort))
	}
	if cfg.Username != "" {
		add("--username", cfg.Username)
	}
	if cfg.Identity != "" {
		add("--identity", cfg.Identity)
	}
	if cfg.Port != 0 {
		add("--port", strconv.Itoa(cfg.Port))
	}
	if cfg.KeepAliveInterval != d.KeepAliveInterval {
		add("--interval", strconv.Itoa(cfg.KeepAliveInterval))
	}
	if cfg.KeepAliveCount != d.KeepAliveCount {
		add("--count", strconv.Itoa(cfg.KeepAliveCount))
	}
	if cfg.Attempts != d.Attempts {
		add("--attempts", strconv.Itoa(cfg.Attempts))
	}
	if cfg.Delay != d.Delay {
		add("--delay", cfg.Delay.String())
	}
	if cfg.SSH != d.SSH {
		add("--ssh", cfg.SSH)
	}
	if cfg.MetricsAddress != "" {
		add("--metrics-address", cfg.MetricsAddress)
	}

	add("--log-file", cfg.Log.File)
	if cfg.Log.MaxSizeMB != d.Log.MaxSizeMB {
		add("--log-max-size", strconv.Itoa(cfg.Log.MaxSizeMB))
	}
	if cfg.Log.MaxBackups != d.Log.MaxBackups {
		add("--log-max-backups", strconv.Itoa(cfg.Log.MaxBackups))
	}
	if cfg.Log.Format != d.Log.Format {
		add("--log-format", cfg.Log.Format)
	}
	if cfg.Log.Verbosity > 0 {
		args = append(args, "--verbose="+strconv.Itoa(cfg.Log.Verbosity))
	}
	return args
}

func printInstallResult(u service.Unit, res service.Result) {
	fmt.Println()
	if res.Unchanged {
		fmt.Printf("%s is up to date, nothing written.\n", res.Path)
		fmt.Println()
		return
	}

	if res.CreatedDirectory {
		fmt.Printf("Created %s\n", u.WorkingDirectory)
	}
	fmt.Printf("Wrote %s\n", res.Path)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  sudo systemctl daemon-reload")
	fmt.Printf("  sudo systemctl enable %s\n", u.Name)
	fmt.Printf("  sudo systemctl restart %s\n", u.Name)
	fmt.Printf("  systemctl --no-pager status %s\n", u.Name)
	fmt.Println()
}
