package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the answers given to the init wizard. Numeric answers
// are kept as entered and parsed by ToConfig.
type WizardResult struct {
	Host       string
	RemotePort string
	Username   string
	Identity   string
	Port       string
	Attempts   string
	Delay      string
	LogFile    string
}

// RunWizard asks for the tunnel settings interactively.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	d := Default()
	result := &WizardResult{
		Attempts: strconv.Itoa(d.Attempts),
		Delay:    d.Delay.String(),
	}

	form := huh.NewForm(
		// Remote end
		huh.NewGroup(
			huh.NewInput().
				Title("Remote host").
				Description("Host the reverse tunnel is opened to").
				Placeholder("shore.example.org").
				Value(&result.Host).
				Validate(validateHost),
			huh.NewInput().
				Title("Remote port").
				Description("Port bound on the remote host that forwards back to this machine").
				Placeholder("2222").
				Value(&result.RemotePort).
				Validate(validateRequiredPort),
		),

		// Credentials
		huh.NewGroup(
			huh.NewInput().
				Title("Username (optional)").
				Description("Login name on the remote host. Leave empty for the ssh default.").
				Value(&result.Username).
				Validate(validateOptionalToken),
			huh.NewInput().
				Title("Identity file (optional)").
				Description("Private key used to authenticate. Leave empty for the ssh default.").
				Placeholder("~/.ssh/id_ed25519").
				Value(&result.Identity).
				Validate(validateIdentity),
			huh.NewInput().
				Title("SSH port (optional)").
				Description("Port of the remote ssh server. Leave empty for 22.").
				Value(&result.Port).
				Validate(validateOptionalPort),
		),

		// Supervision
		huh.NewGroup(
			huh.NewInput().
				Title("Attempts").
				Description("How many times to start the tunnel before giving up").
				Value(&result.Attempts).
				Validate(validateAttempts),
			huh.NewInput().
				Title("Delay").
				Description("Pause between attempts, e.g. 60s or 5m").
				Value(&result.Delay).
				Validate(validateDelay),
			huh.NewInput().
				Title("Log file (optional)").
				Description("Rotated log file. Leave empty to log to stderr.").
				Value(&result.LogFile),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard answers to a Config on top of the defaults.
func (r *WizardResult) ToConfig() (*Config, error) {
	cfg := Default()
	cfg.Host = strings.TrimSpace(r.Host)
	cfg.Username = strings.TrimSpace(r.Username)
	cfg.Identity = strings.TrimSpace(r.Identity)
	cfg.Log.File = strings.TrimSpace(r.LogFile)

	var err error
	if cfg.RemotePort, err = parsePort(r.RemotePort); err != nil {
		return nil, fmt.Errorf("invalid remote port: %w", err)
	}
	if strings.TrimSpace(r.Port) != "" {
		if cfg.Port, err = parsePort(r.Port); err != nil {
			return nil, fmt.Errorf("invalid ssh port: %w", err)
		}
	}
	if strings.TrimSpace(r.Attempts) != "" {
		if cfg.Attempts, err = strconv.Atoi(strings.TrimSpace(r.Attempts)); err != nil {
			return nil, fmt.Errorf("invalid attempts: %w", err)
		}
	}
	if strings.TrimSpace(r.Delay) != "" {
		if cfg.Delay, err = time.ParseDuration(strings.TrimSpace(r.Delay)); err != nil {
			return nil, fmt.Errorf("invalid delay: %w", err)
		}
	}

	if _, err := cfg.Tunnel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return port, nil
}

// validateHost validates the remote host.
func validateHost(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("host is required")
	}
	return validateOptionalToken(s)
}

// validateOptionalToken rejects values ssh would read as an option or split.
func validateOptionalToken(s string) error {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return errors.New("must not start with '-'")
	}
	if strings.ContainsAny(s, " \t\n") {
		return errors.New("must not contain whitespace")
	}
	return nil
}

func validateRequiredPort(s string) error {
	_, err := parsePort(s)
	return err
}

func validateOptionalPort(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateRequiredPort(s)
}

func validateIdentity(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return CheckIdentity(s)
}

func validateAttempts(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	if n < 1 {
		return errors.New("attempts must be at least 1")
	}
	return nil
}

func validateDelay(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%q is not a duration", s)
	}
	if d < 0 {
		return errors.New("delay must be non-negative")
	}
	return nil
}
