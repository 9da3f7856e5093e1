package tunnel

import (
	"fmt"
	"strings"
	"time"
)

// Defaults applied by [Default].
const (
	DefaultLocalHost         = "localhost"
	DefaultLocalPort         = 22
	DefaultKeepAliveInterval = 60
	DefaultKeepAliveCount    = 3
	DefaultAttempts          = 1
	DefaultDelay             = 60 * time.Second
	DefaultSSH               = "/usr/bin/ssh"
)

const maxPort = 65535

// Config holds everything needed to build and supervise one reverse tunnel.
type Config struct {
	// Host is the remote host the ssh client connects to.
	Host string
	// RemotePort is the port opened on Host that forwards back to LocalHost:LocalPort.
	RemotePort int

	LocalHost string
	LocalPort int

	// Username is the remote login name. Empty leaves it to the ssh client.
	Username string
	// Identity is passed to ssh with -i. Empty leaves it to the ssh client.
	Identity string
	// Port is the ssh port on Host. Zero leaves it to the ssh client.
	Port int

	// KeepAliveInterval is ServerAliveInterval in seconds. Zero disables keep-alives.
	KeepAliveInterval int
	// KeepAliveCount is ServerAliveCountMax. Only used when KeepAliveInterval > 0.
	KeepAliveCount int

	// Attempts is the number of ssh invocations before the supervisor gives up.
	Attempts int
	// Delay is the pause between attempts.
	Delay time.Duration

	// SSH is the ssh client executable.
	SSH string
}

// Default returns a Config with every optional field set to its default.
// Host and RemotePort are left empty.
func Default() Config {
	return Config{
		LocalHost:         DefaultLocalHost,
		LocalPort:         DefaultLocalPort,
		KeepAliveInterval: DefaultKeepAliveInterval,
		KeepAliveCount:    DefaultKeepAliveCount,
		Attempts:          DefaultAttempts,
		Delay:             DefaultDelay,
		SSH:               DefaultSSH,
	}
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if err := validateArgument("host", c.Host); err != nil {
		return err
	}
	if c.RemotePort == 0 {
		return fmt.Errorf("remote port is required")
	}
	if err := validatePort("remote port", c.RemotePort); err != nil {
		return err
	}

	if c.LocalHost == "" {
		return fmt.Errorf("local host cannot be empty")
	}
	if err := validateLocalHost(c.LocalHost); err != nil {
		return err
	}
	if err := validatePort("local port", c.LocalPort); err != nil {
		return err
	}

	if c.Username != "" {
		if err := validateArgument("username", c.Username); err != nil {
			return err
		}
	}
	if c.Port != 0 {
		if err := validatePort("port", c.Port); err != nil {
			return err
		}
	}

	if c.KeepAliveInterval < 0 {
		return fmt.Errorf("keep-alive interval must be non-negative, got %d", c.KeepAliveInterval)
	}
	if c.KeepAliveCount < 0 {
		return fmt.Errorf("keep-alive count must be non-negative, got %d", c.KeepAliveCount)
	}

	if c.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", c.Attempts)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must be non-negative, got %s", c.Delay)
	}

	if c.SSH == "" {
		return fmt.Errorf("ssh executable cannot be empty")
	}

	return nil
}

// RemoteForward returns the -R value, remotePort:localHost:localPort.
func (c Config) RemoteForward() string {
	return fmt.Sprintf("%d:%s:%d", c.RemotePort, c.LocalHost, c.LocalPort)
}

// validateLocalHost accepts a plain name or address, or a bracketed IPv6 address.
func validateLocalHost(host string) error {
	if inner, ok := strings.CutPrefix(host, "["); ok {
		inner, closed := strings.CutSuffix(inner, "]")
		if !closed || inner == "" || strings.ContainsAny(inner, "[]") {
			return fmt.Errorf("local host %q has unbalanced brackets", host)
		}
		return nil
	}
	if strings.ContainsAny(host, "[]") {
		return fmt.Errorf("local host %q has unbalanced brackets", host)
	}
	if strings.Contains(host, ":") {
		return fmt.Errorf("local host %q must be bracketed when it contains ':'", host)
	}
	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > maxPort {
		return fmt.Errorf("%s must be between 1 and %d, got %d", name, maxPort, port)
	}
	return nil
}

// validateArgument rejects values the ssh client would parse as options.
func validateArgument(name, value string) error {
	if strings.HasPrefix(value, "-") {
		return fmt.Errorf("%s %q must not start with '-'", name, value)
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return fmt.Errorf("%s %q must not contain whitespace", name, value)
	}
	return nil
}
