// Package service renders and installs the systemd unit that keeps the tunnel
// supervisor running across exits and reboots.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/unit"
)

const (
	// DefaultName is the default unit name, without the .service suffix.
	DefaultName = "SSHtunnel"

	// DefaultDirectory is where systemd looks for administrator units.
	DefaultDirectory = "/etc/systemd/system"

	// DefaultRestartSeconds is the pause systemd takes before restarting an
	// exited supervisor.
	DefaultRestartSeconds = 300
)

// Unit describes a service unit for the tunnel supervisor.
type Unit struct {
	Name             string
	Description      string
	User             string
	Group            string
	WorkingDirectory string
	ExecStart        []string
	RestartSeconds   int

	// GeneratedBy and GeneratedAt are written as header comments only.
	GeneratedBy string
	GeneratedAt time.Time
}

// FileName returns the unit file name, e.g. SSHtunnel.service.
func (u Unit) FileName() string {
	return u.Name + ".service"
}

// Validate checks that u can be rendered.
func (u Unit) Validate() error {
	var errs []error
	if u.Name == "" {
		errs = append(errs, errors.New("unit name is required"))
	}
	if strings.ContainsAny(u.Name, "/ \t\n") {
		errs = append(errs, fmt.Errorf("unit name %q must not contain '/' or whitespace", u.Name))
	}
	if len(u.ExecStart) == 0 {
		errs = append(errs, errors.New("exec start command is required"))
	}
	if u.RestartSeconds < 0 {
		errs = append(errs, fmt.Errorf("restart seconds must be non-negative, got %d", u.RestartSeconds))
	}
	for _, v := range []string{u.Description, u.User, u.Group, u.WorkingDirectory} {
		if strings.ContainsAny(v, "\n\r") {
			errs = append(errs, fmt.Errorf("unit value %q must be a single line", v))
		}
	}
	return errors.Join(errs...)
}

// Options returns the unit's directives in file order.
func (u Unit) Options() []*unit.UnitOption {
	description := u.Description
	if description == "" {
		description = "Reverse SSH tunnel"
	}

	opts := []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", escapeSpecifiers(description)),
		unit.NewUnitOption("Unit", "Wants", "network-online.target"),
		unit.NewUnitOption("Unit", "After", "network-online.target"),

		unit.NewUnitOption("Service", "Type", "simple"),
	}
	if u.User != "" {
		opts = append(opts, unit.NewUnitOption("Service", "User", u.User))
	}
	if u.Group != "" {
		opts = append(opts, unit.NewUnitOption("Service", "Group", u.Group))
	}
	if u.WorkingDirectory != "" {
		opts = append(opts, unit.NewUnitOption("Service", "WorkingDirectory", escapeSpecifiers(u.WorkingDirectory)))
	}
	opts = append(opts,
		unit.NewUnitOption("Service", "ExecStart", execCommandLine(u.ExecStart)),
		unit.NewUnitOption("Service", "Restart", "always"),
		unit.NewUnitOption("Service", "RestartSec", strconv.Itoa(u.RestartSeconds)),

		unit.NewUnitOption("Install", "WantedBy", "multi-user.target"),
	)
	return opts
}

// execCommandLine quotes argv for ExecStart with systemd's own rules. Words
// outside the plain set are double-quoted with C escapes, and % and $ are doubled
// so systemd expands neither specifiers nor environment variables.
func execCommandLine(argv []string) string {
	words := make([]string, len(argv))
	for i, arg := range argv {
		words[i] = quoteExecArg(arg)
	}
	return strings.Join(words, " ")
}

var execArgEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
	"%", "%%",
	"$", "$$",
)

func quoteExecArg(arg string) string {
	if arg != "" && strings.IndexFunc(arg, needsExecQuote) < 0 {
		return arg
	}
	return `"` + execArgEscaper.Replace(arg) + `"`
}

func needsExecQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=,@+", r)
}

func escapeSpecifiers(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// Render returns the unit file content: a comment header followed by the
// serialized sections.
func Render(u Unit) ([]byte, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("invalid unit: %w", err)
	}

	body, err := io.ReadAll(unit.Serialize(u.Options()))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize unit: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(header(u))
	buf.Write(body)
	return buf.Bytes(), nil
}

func header(u Unit) string {
	var sb strings.Builder
	sb.WriteString("# Reverse SSH tunnel supervisor\n")
	if !u.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "# Generated on %s\n", u.GeneratedAt.Format(time.RFC1123))
	}
	if u.GeneratedBy != "" {
		fmt.Fprintf(&sb, "# Generated by: %s\n", u.GeneratedBy)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Equivalent reports whether two unit files hold the same directives in the
// same order. Comments and blank lines are ignored.
func Equivalent(a, b []byte) bool {
	optsA, err := unit.DeserializeOptions(bytes.NewReader(a))
	if err != nil {
		return false
	}
	optsB, err := unit.DeserializeOptions(bytes.NewReader(b))
	if err != nil {
		return false
	}
	return unit.AllMatch(optsA, optsB)
}
