// Package prerequisites provides utilities for checking required client tools.
package prerequisites

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// versionTimeout bounds how long a version probe may run.
const versionTimeout = 5 * time.Second

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH, or an absolute path.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string

	// VersionArgs are passed to the tool to print its version. When empty the
	// common flags are tried in turn.
	VersionArgs []string
}

// SSHClient returns the OpenSSH client found at path. The tunnel cannot run
// without it.
func SSHClient(path string) Tool {
	return Tool{
		Name:        path,
		Required:    true,
		Description: "Required for opening the reverse tunnel",
		InstallURL:  "https://www.openssh.com/portable.html",
		// OpenSSH prints its version on stderr.
		VersionArgs: []string{"-V"},
	}
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "ssh-add",
			Required:    false,
			Description: "Useful for loading passphrase-protected identities into an agent",
			InstallURL:  "https://www.openssh.com/portable.html",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := exec.LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			// Try to get version (best effort)
			result.Version = getToolVersion(path, tool.VersionArgs)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckSSH checks the ssh client at path together with the optional tools.
func CheckSSH(path string) *CheckResults {
	optional := OptionalTools()
	all := make([]Tool, 0, 1+len(optional))
	all = append(all, SSHClient(path))
	all = append(all, optional...)
	return Check(all)
}

// getToolVersion attempts to get the version of a tool.
// Returns empty string if version cannot be determined.
func getToolVersion(path string, args []string) string {
	candidates := [][]string{{"--version"}, {"version"}, {"-v"}}
	if len(args) > 0 {
		candidates = [][]string{args}
	}

	for _, flags := range candidates {
		ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
		// #nosec G204 - path comes from LookPath on a configured tool
		output, err := exec.CommandContext(ctx, path, flags...).CombinedOutput()
		cancel()
		if err == nil {
			return firstLine(output)
		}
	}

	return ""
}

func firstLine(output []byte) string {
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line)
}
