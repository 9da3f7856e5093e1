package handlers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout during f.
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// fakeSSH writes a script standing in for the ssh client. Each invocation
// appends its arguments to the returned log file and exits with code.
func fakeSSH(t *testing.T, code int) (string, string) {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "ssh")
	calls := filepath.Join(dir, "calls.log")
	content := "#!/bin/sh\necho \"$@\" >> " + calls + "\nexit " + string(rune('0'+code)) + "\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))
	return script, calls
}

func saveAndRestoreHostname(t *testing.T, name string) {
	orig := hostname
	hostname = func() (string, error) { return name, nil }
	t.Cleanup(func() { hostname = orig })
}
