package netutil

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

func listen(t *testing.T) (*net.TCPListener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}
	tcp := ln.(*net.TCPListener)
	return tcp, tcp.Addr().(*net.TCPAddr).Port
}

func TestProbePort_Open(t *testing.T) {
	ln, port := listen(t)
	defer ln.Close()

	if err := ProbePort(context.Background(), "127.0.0.1", port, DefaultProbeTimeout); err != nil {
		t.Errorf("ProbePort failed for open port: %v", err)
	}
}

func TestProbePort_Closed(t *testing.T) {
	// Let the kernel pick a free port, then release it.
	ln, port := listen(t)
	ln.Close()

	err := ProbePort(context.Background(), "127.0.0.1", port, DefaultProbeTimeout)
	if err == nil {
		t.Fatal("Expected an error for a closed port, got nil")
	}
	want := "127.0.0.1:" + strconv.Itoa(port)
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("Expected error to mention %s, got %q", want, got)
	}
}

func TestProbePort_Cancelled(t *testing.T) {
	ln, port := listen(t)
	defer ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := ProbePort(ctx, "127.0.0.1", port, time.Minute); err == nil {
		t.Error("Expected an error for a cancelled context, got nil")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("ProbePort ignored cancellation, took %v", elapsed)
	}
}

func TestProbePort_BracketedHost(t *testing.T) {
	ln, port := listen(t)
	defer ln.Close()

	if err := ProbePort(context.Background(), "[127.0.0.1]", port, DefaultProbeTimeout); err != nil {
		t.Errorf("ProbePort failed for bracketed host: %v", err)
	}
}
