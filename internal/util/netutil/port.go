// Package netutil provides network utility functions for port checking.
package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultProbeTimeout bounds a single TCP probe.
const DefaultProbeTimeout = 2 * time.Second

// ProbePort dials host:port once and reports whether a TCP connection could be
// opened. The connection is closed right away. host may be a bracketed IPv6
// address as written in an ssh forward.
func ProbePort(ctx context.Context, host string, port int, timeout time.Duration) error {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	address := net.JoinHostPort(host, strconv.Itoa(port))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	_ = conn.Close()
	return nil
}
