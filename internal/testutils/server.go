package testutils

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// PortOpen reports whether something accepts TCP connections on host:port.
func PortOpen(t *testing.T, host string, port int) bool {
	t.Helper()

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), time.Second)
	if err != nil {
		return false
	}
	defer conn.Close()
	return true
}

// AddrOpen reports whether something accepts TCP connections on addr.
func AddrOpen(t *testing.T, addr string) bool {
	t.Helper()

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err, "Setup: invalid address %q", addr)
	p, err := strconv.Atoi(port)
	require.NoError(t, err, "Setup: invalid port in %q", addr)
	return PortOpen(t, host, p)
}

// WaitForAddrClosed fails the test if addr still accepts connections after timeout.
func WaitForAddrClosed(t *testing.T, addr string, timeout time.Duration) {
	t.Helper()

	require.Eventually(t, func() bool {
		return !AddrOpen(t, addr)
	}, timeout, 50*time.Millisecond, "%s should be closed", addr)
}
