package schema

import (
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sockopt(t *testing.T, c net.Conn, level, opt int) int {
	t.Helper()
	sc, ok := c.(syscall.Conn)
	require.True(t, ok, "%T has no raw descriptor", c)
	raw, err := sc.SyscallConn()
	require.NoError(t, err)

	var v int
	var gerr error
	require.NoError(t, raw.Control(func(fd uintptr) {
		v, gerr = syscall.GetsockoptInt(int(fd), level, opt)
	}))
	require.NoError(t, gerr)
	return v
}

func TestFDFlgAppliesTCPKeepAlive(t *testing.T) {
	fd, addr := inheritedFD(t)
	sl, err := NewServerListener(ListenerSpec{Name: "web", Kind: KindPlain, FD: fd}, nil, Defaults{KeepAlive: 42 * time.Second})
	require.NoError(t, err)
	ln, err := sl.Listener()
	require.NoError(t, err)
	defer sl.Close()

	client, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer client.Close()

	c, err := ln.Accept()
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, 1, sockopt(t, c, syscall.SOL_SOCKET, syscall.SO_KEEPALIVE))
	assert.Equal(t, 42, sockopt(t, c, syscall.IPPROTO_TCP, syscall.TCP_KEEPINTVL))
	assert.Equal(t, 42, sockopt(t, c, syscall.IPPROTO_TCP, syscall.TCP_KEEPIDLE))
}
