package netutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHost(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("203.0.113.7"), Port: 123}
	require.Equal(t, "203.0.113.7", Host(addr))
	require.Equal(t, uint16(123), Port(addr))
	require.Equal(t, "", Host(nil))
}

func TestHostStr(t *testing.T) {
	require.Equal(t, "play.example.com", HostStr("play.example.com:25565"))
	require.Equal(t, "play.example.com", HostStr("play.example.com"))
}

func TestWithDefaultPort(t *testing.T) {
	addr, err := WithDefaultPort("localhost")
	require.NoError(t, err)
	require.Equal(t, "localhost:25565", addr)

	addr, err = WithDefaultPort("localhost:25566")
	require.NoError(t, err)
	require.Equal(t, "localhost:25566", addr)

	addr, err = WithDefaultPort("[::1]")
	require.NoError(t, err)
	require.Equal(t, "[::1]:25565", addr)

	_, err = WithDefaultPort("localhost:port")
	require.Error(t, err)
}

func TestSplitHostPort_isMissingPortErr(t *testing.T) {
	_, _, err := net.SplitHostPort("host-without-port")
	require.True(t, isMissingPortErr(err))
}
