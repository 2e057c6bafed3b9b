package proxy

import (
	"fmt"
	"net"

	"github.com/pires/go-proxyproto"

	"go.minekube.com/enforcedomain/pkg/util/netutil"
)

// proxyHeader returns a PROXY protocol v2 header announcing srcAddr as the client.
func proxyHeader(srcAddr, destAddr net.Addr) (*proxyproto.Header, error) {
	src, err := tcpAddr(srcAddr)
	if err != nil {
		return nil, err
	}
	dst, err := tcpAddr(destAddr)
	if err != nil {
		return nil, err
	}

	header := proxyproto.HeaderProxyFromAddrs(2, src, dst)
	// on mismatch v4 to v6: use v6
	if src.IP.To4() == nil || dst.IP.To4() == nil {
		header.TransportProtocol = proxyproto.TCPv6
	}
	return header, nil
}

func tcpAddr(addr net.Addr) (*net.TCPAddr, error) {
	if a, ok := addr.(*net.TCPAddr); ok {
		return a, nil
	}
	if addr == nil {
		return nil, fmt.Errorf("missing address")
	}
	ip := net.ParseIP(netutil.Host(addr))
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address %T: %+v", addr, addr)
	}
	return &net.TCPAddr{IP: ip, Port: int(netutil.Port(addr))}, nil
}
