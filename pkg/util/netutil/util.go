package netutil

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is the Minecraft Java edition default port.
const DefaultPort = 25565

// Host returns the host of net.Addr.
func Host(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return HostStr(addr.String())
}

// HostStr returns the host of the address.
func HostStr(addr string) string {
	host, _, _ := splitHostPort(addr)
	return host
}

// Port returns the port of net.Addr.
func Port(addr net.Addr) uint16 {
	_, port, _ := splitHostPort(addr.String())
	return port
}

// WithDefaultPort appends DefaultPort to addr if it has no port.
func WithDefaultPort(addr string) (string, error) {
	host, port, err := splitHostPort(addr)
	if err != nil {
		return "", err
	}
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port))), nil
}

func splitHostPort(addr string) (host string, port uint16, err error) {
	portInt := 0
	portStr := ""
	host, portStr, err = net.SplitHostPort(addr)
	if err == nil {
		portInt, err = strconv.Atoi(portStr)
	} else if isMissingPortErr(err) {
		host = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
		err = nil
	}
	return host, uint16(portInt), err
}

func isMissingPortErr(err error) bool {
	var addrErr *net.AddrError
	return err != nil && errors.As(err, &addrErr) && addrErr.Err == "missing port in address"
}
