package proxy

import (
	"net"
	"strings"

	"go.minekube.com/enforcedomain/pkg/proto"
	"go.minekube.com/enforcedomain/pkg/proto/packet"
)

// Inbound is an incoming connection to the proxy.
type Inbound interface {
	// ID is a unique id of the connection used in logs.
	ID() string
	// RemoteAddr returns the player's address,
	// as sent by a load balancer if the PROXY protocol is enabled.
	RemoteAddr() net.Addr
	// VirtualHost returns the cleaned hostname the client dialed.
	// It is empty if the client sent none.
	VirtualHost() string
	// ServerAddress returns the raw server address from the handshake,
	// which may carry Forge or TCPShield data.
	ServerAddress() string
	// Protocol returns the protocol version of the client.
	Protocol() proto.Protocol
}

type inbound struct {
	id          string
	conn        net.Conn
	handshake   *packet.Handshake
	virtualHost string
}

var _ Inbound = (*inbound)(nil)

func newInbound(id string, conn net.Conn, handshake *packet.Handshake) *inbound {
	return &inbound{
		id:          id,
		conn:        conn,
		handshake:   handshake,
		virtualHost: ClearVirtualHost(handshake.ServerAddress),
	}
}

func (i *inbound) ID() string               { return i.id }
func (i *inbound) RemoteAddr() net.Addr     { return i.conn.RemoteAddr() }
func (i *inbound) VirtualHost() string      { return i.virtualHost }
func (i *inbound) ServerAddress() string    { return i.handshake.ServerAddress }
func (i *inbound) Protocol() proto.Protocol { return proto.Protocol(i.handshake.ProtocolVersion) }

func (i *inbound) String() string {
	return "[inbound " + i.id + " " + i.conn.RemoteAddr().String() + "]"
}

const (
	forgeSeparator           = "\x00"
	tcpShieldRealIPSeparator = "///"
)

// ClearVirtualHost cleans the server address sent in the handshake.
//
// Forge (FML) markers, TCPShield real ip data and a single trailing dot are removed.
// Leading dots are kept so that ".example.com" never equals "example.com".
func ClearVirtualHost(name string) string {
	name, _, _ = strings.Cut(name, forgeSeparator)
	name, _, _ = strings.Cut(name, tcpShieldRealIPSeparator)
	return strings.TrimSuffix(name, ".")
}
