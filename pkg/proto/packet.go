// Package proto implements the small subset of the Minecraft Java edition
// protocol needed to inspect a connection before handing it to a backend:
// packet framing plus the packets exchanged up to the login start.
package proto

import (
	"fmt"
	"io"
)

// Packet should be implemented by any Minecraft protocol packet.
// It is the layer of the protocol packet's data.
type Packet interface {
	Encode(c *PacketContext, wr io.Writer) error       // Encodes the packet into the writer
	Decode(c *PacketContext, rd io.Reader) (err error) // Decodes a packet by reading from the reader
}

// PacketContext carries a single framed packet.
type PacketContext struct {
	Protocol Protocol // The protocol version of the packet.
	PacketID PacketID // Is always set.
	Packet   Packet   // The decoded packet, nil if not decoded.

	// Payload is the packet id + data, without the length prefix.
	Payload []byte
	// Frame is the packet exactly as received, including the length prefix.
	// It is used to replay a packet to a backend untouched.
	Frame []byte
}

func (c *PacketContext) String() string {
	return fmt.Sprintf("PacketContext:id=%s,protocol=%s,payloadLen=%d",
		c.PacketID, c.Protocol, len(c.Payload))
}

// State is a client state.
type State int

// States the client connection can be in.
const (
	HandshakeState State = iota
	StatusState
	LoginState
	TransferState
)

func (s State) String() string {
	switch s {
	case HandshakeState:
		return "Handshake"
	case StatusState:
		return "Status"
	case LoginState:
		return "Login"
	case TransferState:
		return "Transfer"
	}
	return "UnknownState"
}

// PacketID identifies a packet.
type PacketID int

func (p PacketID) String() string {
	return fmt.Sprintf("0x%02x", int(p))
}
