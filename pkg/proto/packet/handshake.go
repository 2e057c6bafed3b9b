package packet

import (
	"io"

	"go.minekube.com/enforcedomain/pkg/proto"
	"go.minekube.com/enforcedomain/pkg/proto/util"
)

// HandshakeID is the id of the Handshake packet.
const HandshakeID proto.PacketID = 0x00

// Handshake is the first packet a client sends.
// https://wiki.vg/Protocol#Handshaking
type Handshake struct {
	ProtocolVersion int
	ServerAddress   string
	Port            int
	NextStatus      int
}

// Handshake intents.
const (
	StatusIntent   = 1
	LoginIntent    = 2
	TransferIntent = 3
)

// maxServerAddressLen leaves room for Forge markers and TCPShield data appended to the host.
const maxServerAddressLen = 255 * 4

func (h *Handshake) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteVarInt(wr, h.ProtocolVersion)
	if err != nil {
		return err
	}
	err = util.WriteString(wr, h.ServerAddress)
	if err != nil {
		return err
	}
	err = util.WriteUint16(wr, uint16(h.Port))
	if err != nil {
		return err
	}
	return util.WriteVarInt(wr, h.NextStatus)
}

func (h *Handshake) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	h.ProtocolVersion, err = util.ReadVarInt(rd)
	if err != nil {
		return err
	}
	h.ServerAddress, err = util.ReadStringMax(rd, maxServerAddressLen)
	if err != nil {
		return err
	}
	port, err := util.ReadUint16(rd)
	if err != nil {
		return err
	}
	h.Port = int(port)
	h.NextStatus, err = util.ReadVarInt(rd)
	return err
}

// Intent returns the state the client asks to switch to.
func (h *Handshake) Intent() proto.State {
	switch h.NextStatus {
	case StatusIntent:
		return proto.StatusState
	case LoginIntent:
		return proto.LoginState
	case TransferIntent:
		return proto.TransferState
	}
	return proto.HandshakeState
}

var _ proto.Packet = (*Handshake)(nil)
