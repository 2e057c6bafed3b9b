package proto

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"go.minekube.com/enforcedomain/pkg/proto/util"
	"go.minekube.com/enforcedomain/pkg/util/errs"
)

// MaxFrameLen is the largest frame accepted before login completes.
// Handshake and login start packets are far smaller than this.
const MaxFrameLen = 1 << 16

// legacyPingID is the first byte a pre-Netty (<1.7) client sends.
const legacyPingID = 0xFE

var (
	// ErrLegacyPing is returned when a pre-1.7 client connected.
	ErrLegacyPing = errs.NewSilentErr("legacy ping is not supported")
	// ErrFrameTooLarge is returned for frames larger than MaxFrameLen.
	ErrFrameTooLarge = errs.NewSilentErr("frame exceeds %d bytes", MaxFrameLen)
)

// Decoder reads length-prefixed packets off a connection
// and keeps each raw frame so it can be replayed.
type Decoder struct {
	rd       *bufio.Reader
	protocol Protocol
	first    bool
}

// NewDecoder returns a new Decoder reading from rd.
func NewDecoder(rd io.Reader) *Decoder {
	return &Decoder{rd: bufio.NewReader(rd), first: true}
}

// SetProtocol sets the protocol version subsequent packets are decoded with.
func (d *Decoder) SetProtocol(p Protocol) { d.protocol = p }

// Buffered returns the bytes read from the connection but not yet decoded.
// They must be forwarded after the decoded frames.
func (d *Decoder) Buffered() []byte {
	b, _ := d.rd.Peek(d.rd.Buffered())
	return b
}

// ReadFrame reads the next packet frame without decoding the packet data.
func (d *Decoder) ReadFrame() (*PacketContext, error) {
	if d.first {
		d.first = false
		b, err := d.rd.Peek(1)
		if err != nil {
			return nil, err
		}
		if b[0] == legacyPingID {
			return nil, ErrLegacyPing
		}
	}

	length, err := util.ReadVarInt(d.rd)
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, errs.NewSilentErr("invalid frame length %d", length)
	}
	if length > MaxFrameLen {
		return nil, ErrFrameTooLarge
	}

	frame := make([]byte, util.VarIntLen(length)+length)
	payload := util.AppendVarInt(frame[:0], length)
	payload = frame[len(payload):]
	if _, err = io.ReadFull(d.rd, payload); err != nil {
		return nil, fmt.Errorf("error reading frame payload: %w", err)
	}

	id, err := util.ReadVarInt(bytes.NewReader(payload))
	if err != nil {
		return nil, errs.WrapSilent(fmt.Errorf("error reading packet id: %w", err))
	}
	return &PacketContext{
		Protocol: d.protocol,
		PacketID: PacketID(id),
		Payload:  payload,
		Frame:    frame,
	}, nil
}

// Decode reads the next frame and decodes it into p if the packet id matches id.
func (d *Decoder) Decode(id PacketID, p Packet) (*PacketContext, error) {
	pc, err := d.ReadFrame()
	if err != nil {
		return nil, err
	}
	if pc.PacketID != id {
		return pc, errs.NewSilentErr("unexpected packet %s, expected %s", pc.PacketID, id)
	}
	rd := bytes.NewReader(pc.Payload)
	_, _ = util.ReadVarInt(rd) // skip id
	if err = p.Decode(pc, rd); err != nil {
		return pc, errs.WrapSilent(fmt.Errorf("error decoding %T: %w", p, err))
	}
	pc.Packet = p
	return pc, nil
}

// Encode writes p framed with its packet id to wr.
func Encode(wr io.Writer, c *PacketContext, id PacketID, p Packet) error {
	data := new(bytes.Buffer)
	_ = util.WriteVarInt(data, int(id))
	if err := p.Encode(c, data); err != nil {
		return err
	}
	frame := util.AppendVarInt(make([]byte, 0, 5+data.Len()), data.Len())
	frame = append(frame, data.Bytes()...)
	_, err := wr.Write(frame)
	return err
}
