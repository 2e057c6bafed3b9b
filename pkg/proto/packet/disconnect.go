package packet

import (
	"bytes"
	"errors"
	"io"

	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/component/codec"

	"go.minekube.com/enforcedomain/pkg/proto"
	"go.minekube.com/enforcedomain/pkg/proto/util"
)

// LoginDisconnectID is the id of the Disconnect packet in the login state.
const LoginDisconnectID proto.PacketID = 0x00

// maxReasonLen is the maximum length of a JSON disconnect reason.
const maxReasonLen = 262144

// Disconnect kicks a client during login.
//
// In the login state the reason is always JSON text,
// regardless of the client version.
type Disconnect struct {
	Reason component.Component
}

var jsonCodec = &codec.Json{
	NoDownsampleColor: true,
	NoLegacyHover:     true,
}

// NewDisconnect creates a new Disconnect packet.
func NewDisconnect(reason component.Component) *Disconnect {
	if reason == nil {
		reason = &component.Text{}
	}
	return &Disconnect{Reason: reason}
}

func (d *Disconnect) Encode(_ *proto.PacketContext, wr io.Writer) error {
	if d.Reason == nil {
		return errors.New("no reason specified")
	}
	b := new(bytes.Buffer)
	if err := jsonCodec.Marshal(b, d.Reason); err != nil {
		return err
	}
	return util.WriteString(wr, b.String())
}

func (d *Disconnect) Decode(_ *proto.PacketContext, rd io.Reader) error {
	s, err := util.ReadStringMax(rd, maxReasonLen)
	if err != nil {
		return err
	}
	d.Reason, err = jsonCodec.Unmarshal([]byte(s))
	return err
}

var _ proto.Packet = (*Disconnect)(nil)
