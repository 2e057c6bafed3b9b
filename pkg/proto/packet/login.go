package packet

import (
	"errors"
	"io"

	"github.com/google/uuid"

	"go.minekube.com/enforcedomain/pkg/proto"
	"go.minekube.com/enforcedomain/pkg/proto/util"
	"go.minekube.com/enforcedomain/pkg/util/errs"
)

// ServerLoginID is the id of the ServerLogin (login start) packet.
const ServerLoginID proto.PacketID = 0x00

// ServerLogin is the login start packet sent by the client.
//
// Only the username is required, the player's uuid is
// available from 1.19.1 on and always sent since 1.20.2.
// The 1.19 chat signing key is skipped.
type ServerLogin struct {
	Username string
	ID       uuid.UUID // uuid.Nil if not sent
}

var errEmptyUsername = errs.NewSilentErr("empty username")

const (
	maxUsernameLen     = 16
	maxPublicKeyLen    = 512
	maxKeySignatureLen = 4096
)

func (s *ServerLogin) Encode(c *proto.PacketContext, wr io.Writer) error {
	if s.Username == "" {
		return errors.New("username not specified")
	}
	err := util.WriteString(wr, s.Username)
	if err != nil {
		return err
	}
	switch {
	case c.Protocol.GreaterEqual(proto.Minecraft_1_20_2):
		return util.WriteUUID(wr, s.ID)
	case c.Protocol.GreaterEqual(proto.Minecraft_1_19):
		if c.Protocol.Lower(proto.Minecraft_1_19_3) {
			// no signing key
			if err = util.WriteBool(wr, false); err != nil {
				return err
			}
		}
		if c.Protocol.GreaterEqual(proto.Minecraft_1_19_1) {
			ok := s.ID != uuid.Nil
			if err = util.WriteBool(wr, ok); err != nil {
				return err
			}
			if ok {
				return util.WriteUUID(wr, s.ID)
			}
		}
	}
	return nil
}

func (s *ServerLogin) Decode(c *proto.PacketContext, rd io.Reader) (err error) {
	s.Username, err = util.ReadStringMax(rd, maxUsernameLen)
	if err != nil {
		return err
	}
	if len(s.Username) == 0 {
		return errEmptyUsername
	}
	s.ID = uuid.Nil

	switch {
	case c.Protocol.GreaterEqual(proto.Minecraft_1_20_2):
		s.ID, err = util.ReadUUID(rd)
		return err
	case c.Protocol.GreaterEqual(proto.Minecraft_1_19):
		if c.Protocol.Lower(proto.Minecraft_1_19_3) {
			if err = skipPlayerKey(rd); err != nil {
				return err
			}
		}
		if c.Protocol.GreaterEqual(proto.Minecraft_1_19_1) {
			ok, err := util.ReadBool(rd)
			if err != nil {
				return err
			}
			if ok {
				s.ID, err = util.ReadUUID(rd)
				return err
			}
		}
	}
	return nil
}

func skipPlayerKey(rd io.Reader) error {
	ok, err := util.ReadBool(rd)
	if err != nil || !ok {
		return err
	}
	// expiry timestamp
	if _, err = io.CopyN(io.Discard, rd, 8); err != nil {
		return err
	}
	if err = util.SkipBytes(rd, maxPublicKeyLen); err != nil {
		return err
	}
	return util.SkipBytes(rd, maxKeySignatureLen)
}

var _ proto.Packet = (*ServerLogin)(nil)
