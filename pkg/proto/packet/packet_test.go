package packet

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.minekube.com/common/minecraft/component"

	"go.minekube.com/enforcedomain/pkg/proto"
)

func TestHandshake(t *testing.T) {
	buf := new(bytes.Buffer)
	want := &Handshake{
		ProtocolVersion: int(proto.Minecraft_1_20_5),
		ServerAddress:   "play.example.com\x00FML3\x00",
		Port:            25565,
		NextStatus:      LoginIntent,
	}
	require.NoError(t, proto.Encode(buf, &proto.PacketContext{}, HandshakeID, want))

	dec := proto.NewDecoder(buf)
	got := new(Handshake)
	pc, err := dec.Decode(HandshakeID, got)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, proto.LoginState, got.Intent())
	assert.Same(t, got, pc.Packet)
}

func TestHandshake_intent(t *testing.T) {
	assert.Equal(t, proto.StatusState, (&Handshake{NextStatus: StatusIntent}).Intent())
	assert.Equal(t, proto.TransferState, (&Handshake{NextStatus: TransferIntent}).Intent())
	assert.Equal(t, proto.HandshakeState, (&Handshake{NextStatus: 42}).Intent())
}

func TestServerLogin(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		protocol proto.Protocol
		id       uuid.UUID
		wantID   uuid.UUID
	}{
		{proto.Minecraft_1_7_2, id, uuid.Nil},
		{proto.Minecraft_1_19, id, uuid.Nil},
		{proto.Minecraft_1_19_1, id, id},
		{proto.Minecraft_1_19_1, uuid.Nil, uuid.Nil},
		{proto.Minecraft_1_19_3, id, id},
		{proto.Minecraft_1_20_2, id, id},
	}
	for _, tt := range tests {
		t.Run(tt.protocol.String(), func(t *testing.T) {
			c := &proto.PacketContext{Protocol: tt.protocol}
			buf := new(bytes.Buffer)
			require.NoError(t, proto.Encode(buf, c, ServerLoginID, &ServerLogin{Username: "Steve", ID: tt.id}))

			dec := proto.NewDecoder(buf)
			dec.SetProtocol(tt.protocol)
			got := new(ServerLogin)
			_, err := dec.Decode(ServerLoginID, got)
			require.NoError(t, err)
			assert.Equal(t, "Steve", got.Username)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestServerLogin_emptyUsername(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write([]byte{0x00}) // empty string
	err := new(ServerLogin).Decode(&proto.PacketContext{}, buf)
	require.ErrorIs(t, err, errEmptyUsername)
}

func TestServerLogin_tooLongUsername(t *testing.T) {
	c := &proto.PacketContext{Protocol: proto.Minecraft_1_7_2}
	buf := new(bytes.Buffer)
	require.NoError(t, (&ServerLogin{Username: string(bytes.Repeat([]byte("a"), 100))}).Encode(c, buf))
	require.Error(t, new(ServerLogin).Decode(c, buf))
}

func TestDisconnect(t *testing.T) {
	buf := new(bytes.Buffer)
	msg := &component.Text{Content: "Direct connections to this server are not allowed."}
	require.NoError(t, proto.Encode(buf, &proto.PacketContext{}, LoginDisconnectID, NewDisconnect(msg)))

	got := new(Disconnect)
	_, err := proto.NewDecoder(buf).Decode(LoginDisconnectID, got)
	require.NoError(t, err)
	text, ok := got.Reason.(*component.Text)
	require.True(t, ok)
	assert.Equal(t, msg.Content, text.Content)
}

func TestNewDisconnect_nilReason(t *testing.T) {
	d := NewDisconnect(nil)
	require.NotNil(t, d.Reason)
	require.NoError(t, d.Encode(&proto.PacketContext{}, new(bytes.Buffer)))
}
