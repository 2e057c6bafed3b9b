package proto

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/enforcedomain/pkg/proto/util"
)

func frame(id int, data ...byte) []byte {
	payload := util.AppendVarInt(nil, id)
	payload = append(payload, data...)
	return append(util.AppendVarInt(nil, len(payload)), payload...)
}

func TestDecoder_ReadFrame(t *testing.T) {
	first := frame(0x00, 1, 2, 3)
	second := frame(0x01)
	rest := []byte{9, 9}
	stream := append(append(append([]byte{}, first...), second...), rest...)

	dec := NewDecoder(bytes.NewReader(stream))
	pc, err := dec.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, PacketID(0x00), pc.PacketID)
	assert.Equal(t, first, pc.Frame)
	assert.Equal(t, first[1:], pc.Payload)

	pc, err = dec.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, PacketID(0x01), pc.PacketID)
	assert.Equal(t, second, pc.Frame)

	assert.Equal(t, rest, dec.Buffered())
}

func TestDecoder_legacyPing(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0xFE, 0x01}))
	_, err := dec.ReadFrame()
	require.ErrorIs(t, err, ErrLegacyPing)
}

func TestDecoder_invalidLength(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte{0x00})).ReadFrame()
	require.Error(t, err)

	big := util.AppendVarInt(nil, MaxFrameLen+1)
	_, err = NewDecoder(bytes.NewReader(big)).ReadFrame()
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestDecoder_truncated(t *testing.T) {
	f := frame(0x00, 1, 2, 3)
	_, err := NewDecoder(bytes.NewReader(f[:len(f)-1])).ReadFrame()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecoder_unexpectedID(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader(frame(0x05))).Decode(0x00, nil)
	require.Error(t, err)
}
