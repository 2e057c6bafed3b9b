package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// DefaultMaxStringLen is the largest string length in characters
// the Minecraft protocol allows.
const DefaultMaxStringLen = 32767

var ErrVarIntTooBig = errors.New("decode: VarInt is too big")

func ReadString(rd io.Reader) (string, error) {
	return ReadStringMax(rd, DefaultMaxStringLen)
}

// ReadStringMax reads a length-prefixed string of at most max characters.
func ReadStringMax(rd io.Reader, max int) (string, error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", fmt.Errorf("bad string length %d", length)
	}
	if length > max*4 { // *4 since UTF8 character has up to 4 bytes
		return "", fmt.Errorf("bad string length (got %d, max. %d)", length, max)
	}
	str := make([]byte, length)
	if _, err = io.ReadFull(rd, str); err != nil {
		return "", err
	}
	return string(str), nil
}

func ReadVarInt(rd io.Reader) (result int, err error) {
	var n uint32
	for i := 0; ; i++ {
		if i >= 5 {
			return 0, ErrVarIntTooBig
		}
		b, err := ReadUint8(rd)
		if err != nil {
			return 0, err
		}
		n |= uint32(b&0x7F) << uint32(7*i)
		if b&0x80 == 0 {
			break
		}
	}
	return int(int32(n)), nil
}

func ReadBool(rd io.Reader) (bool, error) {
	b, err := ReadUint8(rd)
	return b != 0, err
}

func ReadUint8(rd io.Reader) (uint8, error) {
	if br, ok := rd.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var b [1]byte
	_, err := io.ReadFull(rd, b[:])
	return b[0], err
}

func ReadUint16(rd io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func ReadUUID(rd io.Reader) (id uuid.UUID, err error) {
	_, err = io.ReadFull(rd, id[:])
	return id, err
}

// SkipBytes discards a length-prefixed byte array of at most max bytes.
func SkipBytes(rd io.Reader, max int) error {
	length, err := ReadVarInt(rd)
	if err != nil {
		return err
	}
	if length < 0 || length > max {
		return fmt.Errorf("bad byte array length (got %d, max. %d)", length, max)
	}
	_, err = io.CopyN(io.Discard, rd, int64(length))
	return err
}
