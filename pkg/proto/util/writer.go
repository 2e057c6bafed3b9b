package util

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
)

func WriteString(wr io.Writer, val string) error {
	return WriteBytes(wr, []byte(val))
}

func WriteBytes(wr io.Writer, b []byte) error {
	if err := WriteVarInt(wr, len(b)); err != nil {
		return err
	}
	_, err := wr.Write(b)
	return err
}

func WriteVarInt(wr io.Writer, val int) error {
	var buf [5]byte
	return writeAll(wr, AppendVarInt(buf[:0], val))
}

// AppendVarInt appends the VarInt encoding of val to b.
func AppendVarInt(b []byte, val int) []byte {
	uval := uint32(val)
	for uval >= 0x80 {
		b = append(b, byte(uval)|0x80)
		uval >>= 7
	}
	return append(b, byte(uval))
}

// VarIntLen returns the number of bytes val occupies as VarInt.
func VarIntLen(val int) int {
	var buf [5]byte
	return len(AppendVarInt(buf[:0], val))
}

func WriteBool(wr io.Writer, val bool) error {
	if val {
		return WriteUint8(wr, 1)
	}
	return WriteUint8(wr, 0)
}

func WriteUint8(wr io.Writer, val uint8) error {
	return writeAll(wr, []byte{val})
}

func WriteUint16(wr io.Writer, val uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], val)
	return writeAll(wr, b[:])
}

func WriteUUID(wr io.Writer, id uuid.UUID) error {
	return writeAll(wr, id[:])
}

func writeAll(wr io.Writer, b []byte) error {
	_, err := wr.Write(b)
	return err
}
