// Package wire frames the records an IterableMapping stores per key: the
// key's position in the enumeration list plus the encoded value.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version     byte = 1
	kindIndexed byte = 1
	hdrLen           = 2 + 1 + 1 + 4 + 4
)

var (
	ErrCorrupt = errors.New("ledgercache: corrupt indexed record")
	magic2     = [...]byte{'L', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 2 && bytes.Equal(b[:2], magic2[:])
}

// Indexed: magic(2) | ver(1) | kind(1=indexed) | pos(u32 le) | vlen(u32 le) | payload(vlen)
func EncodeIndexed(pos uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic2[:])
	buf.WriteByte(version)
	buf.WriteByte(kindIndexed)

	var u4 [4]byte
	binary.LittleEndian.PutUint32(u4[:], pos)
	buf.Write(u4[:])

	binary.LittleEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeIndexed returns the position and a payload slice aliasing b.
func DecodeIndexed(b []byte) (pos uint32, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[2] != version || b[3] != kindIndexed {
		return 0, nil, ErrCorrupt
	}
	off := 4

	pos = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4

	vlen := int(binary.LittleEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact length, no trailing bytes
		return 0, nil, ErrCorrupt
	}

	return pos, b[off : off+vlen], nil
}
