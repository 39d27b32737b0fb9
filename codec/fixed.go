package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// Uint32 stores a uint32 as 4 little-endian bytes. Length counters use it.
type Uint32 struct{}

func (Uint32) Encode(v uint32) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, 4), v), nil
}

func (Uint32) Decode(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("uint32: want 4 bytes, got %d", len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 stores a uint64 as 8 little-endian bytes.
type Uint64 struct{}

func (Uint64) Encode(v uint64) ([]byte, error) {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, 8), v), nil
}

func (Uint64) Decode(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("uint64: want 8 bytes, got %d", len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Uint8 stores a single byte.
type Uint8 struct{}

func (Uint8) Encode(v uint8) ([]byte, error) { return []byte{v}, nil }

func (Uint8) Decode(b []byte) (uint8, error) {
	if len(b) != 1 {
		return 0, fmt.Errorf("uint8: want 1 byte, got %d", len(b))
	}
	return b[0], nil
}

// Uint256 stores 256-bit words (balances, supplies) as 32 big-endian bytes.
type Uint256 struct{}

func (Uint256) Encode(v uint256.Int) ([]byte, error) {
	b := v.Bytes32()
	return b[:], nil
}

func (Uint256) Decode(b []byte) (uint256.Int, error) {
	var v uint256.Int
	if len(b) != 32 {
		return v, fmt.Errorf("uint256: want 32 bytes, got %d", len(b))
	}
	v.SetBytes32(b)
	return v, nil
}
