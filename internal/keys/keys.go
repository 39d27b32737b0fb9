// Package keys composes the backend keys of cells and chunks.
//
//	cell:  prefix
//	chunk: prefix | '$' | suffix
//
// Numeric suffixes are the 4-byte little-endian index. Arbitrary suffixes are
// the caller's bytes, unmodified.
package keys

import "encoding/binary"

// Sep separates a chunk prefix from an element suffix.
const Sep byte = 0x24

// IndexLen is the length of a numeric suffix.
const IndexLen = 4

// Index returns the numeric suffix for i.
func Index(i uint32) []byte {
	var b [IndexLen]byte
	binary.LittleEndian.PutUint32(b[:], i)
	return b[:]
}

// Buffer holds prefix|Sep and appends one suffix at a time. The slice returned
// by With is only valid until the next call.
type Buffer struct {
	buf       []byte
	prefixLen int
}

func NewBuffer(prefix []byte) *Buffer {
	buf := make([]byte, 0, len(prefix)+1+IndexLen)
	buf = append(buf, prefix...)
	buf = append(buf, Sep)
	return &Buffer{buf: buf, prefixLen: len(prefix)}
}

// With returns prefix|Sep|suffix.
func (b *Buffer) With(suffix []byte) []byte {
	b.buf = append(b.buf[:b.prefixLen+1], suffix...)
	return b.buf
}

// Prefix returns the bare prefix, without the separator.
func (b *Buffer) Prefix() []byte { return b.buf[:b.prefixLen] }

// Compose returns a fresh prefix|Sep|suffix.
func Compose(prefix, suffix []byte) []byte {
	out := make([]byte, 0, len(prefix)+1+len(suffix))
	out = append(out, prefix...)
	out = append(out, Sep)
	return append(out, suffix...)
}

// Child derives the prefix of a nested container. It is the chunk key of name
// under prefix: it differs from every numeric key under prefix unless name is
// four bytes long, but it equals the arbitrary key name. A container whose
// prefix has children must not also store arbitrary keys equal to a child name.
func Child(prefix []byte, name string) []byte {
	return Compose(prefix, []byte(name))
}
