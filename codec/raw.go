package codec

import "bytes"

// Bytes stores []byte values as-is. Both directions return a copy.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return bytes.Clone(b), nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return bytes.Clone(b), nil }

// String stores Go strings as their raw bytes. No UTF-8 validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
