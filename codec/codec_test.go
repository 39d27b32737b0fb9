package codec

import (
	"bytes"
	"errors"
	"maps"
	"testing"

	"github.com/holiman/uint256"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type order struct {
	ID    uint64            `json:"id" cbor:"1,keyasint" msgpack:"id"`
	Owner string            `json:"owner" cbor:"2,keyasint" msgpack:"owner"`
	Tags  map[string]uint32 `json:"tags" cbor:"3,keyasint" msgpack:"tags"`
}

func roundTrip[V any](t *testing.T, c Codec[V], v V, eq func(a, b V) bool) []byte {
	t.Helper()
	b, err := c.Encode(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !eq(v, got) {
		t.Fatalf("round trip: got %+v want %+v", got, v)
	}
	return b
}

func sameOrder(a, b order) bool {
	if a.ID != b.ID || a.Owner != b.Owner || len(a.Tags) != len(b.Tags) {
		return false
	}
	for k, v := range a.Tags {
		if b.Tags[k] != v {
			return false
		}
	}
	return true
}

func sample() order {
	return order{ID: 7, Owner: "alice", Tags: map[string]uint32{"z": 1, "a": 2, "m": 3}}
}

func TestStructuredCodecsAreDeterministic(t *testing.T) {
	for name, c := range map[string]Codec[order]{
		"json":    JSON[order]{},
		"cbor":    MustCBOR[order](true),
		"msgpack": Msgpack[order]{},
	} {
		t.Run(name, func(t *testing.T) {
			first := roundTrip(t, c, sample(), sameOrder)
			for i := 0; i < 20; i++ {
				again := Must(c, sample())
				if !bytes.Equal(first, again) {
					t.Fatalf("encoding differs on run %d", i)
				}
			}
		})
	}
}

func TestMsgpackSortsNonStringKeys(t *testing.T) {
	c := Msgpack[map[uint32]string]{}
	in := map[uint32]string{}
	for i := uint32(0); i < 16; i++ {
		in[i*7] = "v"
	}
	first := Must(c, in)
	for i := 0; i < 20; i++ {
		if !bytes.Equal(first, Must(c, maps.Clone(in))) {
			t.Fatalf("encoding differs on run %d", i)
		}
	}
	out, err := c.Decode(first)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !maps.Equal(in, out) {
		t.Fatalf("round trip: %v", out)
	}
}

func TestCBORRejectsDuplicateMapKeys(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	// {"a": 1, "a": 2}
	dup := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
	if _, err := c.Decode(dup); err == nil {
		t.Fatalf("duplicate key accepted")
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	in := wrapperspb.String("ledger")
	roundTrip(t, Codec[*wrapperspb.StringValue](c), in, func(a, b *wrapperspb.StringValue) bool {
		return proto.Equal(a, b)
	})
	if _, err := c.Decode([]byte{0xff}); err == nil {
		t.Fatalf("garbage decoded")
	}
}

func TestLimitCodec(t *testing.T) {
	c := LimitCodec[string]{Inner: String{}, MaxDecode: 4, MaxEncode: 2}
	if _, err := c.Decode([]byte("12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v", err)
	}
	if _, err := c.Encode("abc"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("encode err=%v", err)
	}
	if v, err := c.Decode([]byte("1234")); err != nil || v != "1234" {
		t.Fatalf("v=%q err=%v", v, err)
	}
	off := LimitCodec[string]{Inner: String{}}
	if _, err := off.Decode(bytes.Repeat([]byte{'x'}, 1<<16)); err != nil {
		t.Fatalf("disabled limit: %v", err)
	}
}

func TestFixedWidth(t *testing.T) {
	if b := Must[uint32](Uint32{}, 0x01020304); !bytes.Equal(b, []byte{4, 3, 2, 1}) {
		t.Fatalf("uint32 not little-endian: %x", b)
	}
	if b := Must[uint64](Uint64{}, 1); !bytes.Equal(b, []byte{1, 0, 0, 0, 0, 0, 0, 0}) {
		t.Fatalf("uint64: %x", b)
	}
	if _, err := (Uint32{}).Decode([]byte{1, 2, 3}); err == nil {
		t.Fatalf("short uint32 accepted")
	}
	if _, err := (Uint64{}).Decode(nil); err == nil {
		t.Fatalf("empty uint64 accepted")
	}
	if v, err := (Uint8{}).Decode([]byte{9}); err != nil || v != 9 {
		t.Fatalf("uint8: %d %v", v, err)
	}
}

func TestUint256(t *testing.T) {
	v := uint256.MustFromDecimal("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	b := roundTrip(t, Codec[uint256.Int](Uint256{}), *v, func(a, b uint256.Int) bool { return a.Eq(&b) })
	if len(b) != 32 || b[0] != 0xff || b[31] != 0xff {
		t.Fatalf("encoding: %x", b)
	}

	one := Must[uint256.Int](Uint256{}, *uint256.NewInt(1))
	if one[31] != 1 || one[0] != 0 {
		t.Fatalf("not big-endian: %x", one)
	}
	if _, err := (Uint256{}).Decode(make([]byte, 31)); err == nil {
		t.Fatalf("short word accepted")
	}
}

func TestRawCodecs(t *testing.T) {
	roundTrip(t, Codec[string](String{}), "", func(a, b string) bool { return a == b })
	roundTrip(t, Codec[[]byte](Bytes{}), []byte{0, 0x24}, bytes.Equal)
}
