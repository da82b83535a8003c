package binary

import (
	"encoding/binary"

	"github.com/WebAssembly/wasp-sub001/leb128"
)

func uleb32(v uint32) []byte { return leb128.EncodeUint32(v) }
func uleb64(v uint64) []byte { return leb128.EncodeUint64(v) }
func sleb32(v int32) []byte  { return leb128.EncodeInt32(v) }
func sleb64(v int64) []byte  { return leb128.EncodeInt64(v) }

func encodeF32Bits(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func encodeF64Bits(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// encodeVector writes a u32 LEB128 length followed by the concatenation
// of elems (spec.md §4.1 "Vectors").
func encodeVector(elems [][]byte) []byte {
	out := uleb32(uint32(len(elems)))
	for _, e := range elems {
		out = append(out, e...)
	}
	return out
}

func encodeString(s string) []byte {
	out := uleb32(uint32(len(s)))
	return append(out, s...)
}

func encodeName(s string) []byte { return encodeString(s) }

// encodeByteVector writes a u32 LEB128 length followed by b verbatim.
func encodeByteVector(b []byte) []byte {
	out := uleb32(uint32(len(b)))
	return append(out, b...)
}
