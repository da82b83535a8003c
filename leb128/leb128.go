// Package leb128 implements the LEB128/SLEB128 variable-length integer
// encoding WebAssembly uses on the wire (spec.md §4.1), plus a fixed-width
// writer used to patch section sizes after content is emitted.
package leb128

import (
	"fmt"
	"io"
)

// ErrOverflow is returned when a value would need more bytes than the
// target integer width allows: "LEB128 overflow" (spec.md §4.1).
var ErrOverflow = fmt.Errorf("LEB128 overflow")

// ErrOutOfRange is returned when the final byte's unused high bits don't
// match the expected sign/zero padding: "LEB128 out of range".
var ErrOutOfRange = fmt.Errorf("LEB128 out of range")

// maxBytes is ceil(bits/7), the max byte count for a bits-bit integer.
func maxBytes(bits int) int {
	return (bits + 6) / 7
}

// EncodeUint32 writes v as unsigned LEB128 using the minimum byte count
// that round-trips.
func EncodeUint32(v uint32) []byte { return encodeUint(uint64(v)) }

// EncodeUint64 writes v as unsigned LEB128.
func EncodeUint64(v uint64) []byte { return encodeUint(v) }

func encodeUint(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			return out
		}
	}
}

// EncodeInt32 writes v as signed LEB128 (SLEB128).
func EncodeInt32(v int32) []byte { return encodeInt(int64(v)) }

// EncodeInt64 writes v as signed LEB128.
func EncodeInt64(v int64) []byte { return encodeInt(v) }

func encodeInt(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// EncodeUint32Fixed writes v as unsigned LEB128 padded to exactly n bytes
// with continuation bits, for patching a section size after its content
// is already emitted at a known fixed width.
func EncodeUint32Fixed(v uint32, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b := byte(v & 0x7f)
		v >>= 7
		if i != n-1 {
			b |= 0x80
		}
		out[i] = b
	}
	return out
}

// LoadUint32 decodes an unsigned LEB128 u32 from the front of b, returning
// the value, the number of bytes consumed, and an error.
func LoadUint32(b []byte) (uint32, int, error) {
	v, n, err := loadUint(b, 32)
	return uint32(v), n, err
}

// LoadUint64 decodes an unsigned LEB128 u64.
func LoadUint64(b []byte) (uint64, int, error) {
	return loadUint(b, 64)
}

func loadUint(b []byte, bits int) (uint64, int, error) {
	var result uint64
	var shift uint
	limit := maxBytes(bits)
	for i := 0; ; i++ {
		if i >= limit {
			return 0, 0, ErrOverflow
		}
		if i >= len(b) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		c := b[i]
		lowBits := uint64(c & 0x7f)
		// Final byte: unused high bits beyond `bits` must be zero.
		if i == limit-1 {
			usedBits := bits - int(shift)
			if usedBits < 7 && lowBits>>uint(usedBits) != 0 {
				return 0, 0, ErrOutOfRange
			}
		}
		result |= lowBits << shift
		shift += 7
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
	}
}

// LoadInt32 decodes a signed LEB128 s32.
func LoadInt32(b []byte) (int32, int, error) {
	v, n, err := loadInt(b, 32)
	return int32(v), n, err
}

// LoadInt64 decodes a signed LEB128 s64.
func LoadInt64(b []byte) (int64, int, error) {
	return loadInt(b, 64)
}

func loadInt(b []byte, bits int) (int64, int, error) {
	var result int64
	var shift uint
	limit := maxBytes(bits)
	var c byte
	i := 0
	for ; ; i++ {
		if i >= limit {
			return 0, 0, ErrOverflow
		}
		if i >= len(b) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		c = b[i]
		lowBits := int64(c & 0x7f)
		if i == limit-1 {
			usedBits := bits - int(shift)
			signExt := (c & 0x40) != 0
			var mask byte
			if usedBits < 7 {
				mask = byte(0x7f) &^ (byte(1)<<uint(usedBits) - 1)
			}
			unused := c & 0x7f & mask
			if signExt {
				if unused != mask {
					return 0, 0, ErrOutOfRange
				}
			} else if unused != 0 {
				return 0, 0, ErrOutOfRange
			}
		}
		result |= lowBits << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
	}
	// Sign-extend if the final byte's sign bit (bit 6) is set and we
	// haven't already filled the full width.
	if shift < 64 && c&0x40 != 0 {
		result |= -1 << shift
	}
	return result, i + 1, nil
}

// DecodeUint32 reads an unsigned LEB128 u32 one byte at a time from r.
func DecodeUint32(r io.ByteReader) (uint32, int, error) {
	v, n, err := decodeUint(r, 32)
	return uint32(v), n, err
}

// DecodeUint64 reads an unsigned LEB128 u64 one byte at a time from r.
func DecodeUint64(r io.ByteReader) (uint64, int, error) {
	return decodeUint(r, 64)
}

func decodeUint(r io.ByteReader, bits int) (uint64, int, error) {
	var result uint64
	var shift uint
	limit := maxBytes(bits)
	for i := 0; ; i++ {
		if i >= limit {
			return 0, 0, ErrOverflow
		}
		c, err := r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		lowBits := uint64(c & 0x7f)
		if i == limit-1 {
			usedBits := bits - int(shift)
			if usedBits < 7 && lowBits>>uint(usedBits) != 0 {
				return 0, 0, ErrOutOfRange
			}
		}
		result |= lowBits << shift
		shift += 7
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
	}
}

// DecodeInt32 reads a signed LEB128 s32 one byte at a time from r.
func DecodeInt32(r io.ByteReader) (int32, int, error) {
	v, n, err := decodeInt(r, 32)
	return int32(v), n, err
}

// DecodeInt64 reads a signed LEB128 s64 one byte at a time from r.
func DecodeInt64(r io.ByteReader) (int64, int, error) {
	return decodeInt(r, 64)
}

func decodeInt(r io.ByteReader, bits int) (int64, int, error) {
	var result int64
	var shift uint
	limit := maxBytes(bits)
	var c byte
	i := 0
	for ; ; i++ {
		if i >= limit {
			return 0, 0, ErrOverflow
		}
		var err error
		c, err = r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		lowBits := int64(c & 0x7f)
		if i == limit-1 {
			usedBits := bits - int(shift)
			signExt := (c & 0x40) != 0
			var mask byte
			if usedBits < 7 {
				mask = byte(0x7f) &^ (byte(1)<<uint(usedBits) - 1)
			}
			unused := c & 0x7f & mask
			if signExt {
				if unused != mask {
					return 0, 0, ErrOutOfRange
				}
			} else if unused != 0 {
				return 0, 0, ErrOutOfRange
			}
		}
		result |= lowBits << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
	}
	if shift < 64 && c&0x40 != 0 {
		result |= -1 << shift
	}
	return result, i + 1, nil
}
