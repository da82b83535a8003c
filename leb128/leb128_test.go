package leb128

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeInt32(t *testing.T) {
	for _, c := range []struct {
		input    int32
		expected []byte
	}{
		{input: -165675008, expected: []byte{0x80, 0x80, 0x80, 0xb1, 0x7f}},
		{input: -624485, expected: []byte{0x9b, 0xf1, 0x59}},
		{input: -4, expected: []byte{0x7c}},
		{input: -1, expected: []byte{0x7f}},
		{input: 0, expected: []byte{0x00}},
		{input: 1, expected: []byte{0x01}},
		{input: 624485, expected: []byte{0xe5, 0x8e, 0x26}},
		{input: math.MaxInt32, expected: []byte{0xff, 0xff, 0xff, 0xff, 0x7}},
		{input: math.MinInt32, expected: []byte{0x80, 0x80, 0x80, 0x80, 0x78}},
	} {
		require.Equal(t, c.expected, EncodeInt32(c.input))
		decoded, n, err := LoadInt32(c.expected)
		require.NoError(t, err)
		require.Equal(t, len(c.expected), n)
		require.Equal(t, c.input, decoded)
	}
}

func TestEncodeDecodeInt64(t *testing.T) {
	for _, c := range []struct {
		input    int64
		expected []byte
	}{
		{input: -1, expected: []byte{0x7f}},
		{input: 0, expected: []byte{0x00}},
		{input: math.MaxInt64, expected: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x0}},
		{input: math.MinInt64, expected: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}},
	} {
		require.Equal(t, c.expected, EncodeInt64(c.input))
		decoded, n, err := LoadInt64(c.expected)
		require.NoError(t, err)
		require.Equal(t, len(c.expected), n)
		require.Equal(t, c.input, decoded)
	}
}

func TestEncodeDecodeUint32(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16256, 624485, math.MaxUint32} {
		enc := EncodeUint32(v)
		decoded, n, err := LoadUint32(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, v, decoded)
	}
}

func TestEncodeDecodeUint64(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, math.MaxUint64} {
		enc := EncodeUint64(v)
		decoded, n, err := LoadUint64(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, v, decoded)
	}
}

func TestLoadUint32Overflow(t *testing.T) {
	// Six bytes (five with the continuation bit) is too many for a 32-bit value.
	_, _, err := LoadUint32([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	require.ErrorIs(t, err, ErrOverflow)
}

func TestLoadUint32OutOfRange(t *testing.T) {
	// Final byte sets bits above the 32-bit width.
	_, _, err := LoadUint32([]byte{0x80, 0x80, 0x80, 0x80, 0x10})
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestLoadUint32Truncated(t *testing.T) {
	_, _, err := LoadUint32([]byte{0x80, 0x80})
	require.Error(t, err)
}

func TestEncodeUint32Fixed(t *testing.T) {
	out := EncodeUint32Fixed(5, 3)
	require.Equal(t, []byte{0x85, 0x80, 0x00}, out)
	v, n, err := LoadUint32(out)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, uint32(5), v)
}

func TestDecodeUint32FromReader(t *testing.T) {
	enc := EncodeUint32(624485)
	v, n, err := DecodeUint32(bytes.NewReader(enc))
	require.NoError(t, err)
	require.Equal(t, len(enc), n)
	require.Equal(t, uint32(624485), v)
}

func TestDecodeInt64FromReader(t *testing.T) {
	enc := EncodeInt64(-624485)
	v, n, err := DecodeInt64(bytes.NewReader(enc))
	require.NoError(t, err)
	require.Equal(t, len(enc), n)
	require.Equal(t, int64(-624485), v)
}
