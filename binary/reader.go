package binary

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/WebAssembly/wasp-sub001/leb128"
	"github.com/WebAssembly/wasp-sub001/wasm"
)

// reader is a cursor over an in-memory buffer, tracking its absolute
// offset so callers can build wasm.Location values for diagnostics. All
// inputs are pre-buffered per spec.md §5: no operation here blocks on I/O.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader { return &reader{buf: buf} }

func (r *reader) loc() wasm.Location {
	return wasm.Location{Begin: uint32(r.pos), End: uint32(r.pos)}
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) eof() bool { return r.pos >= len(r.buf) }

// ReadByte implements io.ByteReader so leb128.Decode* can read from r.
func (r *reader) ReadByte() (byte, error) {
	if r.eof() {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("length out of bounds")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readU32LEB() (uint32, error) {
	v, n, err := leb128.LoadUint32(r.buf[r.pos:])
	if err != nil {
		return 0, malformed(err)
	}
	r.pos += n
	return v, nil
}

func (r *reader) readU64LEB() (uint64, error) {
	v, n, err := leb128.LoadUint64(r.buf[r.pos:])
	if err != nil {
		return 0, malformed(err)
	}
	r.pos += n
	return v, nil
}

func (r *reader) readS32LEB() (int32, error) {
	v, n, err := leb128.LoadInt32(r.buf[r.pos:])
	if err != nil {
		return 0, malformed(err)
	}
	r.pos += n
	return v, nil
}

func (r *reader) readS64LEB() (int64, error) {
	v, n, err := leb128.LoadInt64(r.buf[r.pos:])
	if err != nil {
		return 0, malformed(err)
	}
	r.pos += n
	return v, nil
}

func malformed(cause error) error {
	return fmt.Errorf("malformed integer: %w", cause)
}

func (r *reader) readF32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) readF64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) readV128() (wasm.V128, error) {
	b, err := r.readBytes(16)
	if err != nil {
		return wasm.V128{}, err
	}
	var v wasm.V128
	copy(v[:], b)
	return v, nil
}

// readVectorLen reads a u32 LEB128 vector length and pre-checks it
// against the remaining bytes assuming a minimum of 1 byte per element,
// aborting "length out of bounds" early per spec.md §4.1.
func (r *reader) readVectorLen() (uint32, error) {
	n, err := r.readU32LEB()
	if err != nil {
		return 0, err
	}
	if int(n) > r.remaining() {
		return 0, fmt.Errorf("length out of bounds")
	}
	return n, nil
}

// readString reads a vector-of-bytes and validates it as UTF-8, per
// spec.md §4.2 "UTF-8 policy".
func (r *reader) readString() (string, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("invalid UTF-8 encoding")
	}
	return string(b), nil
}
