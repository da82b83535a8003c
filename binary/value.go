package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/leb128"
	"github.com/WebAssembly/wasp-sub001/wasm"
)

// Wire byte encodings for value/reference/heap types. All are encoded as
// SLEB128 (spec.md §4.2 "Opcode decoding" / §4.6 "Block types"), but since
// every one of these is a single negative byte in -64..-1 range, a plain
// byte read/write suffices; readS32LEB would also decode them correctly.
const (
	byteI32       = 0x7f
	byteI64       = 0x7e
	byteF32       = 0x7d
	byteF64       = 0x7c
	byteV128      = 0x7b
	byteFuncref   = 0x70
	byteExternref = 0x6f
	byteExnref    = 0x69
	byteBlockVoid = 0x40
)

func decodeValueType(r *reader) (wasm.ValueType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return wasm.ValueType{}, err
	}
	switch b {
	case byteI32:
		return wasm.ValueTypeI32, nil
	case byteI64:
		return wasm.ValueTypeI64, nil
	case byteF32:
		return wasm.ValueTypeF32, nil
	case byteF64:
		return wasm.ValueTypeF64, nil
	case byteV128:
		return wasm.ValueTypeV128, nil
	case byteFuncref:
		return wasm.RefValueType(wasm.RefTypeFuncref), nil
	case byteExternref:
		return wasm.RefValueType(wasm.RefTypeExternref), nil
	case byteExnref:
		return wasm.RefValueType(wasm.RefTypeExnref), nil
	default:
		return wasm.ValueType{}, fmt.Errorf("invalid value type: 0x%x", b)
	}
}

func encodeValueType(v wasm.ValueType) []byte {
	switch v.Kind {
	case wasm.ValueKindI32:
		return []byte{byteI32}
	case wasm.ValueKindI64:
		return []byte{byteI64}
	case wasm.ValueKindF32:
		return []byte{byteF32}
	case wasm.ValueKindF64:
		return []byte{byteF64}
	case wasm.ValueKindV128:
		return []byte{byteV128}
	case wasm.ValueKindRef:
		switch v.Ref.Heap.Kind {
		case wasm.HeapKindExtern:
			return []byte{byteExternref}
		case wasm.HeapKindExn:
			return []byte{byteExnref}
		default:
			return []byte{byteFuncref}
		}
	default:
		panic("invalid ValueType")
	}
}

func decodeRefType(r *reader) (wasm.RefType, error) {
	v, err := decodeValueType(r)
	if err != nil {
		return wasm.RefType{}, err
	}
	if v.Kind != wasm.ValueKindRef {
		return wasm.RefType{}, fmt.Errorf("expected reference type")
	}
	return v.Ref, nil
}

func encodeRefType(r wasm.RefType) []byte {
	return encodeValueType(wasm.RefValueType(r))
}

func decodeBlockType(r *reader) (wasm.BlockType, error) {
	// Peek: void and value-types are single bytes in -64..-1; a type
	// index is a non-negative SLEB128. Easiest to decode as S33 and
	// branch, matching the upstream encoding rule (spec.md §4.6).
	v, err := r.readS64LEB()
	if err != nil {
		return wasm.BlockType{}, err
	}
	if v >= 0 {
		return wasm.BlockTypeFromIndex(wasm.Index(v)), nil
	}
	switch byte(v & 0x7f) {
	case byteBlockVoid:
		return wasm.BlockTypeEmpty, nil
	case byteI32:
		return wasm.BlockTypeFromValue(wasm.ValueTypeI32), nil
	case byteI64:
		return wasm.BlockTypeFromValue(wasm.ValueTypeI64), nil
	case byteF32:
		return wasm.BlockTypeFromValue(wasm.ValueTypeF32), nil
	case byteF64:
		return wasm.BlockTypeFromValue(wasm.ValueTypeF64), nil
	case byteV128:
		return wasm.BlockTypeFromValue(wasm.ValueTypeV128), nil
	case byteFuncref:
		return wasm.BlockTypeFromValue(wasm.RefValueType(wasm.RefTypeFuncref)), nil
	case byteExternref:
		return wasm.BlockTypeFromValue(wasm.RefValueType(wasm.RefTypeExternref)), nil
	default:
		return wasm.BlockType{}, fmt.Errorf("invalid block type: %d", v)
	}
}

func encodeBlockType(b wasm.BlockType) []byte {
	switch b.Kind {
	case BlockTypeVoidMarker:
		return []byte{byteBlockVoid}
	case wasm.BlockTypeIndex:
		return leb128.EncodeInt64(int64(b.Index))
	default: // wasm.BlockTypeValue
		vt := encodeValueType(b.Value)
		return vt
	}
}

// BlockTypeVoidMarker re-exposes wasm.BlockTypeVoid for readability at
// call sites in this file.
const BlockTypeVoidMarker = wasm.BlockTypeVoid
