package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// Element segment flag bits, per the bulk-memory proposal (spec.md §8
// scenario 5): bit 0 selects passive/declared vs active, bit 1 (when set
// together with bit 0 clear, or alongside it) carries an explicit table
// index or elem kind/type, bit 2 selects expression-list vs func-index-list
// encoding.
func decodeElementSection(r *reader, features wasm.Features) ([]*wasm.ElementSegment, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.ElementSegment, n)
	for i := range out {
		seg, err := decodeElementSegment(r, features)
		if err != nil {
			return nil, fmt.Errorf("element[%d]: %w", i, err)
		}
		out[i] = seg
	}
	return out, nil
}

func decodeElementSegment(r *reader, features wasm.Features) (*wasm.ElementSegment, error) {
	flags, err := r.readU32LEB()
	if err != nil {
		return nil, err
	}
	seg := &wasm.ElementSegment{Type: wasm.RefTypeFuncref}
	hasExprs := flags&4 != 0
	switch flags {
	case 0:
		seg.Mode = wasm.SegmentModeActive
		seg.Offset, err = decodeConstExpr(r, features)
	case 1:
		seg.Mode = wasm.SegmentModePassive
		err = decodeElemKind(r)
	case 2:
		seg.Mode = wasm.SegmentModeActive
		seg.TableIndex, err = r.readU32LEB()
		if err == nil {
			seg.Offset, err = decodeConstExpr(r, features)
		}
		if err == nil {
			err = decodeElemKind(r)
		}
	case 3:
		seg.Mode = wasm.SegmentModeDeclared
		err = decodeElemKind(r)
	case 4:
		seg.Mode = wasm.SegmentModeActive
		seg.Offset, err = decodeConstExpr(r, features)
	case 5:
		seg.Mode = wasm.SegmentModePassive
		seg.Type, err = decodeRefType(r)
	case 6:
		seg.Mode = wasm.SegmentModeActive
		seg.TableIndex, err = r.readU32LEB()
		if err == nil {
			seg.Offset, err = decodeConstExpr(r, features)
		}
		if err == nil {
			seg.Type, err = decodeRefType(r)
		}
	case 7:
		seg.Mode = wasm.SegmentModeDeclared
		seg.Type, err = decodeRefType(r)
	default:
		return nil, fmt.Errorf("invalid element segment flags: %d", flags)
	}
	if err != nil {
		return nil, err
	}
	if hasExprs {
		n, err := r.readVectorLen()
		if err != nil {
			return nil, err
		}
		seg.Exprs = make([]wasm.ConstantExpression, n)
		for i := range seg.Exprs {
			seg.Exprs[i], err = decodeConstExpr(r, features)
			if err != nil {
				return nil, err
			}
		}
	} else {
		n, err := r.readVectorLen()
		if err != nil {
			return nil, err
		}
		seg.FuncIndexes = make([]wasm.Index, n)
		for i := range seg.FuncIndexes {
			seg.FuncIndexes[i], err = r.readU32LEB()
			if err != nil {
				return nil, err
			}
		}
	}
	return seg, nil
}

func decodeElemKind(r *reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b != byteElemKindFuncref {
		return fmt.Errorf("invalid elemkind: 0x%x", b)
	}
	return nil
}

const byteElemKindFuncref = 0x00

// encodeElementSegment picks one of the eight flag forms (0-7) from the
// segment's mode, its table index (0 or explicit) and whether it holds
// function indices (forms 0-3) or element expressions (forms 4-7); the
// active/table-0 function-index case uses form 0.
func encodeElementSegment(seg *wasm.ElementSegment) []byte {
	useFuncIndexes := len(seg.Exprs) == 0
	var out []byte
	switch {
	case seg.Mode == wasm.SegmentModeActive && seg.TableIndex == 0 && useFuncIndexes:
		out = uleb32(0)
		out = append(out, encodeConstExpr(seg.Offset)...)
	case seg.Mode == wasm.SegmentModePassive && useFuncIndexes:
		out = uleb32(1)
		out = append(out, byteElemKindFuncref)
	case seg.Mode == wasm.SegmentModeActive && useFuncIndexes:
		out = uleb32(2)
		out = append(out, uleb32(seg.TableIndex)...)
		out = append(out, encodeConstExpr(seg.Offset)...)
		out = append(out, byteElemKindFuncref)
	case seg.Mode == wasm.SegmentModeDeclared && useFuncIndexes:
		out = uleb32(3)
		out = append(out, byteElemKindFuncref)
	case seg.Mode == wasm.SegmentModeActive && seg.TableIndex == 0:
		out = uleb32(4)
		out = append(out, encodeConstExpr(seg.Offset)...)
	case seg.Mode == wasm.SegmentModePassive:
		out = uleb32(5)
		out = append(out, encodeRefType(seg.Type)...)
	case seg.Mode == wasm.SegmentModeActive:
		out = uleb32(6)
		out = append(out, uleb32(seg.TableIndex)...)
		out = append(out, encodeConstExpr(seg.Offset)...)
		out = append(out, encodeRefType(seg.Type)...)
	default: // Declared
		out = uleb32(7)
		out = append(out, encodeRefType(seg.Type)...)
	}
	if useFuncIndexes {
		out = append(out, uleb32(uint32(len(seg.FuncIndexes)))...)
		for _, idx := range seg.FuncIndexes {
			out = append(out, uleb32(idx)...)
		}
	} else {
		out = append(out, uleb32(uint32(len(seg.Exprs)))...)
		for _, e := range seg.Exprs {
			out = append(out, encodeConstExpr(e)...)
		}
	}
	return out
}

func encodeElementSection(segs []*wasm.ElementSegment) []byte {
	elems := make([][]byte, len(segs))
	for i, s := range segs {
		elems[i] = encodeElementSegment(s)
	}
	return encodeVector(elems)
}
