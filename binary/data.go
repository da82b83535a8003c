package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// Data segment flags: 0 = active memory 0, 1 = passive, 2 = active with
// explicit memory index (multi-memory proposal).
func decodeDataSection(r *reader, features wasm.Features) ([]*wasm.DataSegment, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.DataSegment, n)
	for i := range out {
		seg, err := decodeDataSegment(r, features)
		if err != nil {
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
		out[i] = seg
	}
	return out, nil
}

func decodeDataSegment(r *reader, features wasm.Features) (*wasm.DataSegment, error) {
	flag, err := r.readU32LEB()
	if err != nil {
		return nil, err
	}
	seg := &wasm.DataSegment{}
	switch flag {
	case 0:
		seg.Mode = wasm.SegmentModeActive
		seg.Offset, err = decodeConstExpr(r, features)
	case 1:
		seg.Mode = wasm.SegmentModePassive
	case 2:
		seg.Mode = wasm.SegmentModeActive
		seg.MemoryIndex, err = r.readU32LEB()
		if err == nil {
			seg.Offset, err = decodeConstExpr(r, features)
		}
	default:
		return nil, fmt.Errorf("invalid data segment flags: %d", flag)
	}
	if err != nil {
		return nil, err
	}
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	seg.Init, err = r.readBytes(int(n))
	if err != nil {
		return nil, err
	}
	return seg, nil
}

func encodeDataSegment(seg *wasm.DataSegment) []byte {
	var out []byte
	switch {
	case seg.Mode == wasm.SegmentModeActive && seg.MemoryIndex == 0:
		out = uleb32(0)
		out = append(out, encodeConstExpr(seg.Offset)...)
	case seg.Mode == wasm.SegmentModePassive:
		out = uleb32(1)
	default:
		out = uleb32(2)
		out = append(out, uleb32(seg.MemoryIndex)...)
		out = append(out, encodeConstExpr(seg.Offset)...)
	}
	out = append(out, encodeByteVector(seg.Init)...)
	return out
}

func encodeDataSection(segs []*wasm.DataSegment) []byte {
	elems := make([][]byte, len(segs))
	for i, s := range segs {
		elems[i] = encodeDataSegment(s)
	}
	return encodeVector(elems)
}
