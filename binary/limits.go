package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

func decodeLimits(r *reader) (wasm.Limits, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return wasm.Limits{}, err
	}
	l := wasm.Limits{}
	switch flag {
	case wasm.LimitsFlagNoMax:
	case wasm.LimitsFlagHasMax:
	case wasm.LimitsFlagHasMaxShared:
		l.Shared = true
	default:
		return wasm.Limits{}, fmt.Errorf("invalid limits flags: 0x%x", flag)
	}
	min, err := r.readU32LEB()
	if err != nil {
		return wasm.Limits{}, err
	}
	l.Min = min
	if flag != wasm.LimitsFlagNoMax {
		max, err := r.readU32LEB()
		if err != nil {
			return wasm.Limits{}, err
		}
		l.Max = &max
	}
	return l, nil
}

func encodeLimits(l wasm.Limits) []byte {
	out := []byte{l.Flag()}
	out = append(out, uleb32(l.Min)...)
	if l.Max != nil {
		out = append(out, uleb32(*l.Max)...)
	}
	return out
}

func decodeTableType(r *reader) (wasm.TableType, error) {
	et, err := decodeRefType(r)
	if err != nil {
		return wasm.TableType{}, err
	}
	lim, err := decodeLimits(r)
	if err != nil {
		return wasm.TableType{}, err
	}
	return wasm.TableType{ElemType: et, Limits: lim}, nil
}

func encodeTableType(t wasm.TableType) []byte {
	out := encodeRefType(t.ElemType)
	return append(out, encodeLimits(t.Limits)...)
}

func decodeMemoryType(r *reader) (wasm.MemoryType, error) {
	lim, err := decodeLimits(r)
	if err != nil {
		return wasm.MemoryType{}, err
	}
	return wasm.MemoryType{Limits: lim}, nil
}

func encodeMemoryType(m wasm.MemoryType) []byte {
	return encodeLimits(m.Limits)
}
