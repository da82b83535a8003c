package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

const (
	exportKindFunc   = 0x00
	exportKindTable  = 0x01
	exportKindMemory = 0x02
	exportKindGlobal = 0x03
	exportKindEvent  = 0x04
)

// decodeExportSection decodes the export vector in stream order. Duplicate
// names are a validation concern, not a decode-time error (spec.md §6
// "decode accepts, validate rejects"); preserving wire order here is what
// lets encodeExportSection reproduce the input byte-exactly (spec.md §3).
func decodeExportSection(r *reader) ([]*wasm.Export, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.Export, 0, n)
	for i := uint32(0); i < n; i++ {
		name, err := r.readString()
		if err != nil {
			return nil, fmt.Errorf("export[%d]: %w", i, err)
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		idx, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		kind, err := decodeExportKind(kindByte)
		if err != nil {
			return nil, err
		}
		out = append(out, &wasm.Export{Name: name, Kind: kind, Index: idx})
	}
	return out, nil
}

func decodeExportKind(b byte) (wasm.ExportKind, error) {
	switch b {
	case exportKindFunc:
		return wasm.ExportKindFunc, nil
	case exportKindTable:
		return wasm.ExportKindTable, nil
	case exportKindMemory:
		return wasm.ExportKindMemory, nil
	case exportKindGlobal:
		return wasm.ExportKindGlobal, nil
	case exportKindEvent:
		return wasm.ExportKindEvent, nil
	default:
		return 0, fmt.Errorf("invalid export kind: 0x%x", b)
	}
}

func encodeExportKind(k wasm.ExportKind) byte {
	switch k {
	case wasm.ExportKindFunc:
		return exportKindFunc
	case wasm.ExportKindTable:
		return exportKindTable
	case wasm.ExportKindMemory:
		return exportKindMemory
	case wasm.ExportKindGlobal:
		return exportKindGlobal
	default:
		return exportKindEvent
	}
}

// encodeExportSection re-encodes exports in exports' own order, which is
// what makes the binary encoder byte-exact against a decoded module
// (spec.md §3).
func encodeExportSection(exports []*wasm.Export) []byte {
	elems := make([][]byte, 0, len(exports))
	for _, e := range exports {
		out := encodeString(e.Name)
		out = append(out, encodeExportKind(e.Kind))
		out = append(out, uleb32(e.Index)...)
		elems = append(elems, out)
	}
	return encodeVector(elems)
}
