package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// import kind tag bytes, spec.md §4.2.
const (
	importKindFunc   = 0x00
	importKindTable  = 0x01
	importKindMemory = 0x02
	importKindGlobal = 0x03
	importKindEvent  = 0x04
)

func decodeImportSection(r *reader) ([]*wasm.Import, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.Import, n)
	for i := range out {
		imp, err := decodeImport(r)
		if err != nil {
			return nil, fmt.Errorf("import[%d]: %w", i, err)
		}
		out[i] = imp
	}
	return out, nil
}

func decodeImport(r *reader) (*wasm.Import, error) {
	mod, err := r.readString()
	if err != nil {
		return nil, err
	}
	name, err := r.readString()
	if err != nil {
		return nil, err
	}
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	imp := &wasm.Import{Module: mod, Name: name}
	switch kindByte {
	case importKindFunc:
		imp.Kind = wasm.ImportKindFunc
		imp.DescFunc, err = r.readU32LEB()
	case importKindTable:
		imp.Kind = wasm.ImportKindTable
		imp.DescTable, err = decodeTableType(r)
	case importKindMemory:
		imp.Kind = wasm.ImportKindMemory
		imp.DescMem, err = decodeMemoryType(r)
	case importKindGlobal:
		imp.Kind = wasm.ImportKindGlobal
		imp.DescGlobal, err = decodeGlobalType(r)
	case importKindEvent:
		imp.Kind = wasm.ImportKindEvent
		_, err = r.ReadByte() // attribute byte, reserved 0
		if err == nil {
			imp.DescEvent, err = r.readU32LEB()
		}
	default:
		return nil, fmt.Errorf("invalid import kind: 0x%x", kindByte)
	}
	if err != nil {
		return nil, err
	}
	return imp, nil
}

func encodeImportSection(imports []*wasm.Import) []byte {
	elems := make([][]byte, len(imports))
	for i, imp := range imports {
		elems[i] = encodeImport(imp)
	}
	return encodeVector(elems)
}

func encodeImport(imp *wasm.Import) []byte {
	out := encodeString(imp.Module)
	out = append(out, encodeString(imp.Name)...)
	switch imp.Kind {
	case wasm.ImportKindFunc:
		out = append(out, importKindFunc)
		out = append(out, uleb32(imp.DescFunc)...)
	case wasm.ImportKindTable:
		out = append(out, importKindTable)
		out = append(out, encodeTableType(imp.DescTable)...)
	case wasm.ImportKindMemory:
		out = append(out, importKindMemory)
		out = append(out, encodeMemoryType(imp.DescMem)...)
	case wasm.ImportKindGlobal:
		out = append(out, importKindGlobal)
		out = append(out, encodeGlobalType(imp.DescGlobal)...)
	case wasm.ImportKindEvent:
		out = append(out, importKindEvent, 0)
		out = append(out, uleb32(imp.DescEvent)...)
	}
	return out
}

func decodeGlobalType(r *reader) (wasm.GlobalType, error) {
	vt, err := decodeValueType(r)
	if err != nil {
		return wasm.GlobalType{}, err
	}
	mutByte, err := r.ReadByte()
	if err != nil {
		return wasm.GlobalType{}, err
	}
	if mutByte > 1 {
		return wasm.GlobalType{}, fmt.Errorf("invalid mutability byte: 0x%x", mutByte)
	}
	return wasm.GlobalType{ValType: vt, Mutable: mutByte == 1}, nil
}

func encodeGlobalType(g wasm.GlobalType) []byte {
	out := encodeValueType(g.ValType)
	if g.Mutable {
		return append(out, 1)
	}
	return append(out, 0)
}
