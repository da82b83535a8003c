package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// Name section subsection ids, per the tool-conventions "name" custom
// section (spec.md GLOSSARY).
const (
	nameSubsecModule   = 0
	nameSubsecFunction = 1
	nameSubsecLocal    = 2
)

func decodeNameSection(data []byte) (*wasm.NameSection, error) {
	r := newReader(data)
	ns := &wasm.NameSection{}
	for !r.eof() {
		id, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		size, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		sub, err := r.readBytes(int(size))
		if err != nil {
			return nil, err
		}
		sr := newReader(sub)
		switch id {
		case nameSubsecModule:
			ns.ModuleName, err = sr.readString()
		case nameSubsecFunction:
			ns.FunctionNames, err = decodeNameMap(sr)
		case nameSubsecLocal:
			ns.LocalNames, err = decodeFunctionLocalNames(sr)
		default:
			// unknown subsection id: skip, per spec.md §6 "unknown
			// subsections are preserved opaquely or dropped" — here dropped,
			// since NameSection has no slot for arbitrary subsections.
		}
		if err != nil {
			return nil, fmt.Errorf("name subsection %d: %w", id, err)
		}
	}
	return ns, nil
}

func decodeNameMap(r *reader) (wasm.NameMap, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make(wasm.NameMap, n)
	for i := range out {
		idx, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		out[i] = &wasm.NameAssoc{Index: idx, Name: name}
	}
	return out, nil
}

func decodeFunctionLocalNames(r *reader) ([]wasm.FunctionLocalNames, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]wasm.FunctionLocalNames, n)
	for i := range out {
		fnIdx, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		locals, err := decodeNameMap(r)
		if err != nil {
			return nil, err
		}
		out[i] = wasm.FunctionLocalNames{FunctionIndex: fnIdx, LocalNames: locals}
	}
	return out, nil
}

func encodeNameSection(ns *wasm.NameSection) []byte {
	var out []byte
	if ns.ModuleName != "" {
		out = append(out, encodeNameSubsection(nameSubsecModule, encodeString(ns.ModuleName))...)
	}
	if len(ns.FunctionNames) > 0 {
		out = append(out, encodeNameSubsection(nameSubsecFunction, encodeNameMap(ns.FunctionNames))...)
	}
	if len(ns.LocalNames) > 0 {
		out = append(out, encodeNameSubsection(nameSubsecLocal, encodeFunctionLocalNames(ns.LocalNames))...)
	}
	return out
}

func encodeNameSubsection(id byte, payload []byte) []byte {
	out := []byte{id}
	return append(out, encodeByteVector(payload)...)
}

func encodeNameMap(m wasm.NameMap) []byte {
	elems := make([][]byte, len(m))
	for i, a := range m {
		out := uleb32(a.Index)
		out = append(out, encodeString(a.Name)...)
		elems[i] = out
	}
	return encodeVector(elems)
}

func encodeFunctionLocalNames(ls []wasm.FunctionLocalNames) []byte {
	elems := make([][]byte, len(ls))
	for i, l := range ls {
		out := uleb32(l.FunctionIndex)
		out = append(out, encodeNameMap(l.LocalNames)...)
		elems[i] = out
	}
	return encodeVector(elems)
}

// Linking section, per the non-standard "linking" custom section used by
// wasm-ld and binaryen (spec.md GLOSSARY "linking section"). Only the
// SYMBOL_TABLE subsection is modeled; other subsections (segment info,
// init funcs, comdats) are skipped on decode and not kept anywhere, so
// the encoder writes back only the version and the symbol table.
const linkingSubsecSymbolTable = 8

func decodeLinkingSection(data []byte) (*wasm.LinkingSection, error) {
	r := newReader(data)
	version, err := r.readU32LEB()
	if err != nil {
		return nil, err
	}
	ls := &wasm.LinkingSection{Version: version}
	for !r.eof() {
		id, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		size, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		sub, err := r.readBytes(int(size))
		if err != nil {
			return nil, err
		}
		if id == linkingSubsecSymbolTable {
			ls.Symbols, err = decodeLinkingSymbols(newReader(sub))
			if err != nil {
				return nil, fmt.Errorf("linking symbol table: %w", err)
			}
		}
	}
	return ls, nil
}

func decodeLinkingSymbols(r *reader) ([]wasm.LinkingSymbol, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]wasm.LinkingSymbol, n)
	for i := range out {
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		flags, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		sym := wasm.LinkingSymbol{Kind: kind, Flags: flags}
		// Data symbols (kind 1) carry a name plus offset/size when defined;
		// function/global/table symbols (kind 0/2/3) carry an index and an
		// optional name when the index doesn't already imply one. This is a
		// simplified reading sufficient for round-tripping well-formed
		// sections, not a full linker-symbol-flags state machine.
		if kind != 1 {
			sym.Index, err = r.readU32LEB()
			if err != nil {
				return nil, err
			}
		}
		sym.Name, err = r.readString()
		if err != nil {
			return nil, err
		}
		out[i] = sym
	}
	return out, nil
}

func encodeLinkingSection(ls *wasm.LinkingSection) []byte {
	out := uleb32(ls.Version)
	payload := encodeLinkingSymbols(ls.Symbols)
	out = append(out, linkingSubsecSymbolTable)
	out = append(out, encodeByteVector(payload)...)
	return out
}

func encodeLinkingSymbols(syms []wasm.LinkingSymbol) []byte {
	elems := make([][]byte, len(syms))
	for i, s := range syms {
		out := []byte{s.Kind}
		out = append(out, uleb32(s.Flags)...)
		if s.Kind != 1 {
			out = append(out, uleb32(s.Index)...)
		}
		out = append(out, encodeString(s.Name)...)
		elems[i] = out
	}
	return encodeVector(elems)
}

// Relocation sections are named "reloc.<target>" and carry a target
// section index plus a vector of relocation entries (spec.md GLOSSARY
// "relocation section").
func decodeRelocationSection(data []byte, targetID wasm.SectionID) (*wasm.RelocationSection, error) {
	r := newReader(data)
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	rs := &wasm.RelocationSection{SectionID: targetID, Entries: make([]wasm.RelocationEntry, n)}
	for i := range rs.Entries {
		typ, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		offset, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		index, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		entry := wasm.RelocationEntry{Type: typ, Offset: offset, Index: index}
		if relocHasAddend(typ) {
			addend, err := r.readS32LEB()
			if err != nil {
				return nil, err
			}
			entry.Addend = addend
		}
		rs.Entries[i] = entry
	}
	return rs, nil
}

// relocHasAddend reports whether relocation type t carries a trailing
// SLEB128 addend, per the tool-conventions relocation type table (types
// R_WASM_MEMORY_ADDR_* and R_WASM_FUNCTION_OFFSET_I32 /
// R_WASM_SECTION_OFFSET_I32 carry one).
func relocHasAddend(t byte) bool {
	switch t {
	case 3, 4, 5, 8, 9, 11:
		return true
	default:
		return false
	}
}

func encodeRelocationSection(rs *wasm.RelocationSection) []byte {
	out := uleb32(uint32(len(rs.Entries)))
	for _, e := range rs.Entries {
		out = append(out, e.Type)
		out = append(out, uleb32(e.Offset)...)
		out = append(out, uleb32(e.Index)...)
		if relocHasAddend(e.Type) {
			out = append(out, sleb32(e.Addend)...)
		}
	}
	return out
}
