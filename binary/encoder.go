package binary

import (
	"github.com/WebAssembly/wasp-sub001/wasm"
)

// EncodeModule writes m's canonical binary encoding (spec.md §4.3,
// §6 "Output — binary"): magic, version, then known sections in
// canonical id order with custom sections re-inserted immediately after
// the known section recorded in each CustomSection.After.
func EncodeModule(m *wasm.Module) []byte {
	out := append([]byte{}, Magic...)
	out = append(out, version...)

	emit := func(id wasm.SectionID, payload []byte) {
		if payload == nil {
			return
		}
		out = append(out, byte(id))
		out = append(out, uleb32(uint32(len(payload)))...)
		out = append(out, payload...)
	}
	emitCustomsAfter := func(id wasm.SectionID) {
		for _, c := range m.CustomSections {
			if c.After == id {
				out = encodeCustomSection(out, c)
			}
		}
	}

	emitCustomsAfter(wasm.SectionIDCustom)

	if len(m.TypeSection) > 0 {
		emit(wasm.SectionIDType, encodeTypeSection(m.TypeSection))
	}
	emitCustomsAfter(wasm.SectionIDType)

	if len(m.ImportSection) > 0 {
		emit(wasm.SectionIDImport, encodeImportSection(m.ImportSection))
	}
	emitCustomsAfter(wasm.SectionIDImport)

	if len(m.FunctionSection) > 0 {
		emit(wasm.SectionIDFunction, encodeFunctionSection(m.FunctionSection))
	}
	emitCustomsAfter(wasm.SectionIDFunction)

	if len(m.TableSection) > 0 {
		emit(wasm.SectionIDTable, encodeTableSection(m.TableSection))
	}
	emitCustomsAfter(wasm.SectionIDTable)

	if len(m.MemorySection) > 0 {
		emit(wasm.SectionIDMemory, encodeMemorySection(m.MemorySection))
	}
	emitCustomsAfter(wasm.SectionIDMemory)

	if len(m.GlobalSection) > 0 {
		emit(wasm.SectionIDGlobal, encodeGlobalSection(m.GlobalSection))
	}
	emitCustomsAfter(wasm.SectionIDGlobal)

	if len(m.EventSection) > 0 {
		emit(wasm.SectionIDEvent, encodeFunctionSection(m.EventSection))
	}
	emitCustomsAfter(wasm.SectionIDEvent)

	if len(m.ExportSection) > 0 {
		emit(wasm.SectionIDExport, encodeExportSection(m.ExportSection))
	}
	emitCustomsAfter(wasm.SectionIDExport)

	if m.StartSection != nil {
		emit(wasm.SectionIDStart, uleb32(*m.StartSection))
	}
	emitCustomsAfter(wasm.SectionIDStart)

	if len(m.ElementSection) > 0 {
		emit(wasm.SectionIDElement, encodeElementSection(m.ElementSection))
	}
	emitCustomsAfter(wasm.SectionIDElement)

	if m.DataCountSection != nil {
		emit(wasm.SectionIDDataCount, uleb32(*m.DataCountSection))
	}
	emitCustomsAfter(wasm.SectionIDDataCount)

	if len(m.CodeSection) > 0 {
		emit(wasm.SectionIDCode, encodeCodeSection(m.CodeSection))
	}
	emitCustomsAfter(wasm.SectionIDCode)

	if len(m.DataSection) > 0 {
		emit(wasm.SectionIDData, encodeDataSection(m.DataSection))
	}
	emitCustomsAfter(wasm.SectionIDData)

	if m.NameSection != nil {
		emit(wasm.SectionIDCustom, encodeNamedCustomPayload("name", encodeNameSection(m.NameSection)))
	}
	if m.LinkingSection != nil {
		emit(wasm.SectionIDCustom, encodeNamedCustomPayload("linking", encodeLinkingSection(m.LinkingSection)))
	}
	for _, rs := range m.RelocationSections {
		name := relocationSectionPrefix + sectionNameUpper(rs.SectionID)
		emit(wasm.SectionIDCustom, encodeNamedCustomPayload(name, encodeRelocationSection(rs)))
	}

	return out
}

func encodeCustomSection(out []byte, c wasm.CustomSection) []byte {
	payload := encodeNamedCustomPayload(c.Name, c.Data)
	out = append(out, byte(wasm.SectionIDCustom))
	out = append(out, uleb32(uint32(len(payload)))...)
	return append(out, payload...)
}

func encodeNamedCustomPayload(name string, data []byte) []byte {
	out := encodeString(name)
	return append(out, data...)
}
