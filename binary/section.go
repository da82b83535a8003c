package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// rawSection is one section framing: an id, its payload span, and (for
// custom sections) the decoded name.
type rawSection struct {
	id      wasm.SectionID
	name    string // meaningful only when id == SectionIDCustom
	payload []byte
}

// readRawSection reads one section header (id byte, u32 LEB128 size) and
// slices out its payload without interpreting it, per spec.md §4.2 "A
// section is either a KnownSection (id, payload span) or a CustomSection
// (name, payload span)".
func readRawSection(r *reader) (rawSection, error) {
	idByte, err := r.ReadByte()
	if err != nil {
		return rawSection{}, err
	}
	size, err := r.readU32LEB()
	if err != nil {
		return rawSection{}, err
	}
	if int(size) > r.remaining() {
		return rawSection{}, fmt.Errorf("length out of bounds")
	}
	payload, err := r.readBytes(int(size))
	if err != nil {
		return rawSection{}, err
	}
	sec := rawSection{id: wasm.SectionID(idByte), payload: payload}
	if sec.id == wasm.SectionIDCustom {
		nr := newReader(payload)
		sec.name, err = nr.readString()
		if err != nil {
			return rawSection{}, fmt.Errorf("custom section name: %w", err)
		}
		sec.payload = payload[nr.pos:]
	}
	return sec, nil
}

// sectionRank orders known sections for the monotonicity check. It
// matches the official canonical stream order rather than raw SectionID
// values: DataCount (id 12) is written between Element and Code even
// though its id number is larger than Code's and Data's.
func sectionRank(id wasm.SectionID) int {
	switch id {
	case wasm.SectionIDType:
		return 1
	case wasm.SectionIDImport:
		return 2
	case wasm.SectionIDFunction:
		return 3
	case wasm.SectionIDTable:
		return 4
	case wasm.SectionIDMemory:
		return 5
	case wasm.SectionIDGlobal:
		return 6
	case wasm.SectionIDEvent:
		return 7
	case wasm.SectionIDExport:
		return 8
	case wasm.SectionIDStart:
		return 9
	case wasm.SectionIDElement:
		return 10
	case wasm.SectionIDDataCount:
		return 11
	case wasm.SectionIDCode:
		return 12
	case wasm.SectionIDData:
		return 13
	default:
		return 0
	}
}

const relocationSectionPrefix = "reloc."

// decodeModule reads the full module after the magic/version header,
// checking section ordering (spec.md §4.2) and dispatching each known
// section to its typed decoder. Errors from individual sections are
// accumulated in errs; decodeModule keeps going when a custom section or
// a later known section can still be attempted, matching the "lazy
// section iterators continue past failed items" policy (spec.md §4.9) as
// closely as an eager, whole-module decode can.
func decodeModule(r *reader, features wasm.Features, errs *wasm.Errors) (*wasm.Module, error) {
	m := &wasm.Module{}
	lastRank := 0
	var lastKnown wasm.SectionID
	var sawDataCount bool
	var dataCount uint32

	for !r.eof() {
		startLoc := r.loc()
		sec, err := readRawSection(r)
		if err != nil {
			errs.Report(startLoc, err)
			return m, errs.Err()
		}
		if sec.id != wasm.SectionIDCustom {
			rank := sectionRank(sec.id)
			if rank == 0 {
				errs.Reportf(startLoc, "unknown section id: %d", sec.id)
				continue
			}
			if rank <= lastRank {
				errs.Reportf(startLoc, "section order violation: %s after %s", sec.id, lastKnown)
				continue
			}
			lastRank = rank
			lastKnown = sec.id
		}

		errs.Push(fmt.Sprintf("section %s", sec.id))
		if err := decodeKnownOrCustomSection(m, sec, lastKnown, features, errs, &sawDataCount, &dataCount); err != nil {
			errs.Report(startLoc, err)
		}
		errs.Pop()
	}

	if sawDataCount && uint32(len(m.DataSection)) != dataCount {
		errs.Reportf(wasm.Location{}, "data count mismatch: declared %d, found %d", dataCount, len(m.DataSection))
	}
	return m, errs.Err()
}

func decodeKnownOrCustomSection(
	m *wasm.Module,
	sec rawSection,
	lastKnown wasm.SectionID,
	features wasm.Features,
	errs *wasm.Errors,
	sawDataCount *bool,
	dataCount *uint32,
) error {
	sr := newReader(sec.payload)
	var err error
	switch sec.id {
	case wasm.SectionIDCustom:
		return decodeCustomSection(m, sec, lastKnown)
	case wasm.SectionIDType:
		m.TypeSection, err = decodeTypeSection(sr)
	case wasm.SectionIDImport:
		m.ImportSection, err = decodeImportSection(sr)
	case wasm.SectionIDFunction:
		m.FunctionSection, err = decodeFunctionSection(sr)
	case wasm.SectionIDTable:
		m.TableSection, err = decodeTableSection(sr)
	case wasm.SectionIDMemory:
		m.MemorySection, err = decodeMemorySection(sr)
	case wasm.SectionIDGlobal:
		m.GlobalSection, err = decodeGlobalSection(sr, features)
	case wasm.SectionIDEvent:
		m.EventSection, err = decodeFunctionSection(sr) // same shape: vector of type indices
	case wasm.SectionIDExport:
		m.ExportSection, err = decodeExportSection(sr)
	case wasm.SectionIDStart:
		var idx wasm.Index
		idx, err = sr.readU32LEB()
		if err == nil {
			m.StartSection = &idx
		}
	case wasm.SectionIDElement:
		m.ElementSection, err = decodeElementSection(sr, features)
	case wasm.SectionIDDataCount:
		var n uint32
		n, err = sr.readU32LEB()
		if err == nil {
			*sawDataCount = true
			*dataCount = n
			m.DataCountSection = &n
		}
	case wasm.SectionIDCode:
		m.CodeSection, err = decodeCodeSection(sr, features)
	case wasm.SectionIDData:
		m.DataSection, err = decodeDataSection(sr, features)
	default:
		err = fmt.Errorf("unknown section id: %d", sec.id)
	}
	if sr.remaining() > 0 && err == nil {
		err = fmt.Errorf("section size mismatch: %d bytes unread", sr.remaining())
	}
	return err
}

func decodeCustomSection(m *wasm.Module, sec rawSection, lastKnown wasm.SectionID) error {
	switch {
	case sec.name == "name":
		ns, err := decodeNameSection(sec.payload)
		if err != nil {
			return fmt.Errorf("name section: %w", err)
		}
		m.NameSection = ns
		return nil
	case sec.name == "linking":
		ls, err := decodeLinkingSection(sec.payload)
		if err != nil {
			return fmt.Errorf("linking section: %w", err)
		}
		m.LinkingSection = ls
		return nil
	case len(sec.name) > len(relocationSectionPrefix) && sec.name[:len(relocationSectionPrefix)] == relocationSectionPrefix:
		target, err := relocationTargetFromName(sec.name)
		if err != nil {
			return err
		}
		rs, err := decodeRelocationSection(sec.payload, target)
		if err != nil {
			return fmt.Errorf("%s: %w", sec.name, err)
		}
		m.RelocationSections = append(m.RelocationSections, rs)
		return nil
	default:
		m.CustomSections = append(m.CustomSections, wasm.CustomSection{
			Name: sec.name, Data: sec.payload, After: lastKnown,
		})
		return nil
	}
}

// relocationTargetFromName maps a "reloc.<Name>" custom section name back
// to the target SectionID by matching against sectionNameUpper's
// upper-case section name, e.g. "reloc.CODE".
func relocationTargetFromName(name string) (wasm.SectionID, error) {
	suffix := name[len(relocationSectionPrefix):]
	for id := wasm.SectionIDType; id <= wasm.SectionIDEvent; id++ {
		if sectionNameUpper(id) == suffix {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unrecognized relocation target: %s", name)
}

func sectionNameUpper(id wasm.SectionID) string {
	switch id {
	case wasm.SectionIDType:
		return "TYPE"
	case wasm.SectionIDFunction:
		return "FUNCTION"
	case wasm.SectionIDTable:
		return "TABLE"
	case wasm.SectionIDMemory:
		return "MEMORY"
	case wasm.SectionIDGlobal:
		return "GLOBAL"
	case wasm.SectionIDCode:
		return "CODE"
	case wasm.SectionIDData:
		return "DATA"
	case wasm.SectionIDEvent:
		return "EVENT"
	default:
		return ""
	}
}
