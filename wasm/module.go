package wasm

// SectionID identifies a top-level section of the binary format (spec.md
// §6 "canonical id order"). Custom sections use SectionIDCustom and carry
// their own Name.
type SectionID byte

const (
	SectionIDCustom SectionID = iota
	SectionIDType
	SectionIDImport
	SectionIDFunction
	SectionIDTable
	SectionIDMemory
	SectionIDGlobal
	SectionIDExport
	SectionIDStart
	SectionIDElement
	SectionIDCode
	SectionIDData
	SectionIDDataCount
	// SectionIDEvent is unordered relative to the others above by the wire
	// format's historical numbering; the exception-handling proposal
	// assigns it 13 in this codec's catalog.
	SectionIDEvent
)

func (id SectionID) String() string {
	switch id {
	case SectionIDCustom:
		return "custom"
	case SectionIDType:
		return "type"
	case SectionIDImport:
		return "import"
	case SectionIDFunction:
		return "function"
	case SectionIDTable:
		return "table"
	case SectionIDMemory:
		return "memory"
	case SectionIDGlobal:
		return "global"
	case SectionIDExport:
		return "export"
	case SectionIDStart:
		return "start"
	case SectionIDElement:
		return "element"
	case SectionIDCode:
		return "code"
	case SectionIDData:
		return "data"
	case SectionIDDataCount:
		return "data count"
	case SectionIDEvent:
		return "event"
	default:
		return "unknown"
	}
}

// FunctionType is a (params, results) signature. The function-type map
// (spec.md §3) matches structurally on this, discarding parameter names.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// Equal compares params and results structurally.
func (t *FunctionType) Equal(o *FunctionType) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Params) != len(o.Params) || len(t.Results) != len(o.Results) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equal(o.Params[i]) {
			return false
		}
	}
	for i := range t.Results {
		if !t.Results[i].Equal(o.Results[i]) {
			return false
		}
	}
	return true
}

// ImportKind discriminates Import.Desc*.
type ImportKind byte

const (
	ImportKindFunc ImportKind = iota
	ImportKindTable
	ImportKindMemory
	ImportKindGlobal
	ImportKindEvent
)

// Import is one row of the import section.
type Import struct {
	Module, Name string
	Kind         ImportKind
	DescFunc     Index
	DescTable    TableType
	DescMem      MemoryType
	DescGlobal   GlobalType
	DescEvent    Index // type index, exceptions proposal
}

// GlobalType is a value type plus mutability.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Global is a module-defined global: its type and constant initializer.
type Global struct {
	Type GlobalType
	Init ConstantExpression
}

// ConstantExpression is a restricted instruction sequence (one constant
// instruction followed by end) used for global initializers and segment
// offsets. Stored as that one instruction's opcode plus its encoded
// immediate bytes; the trailing end is implied and not stored.
type ConstantExpression struct {
	Opcode Opcode
	Data   []byte // the encoded immediate, opaque to callers that don't need it
}

// ExportKind discriminates which space Export.Index refers into.
type ExportKind byte

const (
	ExportKindFunc ExportKind = iota
	ExportKindTable
	ExportKindMemory
	ExportKindGlobal
	ExportKindEvent
)

// Export is one row of the export section.
type Export struct {
	Name  string
	Kind  ExportKind
	Index Index
}

// SegmentMode discriminates an element/data segment's placement.
type SegmentMode byte

const (
	SegmentModeActive SegmentMode = iota
	SegmentModePassive
	SegmentModeDeclared // elements only
)

// ElementSegment is one row of the element section. Its initializer is
// either function indices (FuncIndexes) or element expressions (Exprs,
// reference-types proposal), mirroring spec.md §8 scenario 5.
type ElementSegment struct {
	Mode       SegmentMode
	Type       RefType
	TableIndex Index // meaningful when Mode == SegmentModeActive
	Offset     ConstantExpression
	// FuncIndexes / Exprs hold the resolved initializer list.
	// Exactly one of FuncIndexes / Exprs is populated per decode/convert,
	// selected by the wire's "has expressions" flag bit (spec.md §4.2).
	FuncIndexes []Index
	Exprs       []ConstantExpression
}

// DataSegment is one row of the data section.
type DataSegment struct {
	Mode        SegmentMode // Active or Passive only
	MemoryIndex Index       // meaningful when Mode == SegmentModeActive
	Offset      ConstantExpression
	Init        []byte
}

// Code is a function body: the run-length-encoded locals list (spec.md
// §4.6) plus its instruction stream.
type Code struct {
	LocalTypes []LocalEntry
	Body       []Instruction
	// BodyOffset/BodySize locate the raw code span for callers that want
	// to re-slice the original buffer instead of re-encoding.
	BodyOffset, BodySize uint32
}

// LocalEntry is one run of the run-length-encoded locals list: Count
// repetitions of Type.
type LocalEntry struct {
	Count uint32
	Type  ValueType
}

// NameAssoc associates an Index with a name, used by NameMap (name
// section, and the text reader's param-name recording for typeuse).
type NameAssoc struct {
	Index Index
	Name  string
}

// NameMap is an ordered list of NameAssoc; order is insertion order, not
// sorted by Index (matches wazero's wasm.NameMap).
type NameMap []*NameAssoc

// NameSection is the decoded form of the standardized "name" custom
// section (spec.md GLOSSARY): module name, per-function names, and
// per-function local names.
type NameSection struct {
	ModuleName    string
	FunctionNames NameMap
	LocalNames    []FunctionLocalNames
}

// FunctionLocalNames is the local-name subsection's per-function entry.
type FunctionLocalNames struct {
	FunctionIndex Index
	LocalNames    NameMap
}

// LinkingSection is the decoded form of the non-standard but
// widely-implemented "linking" custom section: a symbol table used by
// static linkers (spec.md GLOSSARY "linking section"). Out of scope: the
// linker itself: this codec only decodes/encodes the structured data.
type LinkingSection struct {
	Version uint32
	Symbols []LinkingSymbol
}

// LinkingSymbol is one entry of a linking section's SYMBOL_TABLE subsection.
type LinkingSymbol struct {
	Kind  byte
	Flags uint32
	Name  string
	Index Index
}

// RelocationSection is the decoded form of a "reloc." custom section:
// relocation entries targeting one other section by id.
type RelocationSection struct {
	SectionID SectionID
	Entries   []RelocationEntry
}

// RelocationEntry is one relocation record.
type RelocationEntry struct {
	Type   byte
	Offset uint32
	Index  Index
	Addend int32
}

// Module is the binary AST: spec.md §3 "module entities." Indices-only;
// no symbolic names survive from text beyond NameSection.
type Module struct {
	TypeSection      []*FunctionType
	ImportSection    []*Import
	FunctionSection  []Index // indices into TypeSection, one per defined function
	TableSection     []*TableType
	MemorySection    []*MemoryType
	GlobalSection    []*Global
	EventSection     []Index // type indices, exceptions proposal
	ExportSection    []*Export
	StartSection     *Index
	ElementSection   []*ElementSegment
	CodeSection      []*Code
	DataSection      []*DataSegment
	DataCountSection *uint32

	NameSection        *NameSection
	LinkingSection     *LinkingSection
	RelocationSections []*RelocationSection

	// CustomSections preserves any custom section not otherwise modeled
	// above (by name), in original encounter order, so encode can
	// interleave them (spec.md §6 "Custom sections may be interleaved").
	CustomSections []CustomSection
}

// CustomSection is an opaque named payload (spec.md GLOSSARY). After
// records the id of the last known section that preceded it in the
// original byte stream (SectionIDCustom if none did), so the encoder can
// reproduce the original interleaving (spec.md §6 "Custom sections may be
// interleaved").
type CustomSection struct {
	Name  string
	Data  []byte
	After SectionID
}
