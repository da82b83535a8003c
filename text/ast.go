package text

import "github.com/WebAssembly/wasp-sub001/wasm"

// Ident is a `$name` symbol, unresolved until the converter's namespace
// pass runs (spec.md §4.6 "Variables → indices").
type Ident = string

// IndexOrID is a reference to a space's entry, spelled either as a plain
// numeric index or as an identifier, per spec.md §3 "identifier context".
// Exactly one of Num/ID applies, discriminated by HasID.
type IndexOrID struct {
	Num   wasm.Index
	ID    Ident
	HasID bool
	Loc   wasm.Location
}

// TypeUse is `(type $t)?` plus optional inline `(param ...) (result ...)`,
// deferred for the converter to resolve to a concrete type index,
// creating a new type entry if no defined type matches structurally
// (spec.md §4.5 "Type uses").
type TypeUse struct {
	Ref         *IndexOrID // nil if no explicit (type ...)
	Params      []Param
	Results     []wasm.ValueType
	HasInline   bool
	ResolvedIdx wasm.Index
}

// Param is a single named or anonymous parameter.
type Param struct {
	Name Ident
	Type wasm.ValueType
}

// Local is a single named or anonymous local declaration.
type Local struct {
	Name Ident
	Type wasm.ValueType
}

// BlockTypeUse is the block/loop/if/try header: an optional label plus a
// type use (spec.md §4.6 "Block types").
type BlockTypeUse struct {
	Label Ident
	Type  TypeUse
}

// Instr is one parsed instruction, immediates keyed by the same ImmKind
// discriminant the binary decoder uses, so the converter can lower them
// with one shared switch (spec.md §2 "single declarative catalog").
type Instr struct {
	Op        wasm.OpcodeInfo
	Loc       wasm.Location
	Index     IndexOrID
	Index2    IndexOrID // second operand: call_indirect table, copy src, init dst
	S32       int32
	S64       int64
	F32       uint32
	F64       uint64
	V128      wasm.V128
	Block     BlockTypeUse
	EndLabel  Ident // the label on a matching `end`/`else` token, if present
	MemAlign  *uint32
	MemOffset uint32
	BrTable   []IndexOrID
	Heap      HeapRef
	Select    []wasm.ValueType
	Shuffle   [16]byte
	SimdLane  byte
}

// HeapRef is a heap type reference: a built-in kind or a type use.
type HeapRef struct {
	Kind  wasm.HeapKind
	Index IndexOrID
}

// Expr is a linear instruction list, already flattened from folded form
// (spec.md §4.5 "Folded").
type Expr []Instr

// Export is an inline or top-level export.
type Export struct {
	Name string
	Kind wasm.ExportKind
	Ref  IndexOrID
}

// Field is implemented by every module-level item kind.
type Field interface{ fieldKind() string }

type TypeField struct {
	Name Ident
	Type wasm.FunctionType
}

func (*TypeField) fieldKind() string { return "type" }

type ImportField struct {
	Module, Name string
	Item         ModuleItem
}

func (*ImportField) fieldKind() string { return "import" }

// ModuleItem is the shared shape of a func/table/memory/global
// declaration, whether free-standing or produced by desugaring an inline
// import (spec.md §4.5 "Allow inline imports").
type ModuleItem struct {
	Kind   ImportItemKind
	Name   Ident
	Func   *FuncField
	Table  *TableField
	Memory *MemoryField
	Global *GlobalField
}

type ImportItemKind byte

const (
	ImportItemFunc ImportItemKind = iota
	ImportItemTable
	ImportItemMemory
	ImportItemGlobal
)

type FuncField struct {
	Name    Ident
	Type    TypeUse
	Locals  []Local
	Body    Expr
	Exports []Export
	Import  *struct{ Module, Name string } // non-nil for inline imports
}

func (*FuncField) fieldKind() string { return "func" }

type TableField struct {
	Name       Ident
	Type       wasm.TableType
	Exports    []Export
	Import     *struct{ Module, Name string }
	InlineElem []IndexOrID // from an inline (elem ...), nil if absent
}

func (*TableField) fieldKind() string { return "table" }

type MemoryField struct {
	Name       Ident
	Type       wasm.MemoryType
	Exports    []Export
	Import     *struct{ Module, Name string }
	InlineData []byte
}

func (*MemoryField) fieldKind() string { return "memory" }

type GlobalField struct {
	Name    Ident
	Type    wasm.GlobalType
	Init    Expr
	Exports []Export
	Import  *struct{ Module, Name string }
}

func (*GlobalField) fieldKind() string { return "global" }

type ExportField struct {
	Export Export
}

func (*ExportField) fieldKind() string { return "export" }

// StartField is `(start $f)`. Func carries its own source location via
// wasm.At, tagging the field as a whole (the `start` keyword's position)
// distinctly from any location internal to the IndexOrID it wraps.
type StartField struct {
	Func wasm.At[IndexOrID]
}

func (*StartField) fieldKind() string { return "start" }

type ElemField struct {
	Name   Ident
	Mode   wasm.SegmentMode
	Table  IndexOrID
	Offset Expr
	Type   wasm.RefType
	Funcs  []IndexOrID
	Exprs  []Expr
}

func (*ElemField) fieldKind() string { return "elem" }

type DataField struct {
	Name   Ident
	Mode   wasm.SegmentMode
	Memory IndexOrID
	Offset Expr
	Init   []byte
}

func (*DataField) fieldKind() string { return "data" }

// Module is the parsed text AST for a single `(module ...)` form.
type Module struct {
	Name   Ident
	Fields []Field
}
