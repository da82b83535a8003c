package wasm

// ValueType is the wire encoding of a WebAssembly value's type: a tagged
// union of the four numeric kinds, v128, and the reference types. Unlike
// wazero's ValueType (which only models the MVP numeric+funcref/externref
// set), this one is extended with the rest of the RefType/HeapType lattice
// described in spec.md §3, stored out-of-band in RefType when Kind is
// ValueKindRef.
type ValueType struct {
	Kind ValueKind
	Ref  RefType // meaningful only when Kind == ValueKindRef
}

// ValueKind discriminates the ValueType tagged union.
type ValueKind byte

const (
	ValueKindI32 ValueKind = iota
	ValueKindI64
	ValueKindF32
	ValueKindF64
	ValueKindV128
	ValueKindRef
)

// Numeric ValueType constructors, matching wazero's package-level
// ValueTypeI32 et al. naming but as values rather than raw bytes, since
// this package also needs to carry ref-type detail.
var (
	ValueTypeI32  = ValueType{Kind: ValueKindI32}
	ValueTypeI64  = ValueType{Kind: ValueKindI64}
	ValueTypeF32  = ValueType{Kind: ValueKindF32}
	ValueTypeF64  = ValueType{Kind: ValueKindF64}
	ValueTypeV128 = ValueType{Kind: ValueKindV128}
)

// RefValueType returns the ValueType wrapping RefType r.
func RefValueType(r RefType) ValueType {
	return ValueType{Kind: ValueKindRef, Ref: r}
}

// IsNumeric reports whether v is i32/i64/f32/f64 (not v128, not a reference).
func (v ValueType) IsNumeric() bool {
	return v.Kind == ValueKindI32 || v.Kind == ValueKindI64 || v.Kind == ValueKindF32 || v.Kind == ValueKindF64
}

func (v ValueType) String() string {
	switch v.Kind {
	case ValueKindI32:
		return "i32"
	case ValueKindI64:
		return "i64"
	case ValueKindF32:
		return "f32"
	case ValueKindF64:
		return "f64"
	case ValueKindV128:
		return "v128"
	case ValueKindRef:
		return v.Ref.String()
	default:
		return "unknown"
	}
}

// Equal compares two ValueTypes structurally (Location-free, since
// ValueType never carries one).
func (v ValueType) Equal(o ValueType) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == ValueKindRef {
		return v.Ref.Equal(o.Ref)
	}
	return true
}

// HeapKind discriminates HeapType: a built-in heap kind, or a concrete
// type index (function-references/GC proposals).
type HeapKind byte

const (
	HeapKindFunc HeapKind = iota
	HeapKindExtern
	HeapKindExn
	HeapKindIndex // HeapType.Index is meaningful
)

// HeapType is either a built-in heap kind or a type index.
type HeapType struct {
	Kind  HeapKind
	Index Index // only when Kind == HeapKindIndex
}

var (
	HeapTypeFunc   = HeapType{Kind: HeapKindFunc}
	HeapTypeExtern = HeapType{Kind: HeapKindExtern}
	HeapTypeExn    = HeapType{Kind: HeapKindExn}
)

func HeapTypeFromIndex(i Index) HeapType { return HeapType{Kind: HeapKindIndex, Index: i} }

func (h HeapType) String() string {
	switch h.Kind {
	case HeapKindFunc:
		return "func"
	case HeapKindExtern:
		return "extern"
	case HeapKindExn:
		return "exn"
	default:
		return "type-index"
	}
}

func (h HeapType) Equal(o HeapType) bool {
	if h.Kind != o.Kind {
		return false
	}
	return h.Kind != HeapKindIndex || h.Index == o.Index
}

// RefType = (heap-type, nullable?), per spec.md §3. The legacy reference
// kinds funcref/externref/exnref are RefType values with Nullable == true
// and a built-in HeapType, so the two representations never diverge.
type RefType struct {
	Heap     HeapType
	Nullable bool
}

var (
	RefTypeFuncref   = RefType{Heap: HeapTypeFunc, Nullable: true}
	RefTypeExternref = RefType{Heap: HeapTypeExtern, Nullable: true}
	RefTypeExnref    = RefType{Heap: HeapTypeExn, Nullable: true}
)

func (r RefType) String() string {
	if !r.Nullable {
		return "(ref " + r.Heap.String() + ")"
	}
	switch r.Heap.Kind {
	case HeapKindFunc:
		return "funcref"
	case HeapKindExtern:
		return "externref"
	case HeapKindExn:
		return "exnref"
	default:
		return "(ref null " + r.Heap.String() + ")"
	}
}

func (r RefType) Equal(o RefType) bool {
	return r.Nullable == o.Nullable && r.Heap.Equal(o.Heap)
}

// Index is a zero-based numeric index into one of a module's spaces
// (types, functions, tables, memories, globals, events, locals, labels,
// elements, data). Matches wazero's wasm.Index.
type Index = uint32
