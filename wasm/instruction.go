package wasm

// V128 is the 16-byte SIMD vector, stored as raw little-endian bytes; no
// lane interpretation is imposed by the codec (spec.md §4.1).
type V128 [16]byte

// MemArg is the (align_log2, offset) immediate of memory load/store and
// atomic instructions.
type MemArg struct {
	AlignLog2 uint32
	Offset    uint32
}

// BrTableImm is the br_table immediate: a list of label targets plus the
// default target.
type BrTableImm struct {
	Targets []Index
	Default Index
}

// CallIndirectImm is the call_indirect / return_call_indirect immediate.
type CallIndirectImm struct {
	Type  Index
	Table Index
}

// CopyImm is the memory.copy / table.copy immediate: (dst, src) space
// indices (usually memory/table 0, non-zero requires multi-memory/table).
type CopyImm struct {
	Dst Index
	Src Index
}

// InitImm is the memory.init / table.init immediate: (segment, dst).
type InitImm struct {
	Segment Index
	Dst     Index
}

// BrOnExnImm is the (target, event) immediate of the legacy br_on_exn
// instruction from the original exception-handling proposal draft.
type BrOnExnImm struct {
	Target Index
	Event  Index
}

// Instruction is an opcode plus one of the immediate forms in spec.md §3.
// Exactly one of the Imm* fields is meaningful, selected by
// Catalog[Opcode].Imm; this mirrors a tagged union without needing a Go
// interface per immediate (keeping Instruction a plain value type, cheap
// to store in a slice).
type Instruction struct {
	Opcode Opcode

	S32          int32
	S64          int64
	F32          uint32 // raw bits, per spec.md §4.1 "no normalization"
	F64          uint64
	V128         V128
	Index        Index
	Block        BlockType
	Heap         HeapType
	MemArg       MemArg
	BrTable      BrTableImm
	CallIndirect CallIndirectImm
	Copy         CopyImm
	Init         InitImm
	BrOnExn      BrOnExnImm
	Select       []ValueType
	Shuffle      [16]byte
	SimdLane     byte
}
