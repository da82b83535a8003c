package wasm

// Opcode identifies a WebAssembly instruction. Single-byte opcodes occupy
// 0x00-0xFF directly; multi-byte opcodes (misc 0xFC, SIMD 0xFD, threads
// 0xFE, GC 0xFB) are represented with their prefix byte in bits 32-39, a
// marker bit at bit 48, and their u32 suffix in the low 32 bits, so distinct (prefix, n)
// pairs never collide with single-byte opcodes or each other.
type Opcode uint64

const (
	prefixShift = 32
)

func prefixedOpcode(prefix byte, n uint32) Opcode {
	return Opcode(uint64(prefix)<<prefixShift | uint64(n) | 0x1_0000_0000_0000)
}

// Prefix bytes for multi-byte opcodes, per spec.md §4.2.
const (
	PrefixMisc    byte = 0xFC
	PrefixSIMD    byte = 0xFD
	PrefixThreads byte = 0xFE
	PrefixGC      byte = 0xFB
)

// A representative MVP + proposal opcode set. Every opcode here has a
// matching catalog row in catalog.go binding its wire form, its text
// spelling(s) (first is canonical, rest are legacy synonyms), and its
// gating feature.
const (
	OpUnreachable        Opcode = 0x00
	OpNop                Opcode = 0x01
	OpBlock              Opcode = 0x02
	OpLoop               Opcode = 0x03
	OpIf                 Opcode = 0x04
	OpElse               Opcode = 0x05
	OpTry                Opcode = 0x06
	OpCatch              Opcode = 0x07
	OpThrow              Opcode = 0x08
	OpRethrow            Opcode = 0x09
	OpEnd                Opcode = 0x0B
	OpBr                 Opcode = 0x0C
	OpBrIf               Opcode = 0x0D
	OpBrTable            Opcode = 0x0E
	OpReturn             Opcode = 0x0F
	OpCall               Opcode = 0x10
	OpCallIndirect       Opcode = 0x11
	OpReturnCall         Opcode = 0x12
	OpReturnCallIndirect Opcode = 0x13
	OpDelegate           Opcode = 0x18
	OpCatchAll           Opcode = 0x19
	OpDrop               Opcode = 0x1A
	OpSelect             Opcode = 0x1B
	OpSelectT            Opcode = 0x1C
	OpLocalGet           Opcode = 0x20
	OpLocalSet           Opcode = 0x21
	OpLocalTee           Opcode = 0x22
	OpGlobalGet          Opcode = 0x23
	OpGlobalSet          Opcode = 0x24
	OpTableGet           Opcode = 0x25
	OpTableSet           Opcode = 0x26

	OpI32Load    Opcode = 0x28
	OpI64Load    Opcode = 0x29
	OpF32Load    Opcode = 0x2A
	OpF64Load    Opcode = 0x2B
	OpI32Load8S  Opcode = 0x2C
	OpI32Load8U  Opcode = 0x2D
	OpI32Load16S Opcode = 0x2E
	OpI32Load16U Opcode = 0x2F
	OpI64Load8S  Opcode = 0x30
	OpI64Load8U  Opcode = 0x31
	OpI64Load16S Opcode = 0x32
	OpI64Load16U Opcode = 0x33
	OpI64Load32S Opcode = 0x34
	OpI64Load32U Opcode = 0x35
	OpI32Store   Opcode = 0x36
	OpI64Store   Opcode = 0x37
	OpF32Store   Opcode = 0x38
	OpF64Store   Opcode = 0x39
	OpI32Store8  Opcode = 0x3A
	OpI32Store16 Opcode = 0x3B
	OpI64Store8  Opcode = 0x3C
	OpI64Store16 Opcode = 0x3D
	OpI64Store32 Opcode = 0x3E
	OpMemorySize Opcode = 0x3F
	OpMemoryGrow Opcode = 0x40

	OpI32Const Opcode = 0x41
	OpI64Const Opcode = 0x42
	OpF32Const Opcode = 0x43
	OpF64Const Opcode = 0x44

	OpI32Eqz Opcode = 0x45
	OpI32Eq  Opcode = 0x46
	OpI32Ne  Opcode = 0x47
	OpI32LtS Opcode = 0x48
	OpI32LtU Opcode = 0x49
	OpI32GtS Opcode = 0x4A
	OpI32GtU Opcode = 0x4B
	OpI32LeS Opcode = 0x4C
	OpI32LeU Opcode = 0x4D
	OpI32GeS Opcode = 0x4E
	OpI32GeU Opcode = 0x4F

	OpI32Add  Opcode = 0x6A
	OpI32Sub  Opcode = 0x6B
	OpI32Mul  Opcode = 0x6C
	OpI32DivS Opcode = 0x6D
	OpI32DivU Opcode = 0x6E
	OpI32RemS Opcode = 0x6F
	OpI32RemU Opcode = 0x70
	OpI32And  Opcode = 0x71
	OpI32Or   Opcode = 0x72
	OpI32Xor  Opcode = 0x73
	OpI32Shl  Opcode = 0x74
	OpI32ShrS Opcode = 0x75
	OpI32ShrU Opcode = 0x76
	OpI32Rotl Opcode = 0x77
	OpI32Rotr Opcode = 0x78

	OpRefNull   Opcode = 0xD0
	OpRefIsNull Opcode = 0xD1
	OpRefFunc   Opcode = 0xD2
)

// Misc (0xFC) opcodes: saturating-float-to-int, bulk-memory.
var (
	OpI32TruncSatF32S = prefixedOpcode(PrefixMisc, 0)
	OpI32TruncSatF32U = prefixedOpcode(PrefixMisc, 1)
	OpI32TruncSatF64S = prefixedOpcode(PrefixMisc, 2)
	OpI32TruncSatF64U = prefixedOpcode(PrefixMisc, 3)
	OpI64TruncSatF32S = prefixedOpcode(PrefixMisc, 4)
	OpI64TruncSatF32U = prefixedOpcode(PrefixMisc, 5)
	OpI64TruncSatF64S = prefixedOpcode(PrefixMisc, 6)
	OpI64TruncSatF64U = prefixedOpcode(PrefixMisc, 7)
	OpMemoryInit      = prefixedOpcode(PrefixMisc, 8)
	OpDataDrop        = prefixedOpcode(PrefixMisc, 9)
	OpMemoryCopy      = prefixedOpcode(PrefixMisc, 10)
	OpMemoryFill      = prefixedOpcode(PrefixMisc, 11)
	OpTableInit       = prefixedOpcode(PrefixMisc, 12)
	OpElemDrop        = prefixedOpcode(PrefixMisc, 13)
	OpTableCopy       = prefixedOpcode(PrefixMisc, 14)
	OpTableGrow       = prefixedOpcode(PrefixMisc, 15)
	OpTableSize       = prefixedOpcode(PrefixMisc, 16)
	OpTableFill       = prefixedOpcode(PrefixMisc, 17)
)

// SIMD (0xFD) opcodes: a representative subset.
var (
	OpV128Load     = prefixedOpcode(PrefixSIMD, 0)
	OpV128Store    = prefixedOpcode(PrefixSIMD, 11)
	OpV128Const    = prefixedOpcode(PrefixSIMD, 12)
	OpI8x16Shuffle = prefixedOpcode(PrefixSIMD, 13)
	OpI32x4Add     = prefixedOpcode(PrefixSIMD, 174)
)

// Threads (0xFE) opcodes: a representative subset.
var (
	OpAtomicNotify    = prefixedOpcode(PrefixThreads, 0)
	OpAtomicWait32    = prefixedOpcode(PrefixThreads, 1)
	OpI32AtomicLoad   = prefixedOpcode(PrefixThreads, 16)
	OpI32AtomicRmwAdd = prefixedOpcode(PrefixThreads, 30)
)
