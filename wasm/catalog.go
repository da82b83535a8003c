package wasm

// OpcodeInfo is one row of the catalog: spec.md §2's "single declarative
// catalog mapping each opcode... to its numeric encoding, its textual
// spelling, and the feature that gates it." Every encoder, decoder,
// tokenizer keyword table, and (by an external pretty-printer) printer is
// derived from this table rather than hand-duplicating switch statements
// per concern.
type OpcodeInfo struct {
	Opcode  Opcode
	Name    string   // canonical text spelling
	Legacy  []string // deprecated synonyms accepted by the tokenizer (spec.md §9)
	Feature Features // 0 means "always available" (MVP)
	Imm     ImmKind
}

// ImmKind enumerates the twenty-odd immediate shapes from spec.md §3.
type ImmKind byte

const (
	ImmNone ImmKind = iota
	ImmS32
	ImmS64
	ImmF32
	ImmF64
	ImmV128
	ImmIndex // a single var (local/global/func/table/elem/data index)
	ImmBlockType
	ImmBrOnExn      // (target, event)
	ImmBrTable      // (targets, default)
	ImmCallIndirect // (type, table)
	ImmCopy         // (dst, src)
	ImmInit         // (segment, dst)
	ImmLet
	ImmMemArg // (align_log2, offset)
	ImmHeapType
	ImmSelect   // value types list
	ImmShuffle  // 16 lane indices
	ImmSimdLane // u8 lane index
)

// Catalog is the full opcode table, indexed by Opcode for O(1) decode-side
// lookup; TextCatalog below is the inverse index for the tokenizer/reader.
var Catalog = buildCatalog()

// TextCatalog maps every canonical and legacy spelling to its OpcodeInfo,
// the inverse of Catalog, used by the tokenizer to classify keywords.
var TextCatalog = buildTextCatalog()

func buildCatalog() map[Opcode]OpcodeInfo {
	rows := []OpcodeInfo{
		{Opcode: OpUnreachable, Name: "unreachable"},
		{Opcode: OpNop, Name: "nop"},
		{Opcode: OpBlock, Name: "block", Imm: ImmBlockType},
		{Opcode: OpLoop, Name: "loop", Imm: ImmBlockType},
		{Opcode: OpIf, Name: "if", Imm: ImmBlockType},
		{Opcode: OpElse, Name: "else"},
		{Opcode: OpTry, Name: "try", Imm: ImmBlockType, Feature: FeatureExceptions},
		{Opcode: OpCatch, Name: "catch", Imm: ImmIndex, Feature: FeatureExceptions},
		{Opcode: OpThrow, Name: "throw", Imm: ImmIndex, Feature: FeatureExceptions},
		{Opcode: OpRethrow, Name: "rethrow", Imm: ImmIndex, Feature: FeatureExceptions},
		{Opcode: OpEnd, Name: "end"},
		{Opcode: OpBr, Name: "br", Imm: ImmIndex},
		{Opcode: OpBrIf, Name: "br_if", Imm: ImmIndex},
		{Opcode: OpBrTable, Name: "br_table", Imm: ImmBrTable},
		{Opcode: OpReturn, Name: "return"},
		{Opcode: OpCall, Name: "call", Imm: ImmIndex},
		{Opcode: OpCallIndirect, Name: "call_indirect", Imm: ImmCallIndirect},
		{Opcode: OpReturnCall, Name: "return_call", Imm: ImmIndex, Feature: FeatureTailCall},
		{Opcode: OpReturnCallIndirect, Name: "return_call_indirect", Imm: ImmCallIndirect, Feature: FeatureTailCall},
		{Opcode: OpDelegate, Name: "delegate", Imm: ImmIndex, Feature: FeatureExceptions},
		{Opcode: OpCatchAll, Name: "catch_all", Feature: FeatureExceptions},
		{Opcode: OpDrop, Name: "drop"},
		{Opcode: OpSelect, Name: "select"},
		{Opcode: OpSelectT, Name: "select", Imm: ImmSelect, Feature: FeatureReferenceTypes},
		{Opcode: OpLocalGet, Name: "local.get", Legacy: []string{"get_local"}, Imm: ImmIndex},
		{Opcode: OpLocalSet, Name: "local.set", Legacy: []string{"set_local"}, Imm: ImmIndex},
		{Opcode: OpLocalTee, Name: "local.tee", Legacy: []string{"tee_local"}, Imm: ImmIndex},
		{Opcode: OpGlobalGet, Name: "global.get", Legacy: []string{"get_global"}, Imm: ImmIndex},
		{Opcode: OpGlobalSet, Name: "global.set", Legacy: []string{"set_global"}, Imm: ImmIndex},
		{Opcode: OpTableGet, Name: "table.get", Imm: ImmIndex, Feature: FeatureReferenceTypes},
		{Opcode: OpTableSet, Name: "table.set", Imm: ImmIndex, Feature: FeatureReferenceTypes},

		{Opcode: OpI32Load, Name: "i32.load", Imm: ImmMemArg},
		{Opcode: OpI64Load, Name: "i64.load", Imm: ImmMemArg},
		{Opcode: OpF32Load, Name: "f32.load", Imm: ImmMemArg},
		{Opcode: OpF64Load, Name: "f64.load", Imm: ImmMemArg},
		{Opcode: OpI32Load8S, Name: "i32.load8_s", Imm: ImmMemArg},
		{Opcode: OpI32Load8U, Name: "i32.load8_u", Imm: ImmMemArg},
		{Opcode: OpI32Load16S, Name: "i32.load16_s", Imm: ImmMemArg},
		{Opcode: OpI32Load16U, Name: "i32.load16_u", Imm: ImmMemArg},
		{Opcode: OpI64Load8S, Name: "i64.load8_s", Imm: ImmMemArg},
		{Opcode: OpI64Load8U, Name: "i64.load8_u", Imm: ImmMemArg},
		{Opcode: OpI64Load16S, Name: "i64.load16_s", Imm: ImmMemArg},
		{Opcode: OpI64Load16U, Name: "i64.load16_u", Imm: ImmMemArg},
		{Opcode: OpI64Load32S, Name: "i64.load32_s", Imm: ImmMemArg},
		{Opcode: OpI64Load32U, Name: "i64.load32_u", Imm: ImmMemArg},
		{Opcode: OpI32Store, Name: "i32.store", Imm: ImmMemArg},
		{Opcode: OpI64Store, Name: "i64.store", Imm: ImmMemArg},
		{Opcode: OpF32Store, Name: "f32.store", Imm: ImmMemArg},
		{Opcode: OpF64Store, Name: "f64.store", Imm: ImmMemArg},
		{Opcode: OpI32Store8, Name: "i32.store8", Imm: ImmMemArg},
		{Opcode: OpI32Store16, Name: "i32.store16", Imm: ImmMemArg},
		{Opcode: OpI64Store8, Name: "i64.store8", Imm: ImmMemArg},
		{Opcode: OpI64Store16, Name: "i64.store16", Imm: ImmMemArg},
		{Opcode: OpI64Store32, Name: "i64.store32", Imm: ImmMemArg},
		{Opcode: OpMemorySize, Name: "memory.size", Legacy: []string{"current_memory"}},
		{Opcode: OpMemoryGrow, Name: "memory.grow", Legacy: []string{"grow_memory"}},

		{Opcode: OpI32Const, Name: "i32.const", Imm: ImmS32},
		{Opcode: OpI64Const, Name: "i64.const", Imm: ImmS64},
		{Opcode: OpF32Const, Name: "f32.const", Imm: ImmF32},
		{Opcode: OpF64Const, Name: "f64.const", Imm: ImmF64},

		{Opcode: OpI32Eqz, Name: "i32.eqz"},
		{Opcode: OpI32Eq, Name: "i32.eq"},
		{Opcode: OpI32Ne, Name: "i32.ne"},
		{Opcode: OpI32LtS, Name: "i32.lt_s"},
		{Opcode: OpI32LtU, Name: "i32.lt_u"},
		{Opcode: OpI32GtS, Name: "i32.gt_s"},
		{Opcode: OpI32GtU, Name: "i32.gt_u"},
		{Opcode: OpI32LeS, Name: "i32.le_s"},
		{Opcode: OpI32LeU, Name: "i32.le_u"},
		{Opcode: OpI32GeS, Name: "i32.ge_s"},
		{Opcode: OpI32GeU, Name: "i32.ge_u"},

		{Opcode: OpI32Add, Name: "i32.add"},
		{Opcode: OpI32Sub, Name: "i32.sub"},
		{Opcode: OpI32Mul, Name: "i32.mul"},
		{Opcode: OpI32DivS, Name: "i32.div_s"},
		{Opcode: OpI32DivU, Name: "i32.div_u"},
		{Opcode: OpI32RemS, Name: "i32.rem_s"},
		{Opcode: OpI32RemU, Name: "i32.rem_u"},
		{Opcode: OpI32And, Name: "i32.and"},
		{Opcode: OpI32Or, Name: "i32.or"},
		{Opcode: OpI32Xor, Name: "i32.xor"},
		{Opcode: OpI32Shl, Name: "i32.shl"},
		{Opcode: OpI32ShrS, Name: "i32.shr_s"},
		{Opcode: OpI32ShrU, Name: "i32.shr_u"},
		{Opcode: OpI32Rotl, Name: "i32.rotl"},
		{Opcode: OpI32Rotr, Name: "i32.rotr"},

		{Opcode: OpRefNull, Name: "ref.null", Imm: ImmHeapType, Feature: FeatureReferenceTypes},
		{Opcode: OpRefIsNull, Name: "ref.is_null", Feature: FeatureReferenceTypes},
		{Opcode: OpRefFunc, Name: "ref.func", Imm: ImmIndex, Feature: FeatureReferenceTypes},

		{Opcode: OpI32TruncSatF32S, Name: "i32.trunc_sat_f32_s", Legacy: []string{"i32.trunc_s/f32:sat"}, Feature: FeatureSaturatingFloatToInt},
		{Opcode: OpI32TruncSatF32U, Name: "i32.trunc_sat_f32_u", Feature: FeatureSaturatingFloatToInt},
		{Opcode: OpI32TruncSatF64S, Name: "i32.trunc_sat_f64_s", Feature: FeatureSaturatingFloatToInt},
		{Opcode: OpI32TruncSatF64U, Name: "i32.trunc_sat_f64_u", Feature: FeatureSaturatingFloatToInt},
		{Opcode: OpI64TruncSatF32S, Name: "i64.trunc_sat_f32_s", Feature: FeatureSaturatingFloatToInt},
		{Opcode: OpI64TruncSatF32U, Name: "i64.trunc_sat_f32_u", Feature: FeatureSaturatingFloatToInt},
		{Opcode: OpI64TruncSatF64S, Name: "i64.trunc_sat_f64_s", Feature: FeatureSaturatingFloatToInt},
		{Opcode: OpI64TruncSatF64U, Name: "i64.trunc_sat_f64_u", Feature: FeatureSaturatingFloatToInt},
		{Opcode: OpMemoryInit, Name: "memory.init", Imm: ImmInit, Feature: FeatureBulkMemory},
		{Opcode: OpDataDrop, Name: "data.drop", Imm: ImmIndex, Feature: FeatureBulkMemory},
		{Opcode: OpMemoryCopy, Name: "memory.copy", Imm: ImmCopy, Feature: FeatureBulkMemory},
		{Opcode: OpMemoryFill, Name: "memory.fill", Feature: FeatureBulkMemory},
		{Opcode: OpTableInit, Name: "table.init", Imm: ImmInit, Feature: FeatureBulkMemory},
		{Opcode: OpElemDrop, Name: "elem.drop", Imm: ImmIndex, Feature: FeatureBulkMemory},
		{Opcode: OpTableCopy, Name: "table.copy", Imm: ImmCopy, Feature: FeatureBulkMemory},
		{Opcode: OpTableGrow, Name: "table.grow", Imm: ImmIndex, Feature: FeatureReferenceTypes},
		{Opcode: OpTableSize, Name: "table.size", Imm: ImmIndex, Feature: FeatureReferenceTypes},
		{Opcode: OpTableFill, Name: "table.fill", Imm: ImmIndex, Feature: FeatureBulkMemory},

		{Opcode: OpV128Load, Name: "v128.load", Imm: ImmMemArg, Feature: FeatureSIMD},
		{Opcode: OpV128Store, Name: "v128.store", Imm: ImmMemArg, Feature: FeatureSIMD},
		{Opcode: OpV128Const, Name: "v128.const", Imm: ImmV128, Feature: FeatureSIMD},
		{Opcode: OpI8x16Shuffle, Name: "i8x16.shuffle", Imm: ImmShuffle, Feature: FeatureSIMD},
		{Opcode: OpI32x4Add, Name: "i32x4.add", Feature: FeatureSIMD},

		{Opcode: OpAtomicNotify, Name: "memory.atomic.notify", Imm: ImmMemArg, Feature: FeatureThreads},
		{Opcode: OpAtomicWait32, Name: "memory.atomic.wait32", Imm: ImmMemArg, Feature: FeatureThreads},
		{Opcode: OpI32AtomicLoad, Name: "i32.atomic.load", Imm: ImmMemArg, Feature: FeatureThreads},
		{Opcode: OpI32AtomicRmwAdd, Name: "i32.atomic.rmw.add", Imm: ImmMemArg, Feature: FeatureThreads},
	}
	m := make(map[Opcode]OpcodeInfo, len(rows))
	for _, r := range rows {
		m[r.Opcode] = r
	}
	return m
}

func buildTextCatalog() map[string]OpcodeInfo {
	m := make(map[string]OpcodeInfo, len(Catalog)*2)
	for _, info := range Catalog {
		m[info.Name] = info
		for _, legacy := range info.Legacy {
			m[legacy] = info
		}
	}
	return m
}

// LookupOpcode returns the catalog row for op, or ok == false if op is
// not in the catalog (an "unknown opcode" per spec.md §4.2).
func LookupOpcode(op Opcode) (OpcodeInfo, bool) {
	info, ok := Catalog[op]
	return info, ok
}

// LookupKeyword returns the catalog row for a textual opcode spelling
// (canonical or legacy), or ok == false.
func LookupKeyword(name string) (OpcodeInfo, bool) {
	info, ok := TextCatalog[name]
	return info, ok
}

// NaturalAlignLog2 implements spec.md §4.7: the five load/store/atomic
// classes partitioned by widest operand, looked up by opcode.
func NaturalAlignLog2(op Opcode) uint32 {
	switch op {
	case OpI32Load8S, OpI32Load8U, OpI64Load8S, OpI64Load8U, OpI32Store8, OpI64Store8:
		return 0
	case OpI32Load16S, OpI32Load16U, OpI64Load16S, OpI64Load16U, OpI32Store16, OpI64Store16:
		return 1
	case OpI32Load, OpF32Load, OpI32Store, OpF32Store, OpI64Load32S, OpI64Load32U, OpI64Store32:
		return 2
	case OpI64Load, OpF64Load, OpI64Store, OpF64Store:
		return 3
	case OpV128Load, OpV128Store:
		return 4
	default:
		return 2
	}
}
