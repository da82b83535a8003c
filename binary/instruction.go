package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// decodeOpcode reads a single-byte or prefixed opcode, per spec.md §4.2:
// a prefix byte (0xFC misc, 0xFD SIMD, 0xFE threads, 0xFB GC) is followed
// by a u32 LEB128 sub-opcode.
func decodeOpcode(r *reader) (wasm.Opcode, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case wasm.PrefixMisc, wasm.PrefixSIMD, wasm.PrefixThreads, wasm.PrefixGC:
		n, err := r.readU32LEB()
		if err != nil {
			return 0, err
		}
		return prefixedOp(b, n), nil
	default:
		return wasm.Opcode(b), nil
	}
}

// prefixedOp mirrors wasm.prefixedOpcode (unexported there); duplicated
// here because the binary package needs it without exporting the helper
// from wasm for a detail that is purely a decoder/encoder concern.
func prefixedOp(prefix byte, n uint32) wasm.Opcode {
	return wasm.Opcode(uint64(prefix)<<32 | uint64(n) | 0x1_0000_0000_0000)
}

func encodeOpcode(op wasm.Opcode) []byte {
	if op > 0xff {
		prefix := byte(op >> 32)
		n := uint32(op & 0xffffffff)
		return append([]byte{prefix}, uleb32(n)...)
	}
	return []byte{byte(op)}
}

// decodeInstructions reads instructions until the `end` that closes the
// top level is seen, tracking block nesting depth; `else`/`catch` are
// decoded as ordinary instructions and do not stop the loop. depth 0 means "top level
// of a function body / constant expression": it stops at the first `end`
// and does not consume it into the returned list.
func decodeInstructions(r *reader, features wasm.Features) ([]wasm.Instruction, error) {
	var out []wasm.Instruction
	depth := 0
	for {
		op, err := decodeOpcode(r)
		if err != nil {
			return nil, err
		}
		info, ok := wasm.LookupOpcode(op)
		if !ok {
			return nil, fmt.Errorf("unknown opcode")
		}
		if info.Feature != 0 && !features.IsEnabled(info.Feature) {
			return nil, fmt.Errorf("instruction %s requires feature %s", info.Name, info.Feature)
		}
		if op == wasm.OpEnd {
			if depth == 0 {
				return out, nil
			}
			depth--
			out = append(out, wasm.Instruction{Opcode: op})
			continue
		}
		inst, err := decodeInstructionImm(r, op, info)
		if err != nil {
			return nil, err
		}
		if info.Imm == wasm.ImmBlockType {
			depth++
		}
		// delegate (exceptions proposal) closes the try block it targets,
		// same as end, but carries its own index immediate instead of
		// being bare (spec.md §4.10 "try ... delegate").
		if op == wasm.OpDelegate && depth > 0 {
			depth--
		}
		out = append(out, inst)
	}
}

// decodeInstructionImm reads op's immediate (if any) and returns the
// populated Instruction. Shared by decodeInstructions (full bodies) and
// decodeConstExpr (single-instruction constant expressions).
func decodeInstructionImm(r *reader, op wasm.Opcode, info wasm.OpcodeInfo) (wasm.Instruction, error) {
	var err error
	inst := wasm.Instruction{Opcode: op}
	switch info.Imm {
	case wasm.ImmNone:
	case wasm.ImmIndex:
		inst.Index, err = r.readU32LEB()
	case wasm.ImmS32:
		inst.S32, err = r.readS32LEB()
	case wasm.ImmS64:
		inst.S64, err = r.readS64LEB()
	case wasm.ImmF32:
		inst.F32, err = r.readF32()
	case wasm.ImmF64:
		inst.F64, err = r.readF64()
	case wasm.ImmV128:
		inst.V128, err = r.readV128()
	case wasm.ImmBlockType:
		inst.Block, err = decodeBlockType(r)
	case wasm.ImmMemArg:
		inst.MemArg.AlignLog2, err = r.readU32LEB()
		if err == nil {
			inst.MemArg.Offset, err = r.readU32LEB()
		}
	case wasm.ImmBrTable:
		var n uint32
		n, err = r.readVectorLen()
		if err == nil {
			inst.BrTable.Targets = make([]wasm.Index, n)
			for i := range inst.BrTable.Targets {
				inst.BrTable.Targets[i], err = r.readU32LEB()
				if err != nil {
					break
				}
			}
		}
		if err == nil {
			inst.BrTable.Default, err = r.readU32LEB()
		}
	case wasm.ImmCallIndirect:
		inst.CallIndirect.Type, err = r.readU32LEB()
		if err == nil {
			inst.CallIndirect.Table, err = r.readU32LEB()
		}
	case wasm.ImmCopy:
		inst.Copy.Dst, err = r.readU32LEB()
		if err == nil {
			inst.Copy.Src, err = r.readU32LEB()
		}
	case wasm.ImmInit:
		inst.Init.Segment, err = r.readU32LEB()
		if err == nil {
			inst.Init.Dst, err = r.readU32LEB()
		}
	case wasm.ImmHeapType:
		inst.Heap, err = decodeHeapType(r)
	case wasm.ImmSelect:
		var n uint32
		n, err = r.readVectorLen()
		if err == nil {
			inst.Select = make([]wasm.ValueType, n)
			for i := range inst.Select {
				inst.Select[i], err = decodeValueType(r)
				if err != nil {
					break
				}
			}
		}
	case wasm.ImmShuffle:
		var b []byte
		b, err = r.readBytes(16)
		if err == nil {
			copy(inst.Shuffle[:], b)
		}
	case wasm.ImmSimdLane:
		inst.SimdLane, err = r.ReadByte()
	case wasm.ImmBrOnExn:
		inst.BrOnExn.Target, err = r.readU32LEB()
		if err == nil {
			inst.BrOnExn.Event, err = r.readU32LEB()
		}
	}
	if err != nil {
		return wasm.Instruction{}, err
	}
	return inst, nil
}

func decodeHeapType(r *reader) (wasm.HeapType, error) {
	v, err := r.readS64LEB()
	if err != nil {
		return wasm.HeapType{}, err
	}
	if v >= 0 {
		return wasm.HeapTypeFromIndex(wasm.Index(v)), nil
	}
	switch byte(v & 0x7f) {
	case byteFuncref:
		return wasm.HeapTypeFunc, nil
	case byteExternref:
		return wasm.HeapTypeExtern, nil
	case byteExnref:
		return wasm.HeapTypeExn, nil
	default:
		return wasm.HeapType{}, fmt.Errorf("invalid heap type: %d", v)
	}
}

func encodeHeapType(h wasm.HeapType) []byte {
	switch h.Kind {
	case wasm.HeapKindIndex:
		return sleb64(int64(h.Index))
	case wasm.HeapKindExtern:
		return []byte{byteExternref}
	case wasm.HeapKindExn:
		return []byte{byteExnref}
	default:
		return []byte{byteFuncref}
	}
}

func encodeInstructions(ins []wasm.Instruction) []byte {
	var out []byte
	for _, inst := range ins {
		out = append(out, encodeInstruction(inst)...)
	}
	return out
}

func encodeInstruction(inst wasm.Instruction) []byte {
	out := encodeOpcode(inst.Opcode)
	info, _ := wasm.LookupOpcode(inst.Opcode)
	switch info.Imm {
	case wasm.ImmNone:
	case wasm.ImmIndex:
		out = append(out, uleb32(inst.Index)...)
	case wasm.ImmS32:
		out = append(out, sleb32(inst.S32)...)
	case wasm.ImmS64:
		out = append(out, sleb64(inst.S64)...)
	case wasm.ImmF32:
		out = append(out, encodeF32Bits(inst.F32)...)
	case wasm.ImmF64:
		out = append(out, encodeF64Bits(inst.F64)...)
	case wasm.ImmV128:
		out = append(out, inst.V128[:]...)
	case wasm.ImmBlockType:
		out = append(out, encodeBlockType(inst.Block)...)
	case wasm.ImmMemArg:
		out = append(out, uleb32(inst.MemArg.AlignLog2)...)
		out = append(out, uleb32(inst.MemArg.Offset)...)
	case wasm.ImmBrTable:
		out = append(out, uleb32(uint32(len(inst.BrTable.Targets)))...)
		for _, t := range inst.BrTable.Targets {
			out = append(out, uleb32(t)...)
		}
		out = append(out, uleb32(inst.BrTable.Default)...)
	case wasm.ImmCallIndirect:
		out = append(out, uleb32(inst.CallIndirect.Type)...)
		out = append(out, uleb32(inst.CallIndirect.Table)...)
	case wasm.ImmCopy:
		out = append(out, uleb32(inst.Copy.Dst)...)
		out = append(out, uleb32(inst.Copy.Src)...)
	case wasm.ImmInit:
		out = append(out, uleb32(inst.Init.Segment)...)
		out = append(out, uleb32(inst.Init.Dst)...)
	case wasm.ImmHeapType:
		out = append(out, encodeHeapType(inst.Heap)...)
	case wasm.ImmSelect:
		out = append(out, uleb32(uint32(len(inst.Select)))...)
		for _, v := range inst.Select {
			out = append(out, encodeValueType(v)...)
		}
	case wasm.ImmShuffle:
		out = append(out, inst.Shuffle[:]...)
	case wasm.ImmSimdLane:
		out = append(out, inst.SimdLane)
	case wasm.ImmBrOnExn:
		out = append(out, uleb32(inst.BrOnExn.Target)...)
		out = append(out, uleb32(inst.BrOnExn.Event)...)
	}
	return out
}
