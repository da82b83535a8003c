package text

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// lowerExpr converts a flat text instruction list into wasm.Instructions,
// resolving every identifier/numeral reference against the space its
// opcode addresses (spec.md §4.6 "Variables → indices"): locals, globals,
// funcs, tables, memories, branch labels, or element/data segments.
// locals is nil outside a function body (global/segment-offset init
// exprs, which may only reference globals).
func (c *converter) lowerExpr(in Expr, locals *namespace, labels *labelStack) ([]wasm.Instruction, error) {
	out := make([]wasm.Instruction, 0, len(in))
	for _, ti := range in {
		wi, err := c.lowerInstr(ti, locals, labels)
		if err != nil {
			return nil, FormatError(ti.Loc, err)
		}
		out = append(out, wi)
	}
	return out, nil
}

func (c *converter) lowerInstr(ti Instr, locals *namespace, labels *labelStack) (wasm.Instruction, error) {
	op := ti.Op.Opcode
	wi := wasm.Instruction{Opcode: op}
	var err error

	if isBlockStarter(op) {
		labels.Push(ti.Block.Label)
		wi.Block, err = c.lowerBlockType(ti.Block.Type)
		return wi, err
	}
	if op == wasm.OpEnd || op == wasm.OpDelegate {
		labels.Pop()
		if op == wasm.OpDelegate {
			wi.Index, err = labels.Resolve(ti.Index)
		}
		return wi, err
	}
	if op == wasm.OpElse || op == wasm.OpCatch || op == wasm.OpCatchAll {
		if op == wasm.OpCatch {
			wi.Index, err = c.events.Resolve(ti.Index)
		}
		return wi, err
	}

	switch ti.Op.Imm {
	case wasm.ImmNone:
	case wasm.ImmS32:
		wi.S32 = ti.S32
	case wasm.ImmS64:
		wi.S64 = ti.S64
	case wasm.ImmF32:
		wi.F32 = ti.F32
	case wasm.ImmF64:
		wi.F64 = ti.F64
	case wasm.ImmV128:
		wi.V128 = ti.V128
	case wasm.ImmIndex:
		wi.Index, err = c.resolveIndexSpace(op, ti.Index, locals, labels)
	case wasm.ImmMemArg:
		align := wasm.NaturalAlignLog2(op)
		if ti.MemAlign != nil {
			align = *ti.MemAlign
		}
		wi.MemArg = wasm.MemArg{AlignLog2: align, Offset: ti.MemOffset}
	case wasm.ImmBrTable:
		if len(ti.BrTable) == 0 {
			return wi, fmt.Errorf("br_table needs at least a default target")
		}
		targets := make([]wasm.Index, len(ti.BrTable)-1)
		for i, ref := range ti.BrTable[:len(ti.BrTable)-1] {
			targets[i], err = labels.Resolve(ref)
			if err != nil {
				return wi, err
			}
		}
		def, derr := labels.Resolve(ti.BrTable[len(ti.BrTable)-1])
		if derr != nil {
			return wi, derr
		}
		wi.BrTable = wasm.BrTableImm{Targets: targets, Default: def}
	case wasm.ImmCallIndirect:
		table := wasm.Index(0)
		if ti.Index.HasID || ti.Index.Num != 0 {
			table, err = c.tables.Resolve(ti.Index)
			if err != nil {
				return wi, err
			}
		}
		typeIdx, terr := c.resolveTypeUse(ti.Block.Type)
		if terr != nil {
			return wi, terr
		}
		wi.CallIndirect = wasm.CallIndirectImm{Type: typeIdx, Table: table}
	case wasm.ImmCopy:
		dstSpace, srcSpace := c.copySpaces(op)
		wi.Copy.Dst, err = dstSpace.Resolve(ti.Index)
		if err != nil {
			return wi, err
		}
		wi.Copy.Src, err = srcSpace.Resolve(ti.Index2)
	case wasm.ImmInit:
		segSpace, dstSpace := c.initSpaces(op)
		wi.Init.Segment, err = segSpace.Resolve(ti.Index)
		if err != nil {
			return wi, err
		}
		wi.Init.Dst, err = dstSpace.Resolve(ti.Index2)
	case wasm.ImmHeapType:
		wi.Heap, err = c.lowerHeapType(ti.Heap)
	case wasm.ImmSelect:
		wi.Select = ti.Select
	case wasm.ImmShuffle:
		wi.Shuffle = ti.Shuffle
	case wasm.ImmSimdLane:
		wi.SimdLane = ti.SimdLane
	case wasm.ImmBrOnExn:
		wi.BrOnExn.Target, err = labels.Resolve(ti.Index)
		if err != nil {
			return wi, err
		}
		wi.BrOnExn.Event, err = c.events.Resolve(ti.Index2)
	}
	return wi, err
}

func (c *converter) resolveIndexSpace(op wasm.Opcode, ref IndexOrID, locals *namespace, labels *labelStack) (wasm.Index, error) {
	switch op {
	case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee:
		if locals == nil {
			return 0, fmt.Errorf("local reference outside a function body")
		}
		return locals.Resolve(ref)
	case wasm.OpGlobalGet, wasm.OpGlobalSet:
		return c.globals.Resolve(ref)
	case wasm.OpCall, wasm.OpReturnCall, wasm.OpRefFunc:
		return c.funcs.Resolve(ref)
	case wasm.OpTableGet, wasm.OpTableSet, wasm.OpTableGrow, wasm.OpTableSize, wasm.OpTableFill:
		return c.tables.Resolve(ref)
	case wasm.OpDataDrop:
		return c.dataSegs.Resolve(ref)
	case wasm.OpElemDrop:
		return c.elemSegs.Resolve(ref)
	case wasm.OpBr, wasm.OpBrIf, wasm.OpRethrow:
		return labels.Resolve(ref)
	case wasm.OpThrow:
		return c.events.Resolve(ref)
	default:
		return 0, fmt.Errorf("unhandled index-immediate opcode %v", op)
	}
}

func (c *converter) copySpaces(op wasm.Opcode) (dst, src *namespace) {
	if op == wasm.OpTableCopy {
		return c.tables, c.tables
	}
	return c.mems, c.mems
}

func (c *converter) initSpaces(op wasm.Opcode) (seg, dst *namespace) {
	if op == wasm.OpTableInit {
		return c.elemSegs, c.tables
	}
	return c.dataSegs, c.mems
}

func (c *converter) lowerBlockType(use TypeUse) (wasm.BlockType, error) {
	if use.Ref == nil && !use.HasInline {
		return wasm.BlockType{}, nil
	}
	if use.Ref == nil && len(use.Params) == 0 && len(use.Results) <= 1 {
		if len(use.Results) == 0 {
			return wasm.BlockType{}, nil
		}
		return wasm.BlockTypeFromValue(use.Results[0]), nil
	}
	idx, err := c.resolveTypeUse(use)
	if err != nil {
		return wasm.BlockType{}, err
	}
	return wasm.BlockTypeFromIndex(idx), nil
}

func (c *converter) lowerHeapType(h HeapRef) (wasm.HeapType, error) {
	switch h.Kind {
	case wasm.HeapKindFunc:
		return wasm.HeapTypeFunc, nil
	case wasm.HeapKindExtern:
		return wasm.HeapTypeExtern, nil
	case wasm.HeapKindExn:
		return wasm.HeapTypeExn, nil
	default:
		idx, err := c.types.Resolve(h.Index)
		if err != nil {
			return wasm.HeapType{}, err
		}
		return wasm.HeapTypeFromIndex(idx), nil
	}
}
