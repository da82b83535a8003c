package text

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// isBlockStarter reports the opcodes that open a nested label scope and thus
// need special plain/folded handling beyond generic immediate parsing
// (spec.md §4.5 "Block/loop/if/try use a third form").
func isBlockStarter(op wasm.Opcode) bool {
	switch op {
	case wasm.OpBlock, wasm.OpLoop, wasm.OpIf, wasm.OpTry:
		return true
	default:
		return false
	}
}

var endOp, elseOp wasm.OpcodeInfo

func init() {
	var ok bool
	if endOp, ok = wasm.LookupKeyword("end"); !ok {
		panic("catalog missing end")
	}
	if elseOp, ok = wasm.LookupKeyword("else"); !ok {
		panic("catalog missing else")
	}
}

func isBlockTerminatorKeyword(text string) bool {
	switch text {
	case "else", "catch", "catch_all", "delegate", "end":
		return true
	default:
		return false
	}
}

// parseExprUntilRparLoose parses instructions (plain or folded) up to but
// not including the closing Rpar of the enclosing construct (func body,
// global/offset init).
func (r *Reader) parseExprUntilRparLoose() (Expr, error) {
	var out Expr
	for r.cur.Kind != KindRpar && r.cur.Kind != KindEOF {
		unit, err := r.parseInstrUnit()
		if err != nil {
			return nil, err
		}
		out = append(out, unit...)
	}
	return out, nil
}

// parseInstrSeqUntilTerminator parses plain-form instructions until the
// current token is a block terminator keyword (else/catch/catch_all/
// delegate/end) at this nesting level, without consuming it.
func (r *Reader) parseInstrSeqUntilTerminator() (Expr, error) {
	var out Expr
	for !(r.cur.Kind == KindInstr && isBlockTerminatorKeyword(r.cur.Text)) && r.cur.Kind != KindRpar && r.cur.Kind != KindEOF {
		unit, err := r.parseInstrUnit()
		if err != nil {
			return nil, err
		}
		out = append(out, unit...)
	}
	return out, nil
}

func (r *Reader) parseInstrUnit() (Expr, error) {
	switch r.cur.Kind {
	case KindLpar:
		return r.parseFoldedInstr()
	case KindInstr:
		return r.parsePlainInstr()
	default:
		return nil, r.fail(unexpectedToken(r.cur, "instruction"))
	}
}

// parsePlainInstr parses one un-parenthesized instruction, per spec.md
// §4.5 "Plain: opcode imm…". Control instructions additionally consume
// their body and matching terminator here.
func (r *Reader) parsePlainInstr() (Expr, error) {
	tok := r.advance()
	op := tok.Op
	if isBlockStarter(op.Opcode) {
		return r.parsePlainBlock(tok)
	}
	inst, err := r.parseImm(tok, op)
	if err != nil {
		return nil, err
	}
	return Expr{inst}, nil
}

func (r *Reader) parsePlainBlock(headerTok Token) (Expr, error) {
	label := r.optionalIdent()
	use, err := r.parseTypeUse()
	if err != nil {
		return nil, err
	}
	header := Instr{Op: headerTok.Op, Loc: headerTok.Location, Block: BlockTypeUse{Label: label, Type: use}}
	out := Expr{header}

	body, err := r.parseInstrSeqUntilTerminator()
	if err != nil {
		return nil, err
	}
	out = append(out, body...)

	switch headerTok.Op.Opcode {
	case wasm.OpIf:
		if r.atKeyword("else") {
			elseTok := r.advance()
			elseLabel := r.optionalIdent()
			if elseLabel != "" && elseLabel != label {
				return nil, r.fail(fmt.Errorf("expected label %s, got %s", label, elseLabel))
			}
			out = append(out, Instr{Op: elseTok.Op, Loc: elseTok.Location})
			elseBody, err := r.parseInstrSeqUntilTerminator()
			if err != nil {
				return nil, err
			}
			out = append(out, elseBody...)
		}
	case wasm.OpTry:
		for r.atKeyword("catch") || r.atKeyword("catch_all") {
			catchTok := r.advance()
			inst := Instr{Op: catchTok.Op, Loc: catchTok.Location}
			if catchTok.Op.Opcode == wasm.OpCatch {
				idx, err := r.parseIndexOrID()
				if err != nil {
					return nil, err
				}
				inst.Index = idx
			}
			out = append(out, inst)
			clause, err := r.parseInstrSeqUntilTerminator()
			if err != nil {
				return nil, err
			}
			out = append(out, clause...)
		}
		if r.atKeyword("delegate") {
			delTok := r.advance()
			idx, err := r.parseIndexOrID()
			if err != nil {
				return nil, err
			}
			out = append(out, Instr{Op: delTok.Op, Loc: delTok.Location, Index: idx})
			return out, nil
		}
	}

	if !r.atKeyword("end") {
		return nil, r.fail(unexpectedToken(r.cur, "end"))
	}
	endTok := r.advance()
	endLabel := r.optionalIdent()
	if endLabel != "" && endLabel != label {
		return nil, r.fail(fmt.Errorf("expected label %s, got %s", label, endLabel))
	}
	out = append(out, Instr{Op: endTok.Op, Loc: endTok.Location})
	return out, nil
}

// parseFoldedInstr parses one `(opcode imm… expr*)` folded form,
// returning the flattened, reordered instruction list: operand
// sub-expressions first, then the opcode itself (spec.md §4.5 "Folded").
func (r *Reader) parseFoldedInstr() (Expr, error) {
	if err := r.expectLpar(); err != nil {
		return nil, err
	}
	if r.cur.Kind != KindInstr {
		return nil, r.fail(unexpectedToken(r.cur, "instruction"))
	}
	headerTok := r.advance()
	op := headerTok.Op

	if isBlockStarter(op.Opcode) {
		return r.parseFoldedBlock(headerTok)
	}

	inst, err := r.parseImm(headerTok, op)
	if err != nil {
		return nil, err
	}
	var operands Expr
	for r.cur.Kind == KindLpar {
		sub, err := r.parseFoldedInstr()
		if err != nil {
			return nil, err
		}
		operands = append(operands, sub...)
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return append(operands, inst), nil
}

func (r *Reader) parseFoldedBlock(headerTok Token) (Expr, error) {
	label := r.optionalIdent()
	use, err := r.parseTypeUse()
	if err != nil {
		return nil, err
	}
	header := Instr{Op: headerTok.Op, Loc: headerTok.Location, Block: BlockTypeUse{Label: label, Type: use}}
	out := Expr{header}

	if headerTok.Op.Opcode == wasm.OpIf {
		var conds Expr
		for r.cur.Kind == KindLpar && !r.peekIsParenKeywordHere("then") {
			sub, err := r.parseFoldedInstr()
			if err != nil {
				return nil, err
			}
			conds = append(conds, sub...)
		}
		out = append(out, conds...)
		if !r.peekIsParenKeywordHere("then") {
			return nil, r.fail(expectedField("then"))
		}
		r.advance()
		r.advance()
		thenBody, err := r.parseExprUntilRparLoose()
		if err != nil {
			return nil, err
		}
		out = append(out, thenBody...)
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
		if r.peekIsParenKeywordHere("else") {
			r.advance()
			r.advance()
			elseBody, err := r.parseExprUntilRparLoose()
			if err != nil {
				return nil, err
			}
			out = append(out, Instr{Op: elseOp})
			out = append(out, elseBody...)
			if err := r.expectRpar(); err != nil {
				return nil, err
			}
		}
		out = append(out, Instr{Op: endOp})
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
		return out, nil
	}

	if headerTok.Op.Opcode == wasm.OpTry {
		if !r.peekIsParenKeywordHere("do") {
			return nil, r.fail(expectedField("do"))
		}
		r.advance()
		r.advance()
		body, err := r.parseExprUntilRparLoose()
		if err != nil {
			return nil, err
		}
		out = append(out, body...)
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
		for r.peekIsParenKeywordHere("catch") || r.peekIsParenKeywordHere("catch_all") {
			r.advance()
			catchTok := r.advance()
			inst := Instr{Op: catchTok.Op, Loc: catchTok.Location}
			if catchTok.Op.Opcode == wasm.OpCatch {
				idx, err := r.parseIndexOrID()
				if err != nil {
					return nil, err
				}
				inst.Index = idx
			}
			out = append(out, inst)
			clause, err := r.parseExprUntilRparLoose()
			if err != nil {
				return nil, err
			}
			out = append(out, clause...)
			if err := r.expectRpar(); err != nil {
				return nil, err
			}
		}
		if r.peekIsParenKeywordHere("delegate") {
			r.advance()
			delTok := r.advance()
			idx, err := r.parseIndexOrID()
			if err != nil {
				return nil, err
			}
			out = append(out, Instr{Op: delTok.Op, Loc: delTok.Location, Index: idx})
			if err := r.expectRpar(); err != nil {
				return nil, err
			}
			if err := r.expectRpar(); err != nil {
				return nil, err
			}
			return out, nil
		}
		out = append(out, Instr{Op: endOp})
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
		return out, nil
	}

	body, err := r.parseExprUntilRparLoose()
	if err != nil {
		return nil, err
	}
	out = append(out, body...)
	out = append(out, Instr{Op: endOp})
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return out, nil
}

// peekIsParenKeywordHere is peekIsParenKeyword without requiring cur to
// still be unconsumed by the caller (identical today; kept as a distinct
// name at call sites inside folded-if parsing for readability).
func (r *Reader) peekIsParenKeywordHere(name string) bool { return r.peekIsParenKeyword(name) }

// parseImm consumes op's immediate tokens (the opcode token itself was
// already consumed into headerTok) and returns the populated Instr,
// mirroring binary.decodeInstructionImm's switch over ImmKind but reading
// text tokens instead of wire bytes (spec.md §4.6).
func (r *Reader) parseImm(headerTok Token, op wasm.OpcodeInfo) (Instr, error) {
	inst := Instr{Op: op, Loc: headerTok.Location}
	var err error
	switch op.Imm {
	case wasm.ImmNone:
	case wasm.ImmIndex:
		inst.Index, err = r.parseIndexOrID()
	case wasm.ImmS32:
		inst.S32, err = r.parseS32()
	case wasm.ImmS64:
		inst.S64, err = r.parseS64()
	case wasm.ImmF32:
		inst.F32, err = r.parseF32()
	case wasm.ImmF64:
		inst.F64, err = r.parseF64()
	case wasm.ImmV128:
		inst.V128, err = r.parseV128()
	case wasm.ImmMemArg:
		inst.MemAlign, inst.MemOffset, err = r.parseMemArg()
	case wasm.ImmBrTable:
		inst.BrTable, err = r.parseBrTable()
	case wasm.ImmCallIndirect:
		if r.cur.Kind == KindNat || r.cur.Kind == KindIdent {
			inst.Index, err = r.parseIndexOrID()
		}
		if err == nil {
			var use TypeUse
			use, err = r.parseTypeUse()
			inst.Block = BlockTypeUse{Type: use}
		}
	case wasm.ImmCopy, wasm.ImmInit:
		inst.Index, err = r.parseIndexOrIDOptional()
		if err == nil && (r.cur.Kind == KindNat || r.cur.Kind == KindIdent) {
			inst.Index2, err = r.parseIndexOrID()
		}
	case wasm.ImmHeapType:
		inst.Heap, err = r.parseHeapType()
	case wasm.ImmSelect:
		inst.Select, err = r.parseResults()
	case wasm.ImmShuffle:
		for i := 0; i < 16 && err == nil; i++ {
			var v uint64
			v, err = r.parseNatValue(8)
			inst.Shuffle[i] = byte(v)
		}
	case wasm.ImmSimdLane:
		var v uint64
		v, err = r.parseNatValue(8)
		inst.SimdLane = byte(v)
	case wasm.ImmBrOnExn:
		inst.Index, err = r.parseIndexOrID()
		if err == nil {
			inst.Index2, err = r.parseIndexOrID()
		}
	}
	if err != nil {
		return Instr{}, err
	}
	return inst, nil
}

func (r *Reader) parseIndexOrIDOptional() (IndexOrID, error) {
	if r.cur.Kind != KindNat && r.cur.Kind != KindIdent {
		return IndexOrID{}, nil
	}
	return r.parseIndexOrID()
}

func (r *Reader) parseNatValue(bits int) (uint64, error) {
	if r.cur.Kind != KindNat {
		return 0, r.fail(unexpectedToken(r.cur, "integer"))
	}
	tok := r.advance()
	v, err := DecodeUint(tok.Text, tok.Numeric, bits)
	if err != nil {
		return 0, r.fail(err)
	}
	return v, nil
}

func (r *Reader) parseS32() (int32, error) {
	tok, err := r.takeIntLiteral()
	if err != nil {
		return 0, err
	}
	v, err := DecodeInt(tok.Text, tok.Numeric, 32)
	if err != nil {
		return 0, r.fail(err)
	}
	return int32(v), nil
}

func (r *Reader) parseS64() (int64, error) {
	tok, err := r.takeIntLiteral()
	if err != nil {
		return 0, err
	}
	return DecodeInt(tok.Text, tok.Numeric, 64)
}

func (r *Reader) takeIntLiteral() (Token, error) {
	switch r.cur.Kind {
	case KindNat, KindInt:
		return r.advance(), nil
	default:
		return Token{}, r.fail(unexpectedToken(r.cur, "integer literal"))
	}
}

func (r *Reader) parseF32() (uint32, error) {
	tok, err := r.takeFloatLiteral()
	if err != nil {
		return 0, err
	}
	return DecodeFloat32(tok.Text, tok.Numeric, tok.Kind)
}

func (r *Reader) parseF64() (uint64, error) {
	tok, err := r.takeFloatLiteral()
	if err != nil {
		return 0, err
	}
	return DecodeFloat64(tok.Text, tok.Numeric, tok.Kind)
}

func (r *Reader) takeFloatLiteral() (Token, error) {
	switch r.cur.Kind {
	case KindNat, KindInt, KindFloat, KindNan, KindInf:
		return r.advance(), nil
	default:
		return Token{}, r.fail(unexpectedToken(r.cur, "float literal"))
	}
}

func (r *Reader) parseV128() (wasm.V128, error) {
	var v wasm.V128
	if r.cur.Kind != KindSimdShape {
		return v, r.fail(unexpectedToken(r.cur, "SIMD shape"))
	}
	shape := r.advance().Text
	lanes, lbits, float := simdShapeLanes(shape)
	for i := 0; i < lanes; i++ {
		if float {
			if lbits == 32 {
				bits, err := r.parseF32()
				if err != nil {
					return v, err
				}
				putLE(v[i*4:], uint64(bits), 4)
			} else {
				bits, err := r.parseF64()
				if err != nil {
					return v, err
				}
				putLE(v[i*8:], bits, 8)
			}
		} else {
			bits, err := r.parseS64()
			if err != nil {
				return v, err
			}
			putLE(v[i*(lbits/8):], uint64(bits), lbits/8)
		}
	}
	return v, nil
}

func putLE(dst []byte, v uint64, n int) {
	for i := 0; i < n; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func simdShapeLanes(shape string) (lanes, bits int, float bool) {
	switch shape {
	case "i8x16":
		return 16, 8, false
	case "i16x8":
		return 8, 16, false
	case "i32x4":
		return 4, 32, false
	case "i64x2":
		return 2, 64, false
	case "f32x4":
		return 4, 32, true
	case "f64x2":
		return 2, 64, true
	default:
		return 0, 0, false
	}
}

// parseMemArg reads optional `align=N` and `offset=N` sugar tokens, in
// either order, per spec.md §4.6 "Memarg".
func (r *Reader) parseMemArg() (*uint32, uint32, error) {
	var align *uint32
	var offset uint32
	for r.cur.Kind == KindKeyword {
		text := r.cur.Text
		switch {
		case len(text) > 6 && text[:6] == "align=":
			v, err := parseUintSuffix(text[6:])
			if err != nil {
				return nil, 0, r.fail(err)
			}
			if v == 0 || v&(v-1) != 0 {
				return nil, 0, r.fail(fmt.Errorf("alignment must be a power of two"))
			}
			log2 := uint32(0)
			for (uint32(1) << log2) < uint32(v) {
				log2++
			}
			align = &log2
			r.advance()
		case len(text) > 7 && text[:7] == "offset=":
			v, err := parseUintSuffix(text[7:])
			if err != nil {
				return nil, 0, r.fail(err)
			}
			offset = uint32(v)
			r.advance()
		default:
			return align, offset, nil
		}
	}
	return align, offset, nil
}

func parseUintSuffix(s string) (uint64, error) {
	return DecodeUint(s, NumericInfo{}, 64)
}

func (r *Reader) parseBrTable() (BrTableImmText, error) {
	var targets []IndexOrID
	for r.cur.Kind == KindNat || r.cur.Kind == KindIdent {
		idx, err := r.parseIndexOrID()
		if err != nil {
			return nil, err
		}
		targets = append(targets, idx)
	}
	if len(targets) == 0 {
		return nil, r.fail(expectedField("br_table targets"))
	}
	return targets, nil
}

// BrTableImmText is the text-level br_table immediate: a list of label
// references whose last element is the default target once converted.
type BrTableImmText = []IndexOrID

func (r *Reader) parseHeapType() (HeapRef, error) {
	switch r.cur.Text {
	case "func":
		r.advance()
		return HeapRef{Kind: wasm.HeapKindFunc}, nil
	case "extern":
		r.advance()
		return HeapRef{Kind: wasm.HeapKindExtern}, nil
	case "exn":
		r.advance()
		return HeapRef{Kind: wasm.HeapKindExn}, nil
	default:
		idx, err := r.parseIndexOrID()
		if err != nil {
			return HeapRef{}, err
		}
		return HeapRef{Kind: wasm.HeapKindIndex, Index: idx}, nil
	}
}
