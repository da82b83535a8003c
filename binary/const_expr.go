package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// decodeConstExpr decodes a constant expression: exactly one constant
// instruction (i32.const, i64.const, f32.const, f64.const, global.get,
// or, under reference-types, ref.null/ref.func) followed by end, per
// spec.md §3 "global initializers and segment offsets".
func decodeConstExpr(r *reader, features wasm.Features) (wasm.ConstantExpression, error) {
	op, err := decodeOpcode(r)
	if err != nil {
		return wasm.ConstantExpression{}, err
	}
	if !isConstOpcode(op) {
		return wasm.ConstantExpression{}, fmt.Errorf("invalid constant expression opcode")
	}
	info, ok := wasm.LookupOpcode(op)
	if !ok {
		return wasm.ConstantExpression{}, fmt.Errorf("unknown opcode")
	}
	if info.Feature != 0 && !features.IsEnabled(info.Feature) {
		return wasm.ConstantExpression{}, fmt.Errorf("instruction %s requires feature %s", info.Name, info.Feature)
	}
	inst, err := decodeInstructionImm(r, op, info)
	if err != nil {
		return wasm.ConstantExpression{}, err
	}
	end, err := decodeOpcode(r)
	if err != nil {
		return wasm.ConstantExpression{}, err
	}
	if end != wasm.OpEnd {
		return wasm.ConstantExpression{}, fmt.Errorf("unexpected opcode in constant expression, wanted end")
	}
	return wasm.ConstantExpression{Opcode: op, Data: encodeInstruction(inst)[len(encodeOpcode(op)):]}, nil
}

func isConstOpcode(op wasm.Opcode) bool {
	switch op {
	case wasm.OpI32Const, wasm.OpI64Const, wasm.OpF32Const, wasm.OpF64Const,
		wasm.OpGlobalGet, wasm.OpRefNull, wasm.OpRefFunc:
		return true
	default:
		return false
	}
}

func encodeConstExpr(c wasm.ConstantExpression) []byte {
	out := encodeOpcode(c.Opcode)
	out = append(out, c.Data...)
	out = append(out, byte(wasm.OpEnd))
	return out
}

// EncodeConstExpr packages a single already-resolved instruction as a
// ConstantExpression, exported so the text-format converter can build
// global initializers and segment offsets with the same opcode/immediate
// encoder the binary decoder/encoder uses (spec.md §3).
func EncodeConstExpr(inst wasm.Instruction) wasm.ConstantExpression {
	full := encodeInstruction(inst)
	return wasm.ConstantExpression{Opcode: inst.Opcode, Data: full[len(encodeOpcode(inst.Opcode)):]}
}
