package text

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub001/binary"
	"github.com/WebAssembly/wasp-sub001/wasm"
)

func TestReadModuleSimpleFunction(t *testing.T) {
	var errs wasm.Errors
	m, err := ReadModule(`(module
		(func $answer (result i32)
			i32.const 42)
		(export "answer" (func $answer)))`, wasm.Features(0), &errs)
	require.NoError(t, err)
	require.NoError(t, errs.Err())

	require.Len(t, m.TypeSection, 1)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, m.TypeSection[0].Results)
	require.Len(t, m.CodeSection, 1)

	body := m.CodeSection[0].Body
	require.Equal(t, wasm.OpI32Const, body[0].Opcode)
	require.Equal(t, int32(42), body[0].S32)
	require.Equal(t, wasm.OpEnd, body[len(body)-1].Opcode)

	require.Len(t, m.ExportSection, 1)
	export := m.ExportSection[0]
	require.Equal(t, "answer", export.Name)
	require.Equal(t, wasm.ExportKindFunc, export.Kind)
	require.Equal(t, wasm.Index(0), export.Index)
}

func TestReadModuleFoldedAndPlainEquivalent(t *testing.T) {
	var foldedErrs, plainErrs wasm.Errors
	folded, err := ReadModule(`(module (func $f (result i32) (i32.add (i32.const 1) (i32.const 2))))`,
		wasm.Features(0), &foldedErrs)
	require.NoError(t, err)
	require.NoError(t, foldedErrs.Err())

	plain, err := ReadModule(`(module (func $f (result i32) i32.const 1 i32.const 2 i32.add))`,
		wasm.Features(0), &plainErrs)
	require.NoError(t, err)
	require.NoError(t, plainErrs.Err())

	require.Equal(t, len(plain.CodeSection[0].Body), len(folded.CodeSection[0].Body))
	for i, in := range plain.CodeSection[0].Body {
		require.Equal(t, in.Opcode, folded.CodeSection[0].Body[i].Opcode)
	}
}

func TestReadModuleForwardReference(t *testing.T) {
	// $callee is defined after $caller references it, exercising the
	// converter's two-pass forward-reference binding.
	var errs wasm.Errors
	m, err := ReadModule(`(module
		(func $caller (result i32) (call $callee))
		(func $callee (result i32) (i32.const 9)))`, wasm.Features(0), &errs)
	require.NoError(t, err)
	require.NoError(t, errs.Err())

	callInstr := m.CodeSection[0].Body[0]
	require.Equal(t, wasm.OpCall, callInstr.Opcode)
	require.Equal(t, wasm.Index(1), callInstr.Index)
}

func TestReadModuleGlobalConstExpr(t *testing.T) {
	var errs wasm.Errors
	m, err := ReadModule(`(module (global $g i32 (i32.const 7)))`, wasm.Features(0), &errs)
	require.NoError(t, err)
	require.NoError(t, errs.Err())

	require.Len(t, m.GlobalSection, 1)
	require.Equal(t, wasm.OpI32Const, m.GlobalSection[0].Init.Opcode)
}

func TestReadModuleTextToBinaryRoundTrip(t *testing.T) {
	var errs wasm.Errors
	m, err := ReadModule(`(module
		(func $answer (result i32) i32.const 42)
		(export "answer" (func $answer)))`, wasm.Features(0), &errs)
	require.NoError(t, err)
	require.NoError(t, errs.Err())

	encoded := binary.EncodeModule(m)
	decoded, err := binary.DecodeModule(encoded, wasm.Features(0))
	require.NoError(t, err)
	require.Equal(t, m.CodeSection[0].Body[0].S32, decoded.CodeSection[0].Body[0].S32)
}

func TestReadModuleLegacyOpcodeSpelling(t *testing.T) {
	var errs wasm.Errors
	m, err := ReadModule(`(module (func $f (param i32) (result i32) get_local 0))`,
		wasm.Features(0), &errs)
	require.NoError(t, err)
	require.NoError(t, errs.Err())
	require.Equal(t, wasm.OpLocalGet, m.CodeSection[0].Body[0].Opcode)
}

func TestReadModuleBlockEndMarkers(t *testing.T) {
	var errs wasm.Errors
	m, err := ReadModule(`(module (func $f
		block
			i32.const 1
			drop
		end))`, wasm.Features(0), &errs)
	require.NoError(t, err)
	require.NoError(t, errs.Err())

	body := m.CodeSection[0].Body
	require.Equal(t, wasm.OpBlock, body[0].Opcode)
	require.Equal(t, wasm.OpEnd, body[len(body)-1].Opcode)
}

func TestReadModuleSyntaxErrorReported(t *testing.T) {
	var errs wasm.Errors
	_, err := ReadModule(`(module (func $f (result i32) i32.const)))`, wasm.Features(0), &errs)
	require.Error(t, err)
}
