package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// answerModule builds a minimal module exporting a zero-arg function that
// returns the constant 42, used to exercise the full encode/decode round
// trip across every section the encoder emits unconditionally.
func answerModule() *wasm.Module {
	zero := wasm.Index(0)
	return &wasm.Module{
		TypeSection:     []*wasm.FunctionType{{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionSection: []wasm.Index{0},
		ExportSection: []*wasm.Export{
			{Name: "answer", Kind: wasm.ExportKindFunc, Index: 0},
		},
		CodeSection: []*wasm.Code{{
			Body: []wasm.Instruction{
				{Opcode: wasm.OpI32Const, S32: 42},
				{Opcode: wasm.OpEnd},
			},
		}},
		StartSection: &zero,
	}
}

func TestEncodeDecodeModuleRoundTrip(t *testing.T) {
	m := answerModule()
	// A start function must have an empty signature; reuse type 0 only
	// for the export/call shape under test, not validity.
	encoded := EncodeModule(m)

	require.Equal(t, Magic, encoded[:4])

	decoded, err := DecodeModule(encoded, wasm.Features(0))
	require.NoError(t, err)

	require.Len(t, decoded.TypeSection, 1)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, decoded.TypeSection[0].Results)
	require.Equal(t, []wasm.Index{0}, decoded.FunctionSection)
	require.Len(t, decoded.CodeSection, 1)
	require.Equal(t, wasm.OpI32Const, decoded.CodeSection[0].Body[0].Opcode)
	require.Equal(t, int32(42), decoded.CodeSection[0].Body[0].S32)
	require.Equal(t, wasm.OpEnd, decoded.CodeSection[0].Body[1].Opcode)

	require.Len(t, decoded.ExportSection, 1)
	export := decoded.ExportSection[0]
	require.Equal(t, "answer", export.Name)
	require.Equal(t, wasm.ExportKindFunc, export.Kind)
	require.Equal(t, wasm.Index(0), export.Index)
}

func TestEncodeModuleDeterministic(t *testing.T) {
	m := answerModule()
	require.Equal(t, EncodeModule(m), EncodeModule(m))
}

func TestDecodeModuleRejectsBadMagic(t *testing.T) {
	_, err := DecodeModule([]byte{0, 0, 0, 0}, wasm.Features(0))
	require.Error(t, err)
}

func TestDecodeModuleRejectsTruncated(t *testing.T) {
	m := answerModule()
	encoded := EncodeModule(m)
	_, err := DecodeModule(encoded[:len(encoded)-1], wasm.Features(0))
	require.Error(t, err)
}
