package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupOpcodeKnown(t *testing.T) {
	info, ok := LookupOpcode(OpI32Add)
	require.True(t, ok)
	require.Equal(t, "i32.add", info.Name)
}

func TestLookupOpcodeUnknown(t *testing.T) {
	_, ok := LookupOpcode(Opcode(0xff))
	require.False(t, ok)
}

func TestLookupKeywordCanonicalAndLegacy(t *testing.T) {
	canonical, ok := LookupKeyword("local.get")
	require.True(t, ok)
	require.Equal(t, OpLocalGet, canonical.Opcode)

	legacy, ok := LookupKeyword("get_local")
	require.True(t, ok)
	require.Equal(t, canonical.Opcode, legacy.Opcode)
}

func TestLookupKeywordUnknown(t *testing.T) {
	_, ok := LookupKeyword("not.a.real.opcode")
	require.False(t, ok)
}

func TestNaturalAlignLog2(t *testing.T) {
	for _, c := range []struct {
		op   Opcode
		want uint32
	}{
		{OpI32Load8S, 0},
		{OpI32Load16U, 1},
		{OpI32Load, 2},
		{OpI64Load, 3},
		{OpV128Load, 4},
	} {
		require.Equal(t, c.want, NaturalAlignLog2(c.op))
	}
}
