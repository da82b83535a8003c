package script

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

func TestParseScriptModuleAndAssertReturn(t *testing.T) {
	var errs wasm.Errors
	src := `(module
		(func $add (export "add") (param i32 i32) (result i32)
			local.get 0
			local.get 1
			i32.add))
	(assert_return (invoke "add" (i32.const 1) (i32.const 2)) (i32.const 3))`

	s := ParseScript(src, wasm.Features(0), &errs)
	require.NoError(t, errs.Err())
	require.Len(t, s.Commands, 2)

	modCmd, ok := s.Commands[0].(*ModuleCommand)
	require.True(t, ok)
	require.Equal(t, ModuleText, modCmd.Source.Kind)
	require.NotNil(t, modCmd.Source.AST)

	assertCmd, ok := s.Commands[1].(*AssertReturnCommand)
	require.True(t, ok)
	invoke, ok := assertCmd.Action.(*InvokeAction)
	require.True(t, ok)
	require.Equal(t, "add", invoke.Field)
	require.Len(t, invoke.Args, 2)
	require.Equal(t, uint32(1), invoke.Args[0].I32)
	require.Equal(t, uint32(2), invoke.Args[1].I32)
	require.Len(t, assertCmd.Results, 1)
	require.Equal(t, uint32(3), assertCmd.Results[0].I32)
}

func TestParseScriptRegisterAndGet(t *testing.T) {
	var errs wasm.Errors
	src := `(module $m (global (export "g") i32 (i32.const 5)))
	(register "other" $m)
	(assert_return (get $m "g") (i32.const 5))`

	s := ParseScript(src, wasm.Features(0), &errs)
	require.NoError(t, errs.Err())
	require.Len(t, s.Commands, 3)

	reg, ok := s.Commands[1].(*RegisterCommand)
	require.True(t, ok)
	require.Equal(t, "other", reg.As)
	require.Equal(t, "$m", reg.Module)

	assertCmd := s.Commands[2].(*AssertReturnCommand)
	get, ok := assertCmd.Action.(*GetAction)
	require.True(t, ok)
	require.Equal(t, "g", get.Field)
}

func TestParseScriptAssertTrap(t *testing.T) {
	var errs wasm.Errors
	src := `(module (func $f unreachable))
	(assert_trap (invoke "f") "unreachable")`

	s := ParseScript(src, wasm.Features(0), &errs)
	require.NoError(t, errs.Err())

	trap, ok := s.Commands[1].(*AssertTrapCommand)
	require.True(t, ok)
	require.Equal(t, "unreachable", trap.Message)
}

func TestParseScriptAssertMalformed(t *testing.T) {
	var errs wasm.Errors
	src := `(assert_malformed (module quote "(module") "unexpected end")`

	s := ParseScript(src, wasm.Features(0), &errs)
	require.Len(t, s.Commands, 1)

	malformed, ok := s.Commands[0].(*AssertMalformedCommand)
	require.True(t, ok)
	require.Equal(t, ModuleQuote, malformed.Source.Kind)
	require.Equal(t, "unexpected end", malformed.Message)
}

func TestParseScriptNaNResultMatch(t *testing.T) {
	var errs wasm.Errors
	src := `(assert_return (invoke "nanop") (f32.const nan:canonical))`

	s := ParseScript(src, wasm.Features(0), &errs)
	require.NoError(t, errs.Err())

	assertCmd := s.Commands[0].(*AssertReturnCommand)
	require.Equal(t, ConstNanCanonical, assertCmd.Results[0].Kind)
}

func TestParseScriptVersionComment(t *testing.T) {
	var errs wasm.Errors
	src := ";; version: 1.2.3\n(module)"

	s := ParseScript(src, wasm.Features(0), &errs)
	require.Equal(t, "1.2.3", s.MinVersion)
}

func TestParseScriptNoVersionComment(t *testing.T) {
	var errs wasm.Errors
	s := ParseScript("(module)", wasm.Features(0), &errs)
	require.Equal(t, "", s.MinVersion)
}
