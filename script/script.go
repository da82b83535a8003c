// Package script implements the `.wast` script command layer that sits
// atop the text module reader (spec.md §2 "Script layer"): assertion,
// action, and register commands used by the WebAssembly test suite.
// Linking, execution, and trap delivery are out of scope (spec.md §1
// "Out of scope... Execution, linking"); this package only parses a
// script into its command AST for an external test harness to drive.
package script

import (
	"github.com/WebAssembly/wasp-sub001/text"
	"github.com/WebAssembly/wasp-sub001/wasm"
)

// Command is implemented by every top-level script directive.
type Command interface{ commandKind() string }

// ModuleCommand embeds a module definition, optionally bound to a
// script-level name ($M) for later `register`/action lookups.
type ModuleCommand struct {
	Name   Ident
	Source *ModuleSource
}

func (*ModuleCommand) commandKind() string { return "module" }

// ModuleKind discriminates how a module command's payload was spelled.
type ModuleKind byte

const (
	// ModuleText is a directly-embedded `(module field*)` form, already
	// parsed to a text AST.
	ModuleText ModuleKind = iota
	// ModuleBinary is `(module binary "...")`: one or more string
	// literals concatenated into a raw encoded module.
	ModuleBinary
	// ModuleQuote is `(module quote "...")`: concatenated source text,
	// meant to be reparsed as a second text module rather than decoded
	// as bytes (it may deliberately be malformed source).
	ModuleQuote
)

// ModuleSource carries a module command's payload in whichever form it
// was spelled, deferring the actual binary decode or validation to the
// harness invoking this library (spec.md §1 "Out of scope... full
// validator").
type ModuleSource struct {
	Kind   ModuleKind
	AST    *text.Module // ModuleText
	Binary []byte       // ModuleBinary: concatenated string-literal bytes
	Quote  string       // ModuleQuote: concatenated string-literal source
}

// RegisterCommand names a previously-defined module for resolution as an
// import source in subsequently-read modules.
type RegisterCommand struct {
	As     string
	Module Ident // "" means the most recently defined module
}

func (*RegisterCommand) commandKind() string { return "register" }

// Ident is a script-level `$name`, resolved against the sequence of
// preceding module commands rather than a module's own identifier space.
type Ident = string

// Action is implemented by invoke/get, the two things an assertion can
// evaluate against a registered module instance.
type Action interface{ actionKind() string }

// InvokeAction calls an exported function by name with literal arguments.
type InvokeAction struct {
	Module Ident
	Field  string
	Args   []Const
}

func (*InvokeAction) actionKind() string { return "invoke" }

// GetAction reads an exported global by name.
type GetAction struct {
	Module Ident
	Field  string
}

func (*GetAction) actionKind() string { return "get" }

// ConstKind discriminates which NaN/value-match mode a Const expects,
// beyond its plain wasm.ValueType (spec.md §8 "NaN payload" needs
// canonical/arithmetic NaN matching distinct from an exact bit pattern).
type ConstKind byte

const (
	ConstExact ConstKind = iota
	ConstNanCanonical
	ConstNanArithmetic
)

// Const is one literal operand or expected-result value in a script
// action, spanning every value type a const expression can produce
// (spec.md §3 "const values").
type Const struct {
	Type  wasm.ValueType
	Kind  ConstKind
	I32   uint32
	I64   uint64
	F32   uint32
	F64   uint64
	V128  wasm.V128
	IsRef bool
	// RefIsNull/RefHost discriminate ref.null/ref.extern/ref.func const
	// results; RefIndex holds the ref.extern host value or ref.func index.
	RefIsNull bool
	RefHost   bool
	RefIndex  wasm.Index
}

// AssertReturnCommand expects Action to succeed and produce Results.
type AssertReturnCommand struct {
	Action  Action
	Results []Const
}

func (*AssertReturnCommand) commandKind() string { return "assert_return" }

// AssertTrapCommand expects Action to trap with a message matching
// Message (a substring match is the harness's prerogative, not this
// package's: we only carry the expected text).
type AssertTrapCommand struct {
	Action  Action
	Message string
}

func (*AssertTrapCommand) commandKind() string { return "assert_trap" }

// AssertExhaustionCommand expects Action to trap via resource exhaustion
// (e.g. call-stack overflow).
type AssertExhaustionCommand struct {
	Action  Action
	Message string
}

func (*AssertExhaustionCommand) commandKind() string { return "assert_exhaustion" }

// AssertMalformedCommand expects Source to fail decoding (binary) or
// parsing (text/quote) with Message.
type AssertMalformedCommand struct {
	Source  *ModuleSource
	Message string
}

func (*AssertMalformedCommand) commandKind() string { return "assert_malformed" }

// AssertInvalidCommand expects Source to decode/parse but fail the
// (externally-supplied) validator with Message.
type AssertInvalidCommand struct {
	Source  *ModuleSource
	Message string
}

func (*AssertInvalidCommand) commandKind() string { return "assert_invalid" }

// AssertUnlinkableCommand expects Source to fail an external linker's
// import resolution with Message.
type AssertUnlinkableCommand struct {
	Source  *ModuleSource
	Message string
}

func (*AssertUnlinkableCommand) commandKind() string { return "assert_unlinkable" }

// Script is a fully parsed `.wast` file: declarations and assertions in
// source order, plus the minimum spec version recorded by a leading `;;
// version: x.y.z` comment, if any (SPEC_FULL.md "go-version ... wired
// into the script layer").
type Script struct {
	MinVersion string // "" if no version comment was present
	Commands   []Command
}
