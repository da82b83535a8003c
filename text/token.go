// Package text implements the tokenizer, recursive-descent reader, and
// text-to-binary converter for the WebAssembly text format (spec.md
// §4.4-§4.6).
package text

import "github.com/WebAssembly/wasp-sub001/wasm"

// Kind discriminates a Token's lexical category (spec.md §4.4).
type Kind byte

const (
	KindEOF Kind = iota
	KindLpar
	KindRpar
	KindKeyword // reserved word: module, func, param, result, local, ...
	KindInstr   // an opcode keyword, e.g. "i32.add"
	KindIdent   // $name
	KindString  // "..."
	KindNat     // unsigned integer literal
	KindInt     // signed integer literal
	KindFloat   // float literal
	KindNan     // nan or nan:0xNN
	KindInf     // inf
	KindSimdShape
	KindReserved // any other reserved token shape (e.g. bare identifiers used as keywords)
	KindError
)

// NumericSign is the explicit sign, if any, on a numeric literal.
type NumericSign byte

const (
	SignNone NumericSign = iota
	SignPlus
	SignMinus
)

// NumericInfo records the lexer-level metadata spec.md §4.4/§4.8 needs to
// interpret a numeric literal without re-scanning its text.
type NumericInfo struct {
	Sign          NumericSign
	Hex           bool
	Underscores   bool
	NanPayloadHex string // non-empty only for KindNan with an explicit payload
}

// Token is one lexical unit plus its source span and, for keyword/instr
// tokens, the catalog row backing it.
type Token struct {
	Kind     Kind
	Text     string // the raw lexeme (decoded for KindString)
	Location wasm.Location
	Numeric  NumericInfo
	Op       wasm.OpcodeInfo // meaningful when Kind == KindInstr
	Err      string          // populated when Kind == KindError
}
