// Package wasp is the root facade over this module's codec packages: the
// binary decoder/encoder (package binary), the text tokenizer/reader and
// text-to-binary converter (package text), the shared module/instruction
// model (package wasm), and the `.wast` script command layer (package
// script). It re-exports the handful of entry points most callers need so
// a simple decode/encode/convert only touches one import, mirroring how
// wazero's root package re-exports runtime construction over its
// internal/wasm machinery.
package wasp

import (
	"github.com/WebAssembly/wasp-sub001/binary"
	"github.com/WebAssembly/wasp-sub001/script"
	"github.com/WebAssembly/wasp-sub001/text"
	"github.com/WebAssembly/wasp-sub001/wasm"
)

// Features re-exports wasm.Features so callers need not import the wasm
// package just to gate a codec call.
type Features = wasm.Features

// DecodeBinary decodes a complete binary module (spec.md §4.2), the
// eager counterpart to binary.NewLazyModule for callers that want the
// whole wasm.Module at once.
func DecodeBinary(data []byte, features Features) (*wasm.Module, error) {
	return binary.DecodeModule(data, features)
}

// EncodeBinary serializes m to the binary wire format (spec.md §4.3).
func EncodeBinary(m *wasm.Module) []byte {
	return binary.EncodeModule(m)
}

// ReadText parses and converts a `(module ...)` text-format source into
// the same wasm.Module the binary decoder produces (spec.md §4.5-§4.6).
// Errors accumulate in errs per the continue-past-failures policy
// (spec.md §4.9); check errs.Err() even when a non-nil Module is
// returned.
func ReadText(src string, features Features, errs *wasm.Errors) (*wasm.Module, error) {
	return text.ReadModule(src, features, errs)
}

// ReadScript parses a `.wast` script into its command sequence (spec.md
// §2 "Script layer"). Execution and linking are out of scope; the
// returned *script.Script only carries the parsed command AST for an
// external test harness to drive.
func ReadScript(src string, features Features, errs *wasm.Errors) *script.Script {
	return script.ParseScript(src, features, errs)
}
