package text

import "github.com/WebAssembly/wasp-sub001/wasm"

// ReadModule tokenizes, parses, and converts src's `(module ...)` form
// into the binary AST in one call, the text-format counterpart of
// binary.DecodeModule (spec.md §4.6). Errors accumulate in errs per
// spec.md §4.9's continue-past-failures policy rather than aborting on
// the first one; callers should check errs.Err() after the call even
// when a non-nil Module is returned.
func ReadModule(src string, features wasm.Features, errs *wasm.Errors) (*wasm.Module, error) {
	r := NewReader(src, errs)
	ast, err := ParseModule(r)
	if err != nil {
		return nil, err
	}
	m := Convert(ast, features, errs)
	return m, errs.Err()
}
