package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

func decodeGlobalSection(r *reader, features wasm.Features) ([]*wasm.Global, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.Global, n)
	for i := range out {
		gt, err := decodeGlobalType(r)
		if err != nil {
			return nil, fmt.Errorf("global[%d]: %w", i, err)
		}
		init, err := decodeConstExpr(r, features)
		if err != nil {
			return nil, fmt.Errorf("global[%d] init: %w", i, err)
		}
		out[i] = &wasm.Global{Type: gt, Init: init}
	}
	return out, nil
}

func encodeGlobalSection(globals []*wasm.Global) []byte {
	elems := make([][]byte, len(globals))
	for i, g := range globals {
		out := encodeGlobalType(g.Type)
		out = append(out, encodeConstExpr(g.Init)...)
		elems[i] = out
	}
	return encodeVector(elems)
}
