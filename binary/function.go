package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

const functionTypeTag = 0x60

// decodeTypeSection decodes the vector of function types (section id 1).
func decodeTypeSection(r *reader) ([]*wasm.FunctionType, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.FunctionType, n)
	for i := range out {
		ft, err := decodeFunctionType(r)
		if err != nil {
			return nil, fmt.Errorf("type[%d]: %w", i, err)
		}
		out[i] = ft
	}
	return out, nil
}

func decodeFunctionType(r *reader) (*wasm.FunctionType, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != functionTypeTag {
		return nil, fmt.Errorf("invalid function type tag: 0x%x", tag)
	}
	params, err := decodeValueTypeVector(r)
	if err != nil {
		return nil, err
	}
	results, err := decodeValueTypeVector(r)
	if err != nil {
		return nil, err
	}
	return &wasm.FunctionType{Params: params, Results: results}, nil
}

func decodeValueTypeVector(r *reader) ([]wasm.ValueType, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]wasm.ValueType, n)
	for i := range out {
		out[i], err = decodeValueType(r)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeTypeSection(types []*wasm.FunctionType) []byte {
	elems := make([][]byte, len(types))
	for i, t := range types {
		elems[i] = encodeFunctionType(t)
	}
	return encodeVector(elems)
}

func encodeFunctionType(t *wasm.FunctionType) []byte {
	out := []byte{functionTypeTag}
	out = append(out, encodeValueTypeVector(t.Params)...)
	out = append(out, encodeValueTypeVector(t.Results)...)
	return out
}

func encodeValueTypeVector(vs []wasm.ValueType) []byte {
	elems := make([][]byte, len(vs))
	for i, v := range vs {
		elems[i] = encodeValueType(v)
	}
	return encodeVector(elems)
}

// decodeFunctionSection decodes the vector of type indices (section id 3).
func decodeFunctionSection(r *reader) ([]wasm.Index, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]wasm.Index, n)
	for i := range out {
		out[i], err = r.readU32LEB()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeFunctionSection(indexes []wasm.Index) []byte {
	out := uleb32(uint32(len(indexes)))
	for _, idx := range indexes {
		out = append(out, uleb32(idx)...)
	}
	return out
}
