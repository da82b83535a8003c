package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// decodeCodeSection decodes the code section (one entry per defined
// function, matched positionally with FunctionSection). Each entry is a
// u32 LEB128 byte size (spec.md §4.3 "fixed-width size prefix" discussion)
// followed by the locals vector and instruction stream.
func decodeCodeSection(r *reader, features wasm.Features) ([]*wasm.Code, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.Code, n)
	for i := range out {
		code, err := decodeCode(r, features)
		if err != nil {
			return nil, fmt.Errorf("code[%d]: %w", i, err)
		}
		out[i] = code
	}
	return out, nil
}

func decodeCode(r *reader, features wasm.Features) (*wasm.Code, error) {
	size, err := r.readU32LEB()
	if err != nil {
		return nil, err
	}
	if int(size) > r.remaining() {
		return nil, fmt.Errorf("length out of bounds")
	}
	bodyStart := r.pos
	locals, err := decodeLocalEntries(r)
	if err != nil {
		return nil, err
	}
	body, err := decodeInstructions(r, features)
	if err != nil {
		return nil, err
	}
	body = append(body, wasm.Instruction{Opcode: wasm.OpEnd})
	if r.pos != bodyStart+int(size) {
		return nil, fmt.Errorf("function body size mismatch")
	}
	return &wasm.Code{
		LocalTypes: locals,
		Body:       body,
		BodyOffset: uint32(bodyStart),
		BodySize:   size,
	}, nil
}

func decodeLocalEntries(r *reader) ([]wasm.LocalEntry, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]wasm.LocalEntry, n)
	var total uint64
	for i := range out {
		count, err := r.readU32LEB()
		if err != nil {
			return nil, err
		}
		vt, err := decodeValueType(r)
		if err != nil {
			return nil, err
		}
		out[i] = wasm.LocalEntry{Count: count, Type: vt}
		total += uint64(count)
		if total > 0xffffffff {
			return nil, fmt.Errorf("too many locals")
		}
	}
	return out, nil
}

func encodeCodeSection(codes []*wasm.Code) []byte {
	elems := make([][]byte, len(codes))
	for i, c := range codes {
		elems[i] = encodeCode(c)
	}
	return encodeVector(elems)
}

func encodeCode(c *wasm.Code) []byte {
	var body []byte
	for _, l := range c.LocalTypes {
		body = append(body, uleb32(l.Count)...)
		body = append(body, encodeValueType(l.Type)...)
	}
	body = append(uleb32(uint32(len(c.LocalTypes))), body...)
	body = append(body, encodeInstructions(c.Body)...)
	return encodeByteVector(body)
}
