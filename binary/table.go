package binary

import "github.com/WebAssembly/wasp-sub001/wasm"

func decodeTableSection(r *reader) ([]*wasm.TableType, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.TableType, n)
	for i := range out {
		tt, err := decodeTableType(r)
		if err != nil {
			return nil, err
		}
		out[i] = &tt
	}
	return out, nil
}

func encodeTableSection(tables []*wasm.TableType) []byte {
	elems := make([][]byte, len(tables))
	for i, t := range tables {
		elems[i] = encodeTableType(*t)
	}
	return encodeVector(elems)
}

func decodeMemorySection(r *reader) ([]*wasm.MemoryType, error) {
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	out := make([]*wasm.MemoryType, n)
	for i := range out {
		mt, err := decodeMemoryType(r)
		if err != nil {
			return nil, err
		}
		out[i] = &mt
	}
	return out, nil
}

func encodeMemorySection(mems []*wasm.MemoryType) []byte {
	elems := make([][]byte, len(mems))
	for i, m := range mems {
		elems[i] = encodeMemoryType(*m)
	}
	return encodeVector(elems)
}
