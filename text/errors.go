package text

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

func unexpectedToken(tok Token, want string) error {
	if tok.Kind == KindEOF {
		return fmt.Errorf("unexpected end of input, wanted %s", want)
	}
	return fmt.Errorf("unexpected token %q, wanted %s", tok.Text, want)
}

func unexpectedFieldName(tok Token) error {
	return fmt.Errorf("unexpected field name: %s", tok.Text)
}

func expectedField(name string) error {
	return fmt.Errorf("expected field: %s", name)
}

func unhandledSection(name string) error {
	return fmt.Errorf("unhandled section: %s", name)
}

// FormatError renders err against loc the way CodecError does, for
// callers that build plain errors in the reader/converter and only want
// the location prefix at the boundary (spec.md §6 "Error format").
func FormatError(loc wasm.Location, err error) error {
	return &wasm.CodecError{Location: loc, Message: err.Error()}
}
