// Package binary implements the streaming binary decoder and the dual
// binary encoder for the WebAssembly wire format (spec.md §4.2, §4.3).
package binary

// Magic is the 4-byte WebAssembly binary magic number.
var Magic = []byte{0x00, 0x61, 0x73, 0x6d}

// version is the only version this decoder accepts: version 1.
var version = []byte{0x01, 0x00, 0x00, 0x00}
