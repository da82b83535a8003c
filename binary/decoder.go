package binary

import (
	"bytes"
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

func decodeHeader(r *reader) error {
	got, err := r.readBytes(4)
	if err != nil || !bytes.Equal(got, Magic) {
		return fmt.Errorf("invalid magic number")
	}
	got, err = r.readBytes(4)
	if err != nil || !bytes.Equal(got, version) {
		return fmt.Errorf("unsupported version")
	}
	return nil
}

// DecodeModule eagerly decodes a complete binary module, accumulating
// errors in errs and returning the first (possibly partial) Module built
// along with the combined error, per spec.md §4.9. It is built atop the
// same section framing LazyModule uses; callers that want to stop early
// or skip sections should use LazyModule directly.
func DecodeModule(data []byte, features wasm.Features) (*wasm.Module, error) {
	var errs wasm.Errors
	r := newReader(data)
	if err := decodeHeader(r); err != nil {
		errs.Report(wasm.Location{}, err)
		return nil, errs.Err()
	}
	m, err := decodeModule(r, features, &errs)
	return m, err
}

// LazySection is a single-pass pull iterator over one section's element
// vector (spec.md §4.2 "Lazy section"). Construction parses only the
// element count; each Next call decodes exactly one element. When Next
// reports no more elements, it checks the section payload was fully
// consumed and reports "section size mismatch" if not.
type LazySection[T any] struct {
	r       *reader
	count   uint32
	read    uint32
	errs    *wasm.Errors
	decode  func(*reader) (T, error)
	reached bool // true once Next has returned ok=false
}

func newLazySection[T any](payload []byte, errs *wasm.Errors, decode func(*reader) (T, error)) (*LazySection[T], error) {
	r := newReader(payload)
	n, err := r.readVectorLen()
	if err != nil {
		return nil, err
	}
	return &LazySection[T]{r: r, count: n, errs: errs, decode: decode}, nil
}

// Len reports the element count parsed at construction time.
func (l *LazySection[T]) Len() uint32 { return l.count }

// Next decodes one element. ok is false once every element has been
// produced (the caller should stop iterating); a non-nil error on a
// false ok means the trailing "section size mismatch" check failed.
// Per spec.md §4.9, a per-element decode failure is reported to errs and
// Next continues to the next element rather than aborting the iterator.
func (l *LazySection[T]) Next() (value T, ok bool, err error) {
	if l.read >= l.count {
		if !l.reached {
			l.reached = true
			if l.r.remaining() > 0 {
				err = fmt.Errorf("section size mismatch: %d bytes unread", l.r.remaining())
				if l.errs != nil {
					l.errs.Report(l.r.loc(), err)
				}
			}
		}
		return value, false, err
	}
	l.read++
	loc := l.r.loc()
	value, decErr := l.decode(l.r)
	if decErr != nil {
		if l.errs != nil {
			l.errs.Report(loc, decErr)
		}
		return value, true, decErr
	}
	return value, true, nil
}

// LazyModule exposes a binary module as a pull sequence of raw sections
// without eagerly decoding any of their contents (spec.md §4.2). Callers
// materialize a typed LazySection via the Type/Import/... helpers on the
// raw section they receive, or fall back to DecodeModule for the common
// eager case.
type LazyModule struct {
	r        *reader
	lastRank int
	Errors   wasm.Errors
}

// NewLazyModule validates the header and returns a LazyModule positioned
// at the first section.
func NewLazyModule(data []byte) (*LazyModule, error) {
	r := newReader(data)
	if err := decodeHeader(r); err != nil {
		return nil, err
	}
	return &LazyModule{r: r}, nil
}

// NextSection returns the next raw section, or ok=false at end of input.
// Section ordering is checked the same way decodeModule checks it.
func (lm *LazyModule) NextSection() (sec rawSection, ok bool, err error) {
	if lm.r.eof() {
		return rawSection{}, false, nil
	}
	loc := lm.r.loc()
	sec, err = readRawSection(lm.r)
	if err != nil {
		lm.Errors.Report(loc, err)
		return rawSection{}, false, err
	}
	if sec.id != wasm.SectionIDCustom {
		rank := sectionRank(sec.id)
		if rank == 0 {
			err = fmt.Errorf("unknown section id: %d", sec.id)
			lm.Errors.Report(loc, err)
			return sec, true, err
		}
		if rank <= lm.lastRank {
			err = fmt.Errorf("section order violation")
			lm.Errors.Report(loc, err)
			return sec, true, err
		}
		lm.lastRank = rank
	}
	return sec, true, nil
}

// ID reports the raw section's id.
func (s rawSection) ID() wasm.SectionID { return s.id }

// Name reports a custom section's name (meaningful only when ID() ==
// SectionIDCustom).
func (s rawSection) Name() string { return s.name }

// Payload exposes the section's raw, unframed byte span.
func (s rawSection) Payload() []byte { return s.payload }

// Types returns a lazy iterator over this section's function types.
// Valid to call on a SectionIDType section.
func (s rawSection) Types(errs *wasm.Errors) (*LazySection[*wasm.FunctionType], error) {
	return newLazySection(s.payload, errs, decodeFunctionType)
}

// Imports returns a lazy iterator over this section's imports. Valid to
// call on a SectionIDImport section.
func (s rawSection) Imports(errs *wasm.Errors) (*LazySection[*wasm.Import], error) {
	return newLazySection(s.payload, errs, decodeImport)
}

// Globals returns a lazy iterator over this section's globals. Valid to
// call on a SectionIDGlobal section.
func (s rawSection) Globals(errs *wasm.Errors, features wasm.Features) (*LazySection[*wasm.Global], error) {
	return newLazySection(s.payload, errs, func(r *reader) (*wasm.Global, error) {
		gt, err := decodeGlobalType(r)
		if err != nil {
			return nil, err
		}
		init, err := decodeConstExpr(r, features)
		if err != nil {
			return nil, err
		}
		return &wasm.Global{Type: gt, Init: init}, nil
	})
}

// Code returns a lazy iterator over this section's function bodies.
// Valid to call on a SectionIDCode section.
func (s rawSection) Code(errs *wasm.Errors, features wasm.Features) (*LazySection[*wasm.Code], error) {
	return newLazySection(s.payload, errs, func(r *reader) (*wasm.Code, error) {
		return decodeCode(r, features)
	})
}

// Data returns a lazy iterator over this section's data segments. Valid
// to call on a SectionIDData section.
func (s rawSection) Data(errs *wasm.Errors, features wasm.Features) (*LazySection[*wasm.DataSegment], error) {
	return newLazySection(s.payload, errs, func(r *reader) (*wasm.DataSegment, error) {
		return decodeDataSegment(r, features)
	})
}

// Elements returns a lazy iterator over this section's element segments.
// Valid to call on a SectionIDElement section.
func (s rawSection) Elements(errs *wasm.Errors, features wasm.Features) (*LazySection[*wasm.ElementSegment], error) {
	return newLazySection(s.payload, errs, func(r *reader) (*wasm.ElementSegment, error) {
		return decodeElementSegment(r, features)
	})
}
