package wasm

import (
	"fmt"
	"strings"
)

// CodecError is the error format spec.md §6 prescribes: a byte range, the
// LIFO context-stack of (location, description) frames active when the
// error was reported, and a message.
type CodecError struct {
	Location Location
	Context  []string
	Message  string
	cause    error
}

func (e *CodecError) Error() string {
	var b strings.Builder
	if e.Location.Line != 0 || e.Location.Col != 0 {
		fmt.Fprintf(&b, "%s: ", e.Location)
	}
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(e.Context, " > "))
	}
	return b.String()
}

func (e *CodecError) Unwrap() error { return e.cause }

// Errors is the accumulating error sink spec.md §4.9 describes: readers
// push a context frame before recursing into a production, report errors
// against the current byte span, then pop the frame. Unlike a plain
// `error` return, a full compilation unit's worth of errors accumulates
// here so that lazy section iterators can continue past a failed element
// and surface as many errors as possible (spec.md §7 "Policy").
type Errors struct {
	frames []string
	errs   []*CodecError
}

// Push records a context description, e.g. the function index being
// decoded or "section function".
func (e *Errors) Push(description string) {
	e.frames = append(e.frames, description)
}

// Pop removes the most recently pushed context description.
func (e *Errors) Pop() {
	if len(e.frames) > 0 {
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// Report appends a CodecError at loc with the current context stack, and
// returns it so callers can also use it as a single `error` value.
func (e *Errors) Report(loc Location, cause error) *CodecError {
	ctx := make([]string, len(e.frames))
	copy(ctx, e.frames)
	ce := &CodecError{Location: loc, Context: ctx, Message: cause.Error(), cause: cause}
	e.errs = append(e.errs, ce)
	return ce
}

// Reportf is a convenience wrapping fmt.Errorf.
func (e *Errors) Reportf(loc Location, format string, args ...any) *CodecError {
	return e.Report(loc, fmt.Errorf(format, args...))
}

// Len reports how many errors have been accumulated.
func (e *Errors) Len() int { return len(e.errs) }

// All returns every accumulated error, in report order.
func (e *Errors) All() []*CodecError { return e.errs }

// Err returns nil if no errors were reported, the sole error if exactly
// one was, or a combined multi-error otherwise.
func (e *Errors) Err() error {
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		msgs := make([]string, len(e.errs))
		for i, er := range e.errs {
			msgs[i] = er.Error()
		}
		return fmt.Errorf("%d errors:\n%s", len(e.errs), strings.Join(msgs, "\n"))
	}
}
