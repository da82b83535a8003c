package text

// The script package (a distinct dialect layered on the same tokenizer)
// needs raw access to the reader's lookahead and low-level expect/peek
// helpers to parse its own top-level forms (register, invoke, get,
// assert_*) alongside embedded `(module ...)` forms; these thin exported
// wrappers avoid duplicating the tokenizer and reader in a second
// package, per spec.md §2 "Script layer ... layered atop the module
// reader."

// Cur returns the current lookahead token.
func (r *Reader) Cur() Token { return r.cur }

// Peek returns the second lookahead token.
func (r *Reader) Peek() Token { return r.peek }

// Advance consumes and returns the current token.
func (r *Reader) Advance() Token { return r.advance() }

// ExpectLpar consumes a `(`, failing otherwise.
func (r *Reader) ExpectLpar() error { return r.expectLpar() }

// ExpectRpar consumes a `)`, failing otherwise.
func (r *Reader) ExpectRpar() error { return r.expectRpar() }

// AtKeyword reports whether the current token spells name.
func (r *Reader) AtKeyword(name string) bool { return r.atKeyword(name) }

// PeekParenKeyword reports whether the upcoming tokens are `( name`.
func (r *Reader) PeekParenKeyword(name string) bool { return r.peekIsParenKeyword(name) }

// OptionalIdent consumes and returns a leading `$name`, or "" if absent.
func (r *Reader) OptionalIdent() Ident { return r.optionalIdent() }

// Fail records err at the current location against the reader's error
// sink and returns it, mirroring the unexported helper the reader itself
// uses.
func (r *Reader) Fail(err error) error { return r.fail(err) }

// RecoverToRpar skips to the matching close paren of the form that just
// failed, so a script can continue parsing the next command.
func (r *Reader) RecoverToRpar() { r.recoverToRpar() }

// ParseIndexOrID parses a numeral-or-`$name` reference.
func (r *Reader) ParseIndexOrID() (IndexOrID, error) { return r.parseIndexOrID() }

// ParseModuleFields parses a module's field* ) given that the opening
// "(module $name?" has already been consumed by the caller, for the
// script package's `(module ...)` command (a peer of the top-level
// ParseModule, which consumes that prefix itself).
func ParseModuleFields(r *Reader, name Ident) (*Module, error) {
	m := &Module{Name: name}
	for r.cur.Kind == KindLpar {
		field, err := r.parseField()
		if err != nil {
			r.recoverToRpar()
			continue
		}
		if field != nil {
			m.Fields = append(m.Fields, field)
		}
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return m, nil
}
