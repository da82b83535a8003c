package text

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// Reader is a two-token-lookahead recursive-descent parser over a Lexer
// (spec.md §4.5). It does not itself resolve identifiers to indices;
// that happens in a later converter pass so the reader can finish even
// when names are undefined, per spec.md §4.9 continue-on-error policy.
type Reader struct {
	lex  *Lexer
	cur  Token
	peek Token
	errs *wasm.Errors
}

func NewReader(src string, errs *wasm.Errors) *Reader {
	r := &Reader{lex: NewLexer(src), errs: errs}
	r.cur = r.lex.Next()
	r.peek = r.lex.Next()
	return r
}

func (r *Reader) advance() Token {
	tok := r.cur
	r.cur = r.peek
	r.peek = r.lex.Next()
	return tok
}

func (r *Reader) fail(err error) error {
	if r.errs != nil {
		r.errs.Report(r.cur.Location, err)
	}
	return err
}

func (r *Reader) expectLpar() error {
	if r.cur.Kind != KindLpar {
		return r.fail(unexpectedToken(r.cur, "("))
	}
	r.advance()
	return nil
}

func (r *Reader) expectRpar() error {
	if r.cur.Kind != KindRpar {
		return r.fail(unexpectedToken(r.cur, ")"))
	}
	r.advance()
	return nil
}

// atKeyword reports whether the current token is the reserved or
// instruction keyword name.
func (r *Reader) atKeyword(name string) bool {
	return (r.cur.Kind == KindKeyword || r.cur.Kind == KindInstr) && r.cur.Text == name
}

// peekIsParenKeyword reports whether the upcoming tokens are `( name`.
func (r *Reader) peekIsParenKeyword(name string) bool {
	return r.cur.Kind == KindLpar && r.peek.Text == name
}

func (r *Reader) optionalIdent() Ident {
	if r.cur.Kind == KindIdent {
		return r.advance().Text
	}
	return ""
}

// ParseModule parses a top-level `(module ...)` form.
func ParseModule(r *Reader) (*Module, error) {
	if err := r.expectLpar(); err != nil {
		return nil, err
	}
	if !r.atKeyword("module") {
		return nil, r.fail(unexpectedToken(r.cur, "module"))
	}
	r.advance()
	m := &Module{Name: r.optionalIdent()}
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

// recoverToRpar skips tokens until the matching close paren of the field
// that just failed, so one bad field doesn't abort the whole module
// (spec.md §4.9 "enclosing readers ... treat the item as absent and
// continue").
func (r *Reader) recoverToRpar() {
	depth := 1
	for depth > 0 && r.cur.Kind != KindEOF {
		switch r.cur.Kind {
		case KindLpar:
			depth++
		case KindRpar:
			depth--
		}
		r.advance()
	}
}

func (r *Reader) parseField() (Field, error) {
	if err := r.expectLpar(); err != nil {
		return nil, err
	}
	if r.cur.Kind != KindKeyword {
		return nil, r.fail(unexpectedFieldName(r.cur))
	}
	kw := r.advance().Text
	switch kw {
	case "type":
		return r.parseTypeField()
	case "import":
		return r.parseImportField()
	case "func":
		return r.parseFuncField("", nil)
	case "table":
		return r.parseTableField("", nil)
	case "memory":
		return r.parseMemoryField("", nil)
	case "global":
		return r.parseGlobalField("", nil)
	case "export":
		return r.parseExportField()
	case "start":
		return r.parseStartField()
	case "elem":
		return r.parseElemField()
	case "data":
		return r.parseDataField()
	default:
		return nil, r.fail(unhandledSection(kw))
	}
}

func (r *Reader) parseTypeField() (*TypeField, error) {
	name := r.optionalIdent()
	if err := r.expectLpar(); err != nil {
		return nil, err
	}
	if !r.atKeyword("func") {
		return nil, r.fail(unexpectedToken(r.cur, "func"))
	}
	r.advance()
	params, err := r.parseParams()
	if err != nil {
		return nil, err
	}
	results, err := r.parseResults()
	if err != nil {
		return nil, err
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	vts := make([]wasm.ValueType, len(params))
	for i, p := range params {
		vts[i] = p.Type
	}
	return &TypeField{Name: name, Type: wasm.FunctionType{Params: vts, Results: results}}, nil
}

func (r *Reader) parseValueType() (wasm.ValueType, error) {
	tok := r.cur
	switch tok.Text {
	case "i32":
		r.advance()
		return wasm.ValueTypeI32, nil
	case "i64":
		r.advance()
		return wasm.ValueTypeI64, nil
	case "f32":
		r.advance()
		return wasm.ValueTypeF32, nil
	case "f64":
		r.advance()
		return wasm.ValueTypeF64, nil
	case "v128":
		r.advance()
		return wasm.ValueTypeV128, nil
	case "funcref":
		r.advance()
		return wasm.RefValueType(wasm.RefTypeFuncref), nil
	case "externref":
		r.advance()
		return wasm.RefValueType(wasm.RefTypeExternref), nil
	case "exnref":
		r.advance()
		return wasm.RefValueType(wasm.RefTypeExnref), nil
	default:
		return wasm.ValueType{}, r.fail(unexpectedToken(tok, "value type"))
	}
}

// parseParams reads zero or more `(param $x? t)` clauses. A named param
// clause carries exactly one type; anonymous clauses may list several.
func (r *Reader) parseParams() ([]Param, error) {
	var out []Param
	for r.peekIsParenKeyword("param") {
		r.advance() // (
		r.advance() // param
		if r.cur.Kind == KindIdent {
			name := r.advance().Text
			vt, err := r.parseValueType()
			if err != nil {
				return nil, err
			}
			out = append(out, Param{Name: name, Type: vt})
		} else {
			for r.cur.Kind != KindRpar {
				vt, err := r.parseValueType()
				if err != nil {
					return nil, err
				}
				out = append(out, Param{Type: vt})
			}
		}
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Reader) parseResults() ([]wasm.ValueType, error) {
	var out []wasm.ValueType
	for r.peekIsParenKeyword("result") {
		r.advance()
		r.advance()
		for r.cur.Kind != KindRpar {
			vt, err := r.parseValueType()
			if err != nil {
				return nil, err
			}
			out = append(out, vt)
		}
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Reader) parseLocals() ([]Local, error) {
	var out []Local
	for r.peekIsParenKeyword("local") {
		r.advance()
		r.advance()
		if r.cur.Kind == KindIdent {
			name := r.advance().Text
			vt, err := r.parseValueType()
			if err != nil {
				return nil, err
			}
			out = append(out, Local{Name: name, Type: vt})
		} else {
			for r.cur.Kind != KindRpar {
				vt, err := r.parseValueType()
				if err != nil {
					return nil, err
				}
				out = append(out, Local{Type: vt})
			}
		}
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// parseTypeUse reads an optional `(type $t)` followed by optional inline
// param/result clauses (spec.md §4.5 "Type uses").
func (r *Reader) parseTypeUse() (TypeUse, error) {
	var use TypeUse
	if r.peekIsParenKeyword("type") {
		r.advance()
		r.advance()
		ref, err := r.parseIndexOrID()
		if err != nil {
			return use, err
		}
		use.Ref = &ref
		if err := r.expectRpar(); err != nil {
			return use, err
		}
	}
	params, err := r.parseParams()
	if err != nil {
		return use, err
	}
	results, err := r.parseResults()
	if err != nil {
		return use, err
	}
	if len(params) > 0 || len(results) > 0 {
		use.HasInline = true
	}
	use.Params = params
	use.Results = results
	return use, nil
}

func (r *Reader) parseIndexOrID() (IndexOrID, error) {
	loc := r.cur.Location
	if r.cur.Kind == KindIdent {
		return IndexOrID{ID: r.advance().Text, HasID: true, Loc: loc}, nil
	}
	if r.cur.Kind == KindNat {
		tok := r.advance()
		v, err := DecodeUint(tok.Text, tok.Numeric, 32)
		if err != nil {
			return IndexOrID{}, r.fail(err)
		}
		return IndexOrID{Num: wasm.Index(v), Loc: loc}, nil
	}
	return IndexOrID{}, r.fail(unexpectedToken(r.cur, "index"))
}

// parseInlineImportExport reads any number of leading `(export "n")`
// clauses and at most one `(import "m" "n")` clause, both optional and in
// either order as written, matching common WAT usage; the result tells
// the caller whether the item is an import (so it has no body) and which
// names to desugar into top-level exports.
func (r *Reader) parseInlineImportExport() (exports []Export, imp *struct{ Module, Name string }, err error) {
	for {
		switch {
		case r.peekIsParenKeyword("export"):
			r.advance()
			r.advance()
			if r.cur.Kind != KindString {
				return nil, nil, r.fail(expectedField("export name"))
			}
			name := r.advance().Text
			if err := r.expectRpar(); err != nil {
				return nil, nil, err
			}
			exports = append(exports, Export{Name: name})
		case r.peekIsParenKeyword("import"):
			r.advance()
			r.advance()
			if r.cur.Kind != KindString {
				return nil, nil, r.fail(expectedField("module name"))
			}
			mod := r.advance().Text
			if r.cur.Kind != KindString {
				return nil, nil, r.fail(expectedField("field name"))
			}
			name := r.advance().Text
			if err := r.expectRpar(); err != nil {
				return nil, nil, err
			}
			imp = &struct{ Module, Name string }{mod, name}
		default:
			return exports, imp, nil
		}
	}
}

func (r *Reader) parseFuncField(forcedName Ident, forcedImport *struct{ Module, Name string }) (*FuncField, error) {
	f := &FuncField{Name: forcedName}
	if forcedName == "" {
		f.Name = r.optionalIdent()
	}
	exports, imp, err := r.parseInlineImportExport()
	if err != nil {
		return nil, err
	}
	f.Exports = exports
	if forcedImport != nil {
		imp = forcedImport
	}
	f.Import = imp
	use, err := r.parseTypeUse()
	if err != nil {
		return nil, err
	}
	f.Type = use
	if imp == nil {
		locals, err := r.parseLocals()
		if err != nil {
			return nil, err
		}
		f.Locals = locals
		body, err := r.parseExprUntilRparLoose()
		if err != nil {
			return nil, err
		}
		f.Body = body
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *Reader) parseLimits() (wasm.Limits, error) {
	tok := r.cur
	if tok.Kind != KindNat {
		return wasm.Limits{}, r.fail(unexpectedToken(tok, "limits"))
	}
	min, err := DecodeUint(r.advance().Text, tok.Numeric, 32)
	if err != nil {
		return wasm.Limits{}, r.fail(err)
	}
	lim := wasm.Limits{Min: uint32(min)}
	if r.cur.Kind == KindNat {
		mtok := r.advance()
		max, err := DecodeUint(mtok.Text, mtok.Numeric, 32)
		if err != nil {
			return wasm.Limits{}, r.fail(err)
		}
		m := uint32(max)
		lim.Max = &m
	}
	if r.atKeyword("shared") {
		r.advance()
		lim.Shared = true
	}
	return lim, nil
}

func (r *Reader) parseTableField(forcedName Ident, forcedImport *struct{ Module, Name string }) (*TableField, error) {
	t := &TableField{Name: forcedName}
	if forcedName == "" {
		t.Name = r.optionalIdent()
	}
	exports, imp, err := r.parseInlineImportExport()
	if err != nil {
		return nil, err
	}
	t.Exports = exports
	if forcedImport != nil {
		imp = forcedImport
	}
	t.Import = imp

	elemType := wasm.RefTypeFuncref
	if (r.cur.Text == "funcref" || r.cur.Text == "externref") && r.peek.Kind == KindLpar {
		rt, err := r.parseValueType()
		if err != nil {
			return nil, err
		}
		elemType = rt.Ref
	}
	if r.peekIsParenKeyword("elem") {
		// Abbreviation: (table reftype (elem idx*)) infers limits from
		// the element count (spec.md §4.6 "Inline data/element").
		r.advance()
		r.advance()
		for r.cur.Kind != KindRpar {
			idx, err := r.parseIndexOrID()
			if err != nil {
				return nil, err
			}
			t.InlineElem = append(t.InlineElem, idx)
		}
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
		n := uint32(len(t.InlineElem))
		t.Type = wasm.TableType{ElemType: elemType, Limits: wasm.Limits{Min: n, Max: &n}}
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
		return t, nil
	}

	lim, err := r.parseLimits()
	if err != nil {
		return nil, err
	}
	rt, err := r.parseValueType()
	if err != nil {
		return nil, err
	}
	if rt.Kind != wasm.ValueKindRef {
		return nil, r.fail(fmt.Errorf("expected reference type"))
	}
	t.Type = wasm.TableType{ElemType: rt.Ref, Limits: lim}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Reader) parseMemoryField(forcedName Ident, forcedImport *struct{ Module, Name string }) (*MemoryField, error) {
	mem := &MemoryField{Name: forcedName}
	if forcedName == "" {
		mem.Name = r.optionalIdent()
	}
	exports, imp, err := r.parseInlineImportExport()
	if err != nil {
		return nil, err
	}
	mem.Exports = exports
	if forcedImport != nil {
		imp = forcedImport
	}
	mem.Import = imp

	if r.peekIsParenKeyword("data") {
		r.advance()
		r.advance()
		data, err := r.parseDataStrings()
		if err != nil {
			return nil, err
		}
		mem.InlineData = data
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
		pages := (uint32(len(data)) + 0xffff) / 0x10000
		mem.Type = wasm.MemoryType{Limits: wasm.Limits{Min: pages, Max: &pages}}
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
		return mem, nil
	}

	lim, err := r.parseLimits()
	if err != nil {
		return nil, err
	}
	mem.Type = wasm.MemoryType{Limits: lim}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return mem, nil
}

func (r *Reader) parseDataStrings() ([]byte, error) {
	var out []byte
	for r.cur.Kind == KindString {
		out = append(out, []byte(r.advance().Text)...)
	}
	return out, nil
}

func (r *Reader) parseGlobalField(forcedName Ident, forcedImport *struct{ Module, Name string }) (*GlobalField, error) {
	g := &GlobalField{Name: forcedName}
	if forcedName == "" {
		g.Name = r.optionalIdent()
	}
	exports, imp, err := r.parseInlineImportExport()
	if err != nil {
		return nil, err
	}
	g.Exports = exports
	if forcedImport != nil {
		imp = forcedImport
	}
	g.Import = imp

	mutable := false
	if r.peekIsParenKeyword("mut") {
		r.advance()
		r.advance()
		mutable = true
	}
	vt, err := r.parseValueType()
	if err != nil {
		return nil, err
	}
	if mutable {
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
	}
	g.Type = wasm.GlobalType{ValType: vt, Mutable: mutable}
	if imp == nil {
		init, err := r.parseExprUntilRparLoose()
		if err != nil {
			return nil, err
		}
		g.Init = init
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *Reader) parseImportField() (*ImportField, error) {
	if r.cur.Kind != KindString {
		return nil, r.fail(expectedField("module name"))
	}
	mod := r.advance().Text
	if r.cur.Kind != KindString {
		return nil, r.fail(expectedField("field name"))
	}
	name := r.advance().Text
	imp := &struct{ Module, Name string }{mod, name}
	if err := r.expectLpar(); err != nil {
		return nil, err
	}
	kw := r.cur.Text
	r.advance()
	item := ModuleItem{Name: ""}
	var err error
	switch kw {
	case "func":
		item.Kind = ImportItemFunc
		item.Func, err = r.parseFuncField("", imp)
		return &ImportField{Module: mod, Name: name, Item: item}, err
	case "table":
		item.Kind = ImportItemTable
		item.Table, err = r.parseTableField("", imp)
		return &ImportField{Module: mod, Name: name, Item: item}, err
	case "memory":
		item.Kind = ImportItemMemory
		item.Memory, err = r.parseMemoryField("", imp)
		return &ImportField{Module: mod, Name: name, Item: item}, err
	case "global":
		item.Kind = ImportItemGlobal
		item.Global, err = r.parseGlobalField("", imp)
		return &ImportField{Module: mod, Name: name, Item: item}, err
	default:
		return nil, r.fail(unexpectedFieldName(r.cur))
	}
}

func (r *Reader) parseExportField() (*ExportField, error) {
	if r.cur.Kind != KindString {
		return nil, r.fail(expectedField("export name"))
	}
	name := r.advance().Text
	if err := r.expectLpar(); err != nil {
		return nil, err
	}
	var kind wasm.ExportKind
	switch r.cur.Text {
	case "func":
		kind = wasm.ExportKindFunc
	case "table":
		kind = wasm.ExportKindTable
	case "memory":
		kind = wasm.ExportKindMemory
	case "global":
		kind = wasm.ExportKindGlobal
	default:
		return nil, r.fail(unexpectedFieldName(r.cur))
	}
	r.advance()
	ref, err := r.parseIndexOrID()
	if err != nil {
		return nil, err
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return &ExportField{Export: Export{Name: name, Kind: kind, Ref: ref}}, nil
}

func (r *Reader) parseStartField() (*StartField, error) {
	loc := r.cur.Location
	ref, err := r.parseIndexOrID()
	if err != nil {
		return nil, err
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return &StartField{Func: wasm.NewAt(loc, ref)}, nil
}

func (r *Reader) parseElemField() (*ElemField, error) {
	e := &ElemField{Type: wasm.RefTypeFuncref, Mode: wasm.SegmentModeActive}
	e.Name = r.optionalIdent()
	if r.atKeyword("declare") {
		r.advance()
		e.Mode = wasm.SegmentModeDeclared
	} else if r.peekIsParenKeyword("table") {
		r.advance()
		r.advance()
		ref, err := r.parseIndexOrID()
		if err != nil {
			return nil, err
		}
		e.Table = ref
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
	}
	if e.Mode == wasm.SegmentModeActive && r.peekIsParenKeyword("offset") {
		r.advance()
		r.advance()
		off, err := r.parseExprUntilRparLoose()
		if err != nil {
			return nil, err
		}
		e.Offset = off
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
	} else if e.Mode == wasm.SegmentModeActive && r.cur.Kind == KindLpar {
		// A bare folded offset-expr is allowed without the `offset` keyword.
		off, err := r.parseFoldedInstr()
		if err != nil {
			return nil, err
		}
		e.Offset = off
	} else if e.Mode == wasm.SegmentModeActive {
		e.Mode = wasm.SegmentModePassive
	}
	for r.cur.Kind != KindRpar {
		idx, err := r.parseIndexOrID()
		if err != nil {
			return nil, err
		}
		e.Funcs = append(e.Funcs, idx)
	}
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Reader) parseDataField() (*DataField, error) {
	d := &DataField{Mode: wasm.SegmentModeActive}
	d.Name = r.optionalIdent()
	if r.peekIsParenKeyword("memory") {
		r.advance()
		r.advance()
		ref, err := r.parseIndexOrID()
		if err != nil {
			return nil, err
		}
		d.Memory = ref
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
	}
	if r.peekIsParenKeyword("offset") {
		r.advance()
		r.advance()
		off, err := r.parseExprUntilRparLoose()
		if err != nil {
			return nil, err
		}
		d.Offset = off
		if err := r.expectRpar(); err != nil {
			return nil, err
		}
	} else if r.cur.Kind == KindLpar {
		off, err := r.parseFoldedInstr()
		if err != nil {
			return nil, err
		}
		d.Offset = off
	} else {
		d.Mode = wasm.SegmentModePassive
	}
	data, err := r.parseDataStrings()
	if err != nil {
		return nil, err
	}
	d.Init = data
	if err := r.expectRpar(); err != nil {
		return nil, err
	}
	return d, nil
}
