package text

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/binary"
	"github.com/WebAssembly/wasp-sub001/wasm"
)

// Convert lowers a parsed text Module into the binary AST: spec.md §4.6
// "Variables → indices" and "Type uses". Binding (assigning an index to
// every named func/table/memory/global/type/segment) happens in one pass
// over Fields in source order, since identifiers may be referenced before
// their definition; resolution of every reference against the now-complete
// namespaces happens in a second pass.
func Convert(m *Module, features wasm.Features, errs *wasm.Errors) *wasm.Module {
	c := &converter{
		mod:      &wasm.Module{},
		features: features,
		errs:     errs,
		types:    newNamespace(),
		funcs:    newNamespace(),
		tables:   newNamespace(),
		mems:     newNamespace(),
		globals:  newNamespace(),
		elemSegs: newNamespace(),
		dataSegs: newNamespace(),
		events:   newNamespace(),
	}
	for _, f := range m.Fields {
		c.bindField(f)
	}
	c.resolvePending()
	return c.mod
}

type converter struct {
	mod      *wasm.Module
	features wasm.Features
	errs     *wasm.Errors

	types    *namespace
	funcs    *namespace
	tables   *namespace
	mems     *namespace
	globals  *namespace
	elemSegs *namespace
	dataSegs *namespace
	events   *namespace

	pendingFuncs   []pendingFunc
	pendingTables  []pendingTable
	pendingMems    []pendingMem
	pendingGlobals []pendingGlobal
	pendingElems   []*ElemField
	pendingData    []*DataField
	pendingExports []pendingExport
	pendingStart   *StartField

	exportNames  map[string]bool
	sawNonImport bool
}

type pendingFunc struct {
	ast *FuncField
}

type pendingTable struct {
	ast *TableField
}

type pendingMem struct {
	ast *MemoryField
}

type pendingGlobal struct {
	ast *GlobalField
}

type pendingExport struct {
	name     string
	kind     wasm.ExportKind
	resolved bool
	index    wasm.Index
	ref      IndexOrID
}

func (c *converter) fail(err error) {
	if c.errs != nil {
		c.errs.Report(wasm.Location{}, err)
	}
}

// bindIdent binds name in ns and reports a duplicate-identifier error
// (spec.md §7/§9) if it was already bound; the first binding still wins.
func (c *converter) bindIdent(ns *namespace, name Ident) wasm.Index {
	idx, dup := ns.Bind(name)
	if dup {
		c.fail(fmt.Errorf("duplicate identifier %q", name))
	}
	return idx
}

func (c *converter) queueExports(exports []Export, kind wasm.ExportKind, idx wasm.Index) {
	for _, e := range exports {
		c.pendingExports = append(c.pendingExports, pendingExport{name: e.Name, kind: kind, resolved: true, index: idx})
	}
}

func (c *converter) bindField(f Field) {
	switch t := f.(type) {
	case *TypeField:
		c.bindIdent(c.types, t.Name)
		ft := t.Type
		c.mod.TypeSection = append(c.mod.TypeSection, &ft)
	case *ImportField:
		if c.sawNonImport {
			c.fail(fmt.Errorf("imports must occur before all non-import definitions"))
		}
		c.bindImportItem(t.Module, t.Name, t.Item)
	case *FuncField:
		if t.Import != nil {
			if c.sawNonImport {
				c.fail(fmt.Errorf("imports must occur before all non-import definitions"))
			}
			c.bindImportItem(t.Import.Module, t.Import.Name, ModuleItem{Kind: ImportItemFunc, Func: t})
			return
		}
		c.sawNonImport = true
		idx := c.bindIdent(c.funcs, t.Name)
		c.pendingFuncs = append(c.pendingFuncs, pendingFunc{ast: t})
		c.queueExports(t.Exports, wasm.ExportKindFunc, idx)
	case *TableField:
		if t.Import != nil {
			if c.sawNonImport {
				c.fail(fmt.Errorf("imports must occur before all non-import definitions"))
			}
			c.bindImportItem(t.Import.Module, t.Import.Name, ModuleItem{Kind: ImportItemTable, Table: t})
			return
		}
		c.sawNonImport = true
		idx := c.bindIdent(c.tables, t.Name)
		c.pendingTables = append(c.pendingTables, pendingTable{ast: t})
		c.queueExports(t.Exports, wasm.ExportKindTable, idx)
	case *MemoryField:
		if t.Import != nil {
			if c.sawNonImport {
				c.fail(fmt.Errorf("imports must occur before all non-import definitions"))
			}
			c.bindImportItem(t.Import.Module, t.Import.Name, ModuleItem{Kind: ImportItemMemory, Memory: t})
			return
		}
		c.sawNonImport = true
		idx := c.bindIdent(c.mems, t.Name)
		c.pendingMems = append(c.pendingMems, pendingMem{ast: t})
		c.queueExports(t.Exports, wasm.ExportKindMemory, idx)
	case *GlobalField:
		if t.Import != nil {
			if c.sawNonImport {
				c.fail(fmt.Errorf("imports must occur before all non-import definitions"))
			}
			c.bindImportItem(t.Import.Module, t.Import.Name, ModuleItem{Kind: ImportItemGlobal, Global: t})
			return
		}
		c.sawNonImport = true
		idx := c.bindIdent(c.globals, t.Name)
		c.pendingGlobals = append(c.pendingGlobals, pendingGlobal{ast: t})
		c.queueExports(t.Exports, wasm.ExportKindGlobal, idx)
	case *ExportField:
		c.sawNonImport = true
		c.pendingExports = append(c.pendingExports, pendingExport{name: t.Export.Name, kind: t.Export.Kind, ref: t.Export.Ref})
	case *StartField:
		c.sawNonImport = true
		if c.pendingStart != nil {
			c.fail(FormatError(t.Func.Location(), fmt.Errorf("multiple start sections")))
			return
		}
		c.pendingStart = t
	case *ElemField:
		c.sawNonImport = true
		c.bindIdent(c.elemSegs, t.Name)
		c.pendingElems = append(c.pendingElems, t)
	case *DataField:
		c.sawNonImport = true
		c.bindIdent(c.dataSegs, t.Name)
		c.pendingData = append(c.pendingData, t)
	}
}

func (c *converter) bindImportItem(module, name string, item ModuleItem) {
	imp := &wasm.Import{Module: module, Name: name}
	switch item.Kind {
	case ImportItemFunc:
		imp.Kind = wasm.ImportKindFunc
		idx := c.bindIdent(c.funcs, item.Func.Name)
		imp.DescFunc = idx // placeholder; patched to a type index in pass 2
		c.mod.ImportSection = append(c.mod.ImportSection, imp)
		c.pendingFuncs = append(c.pendingFuncs, pendingFunc{ast: item.Func})
		c.queueExports(item.Func.Exports, wasm.ExportKindFunc, idx)
		// the func's own FuncField carries no body (it's an import); its
		// Import field, set by the reader, makes pass 2 skip Code/
		// Function-section emission for it.
	case ImportItemTable:
		imp.Kind = wasm.ImportKindTable
		imp.DescTable = item.Table.Type
		idx := c.bindIdent(c.tables, item.Table.Name)
		c.mod.ImportSection = append(c.mod.ImportSection, imp)
		c.queueExports(item.Table.Exports, wasm.ExportKindTable, idx)
	case ImportItemMemory:
		imp.Kind = wasm.ImportKindMemory
		imp.DescMem = item.Memory.Type
		idx := c.bindIdent(c.mems, item.Memory.Name)
		c.mod.ImportSection = append(c.mod.ImportSection, imp)
		c.queueExports(item.Memory.Exports, wasm.ExportKindMemory, idx)
	case ImportItemGlobal:
		imp.Kind = wasm.ImportKindGlobal
		imp.DescGlobal = item.Global.Type
		idx := c.bindIdent(c.globals, item.Global.Name)
		c.mod.ImportSection = append(c.mod.ImportSection, imp)
		c.queueExports(item.Global.Exports, wasm.ExportKindGlobal, idx)
	}
}

// resolvePending runs pass 2: every namespace is fully populated, so type
// uses, bodies, segment contents, and export/start references can all be
// resolved against them.
func (c *converter) resolvePending() {
	for _, pf := range c.pendingFuncs {
		if pf.ast.Import != nil {
			c.patchImportFuncType(pf.ast)
			continue
		}
		c.resolveFunc(pf.ast)
	}
	for _, pt := range c.pendingTables {
		tt := pt.ast.Type
		c.mod.TableSection = append(c.mod.TableSection, &tt)
	}
	for _, pm := range c.pendingMems {
		mt := pm.ast.Type
		c.mod.MemorySection = append(c.mod.MemorySection, &mt)
	}
	for _, pg := range c.pendingGlobals {
		c.resolveGlobal(pg.ast)
	}
	for _, ef := range c.pendingElems {
		c.resolveElem(ef)
	}
	for _, df := range c.pendingData {
		c.resolveData(df)
	}
	for _, pe := range c.pendingExports {
		c.resolveExport(pe)
	}
	if c.pendingStart != nil {
		idx, err := c.funcs.Resolve(c.pendingStart.Func.Value())
		if err != nil {
			c.fail(FormatError(c.pendingStart.Func.Location(), err))
		} else {
			c.mod.StartSection = &idx
		}
	}
}

// patchImportFuncType resolves an imported function's type use and records
// it on the already-appended Import row (imports are appended to
// ImportSection in bind order, so the row's position tracks pendingFuncs
// order only among imports; find it by identity instead of index math).
func (c *converter) patchImportFuncType(f *FuncField) {
	typeIdx, err := c.resolveTypeUse(f.Type)
	if err != nil {
		c.fail(err)
		return
	}
	for _, imp := range c.mod.ImportSection {
		if imp.Kind == wasm.ImportKindFunc && imp.Module == f.Import.Module && imp.Name == f.Import.Name {
			imp.DescFunc = typeIdx
			return
		}
	}
}

// resolveTypeUse resolves an explicit `(type $t)` reference, or finds/
// creates a structurally-matching entry for inline params/results, per
// spec.md §4.5 "Type uses".
func (c *converter) resolveTypeUse(use TypeUse) (wasm.Index, error) {
	if use.Ref != nil {
		return c.types.Resolve(*use.Ref)
	}
	params := make([]wasm.ValueType, len(use.Params))
	for i, p := range use.Params {
		params[i] = p.Type
	}
	want := wasm.FunctionType{Params: params, Results: use.Results}
	for i, ft := range c.mod.TypeSection {
		if ft.Equal(&want) {
			return wasm.Index(i), nil
		}
	}
	c.mod.TypeSection = append(c.mod.TypeSection, &want)
	c.types.Bind("") // anonymous: never a dup, ignore the return
	return wasm.Index(len(c.mod.TypeSection) - 1), nil
}

func (c *converter) resolveFunc(f *FuncField) {
	typeIdx, err := c.resolveTypeUse(f.Type)
	if err != nil {
		c.fail(err)
		return
	}
	c.mod.FunctionSection = append(c.mod.FunctionSection, typeIdx)

	locals := newNamespace()
	for _, p := range f.Type.Params {
		if _, dup := locals.Bind(p.Name); dup {
			c.fail(fmt.Errorf("duplicate identifier %q", p.Name))
		}
	}
	for _, l := range f.Locals {
		if _, dup := locals.Bind(l.Name); dup {
			c.fail(fmt.Errorf("duplicate identifier %q", l.Name))
		}
	}
	body, err := c.lowerExpr(f.Body, locals, &labelStack{})
	if err != nil {
		c.fail(err)
		return
	}
	body = append(body, wasm.Instruction{Opcode: wasm.OpEnd})
	localTypes := rleLocals(f.Locals)
	c.mod.CodeSection = append(c.mod.CodeSection, &wasm.Code{LocalTypes: localTypes, Body: body})
}

// rleLocals run-length-encodes consecutive same-type locals, dropping
// names (only NameSection carries those), per spec.md §4.6.
func rleLocals(locals []Local) []wasm.LocalEntry {
	var out []wasm.LocalEntry
	for _, l := range locals {
		if n := len(out); n > 0 && out[n-1].Type.Equal(l.Type) {
			out[n-1].Count++
			continue
		}
		out = append(out, wasm.LocalEntry{Count: 1, Type: l.Type})
	}
	return out
}

func (c *converter) resolveGlobal(g *GlobalField) {
	init, err := c.lowerExpr(g.Init, nil, &labelStack{})
	if err != nil {
		c.fail(err)
		return
	}
	ce, err := exprToConstExpr(init)
	if err != nil {
		c.fail(err)
		return
	}
	c.mod.GlobalSection = append(c.mod.GlobalSection, &wasm.Global{Type: g.Type, Init: ce})
}

func (c *converter) resolveElem(e *ElemField) {
	seg := &wasm.ElementSegment{Mode: e.Mode, Type: e.Type}
	if e.Mode == wasm.SegmentModeActive {
		idx, err := c.tables.Resolve(e.Table)
		if err != nil && e.Table.HasID {
			c.fail(err)
			return
		}
		seg.TableIndex = idx
		off, err := c.lowerExpr(e.Offset, nil, &labelStack{})
		if err != nil {
			c.fail(err)
			return
		}
		ce, err := exprToConstExpr(off)
		if err != nil {
			c.fail(err)
			return
		}
		seg.Offset = ce
	}
	if len(e.Exprs) > 0 {
		for _, ex := range e.Exprs {
			lowered, err := c.lowerExpr(ex, nil, &labelStack{})
			if err != nil {
				c.fail(err)
				return
			}
			ce, err := exprToConstExpr(lowered)
			if err != nil {
				c.fail(err)
				return
			}
			seg.Exprs = append(seg.Exprs, ce)
		}
	} else {
		for _, ref := range e.Funcs {
			idx, err := c.funcs.Resolve(ref)
			if err != nil {
				c.fail(err)
				return
			}
			seg.FuncIndexes = append(seg.FuncIndexes, idx)
		}
	}
	c.mod.ElementSection = append(c.mod.ElementSection, seg)
}

func (c *converter) resolveData(d *DataField) {
	seg := &wasm.DataSegment{Mode: d.Mode, Init: d.Init}
	if d.Mode == wasm.SegmentModeActive {
		idx, err := c.mems.Resolve(d.Memory)
		if err != nil && d.Memory.HasID {
			c.fail(err)
			return
		}
		seg.MemoryIndex = idx
		off, err := c.lowerExpr(d.Offset, nil, &labelStack{})
		if err != nil {
			c.fail(err)
			return
		}
		ce, err := exprToConstExpr(off)
		if err != nil {
			c.fail(err)
			return
		}
		seg.Offset = ce
	}
	c.mod.DataSection = append(c.mod.DataSection, seg)
}

func (c *converter) resolveExport(pe pendingExport) {
	idx := pe.index
	if !pe.resolved {
		var err error
		switch pe.kind {
		case wasm.ExportKindFunc:
			idx, err = c.funcs.Resolve(pe.ref)
		case wasm.ExportKindTable:
			idx, err = c.tables.Resolve(pe.ref)
		case wasm.ExportKindMemory:
			idx, err = c.mems.Resolve(pe.ref)
		case wasm.ExportKindGlobal:
			idx, err = c.globals.Resolve(pe.ref)
		}
		if err != nil {
			c.fail(err)
			return
		}
	}
	if c.exportNames[pe.name] {
		c.fail(fmt.Errorf("duplicate export name %q", pe.name))
		return
	}
	if c.exportNames == nil {
		c.exportNames = map[string]bool{}
	}
	c.exportNames[pe.name] = true
	c.mod.ExportSection = append(c.mod.ExportSection, &wasm.Export{Name: pe.name, Kind: pe.kind, Index: idx})
}

// exprToConstExpr packages a lowered single-instruction Expr as a
// ConstantExpression, reusing the binary encoder so the wire form of a
// constant's immediate never diverges between the binary and text paths
// (spec.md §3 "global initializers and segment offsets"). Unlike a
// function body, a text constant expression has no trailing `end` token:
// encodeConstExpr supplies that implicitly on the binary side.
func exprToConstExpr(ins []wasm.Instruction) (wasm.ConstantExpression, error) {
	if len(ins) != 1 {
		return wasm.ConstantExpression{}, fmt.Errorf("constant expression must be exactly one instruction")
	}
	return binary.EncodeConstExpr(ins[0]), nil
}
