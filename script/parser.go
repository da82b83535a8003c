package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/WebAssembly/wasp-sub001/text"
	"github.com/WebAssembly/wasp-sub001/wasm"
)

// versionComment recognizes a script-level `;; version: x.y.z` directive,
// a supplement beyond the upstream `.wast` grammar (SPEC_FULL.md "go-version
// ... wired into the script layer") that lets a script declare the
// minimum spec version its commands assume.
var versionComment = regexp.MustCompile(`(?m)^\s*;;\s*version:\s*([0-9][0-9A-Za-z.+-]*)\s*$`)

// ParseScript reads a whole `.wast` source buffer into a Script: a
// sequence of module/register/assert_*/action commands, per spec.md §2
// "Script layer ... layered atop the module reader." Errors accumulate in
// errs rather than aborting the whole script (spec.md §4.9 continue-on-
// error policy); a single malformed command is skipped and parsing
// resumes at the next top-level form.
func ParseScript(src string, features wasm.Features, errs *wasm.Errors) *Script {
	s := &Script{}
	if m := versionComment.FindStringSubmatch(src); m != nil {
		if _, err := version.NewVersion(m[1]); err == nil {
			s.MinVersion = m[1]
		}
	}

	r := text.NewReader(src, errs)
	p := &parser{r: r, features: features, errs: errs}
	for r.Cur().Kind == text.KindLpar {
		cmd, err := p.parseCommand()
		if err != nil {
			r.RecoverToRpar()
			continue
		}
		if cmd != nil {
			s.Commands = append(s.Commands, cmd)
		}
	}
	return s
}

type parser struct {
	r        *text.Reader
	features wasm.Features
	errs     *wasm.Errors
}

func (p *parser) parseCommand() (Command, error) {
	if err := p.r.ExpectLpar(); err != nil {
		return nil, err
	}
	switch {
	case p.r.AtKeyword("module"):
		return p.parseModuleCommand()
	case p.r.AtKeyword("register"):
		return p.parseRegisterCommand()
	case p.r.AtKeyword("assert_return"):
		return p.parseAssertReturn()
	case p.r.AtKeyword("assert_trap"):
		return p.parseAssertTrapLike(func(a Action, msg string) Command {
			return &AssertTrapCommand{Action: a, Message: msg}
		})
	case p.r.AtKeyword("assert_exhaustion"):
		return p.parseAssertTrapLike(func(a Action, msg string) Command {
			return &AssertExhaustionCommand{Action: a, Message: msg}
		})
	case p.r.AtKeyword("assert_malformed"):
		return p.parseAssertModuleLike(func(src *ModuleSource, msg string) Command {
			return &AssertMalformedCommand{Source: src, Message: msg}
		})
	case p.r.AtKeyword("assert_invalid"):
		return p.parseAssertModuleLike(func(src *ModuleSource, msg string) Command {
			return &AssertInvalidCommand{Source: src, Message: msg}
		})
	case p.r.AtKeyword("assert_unlinkable"):
		return p.parseAssertUnlinkable()
	case p.r.AtKeyword("invoke"), p.r.AtKeyword("get"):
		// A bare top-level action, used in some suites outside an assertion.
		a, err := p.parseAction()
		if err != nil {
			return nil, err
		}
		if err := p.r.ExpectRpar(); err != nil {
			return nil, err
		}
		return &bareAction{a}, nil
	default:
		return nil, p.r.Fail(fmt.Errorf("unexpected script command %q", p.r.Cur().Text))
	}
}

// bareAction wraps a standalone invoke/get with no assertion around it,
// which some suites use purely for side effects.
type bareAction struct{ Action }

func (*bareAction) commandKind() string { return "action" }

func (p *parser) parseModuleCommand() (*ModuleCommand, error) {
	p.r.Advance() // "module"
	name := p.r.OptionalIdent()

	switch {
	case p.r.AtKeyword("binary"):
		p.r.Advance()
		data, err := p.parseStringList()
		if err != nil {
			return nil, err
		}
		if err := p.r.ExpectRpar(); err != nil {
			return nil, err
		}
		return &ModuleCommand{Name: name, Source: &ModuleSource{Kind: ModuleBinary, Binary: data}}, nil
	case p.r.AtKeyword("quote"):
		p.r.Advance()
		data, err := p.parseStringList()
		if err != nil {
			return nil, err
		}
		if err := p.r.ExpectRpar(); err != nil {
			return nil, err
		}
		return &ModuleCommand{Name: name, Source: &ModuleSource{Kind: ModuleQuote, Quote: string(data)}}, nil
	default:
		ast, err := p.parseModuleFieldsInto(name)
		if err != nil {
			return nil, err
		}
		return &ModuleCommand{Name: name, Source: &ModuleSource{Kind: ModuleText, AST: ast}}, nil
	}
}

// parseModuleFieldsInto parses the remaining `field* )` of a module
// command whose leading "(module $name?" has already been consumed,
// reusing the reader's ordinary field dispatch by feeding it through
// text.ParseModuleFields.
func (p *parser) parseModuleFieldsInto(name Ident) (*text.Module, error) {
	return text.ParseModuleFields(p.r, name)
}

func (p *parser) parseStringList() ([]byte, error) {
	var out []byte
	for p.r.Cur().Kind == text.KindString {
		out = append(out, []byte(p.r.Advance().Text)...)
	}
	return out, nil
}

func (p *parser) parseRegisterCommand() (*RegisterCommand, error) {
	p.r.Advance() // "register"
	if p.r.Cur().Kind != text.KindString {
		return nil, p.r.Fail(fmt.Errorf("expected registration name string"))
	}
	as := p.r.Advance().Text
	name := p.r.OptionalIdent()
	if err := p.r.ExpectRpar(); err != nil {
		return nil, err
	}
	return &RegisterCommand{As: as, Module: name}, nil
}

func (p *parser) parseAction() (Action, error) {
	switch {
	case p.r.AtKeyword("invoke"):
		p.r.Advance()
		mod := p.optionalModuleRef()
		if p.r.Cur().Kind != text.KindString {
			return nil, p.r.Fail(fmt.Errorf("expected exported field name string"))
		}
		field := p.r.Advance().Text
		var args []Const
		for p.r.Cur().Kind == text.KindLpar {
			c, err := p.parseConst()
			if err != nil {
				return nil, err
			}
			args = append(args, c)
		}
		return &InvokeAction{Module: mod, Field: field, Args: args}, nil
	case p.r.AtKeyword("get"):
		p.r.Advance()
		mod := p.optionalModuleRef()
		if p.r.Cur().Kind != text.KindString {
			return nil, p.r.Fail(fmt.Errorf("expected exported field name string"))
		}
		field := p.r.Advance().Text
		return &GetAction{Module: mod, Field: field}, nil
	default:
		return nil, p.r.Fail(fmt.Errorf("expected invoke or get"))
	}
}

// optionalModuleRef consumes a leading `$name` module reference before an
// action's export-name string, if present.
func (p *parser) optionalModuleRef() Ident {
	if p.r.Cur().Kind == text.KindIdent {
		return p.r.Advance().Text
	}
	return ""
}

func (p *parser) parseAssertReturn() (Command, error) {
	p.r.Advance() // "assert_return"
	if err := p.r.ExpectLpar(); err != nil {
		return nil, err
	}
	action, err := p.parseAction()
	if err != nil {
		return nil, err
	}
	if err := p.r.ExpectRpar(); err != nil {
		return nil, err
	}
	var results []Const
	for p.r.Cur().Kind == text.KindLpar {
		c, err := p.parseConst()
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	if err := p.r.ExpectRpar(); err != nil {
		return nil, err
	}
	return &AssertReturnCommand{Action: action, Results: results}, nil
}

func (p *parser) parseAssertTrapLike(build func(Action, string) Command) (Command, error) {
	p.r.Advance() // "assert_trap" / "assert_exhaustion"
	if err := p.r.ExpectLpar(); err != nil {
		return nil, err
	}
	action, err := p.parseAction()
	if err != nil {
		return nil, err
	}
	if err := p.r.ExpectRpar(); err != nil {
		return nil, err
	}
	if p.r.Cur().Kind != text.KindString {
		return nil, p.r.Fail(fmt.Errorf("expected trap message string"))
	}
	msg := p.r.Advance().Text
	if err := p.r.ExpectRpar(); err != nil {
		return nil, err
	}
	return build(action, msg), nil
}

func (p *parser) parseAssertModuleLike(build func(*ModuleSource, string) Command) (Command, error) {
	p.r.Advance() // "assert_malformed" / "assert_invalid"
	if err := p.r.ExpectLpar(); err != nil {
		return nil, err
	}
	modCmd, err := p.parseModuleCommand()
	if err != nil {
		return nil, err
	}
	if p.r.Cur().Kind != text.KindString {
		return nil, p.r.Fail(fmt.Errorf("expected failure message string"))
	}
	msg := p.r.Advance().Text
	if err := p.r.ExpectRpar(); err != nil {
		return nil, err
	}
	return build(modCmd.Source, msg), nil
}

func (p *parser) parseAssertUnlinkable() (Command, error) {
	p.r.Advance() // "assert_unlinkable"
	if err := p.r.ExpectLpar(); err != nil {
		return nil, err
	}
	modCmd, err := p.parseModuleCommand()
	if err != nil {
		return nil, err
	}
	if p.r.Cur().Kind != text.KindString {
		return nil, p.r.Fail(fmt.Errorf("expected failure message string"))
	}
	msg := p.r.Advance().Text
	if err := p.r.ExpectRpar(); err != nil {
		return nil, err
	}
	return &AssertUnlinkableCommand{Source: modCmd.Source, Message: msg}, nil
}

// parseConst parses one `(t.const v)` / `(ref.null t)` / `(ref.extern n)`
// / `(ref.func $f)` literal, optionally wrapped in `(nan:canonical)` /
// `(nan:arithmetic)` float-match sugar used by assert_return results
// (spec.md §8 "NaN payload").
func (p *parser) parseConst() (Const, error) {
	if err := p.r.ExpectLpar(); err != nil {
		return Const{}, err
	}
	kw := p.r.Cur().Text
	p.r.Advance()
	var c Const
	var err error
	switch kw {
	case "i32.const":
		c.Type = wasm.ValueTypeI32
		var u uint64
		u, err = p.takeUint(32)
		c.I32 = uint32(u)
	case "i64.const":
		c.Type = wasm.ValueTypeI64
		c.I64, err = p.takeUint(64)
	case "f32.const":
		c.Type = wasm.ValueTypeF32
		c.F32, c.Kind, err = p.takeFloat32()
	case "f64.const":
		c.Type = wasm.ValueTypeF64
		c.F64, c.Kind, err = p.takeFloat64()
	case "v128.const":
		c.Type = wasm.ValueTypeV128
		err = p.takeV128(&c)
	case "ref.null":
		c.IsRef = true
		c.RefIsNull = true
		p.r.Advance() // heap type keyword, e.g. "func"/"extern"
	case "ref.extern":
		c.IsRef = true
		c.RefHost = true
		c.RefIndex, err = p.takeIndex()
	case "ref.func":
		c.IsRef = true
		c.RefIndex, err = p.takeIndex()
	default:
		err = fmt.Errorf("unsupported const literal %q", kw)
	}
	if err != nil {
		return Const{}, err
	}
	if cerr := p.r.ExpectRpar(); cerr != nil {
		return Const{}, cerr
	}
	return c, nil
}

func (p *parser) takeUint(bits int) (uint64, error) {
	tok := p.r.Advance()
	v, err := text.DecodeUint(tok.Text, tok.Numeric, bits)
	if err != nil {
		return 0, p.r.Fail(err)
	}
	return v, nil
}

func (p *parser) takeIndex() (wasm.Index, error) {
	ref, err := p.r.ParseIndexOrID()
	if err != nil {
		return 0, err
	}
	return ref.Num, nil
}

func (p *parser) takeFloat32() (uint32, ConstKind, error) {
	tok := p.r.Cur()
	switch tok.Text {
	case "nan:canonical":
		p.r.Advance()
		return 0, ConstNanCanonical, nil
	case "nan:arithmetic":
		p.r.Advance()
		return 0, ConstNanArithmetic, nil
	}
	p.r.Advance()
	v, err := text.DecodeFloat32(tok.Text, tok.Numeric, tok.Kind)
	if err != nil {
		return 0, ConstExact, p.r.Fail(err)
	}
	return v, ConstExact, nil
}

func (p *parser) takeFloat64() (uint64, ConstKind, error) {
	tok := p.r.Cur()
	switch tok.Text {
	case "nan:canonical":
		p.r.Advance()
		return 0, ConstNanCanonical, nil
	case "nan:arithmetic":
		p.r.Advance()
		return 0, ConstNanArithmetic, nil
	}
	p.r.Advance()
	v, err := text.DecodeFloat64(tok.Text, tok.Numeric, tok.Kind)
	if err != nil {
		return 0, ConstExact, p.r.Fail(err)
	}
	return v, ConstExact, nil
}

func (p *parser) takeV128(c *Const) error {
	if p.r.Cur().Kind != text.KindSimdShape {
		return p.r.Fail(fmt.Errorf("expected SIMD shape"))
	}
	shape := p.r.Advance().Text
	lanes, bits := v128ShapeLayout(shape)
	for i := 0; i < lanes; i++ {
		tok := p.r.Advance()
		v, err := text.DecodeUint(strings.TrimPrefix(tok.Text, "-"), tok.Numeric, bits)
		if err != nil {
			return p.r.Fail(err)
		}
		for b := 0; b < bits/8; b++ {
			c.V128[i*(bits/8)+b] = byte(v >> (8 * b))
		}
	}
	return nil
}

func v128ShapeLayout(shape string) (lanes, bits int) {
	switch shape {
	case "i8x16":
		return 16, 8
	case "i16x8":
		return 8, 16
	case "i32x4", "f32x4":
		return 4, 32
	case "i64x2", "f64x2":
		return 2, 64
	default:
		return 0, 0
	}
}
