package text

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// namespace assigns sequential indices to a single space (funcs, tables,
// memories, globals, types, or one function's locals) and resolves
// `$name` references against it, per spec.md §4.6 "Variables →
// indices". Block labels, which nest, use labelStack below instead.
type namespace struct {
	names map[Ident]wasm.Index
	next  wasm.Index
}

func newNamespace() *namespace { return &namespace{names: map[Ident]wasm.Index{}} }

// Bind assigns the next index to name (if non-empty) and returns it, along
// with whether name was already bound. On a duplicate, the first binding
// is kept (spec.md §9 "first binding wins" — later ones still occupy an
// index, but can't be resolved by name); the caller is responsible for
// reporting the duplicate as an error (spec.md §7/§9).
func (n *namespace) Bind(name Ident) (wasm.Index, bool) {
	idx := n.next
	n.next++
	if name != "" {
		if _, dup := n.names[name]; dup {
			return idx, true
		}
		n.names[name] = idx
	}
	return idx, false
}

// Resolve maps a numeric-or-symbolic reference to a concrete index.
func (n *namespace) Resolve(ref IndexOrID) (wasm.Index, error) {
	if !ref.HasID {
		if ref.Num >= n.next {
			return 0, fmt.Errorf("unknown index %d", ref.Num)
		}
		return ref.Num, nil
	}
	idx, ok := n.names[ref.ID]
	if !ok {
		return 0, fmt.Errorf("unknown identifier %s", ref.ID)
	}
	return idx, nil
}

// Len reports how many entries have been bound so far.
func (n *namespace) Len() wasm.Index { return n.next }

// labelStack models the nested block-label namespace (spec.md §4.5
// "Labels"): innermost label resolves to depth 0 and depth grows outward
// as blocks are exited (by push order, not name uniqueness — shadowing
// is legal).
type labelStack struct {
	names []Ident
}

func (s *labelStack) Push(name Ident) { s.names = append(s.names, name) }

func (s *labelStack) Pop() {
	if len(s.names) > 0 {
		s.names = s.names[:len(s.names)-1]
	}
}

// Resolve maps a label reference to its branch depth: a bare numeral is
// the depth itself; a name resolves by innermost-first search.
func (s *labelStack) Resolve(ref IndexOrID) (wasm.Index, error) {
	if !ref.HasID {
		if int(ref.Num) >= len(s.names) {
			return 0, fmt.Errorf("unknown label %d", ref.Num)
		}
		return ref.Num, nil
	}
	for i := len(s.names) - 1; i >= 0; i-- {
		if s.names[i] == ref.ID {
			return wasm.Index(len(s.names) - 1 - i), nil
		}
	}
	return 0, fmt.Errorf("unknown label $%s", ref.ID)
}

// NameAt returns the label name at depth d ("" if it was anonymous),
// used to validate `end $L`/`else $L` sugar.
func (s *labelStack) NameAt(d wasm.Index) Ident {
	i := len(s.names) - 1 - int(d)
	if i < 0 || i >= len(s.names) {
		return ""
	}
	return s.names[i]
}
