package bencode

import (
	"bytes"
	"sort"

	"github.com/brindle-bt/brindle/quark"
	"github.com/brindle-bt/brindle/variant"
)

// Visitor receives the depth-first callbacks Walk drives. Implementations
// typically hold an opaque sink (a byte buffer, an io.Writer, a
// pretty-printer) rather than exposing one in this interface, mirroring
// the original walker's void* sink parameter.
type Visitor interface {
	Int(n int64)
	Bool(b bool)
	Real(f float64)
	String(b []byte)
	DictBegin()
	ListBegin()
	ContainerEnd()
}

// task is one unit of pending work on the walker's explicit stack. Exactly
// one of its fields is meaningful, selected by which is non-zero/non-nil;
// this is simpler than an interface-typed stack and just as effective for
// a fixed, small set of task shapes.
type task struct {
	visit   *variant.Variant
	keyOnly []byte
	end     bool
}

// Walk drives vis over v's subtree depth-first, without recursing on
// container depth: it threads an explicit, heap-backed stack of pending
// tasks instead, exactly the "work stack" spec.md §4.5/§9 requires of both
// the parser and the walker. When sortDicts is set — always true for
// serialization — each dict's children are visited in ascending
// byte-lexicographic order of their key's interned bytes, regardless of
// storage (insertion) order; this is the canonical form the wire format
// mandates and it must be stable across platforms, which byte comparison
// (as opposed to, say, a locale-aware string comparison) guarantees.
func Walk(v *variant.Variant, vis Visitor, sortDicts bool) {
	stack := []task{{visit: v}}

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case t.end:
			vis.ContainerEnd()

		case t.keyOnly != nil:
			vis.String(t.keyOnly)

		default:
			stack = walkOne(t.visit, vis, sortDicts, stack)
		}
	}
}

func walkOne(v *variant.Variant, vis Visitor, sortDicts bool, stack []task) []task {
	switch v.Kind() {
	case variant.Int:
		n, _ := v.GetInt()
		vis.Int(n)

	case variant.Bool:
		b, _ := v.GetBool()
		vis.Bool(b)

	case variant.Real:
		f, _ := v.GetReal()
		vis.Real(f)

	case variant.String:
		s, _ := v.GetStrView()
		vis.String(s)

	case variant.List:
		vis.ListBegin()
		elems := v.Elements()
		stack = append(stack, task{end: true})
		for i := len(elems) - 1; i >= 0; i-- {
			stack = append(stack, task{visit: elems[i]})
		}

	case variant.Dict:
		vis.DictBegin()
		entries := v.Entries()
		if sortDicts {
			entries = sortedEntries(entries)
		}
		stack = append(stack, task{end: true})
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			keyBytes, _ := quark.Lookup(e.Key)
			stack = append(stack, task{visit: e.Value})
			stack = append(stack, task{keyOnly: []byte(keyBytes)})
		}

	default:
		panic("bencode: walker encountered an Unset variant; parser invariant violated")
	}
	return stack
}

// sortedEntries returns a copy of entries ordered ascending by the
// byte-lexicographic comparison of each entry's interned key bytes.
// Copying rather than sorting in place keeps Walk non-mutating: callers
// can walk (serialize, inspect) a tree repeatedly without its storage
// order ever drifting from insertion order.
func sortedEntries(entries []variant.DictEntry) []variant.DictEntry {
	out := make([]variant.DictEntry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		ki, _ := quark.Lookup(out[i].Key)
		kj, _ := quark.Lookup(out[j].Key)
		return bytes.Compare([]byte(ki), []byte(kj)) < 0
	})
	return out
}
