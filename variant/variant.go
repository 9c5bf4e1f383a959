// Package variant implements the typed variant tree: the in-memory
// representation shared by the bencode codec's parser and serializer, and
// by every consumer that reads or writes typed values out of it.
//
// A Variant's kind is fixed at initialization and never changes in place;
// changing what a node holds means calling Free and initializing it again.
// Containers (List, Dict) own their children: freeing a container
// recursively frees them. There is no reference counting and no cyclic
// structure — a tree is strictly a DAG with single ownership, exactly as
// spec'd, which is why every accessor here takes and returns concrete
// *Variant pointers rather than an interface.
package variant

import (
	"github.com/brindle-bt/brindle/quark"
)

// Kind identifies which alternative of the tagged union a Variant holds.
type Kind uint8

const (
	// Unset is the zero-value kind. Not serializable; the parser never
	// hands one back to a caller, but a freshly-declared Variant starts
	// here until a New*/Init* call gives it a kind.
	Unset Kind = iota
	Int
	Bool
	Real
	String
	List
	Dict
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Real:
		return "real"
	case String:
		return "string"
	case List:
		return "list"
	case Dict:
		return "dict"
	default:
		return "unset"
	}
}

// stringMode records how a String-kind Variant's bytes are stored. It's an
// implementation detail: GetStrView returns an equivalent byte view
// regardless of mode (invariant 3 of the data model).
type stringMode uint8

const (
	modeInline stringMode = iota
	modeOwned
	modeBorrowed
)

// inlineCap is the largest string length stored inline, without a separate
// heap allocation for the byte payload.
const inlineCap = 23

// dictEntry is one (key, child) pair in a Dict's storage order.
type dictEntry struct {
	key   quark.Quark
	value *Variant
}

// Variant is a tagged-union node. Its zero value has kind Unset.
type Variant struct {
	kind Kind

	// Int and Bool (Bool as 0/1).
	i int64

	// Real.
	f float64

	// String storage: exactly one of the three fields below is
	// meaningful, selected by mode.
	mode      stringMode
	inline    [inlineCap]byte
	inlineLen uint8
	owned     string
	borrowed  []byte

	// List: owned children, index-addressable.
	list []*Variant

	// Dict: insertion-ordered (key, child) pairs. Duplicate keys may
	// coexist (e.g. after a merge); lookup returns the first match.
	dict []dictEntry
}

// Kind reports which alternative v currently holds.
func (v *Variant) Kind() Kind { return v.kind }

// New* constructors: each returns a freshly initialized Variant of the
// named kind. These are the normal way to build a tree (the parser, tests,
// RPC handlers); the in-place Init* methods initialize a node that already
// exists, such as a slot returned by Append or a node reset by Free.

func NewInt(n int64) *Variant {
	v := &Variant{}
	v.InitInt(n)
	return v
}

func NewBool(b bool) *Variant {
	v := &Variant{}
	v.InitBool(b)
	return v
}

func NewReal(f float64) *Variant {
	v := &Variant{}
	v.InitReal(f)
	return v
}

func NewString(s string) *Variant {
	v := &Variant{}
	v.InitStr(s)
	return v
}

// NewStringView creates a borrowed-mode string Variant referencing b
// directly, without copying. The caller must guarantee b outlives v, or
// call Promote before that guarantee would be violated (invariant 4).
func NewStringView(b []byte) *Variant {
	v := &Variant{}
	v.InitStrView(b)
	return v
}

func NewList(reserve int) *Variant {
	v := &Variant{}
	v.InitList(reserve)
	return v
}

func NewDict(reserve int) *Variant {
	v := &Variant{}
	v.InitDict(reserve)
	return v
}

// requireUnset panics if v already holds a value. Per invariant 1, a
// node's kind is immutable after initialization; callers that want to
// change what a node holds must call Free first. This is a programmer
// error, not a data error, so it panics rather than returning a result —
// the same treatment the quark table gives an allocation failure.
func (v *Variant) requireUnset() {
	if v.kind != Unset {
		panic("variant: Init called on an already-initialized node; call Free first")
	}
}

func (v *Variant) InitInt(n int64) {
	v.requireUnset()
	v.kind = Int
	v.i = n
}

func (v *Variant) InitBool(b bool) {
	v.requireUnset()
	v.kind = Bool
	if b {
		v.i = 1
	} else {
		v.i = 0
	}
}

func (v *Variant) InitReal(f float64) {
	v.requireUnset()
	v.kind = Real
	v.f = f
}

func (v *Variant) InitStr(s string) {
	v.requireUnset()
	v.kind = String
	if len(s) <= inlineCap {
		v.mode = modeInline
		v.inlineLen = uint8(copy(v.inline[:], s))
		return
	}
	v.mode = modeOwned
	v.owned = s
}

// InitStrView initializes v as a borrowed-mode string referencing b
// in-place. Short strings are still promoted to inline storage: there is
// no benefit to holding a slice header over a handful of bytes that fit in
// the node itself, and inline storage sidesteps the borrow-lifetime
// obligation entirely.
func (v *Variant) InitStrView(b []byte) {
	v.requireUnset()
	v.kind = String
	if len(b) <= inlineCap {
		v.mode = modeInline
		v.inlineLen = uint8(copy(v.inline[:], b))
		return
	}
	v.mode = modeBorrowed
	v.borrowed = b
}

// InitList initializes v as an empty list. reserve is an advisory capacity
// hint, never a hard limit.
func (v *Variant) InitList(reserve int) {
	v.requireUnset()
	v.kind = List
	if reserve > 0 {
		v.list = make([]*Variant, 0, reserve)
	}
}

// InitDict initializes v as an empty dict. reserve is an advisory capacity
// hint, never a hard limit.
func (v *Variant) InitDict(reserve int) {
	v.requireUnset()
	v.kind = Dict
	if reserve > 0 {
		v.dict = make([]dictEntry, 0, reserve)
	}
}

// Free recursively releases v's children (if any) and resets v to Unset,
// so it may be initialized again. Destruction of a non-container is a
// no-op beyond dropping any owned/borrowed string reference.
func (v *Variant) Free() {
	switch v.kind {
	case List:
		for _, child := range v.list {
			child.Free()
		}
		v.list = nil
	case Dict:
		for _, entry := range v.dict {
			entry.value.Free()
		}
		v.dict = nil
	}
	v.kind = Unset
	v.i = 0
	v.f = 0
	v.mode = modeInline
	v.inlineLen = 0
	v.owned = ""
	v.borrowed = nil
}

// Promote walks v's subtree and copies every borrowed-mode string into
// owned storage. Call this before a tree built over borrowed views (e.g.
// one whose strings point into a request buffer about to be reused) is
// handed across a lifetime boundary it wasn't built to survive — merged
// into a longer-lived tree, stored, or sent to another goroutine.
func (v *Variant) Promote() {
	switch v.kind {
	case String:
		if v.mode == modeBorrowed {
			v.owned = string(v.borrowed)
			v.borrowed = nil
			v.mode = modeOwned
		}
	case List:
		for _, child := range v.list {
			child.Promote()
		}
	case Dict:
		for _, entry := range v.dict {
			entry.value.Promote()
		}
	}
}

// rawStrView returns v's string bytes without checking v.kind == String;
// callers must have already verified that.
func (v *Variant) rawStrView() []byte {
	switch v.mode {
	case modeInline:
		return v.inline[:v.inlineLen]
	case modeOwned:
		return []byte(v.owned)
	default: // modeBorrowed
		return v.borrowed
	}
}

// Clone returns a deep, fully-owned copy of v: no borrowed strings survive
// into the copy, and no children are shared with v. Used by merge, which
// must not let the destination and source trees alias any node.
func (v *Variant) Clone() *Variant {
	out := &Variant{}
	switch v.kind {
	case Unset:
		// nothing to do; out stays Unset
	case Int:
		out.InitInt(v.i)
	case Bool:
		out.InitBool(v.i != 0)
	case Real:
		out.InitReal(v.f)
	case String:
		out.InitStr(string(v.rawStrView()))
	case List:
		out.InitList(len(v.list))
		for _, child := range v.list {
			out.list = append(out.list, child.Clone())
		}
	case Dict:
		out.InitDict(len(v.dict))
		for _, entry := range v.dict {
			out.dict = append(out.dict, dictEntry{key: entry.key, value: entry.value.Clone()})
		}
	}
	return out
}
