package variant

import "github.com/brindle-bt/brindle/quark"

// GetInt returns v's value as an int64. Value-preserving coercions per
// spec.md §4.7: a Bool reads as 0/1. Real is not coerced to Int (real→int
// is explicitly disallowed, to preserve round-trip purity). Anything else
// fails with ok=false and a zero value.
func (v *Variant) GetInt() (n int64, ok bool) {
	switch v.kind {
	case Int:
		return v.i, true
	case Bool:
		return v.i, true
	default:
		return 0, false
	}
}

// GetBool returns v's value as a bool. Coercions: an Int reads as false
// iff it is exactly 0. A String reads as true/false only for the exact
// literals "true"/"false"; any other string fails.
func (v *Variant) GetBool() (b bool, ok bool) {
	switch v.kind {
	case Bool:
		return v.i != 0, true
	case Int:
		return v.i != 0, true
	case String:
		s := v.rawStrView()
		switch string(s) {
		case "true":
			return true, true
		case "false":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// GetReal returns v's value as a float64. Coercion: Int→Real is allowed.
// Real→Int is not the reverse of this and is handled (rejected) in
// GetInt, not here.
func (v *Variant) GetReal() (f float64, ok bool) {
	switch v.kind {
	case Real:
		return v.f, true
	case Int:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// GetStrView returns v's bytes as a view, regardless of which storage mode
// backs it (invariant 3). The returned slice must not be mutated, and, if
// v is borrowed-mode, is only valid for as long as the memory v was built
// over remains valid.
func (v *Variant) GetStrView() (b []byte, ok bool) {
	if v.kind != String {
		return nil, false
	}
	return v.rawStrView(), true
}

// List accessors.

// Size returns the number of children in a List, or 0 if v is not a
// List — callers that need to distinguish "empty List" from "not a List"
// should check Kind() first, same as every other accessor pair in this
// package returning (value, ok) instead.
func (v *Variant) Size() int {
	if v.kind != List {
		return 0
	}
	return len(v.list)
}

// Child returns the i'th element of a List. ok is false if v is not a
// List or i is out of range.
func (v *Variant) Child(i int) (child *Variant, ok bool) {
	if v.kind != List || i < 0 || i >= len(v.list) {
		return nil, false
	}
	return v.list[i], true
}

// Append adds a new, Unset child slot to a List and returns a pointer to
// it for the caller to initialize. ok is false if v is not a List.
func (v *Variant) Append() (slot *Variant, ok bool) {
	if v.kind != List {
		return nil, false
	}
	slot = &Variant{}
	v.list = append(v.list, slot)
	return slot, true
}

// AppendChild appends an already-constructed child to a List, taking
// ownership of it. Used by the parser, which builds each element before
// it knows where it lands.
func (v *Variant) AppendChild(child *Variant) bool {
	if v.kind != List {
		return false
	}
	v.list = append(v.list, child)
	return true
}

// Dict accessors.

// Find returns the first child stored under key, in storage order. ok is
// false if v is not a Dict or key is absent.
func (v *Variant) Find(key quark.Quark) (child *Variant, ok bool) {
	if v.kind != Dict {
		return nil, false
	}
	for _, entry := range v.dict {
		if entry.key == key {
			return entry.value, true
		}
	}
	return nil, false
}

// FindInt looks up key and reads it as an int64, applying the same
// coercions as GetInt.
func (v *Variant) FindInt(key quark.Quark) (n int64, ok bool) {
	child, ok := v.Find(key)
	if !ok {
		return 0, false
	}
	return child.GetInt()
}

// FindBool looks up key and reads it as a bool, applying the same
// coercions as GetBool.
func (v *Variant) FindBool(key quark.Quark) (b bool, ok bool) {
	child, ok := v.Find(key)
	if !ok {
		return false, false
	}
	return child.GetBool()
}

// FindReal looks up key and reads it as a float64, applying the same
// coercions as GetReal.
func (v *Variant) FindReal(key quark.Quark) (f float64, ok bool) {
	child, ok := v.Find(key)
	if !ok {
		return 0, false
	}
	return child.GetReal()
}

// FindStrView looks up key and reads it as a byte view.
func (v *Variant) FindStrView(key quark.Quark) (b []byte, ok bool) {
	child, ok := v.Find(key)
	if !ok {
		return nil, false
	}
	return child.GetStrView()
}

// FindList looks up key and returns it only if it is a List.
func (v *Variant) FindList(key quark.Quark) (list *Variant, ok bool) {
	child, ok := v.Find(key)
	if !ok || child.kind != List {
		return nil, false
	}
	return child, true
}

// FindDict looks up key and returns it only if it is a Dict.
func (v *Variant) FindDict(key quark.Quark) (dict *Variant, ok bool) {
	child, ok := v.Find(key)
	if !ok || child.kind != Dict {
		return nil, false
	}
	return child, true
}

// add appends a new (key, child) pair to a Dict. It does not check for or
// remove an existing entry under key — per spec.md §4.7, inserting a key
// that already exists appends rather than replaces, so duplicate keys can
// coexist and the first-inserted one wins on lookup. Callers that want
// overwrite semantics should Remove first, or use Merge.
func (v *Variant) add(key quark.Quark, child *Variant) bool {
	if v.kind != Dict {
		return false
	}
	v.dict = append(v.dict, dictEntry{key: key, value: child})
	return true
}

func (v *Variant) AddInt(key quark.Quark, n int64) bool    { return v.add(key, NewInt(n)) }
func (v *Variant) AddBool(key quark.Quark, b bool) bool     { return v.add(key, NewBool(b)) }
func (v *Variant) AddReal(key quark.Quark, f float64) bool  { return v.add(key, NewReal(f)) }
func (v *Variant) AddStr(key quark.Quark, s string) bool    { return v.add(key, NewString(s)) }
func (v *Variant) AddStrView(key quark.Quark, b []byte) bool {
	return v.add(key, NewStringView(b))
}

// AddList adds a new empty List under key and returns it for the caller to
// populate via Append. ok is false if v is not a Dict.
func (v *Variant) AddList(key quark.Quark) (list *Variant, ok bool) {
	child := NewList(0)
	if !v.add(key, child) {
		return nil, false
	}
	return child, true
}

// AddDict adds a new empty Dict under key and returns it for the caller to
// populate. ok is false if v is not a Dict.
func (v *Variant) AddDict(key quark.Quark) (dict *Variant, ok bool) {
	child := NewDict(0)
	if !v.add(key, child) {
		return nil, false
	}
	return child, true
}

// AddChild appends an already-constructed child under key, taking
// ownership of it. Used by the parser and by merge, which both build
// children before they know the container they'll land in.
func (v *Variant) AddChild(key quark.Quark, child *Variant) bool {
	return v.add(key, child)
}

// Remove deletes the first entry stored under key, in storage order.
// Reports whether an entry was found and removed.
func (v *Variant) Remove(key quark.Quark) bool {
	if v.kind != Dict {
		return false
	}
	for i, entry := range v.dict {
		if entry.key == key {
			entry.value.Free()
			v.dict = append(v.dict[:i], v.dict[i+1:]...)
			return true
		}
	}
	return false
}

// DictLen returns the number of stored (key, value) pairs, including any
// duplicates. Zero if v is not a Dict.
func (v *Variant) DictLen() int {
	if v.kind != Dict {
		return 0
	}
	return len(v.dict)
}

// DictEntry is a read-only view of one stored pair, returned by Entries
// for callers (the walker, tests) that need to iterate storage order
// directly rather than through Find.
type DictEntry struct {
	Key   quark.Quark
	Value *Variant
}

// Entries returns v's (key, value) pairs in storage (insertion) order.
// Empty if v is not a Dict.
func (v *Variant) Entries() []DictEntry {
	if v.kind != Dict {
		return nil
	}
	out := make([]DictEntry, len(v.dict))
	for i, e := range v.dict {
		out[i] = DictEntry{Key: e.key, Value: e.value}
	}
	return out
}

// Elements returns v's list children in storage order. Empty if v is not
// a List.
func (v *Variant) Elements() []*Variant {
	if v.kind != List {
		return nil
	}
	return v.list
}
