package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brindle-bt/brindle/quark"
	"github.com/brindle-bt/brindle/variant"
)

func TestMergeOverwritesScalarsAndPreservesUntouchedKeys(t *testing.T) {
	// dest: {i1: 1, i2: 2, i3: 3, s5: "old"}
	// src:  {i2: 20, i4: 4, s6: "new"}
	// want: {i1: 1, i2: 20, i3: 3, i4: 4, s5: "old", s6: "new"}
	dest, _, err := Parse([]byte("d2:i1i1e2:i2i2e2:i3i3e2:s53:olde"))
	require.NoError(t, err)
	src, _, err := Parse([]byte("d2:i2i20e2:i4i4e2:s63:newe"))
	require.NoError(t, err)

	Merge(dest, src)

	i1, ok := dest.FindInt(quark.Intern("i1"))
	require.True(t, ok)
	assert.EqualValues(t, 1, i1)

	i2, ok := dest.FindInt(quark.Intern("i2"))
	require.True(t, ok)
	assert.EqualValues(t, 20, i2)

	i3, ok := dest.FindInt(quark.Intern("i3"))
	require.True(t, ok)
	assert.EqualValues(t, 3, i3)

	i4, ok := dest.FindInt(quark.Intern("i4"))
	require.True(t, ok)
	assert.EqualValues(t, 4, i4)

	s5, ok := dest.FindStrView(quark.Intern("s5"))
	require.True(t, ok)
	assert.Equal(t, "old", string(s5))

	s6, ok := dest.FindStrView(quark.Intern("s6"))
	require.True(t, ok)
	assert.Equal(t, "new", string(s6))
}

func TestMergeRecursesIntoNestedDicts(t *testing.T) {
	dest := variant.NewDict(0)
	inner := variant.NewDict(0)
	inner.AddStr(quark.Intern("name"), "old")
	inner.AddInt(quark.Intern("size"), 1)
	dest.AddChild(quark.Intern("info"), inner)

	src := variant.NewDict(0)
	srcInner := variant.NewDict(0)
	srcInner.AddStr(quark.Intern("name"), "new")
	src.AddChild(quark.Intern("info"), srcInner)

	Merge(dest, src)

	info, ok := dest.FindDict(quark.Intern("info"))
	require.True(t, ok)

	name, ok := info.FindStrView(quark.Intern("name"))
	require.True(t, ok)
	assert.Equal(t, "new", string(name))

	// size wasn't mentioned in src's nested dict; it must survive.
	size, ok := info.FindInt(quark.Intern("size"))
	require.True(t, ok)
	assert.EqualValues(t, 1, size)
}

func TestMergeContainerOverwritesScalar(t *testing.T) {
	dest := variant.NewDict(0)
	dest.AddInt(quark.Intern("k"), 5)

	src := variant.NewDict(0)
	list, _ := src.AddList(quark.Intern("k"))
	list.AppendChild(variant.NewInt(1))

	Merge(dest, src)

	got, ok := dest.FindList(quark.Intern("k"))
	require.True(t, ok)
	assert.Equal(t, 1, got.Size())
}

func TestMergeListReplacesWholesale(t *testing.T) {
	dest := variant.NewDict(0)
	destList, _ := dest.AddList(quark.Intern("l"))
	destList.AppendChild(variant.NewInt(1))
	destList.AppendChild(variant.NewInt(2))

	src := variant.NewDict(0)
	srcList, _ := src.AddList(quark.Intern("l"))
	srcList.AppendChild(variant.NewInt(9))

	Merge(dest, src)

	got, ok := dest.FindList(quark.Intern("l"))
	require.True(t, ok)
	require.Equal(t, 1, got.Size())
	child, _ := got.Child(0)
	n, _ := child.GetInt()
	assert.EqualValues(t, 9, n)
}

func TestMergeNoopWhenEitherSideNotDict(t *testing.T) {
	dest := variant.NewList(0)
	dest.AppendChild(variant.NewInt(1))
	src := variant.NewDict(0)
	src.AddInt(quark.Intern("k"), 1)

	Merge(dest, src)

	assert.Equal(t, 1, dest.Size())
}

func TestMergeDoesNotAliasSourceNodes(t *testing.T) {
	dest := variant.NewDict(0)
	src := variant.NewDict(0)
	srcInner := variant.NewDict(0)
	srcInner.AddInt(quark.Intern("x"), 1)
	src.AddChild(quark.Intern("k"), srcInner)

	Merge(dest, src)

	got, ok := dest.FindDict(quark.Intern("k"))
	require.True(t, ok)
	got.AddInt(quark.Intern("y"), 2)

	// Mutating dest's copy must not affect src's original.
	_, hasY := srcInner.FindInt(quark.Intern("y"))
	assert.False(t, hasY)
}
