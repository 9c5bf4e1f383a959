package bencode

import (
	"github.com/brindle-bt/brindle/pkg/metrics"
	"github.com/brindle-bt/brindle/variant"
)

// Merge overwrites dest's entries with deep copies of src's, per spec.md
// §4.8: scalar-over-anything and container-over-scalar replace the
// destination slot outright; dict-over-dict recurses, preserving dest
// keys src doesn't mention; list-over-list replaces dest's list wholesale
// (no element-wise merging — a list has no natural key to merge by). If
// either side isn't a Dict at the top level, Merge is a no-op: there is no
// sensible overwrite semantics for merging two lists or two scalars.
//
// Merge never deletes a key from dest that src doesn't mention.
func Merge(dest, src *variant.Variant) {
	if dest.Kind() != variant.Dict || src.Kind() != variant.Dict {
		return
	}
	metrics.MergeOperationsTotal.Inc()
	mergeDict(dest, src)
}

func mergeDict(dest, src *variant.Variant) {
	for _, entry := range src.Entries() {
		existing, found := dest.Find(entry.Key)

		if found && existing.Kind() == variant.Dict && entry.Value.Kind() == variant.Dict {
			mergeDict(existing, entry.Value)
			continue
		}

		if found {
			dest.Remove(entry.Key)
		}
		dest.AddChild(entry.Key, entry.Value.Clone())
	}
}
