package bencode

import (
	"time"

	"github.com/brindle-bt/brindle/errors"
	"github.com/brindle-bt/brindle/pkg/metrics"
	"github.com/brindle-bt/brindle/quark"
	"github.com/brindle-bt/brindle/variant"
)

// frame is one open container on the parser's explicit work stack: either
// a List (pendingKey never used) or a Dict waiting, possibly, on a key
// read from a preceding string token.
type frame struct {
	container     *variant.Variant
	pendingKey    quark.Quark
	hasPendingKey bool
}

// parser holds the mutable state of one parse: the explicit,
// heap-allocated stack of open containers and the top-level result. This
// replaces recursion entirely — the original recursive implementation this
// is grounded on was vulnerable to a stack-smashing attack via
// maliciously-crafted deeply-nested input, and iterating with heap-backed
// state instead of the call stack is a correctness requirement, not an
// optimization.
type parser struct {
	stack     []*frame
	top       *variant.Variant
	topPlaced bool
	maxDepth  int
	borrow    bool // when true, strings alias the input buffer instead of copying
}

// Parse decodes the single bencoded value at the start of buf and returns
// it along with the offset at which parsing stopped. It is not an error
// for buf to contain trailing bytes after a complete top-level value —
// end reports exactly where the parser stopped so the caller can decide
// what, if anything, to do with the remainder.
//
// The returned tree owns copies of every string it read; buf may be
// reused or freed as soon as Parse returns. Use ParseView to build a tree
// that instead borrows string bytes directly out of buf, when the caller
// can guarantee buf outlives the tree (or will call Promote on it before
// that guarantee lapses).
func Parse(buf []byte) (top *variant.Variant, end int, err error) {
	top, end, _, err = parse(buf, false)
	return top, end, err
}

// ParseView is Parse, except string values longer than 23 bytes (not dict
// keys, which are always interned immediately) borrow directly from buf
// rather than being copied; shorter ones are still copied into inline
// storage. See variant.Variant.InitStrView and variant.Variant.Promote.
func ParseView(buf []byte) (top *variant.Variant, end int, err error) {
	top, end, _, err = parse(buf, true)
	return top, end, err
}

// ParseWithDepth is Parse, additionally reporting the maximum container
// nesting depth reached. cmd/brindled's RPC path calls Parse rather than
// this directly, but every call still feeds pkg/metrics.ParseDepth, since
// depth accounting happens inside parse regardless of which entry point a
// caller used.
func ParseWithDepth(buf []byte) (top *variant.Variant, end int, maxDepth int, err error) {
	return parse(buf, false)
}

func parse(buf []byte, borrow bool) (top *variant.Variant, end int, maxDepth int, err error) {
	start := time.Now()
	top, end, maxDepth, err = doParse(buf, borrow)

	metrics.ParseDurationMilliseconds.Observe(float64(time.Since(start)) / float64(time.Millisecond))
	metrics.ParseDepth.Observe(float64(maxDepth))
	if err != nil {
		metrics.ParseErrorsTotal.WithLabelValues(errors.CodeOf(err).String()).Inc()
	}
	return top, end, maxDepth, err
}

func doParse(buf []byte, borrow bool) (top *variant.Variant, end int, maxDepth int, err error) {
	if buf == nil {
		return nil, 0, 0, errors.NewInvalidArgument("bencode: nil buffer")
	}

	p := &parser{borrow: borrow}

	pos := 0
	for pos < len(buf) {
		consumed, ferr := p.step(buf[pos:])
		if ferr != nil {
			return nil, 0, p.maxDepth, ferr
		}
		pos += consumed

		if len(p.stack) == 0 && p.topPlaced {
			break
		}
	}

	if !p.topPlaced || len(p.stack) != 0 {
		return nil, 0, p.maxDepth, errors.NewIllegalSequence("bencode: incomplete or empty top-level value")
	}

	return p.top, pos, p.maxDepth, nil
}

// step consumes exactly one token at the start of rest and returns how
// many bytes it consumed. rest is always non-empty (the caller only calls
// step while pos < len(buf)).
func (p *parser) step(rest []byte) (consumed int, err error) {
	switch c := rest[0]; {
	case c == 'i':
		val, n, serr := scanInt(rest)
		if serr != nil {
			return 0, serr
		}
		if perr := p.place(variant.NewInt(val)); perr != nil {
			return 0, perr
		}
		return n, nil

	case c == 'l':
		list := variant.NewList(0)
		if perr := p.place(list); perr != nil {
			return 0, perr
		}
		p.push(list)
		return 1, nil

	case c == 'd':
		dict := variant.NewDict(0)
		if perr := p.place(dict); perr != nil {
			return 0, perr
		}
		p.push(dict)
		return 1, nil

	case c == 'e':
		if len(p.stack) == 0 {
			return 0, errors.NewIllegalSequence("bencode: unmatched container terminator")
		}
		top := p.stack[len(p.stack)-1]
		if top.hasPendingKey {
			return 0, errors.NewIllegalSequence("bencode: dict has a key with no value")
		}
		p.stack = p.stack[:len(p.stack)-1]
		return 1, nil

	case c >= '0' && c <= '9':
		str, n, serr := scanString(rest)
		if serr != nil {
			return 0, serr
		}

		if len(p.stack) > 0 {
			top := p.stack[len(p.stack)-1]
			if top.container.Kind() == variant.Dict && !top.hasPendingKey {
				top.pendingKey = quark.InternBytes(str)
				top.hasPendingKey = true
				return n, nil
			}
		}

		var sv *variant.Variant
		if p.borrow {
			sv = variant.NewStringView(str)
		} else {
			sv = variant.NewString(string(str))
		}
		if perr := p.place(sv); perr != nil {
			return 0, perr
		}
		return n, nil

	default:
		// Tolerated stray byte at a token boundary: advance past it and
		// keep going, per spec.md §4.4 / §9 Q3. This leniency is
		// deliberately narrow — it never fires mid-token, because every
		// call to step() begins exactly at a token boundary.
		return 1, nil
	}
}

// place inserts a fully-formed value into the tree at the parser's
// current position: the top-level slot if no container is open, the tail
// of the current list, or the value half of the current dict's pending
// key. It is not used for string tokens that become a dict key instead of
// a value — that path is handled directly in step.
func (p *parser) place(v *variant.Variant) error {
	if len(p.stack) == 0 {
		if p.topPlaced {
			return errors.NewIllegalSequence("bencode: a second top-level value was encountered")
		}
		p.top = v
		p.topPlaced = true
		return nil
	}

	top := p.stack[len(p.stack)-1]
	switch top.container.Kind() {
	case variant.List:
		top.container.AppendChild(v)
		return nil
	case variant.Dict:
		if !top.hasPendingKey {
			return errors.NewIllegalSequence("bencode: non-string value where a dict key was expected")
		}
		top.container.AddChild(top.pendingKey, v)
		top.hasPendingKey = false
		return nil
	default:
		// unreachable: only List and Dict variants are ever pushed
		panic("bencode: corrupt parser stack frame")
	}
}

func (p *parser) push(container *variant.Variant) {
	p.stack = append(p.stack, &frame{container: container})
	if len(p.stack) > p.maxDepth {
		p.maxDepth = len(p.stack)
	}
}
