package bencode

import (
	"bytes"
	"strconv"
	"time"

	"github.com/brindle-bt/brindle/pkg/metrics"
	"github.com/brindle-bt/brindle/variant"
)

// serializerVisitor implements Visitor by writing canonical bencode to an
// in-memory buffer. Serialization is total over well-formed trees and
// never fails except due to output sink errors; bytes.Buffer never
// errors, so every method here is void, matching the walker callback
// contract of spec.md §4.5.
type serializerVisitor struct {
	buf bytes.Buffer
}

func (s *serializerVisitor) Int(n int64) {
	s.buf.WriteByte('i')
	s.buf.WriteString(strconv.FormatInt(n, 10))
	s.buf.WriteByte('e')
}

func (s *serializerVisitor) Bool(b bool) {
	if b {
		s.buf.WriteString("i1e")
	} else {
		s.buf.WriteString("i0e")
	}
}

// Real's textual form is this module's resolution of spec.md §9 Q2: bencode has no
// native real type, so any textual form is a convention the producer and
// consumer must share. This one matches the original implementation's
// saveRealFunc, which formats with a bare "%f" — fixed-point, six
// fractional digits, no scientific notation — so a tree round-tripped
// between this codec and the original stays byte-identical at real-valued
// keys.
func (s *serializerVisitor) Real(f float64) {
	str := strconv.FormatFloat(f, 'f', 6, 64)
	s.buf.WriteString(strconv.Itoa(len(str)))
	s.buf.WriteByte(':')
	s.buf.WriteString(str)
}

func (s *serializerVisitor) String(b []byte) {
	s.buf.WriteString(strconv.Itoa(len(b)))
	s.buf.WriteByte(':')
	s.buf.Write(b)
}

func (s *serializerVisitor) DictBegin()    { s.buf.WriteByte('d') }
func (s *serializerVisitor) ListBegin()    { s.buf.WriteByte('l') }
func (s *serializerVisitor) ContainerEnd() { s.buf.WriteByte('e') }

// Serialize returns the canonical bencoding of v: dict keys in ascending
// byte-lexicographic order, integers with no redundant leading zeros and
// no negative zero, binary-clean length-prefixed strings.
func Serialize(v *variant.Variant) []byte {
	start := time.Now()
	sv := &serializerVisitor{}
	Walk(v, sv, true)
	metrics.SerializeDurationMilliseconds.Observe(float64(time.Since(start)) / float64(time.Millisecond))
	return sv.buf.Bytes()
}
