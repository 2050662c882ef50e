package stream

import (
	"context"
	"io"
	"sort"
)

// chunkSize is how many bytes Reader asks the underlying io.Reader for at a
// time while growing its buffer to satisfy a Peek.
const chunkSize = 4096

// Reader adapts an io.Reader to Source. It owns a buffer that grows on
// demand to hold the longest in-progress candidate match and is compacted
// (retired bytes dropped) as Consume advances past them, so it behaves like
// a ring buffer without needing explicit wraparound indexing.
type Reader struct {
	r   io.Reader
	buf []byte
	pos int // buf[pos:] is the unconsumed view

	origin uint64 // absolute offset corresponding to buf[0]

	newlines []uint64 // absolute offsets of every '\n' seen so far

	eof bool
	err error // sticky non-EOF failure from the underlying reader
}

// NewReader wraps r as a Source.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Peek attempts to buffer at least k more bytes and returns a contiguous
// view of the unconsumed buffer. See Source.Peek.
func (s *Reader) Peek(ctx context.Context, k int) ([]byte, error) {
	for len(s.buf)-s.pos < k && !s.eof && s.err == nil {
		if err := ctx.Err(); err != nil {
			return s.buf[s.pos:], err
		}
		s.fill()
	}
	view := s.buf[s.pos:]
	if len(view) >= k {
		return view[:k], nil
	}
	if s.err != nil {
		return view, s.err
	}
	return view, io.EOF
}

// fill reads one chunk from the underlying reader, appends it, and records
// any newlines it contains for LineOf.
func (s *Reader) fill() {
	s.compact()
	start := len(s.buf)
	s.buf = append(s.buf, make([]byte, chunkSize)...)
	n, err := s.r.Read(s.buf[start:])
	s.buf = s.buf[:start+n]
	for i := start; i < start+n; i++ {
		if s.buf[i] == '\n' {
			s.newlines = append(s.newlines, s.origin+uint64(i))
		}
	}
	if err != nil {
		if err == io.EOF {
			s.eof = true
		} else {
			s.err = &Error{Cause: err}
		}
	}
}

// compact drops already-consumed bytes from the front of buf once they make
// up a significant share of it, reclaiming space without shifting on every
// single Consume call.
func (s *Reader) compact() {
	if s.pos == 0 || s.pos < len(s.buf)/2 {
		return
	}
	copy(s.buf, s.buf[s.pos:])
	s.buf = s.buf[:len(s.buf)-s.pos]
	s.origin += uint64(s.pos)
	s.pos = 0
}

// Consume advances the logical cursor by n bytes, which must already have
// been returned by a prior Peek.
func (s *Reader) Consume(n int) {
	s.pos += n
}

// LineOf maps an absolute byte offset to its 1-based line number by
// counting how many recorded newlines precede it.
func (s *Reader) LineOf(offset uint64) uint32 {
	i := sort.Search(len(s.newlines), func(i int) bool { return s.newlines[i] >= offset })
	return uint32(i) + 1
}
