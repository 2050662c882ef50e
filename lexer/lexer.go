// Package lexer turns a byte stream into a sequence of tokens by repeatedly
// running a compiled DFA over the unconsumed prefix of the stream,
// coalescing runs of unrecognized bytes into single STATIC tokens.
package lexer

import (
	"context"
	"io"

	"github.com/coregx/logsurgeon/automaton"
	"github.com/coregx/logsurgeon/prefilter"
	"github.com/coregx/logsurgeon/stream"
	"github.com/coregx/logsurgeon/token"
)

// peekWindow bounds how far ahead SimulateCursor is allowed to grow a single
// Peek call before giving up on extending a candidate match; it is large
// enough for any realistic log field while keeping a single runaway pattern
// from buffering unboundedly.
const peekWindow = 64 * 1024

// scanWindow is how far ahead the prefilter is consulted at once when
// batching a STATIC run.
const scanWindow = 4096

// Lexer pulls tokens one at a time from a stream.Source by driving a
// compiled DFA over it. The context given to New governs every blocking
// read Lexer performs; callers that need per-call cancellation should wrap
// Next calls in their own deadline instead of reconstructing the Lexer.
type Lexer struct {
	ctx    context.Context
	dfa    *automaton.DFA
	src    stream.Source
	pf     *prefilter.Prefilter
	offset uint64
	err    error // sticky terminal error, returned once pending work is flushed
}

// New returns a Lexer reading from src and matching against dfa. pf may be
// nil, in which case every byte is tested against the DFA directly.
func New(ctx context.Context, dfa *automaton.DFA, src stream.Source, pf *prefilter.Prefilter) *Lexer {
	return &Lexer{ctx: ctx, dfa: dfa, src: src, pf: pf}
}

// Next returns the next token in the stream, or io.EOF once the stream is
// exhausted and any pending STATIC run has been flushed.
func (l *Lexer) Next() (token.Token, error) {
	if l.err != nil {
		err := l.err
		l.err = nil
		return token.Token{}, err
	}

	var static []byte
	staticStart := l.offset

	for {
		buf, peekErr := l.src.Peek(l.ctx, 1)
		if len(buf) == 0 {
			if len(static) > 0 {
				l.err = terminalErr(peekErr)
				return l.emitStatic(static, staticStart), nil
			}
			return token.Token{}, terminalErr(peekErr)
		}

		m, simErr := automaton.SimulateCursor(l.dfa, &srcPeeker{ctx: l.ctx, src: l.src, limit: peekWindow})
		if simErr != nil {
			if len(static) > 0 {
				l.err = simErr
				return l.emitStatic(static, staticStart), nil
			}
			return token.Token{}, simErr
		}

		if m.Matched && m.Length > 0 {
			if len(static) > 0 {
				// Flush the accumulated STATIC run first; the variable
				// match is re-discovered on the next Next call since
				// nothing has been consumed to reach it.
				return l.emitStatic(static, staticStart), nil
			}
			matched, peekErr := l.src.Peek(l.ctx, m.Length)
			if peekErr != nil && len(matched) < m.Length {
				return token.Token{}, terminalErr(peekErr)
			}
			lexeme := append([]byte(nil), matched[:m.Length]...)
			tok := token.Token{
				VariableID:  m.VariableID,
				Lexeme:      lexeme,
				StartOffset: l.offset,
				EndOffset:   l.offset + uint64(m.Length),
				Line:        l.src.LineOf(l.offset),
			}
			l.src.Consume(m.Length)
			l.offset += uint64(m.Length)
			return tok, nil
		}

		skip := l.staticRunLength()
		view, peekErr := l.src.Peek(l.ctx, skip)
		if len(view) < skip {
			skip = len(view)
		}
		if skip == 0 {
			skip = 1
		}
		static = append(static, view[:skip]...)
		l.src.Consume(skip)
		l.offset += uint64(skip)
		if peekErr != nil && len(view) == 0 {
			l.err = terminalErr(peekErr)
			return l.emitStatic(static, staticStart), nil
		}
	}
}

// staticRunLength asks the prefilter how many bytes, starting at the
// current cursor, are guaranteed to contain no occurrence or partial prefix
// of any literal-shaped schema variable, so that many STATIC bytes can be
// consumed in one step instead of re-running the DFA after each one. It
// only trusts the prefilter's silence over the whole schema when every
// variable is literal-shaped (Exhaustive); otherwise it falls back to
// advancing one byte at a time, since a non-literal variable could still
// start anywhere.
func (l *Lexer) staticRunLength() int {
	if l.pf == nil || !l.pf.Exhaustive() {
		return 1
	}
	buf, peekErr := l.src.Peek(l.ctx, scanWindow)
	if len(buf) == 0 {
		return 1
	}
	pos, ok := l.pf.NextCandidate(buf, 0)
	if ok {
		if pos == 0 {
			return 1
		}
		return pos
	}
	if peekErr != nil {
		// The window ends at end-of-stream; nothing can straddle it.
		return len(buf)
	}
	// A literal starting in the window's final bytes could finish beyond
	// it, where NextCandidate cannot see; hold those bytes back for the
	// next round.
	skip := len(buf) - l.pf.MaxLiteralLen() + 1
	if skip < 1 {
		skip = 1
	}
	return skip
}

// emitStatic builds the STATIC token covering the accumulated run. The
// stream cursor has already advanced past it byte by byte (or in batches)
// as the run was accumulated.
func (l *Lexer) emitStatic(static []byte, start uint64) token.Token {
	return token.Token{
		VariableID:  token.Static,
		Lexeme:      static,
		StartOffset: start,
		EndOffset:   start + uint64(len(static)),
		Line:        l.src.LineOf(start),
	}
}

// terminalErr normalizes a stream EOF into io.EOF and passes any other
// stream failure through unchanged.
func terminalErr(err error) error {
	if err == nil {
		return io.EOF
	}
	return err
}

// srcPeeker adapts a context-bound stream.Source into automaton.Peeker for
// the duration of a single SimulateCursor call, capping how far it will grow
// the peek window.
type srcPeeker struct {
	ctx   context.Context
	src   stream.Source
	limit int
}

func (p *srcPeeker) Peek(n int) ([]byte, error) {
	if n > p.limit {
		n = p.limit
	}
	return p.src.Peek(p.ctx, n)
}
