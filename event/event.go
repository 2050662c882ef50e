// Package event groups a lexer's token stream into log events, using the
// schema's distinguished timestamp variable as the event delimiter.
package event

import (
	"io"

	"github.com/coregx/logsurgeon/lexer"
	"github.com/coregx/logsurgeon/token"
)

// LogEvent is a timestamp-delimited span of input: the timestamp token at
// its head plus every token up to (not including) the next timestamp token.
type LogEvent struct {
	TimestampToken token.Token
	BodyTokens     []token.Token
}

// state is the Assembler's position in its Idle/InEvent state machine.
type state uint8

const (
	idle state = iota
	inEvent
)

// Assembler pulls tokens from a lexer.Lexer and groups them into LogEvents.
// Tokens before the first timestamp token are discarded; any event still
// accumulating at end-of-stream is flushed as a final LogEvent.
type Assembler struct {
	lex         *lexer.Lexer
	timestampID int
	st          state
	current     *LogEvent
	pendingNext *token.Token // a timestamp token already read that starts the next event
	err         error
}

// New returns an Assembler pulling from lex and using timestampID (a schema
// variable ID, see schema.Schema.TimestampID) as the event delimiter.
func New(lex *lexer.Lexer, timestampID int) *Assembler {
	return &Assembler{lex: lex, timestampID: timestampID, st: idle}
}

// Next returns the next assembled LogEvent, or io.EOF once the stream is
// exhausted and any in-progress event has been flushed.
func (a *Assembler) Next() (*LogEvent, error) {
	if a.err != nil {
		err := a.err
		a.err = nil
		return nil, err
	}

	if a.pendingNext != nil {
		a.current = &LogEvent{TimestampToken: *a.pendingNext}
		a.pendingNext = nil
		a.st = inEvent
	}

	for {
		tok, err := a.lex.Next()
		if err != nil {
			if err == io.EOF {
				return a.flush(io.EOF)
			}
			return a.flush(err)
		}

		// timestampID may be schema.NoTimestamp (-1), the same sentinel
		// token.Static uses for unrecognized-byte tokens; guard explicitly
		// so a schema with no timestamp variable never mistakes a STATIC
		// token for one.
		isTimestamp := a.timestampID >= 0 && tok.VariableID == a.timestampID

		switch a.st {
		case idle:
			if isTimestamp {
				a.current = &LogEvent{TimestampToken: tok}
				a.st = inEvent
			}
			// non-timestamp tokens before the first timestamp are discarded
		case inEvent:
			if isTimestamp {
				done := a.current
				a.pendingNext = &tok
				a.current = nil
				return done, nil
			}
			a.current.BodyTokens = append(a.current.BodyTokens, tok)
		}
	}
}

// flush returns the in-progress event, if any, and stashes terminal as the
// error to return on the next call once the flush has been delivered.
func (a *Assembler) flush(terminal error) (*LogEvent, error) {
	if a.current == nil {
		return nil, terminal
	}
	done := a.current
	a.current = nil
	a.st = idle
	a.err = terminal
	return done, nil
}
