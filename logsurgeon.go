// Package logsurgeon parses unstructured text logs against a user-supplied
// schema of named regular-expression variables, one of which may be
// distinguished as the timestamp that delimits log events.
//
// A schema is compiled once into an immutable, concurrency-shareable
// CompiledSchema; any number of lexers or assemblers can then be driven
// from it concurrently, each over its own stream.
//
// Basic usage:
//
//	b := schema.NewBuilder()
//	b.AddVariable("ts", `\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`, true)
//	b.AddVariable("level", `[IWE]`, false)
//	s, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	compiled, err := logsurgeon.Compile(s, logsurgeon.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events := logsurgeon.Parse(compiled, file)
//	for {
//	    ev, err := events.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package logsurgeon

import (
	"context"
	"io"

	"github.com/coregx/logsurgeon/automaton"
	"github.com/coregx/logsurgeon/event"
	"github.com/coregx/logsurgeon/internal/conv"
	"github.com/coregx/logsurgeon/lexer"
	"github.com/coregx/logsurgeon/nfa"
	"github.com/coregx/logsurgeon/prefilter"
	"github.com/coregx/logsurgeon/schema"
	"github.com/coregx/logsurgeon/stream"
)

// CompiledSchema is the immutable result of Compile: the unioned DFA and,
// if enabled, the literal prefilter, plus enough of the schema to drive a
// log-event assembler. It is safe to share read-only across any number of
// concurrently running lexers or assemblers.
type CompiledSchema struct {
	schema      *schema.Schema
	dfa         *automaton.DFA
	prefilter   *prefilter.Prefilter
	timestampID int
}

// Compile builds a CompiledSchema from s: every variable's pattern is
// compiled to an NFA, unioned, and subset-constructed into one DFA, and
// (when config.EnablePrefilter is set) a literal prefilter is built
// alongside it.
func Compile(s *schema.Schema, config Config) (*CompiledSchema, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	nfas := make([]*nfa.NFA, len(s.Variables))
	for _, v := range s.Variables {
		n, err := nfa.Compile(v.AST, v.ID, v.ID)
		if err != nil {
			return nil, err
		}
		nfas[v.ID] = n
	}

	dfa, err := automaton.Determinize(nfas, config.DeterminizationLimit)
	if err != nil {
		return nil, err
	}
	if config.MaxDFAStates > 0 && conv.IntToUint32(dfa.Len()) > config.MaxDFAStates {
		return nil, &automaton.ErrDeterminizationLimit{Limit: int(config.MaxDFAStates)}
	}

	var pf *prefilter.Prefilter
	if config.EnablePrefilter {
		pf = prefilter.Build(s)
	}

	return &CompiledSchema{schema: s, dfa: dfa, prefilter: pf, timestampID: s.TimestampID}, nil
}

// MustCompile is like Compile but panics if s fails to compile. It is
// intended for schemas known to be valid at init time.
func MustCompile(s *schema.Schema, config Config) *CompiledSchema {
	c, err := Compile(s, config)
	if err != nil {
		panic("logsurgeon: Compile: " + err.Error())
	}
	return c
}

// Lex returns a lexer.Lexer reading from r and matching against compiled's
// DFA. Blocking reads are not cancellable through this entry point; use
// lexer.New directly to supply a context.
func Lex(compiled *CompiledSchema, r io.Reader) *lexer.Lexer {
	return lexer.New(context.Background(), compiled.dfa, stream.NewReader(r), compiled.prefilter)
}

// Parse returns an event.Assembler grouping compiled's lexer's tokens into
// LogEvents delimited by the schema's timestamp variable. If the schema has
// no timestamp variable (schema.NoTimestamp), every token is treated as
// prologue and no event is ever emitted.
func Parse(compiled *CompiledSchema, r io.Reader) *event.Assembler {
	return event.New(Lex(compiled, r), compiled.timestampID)
}
