package lexer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/coregx/logsurgeon/ast"
	"github.com/coregx/logsurgeon/automaton"
	"github.com/coregx/logsurgeon/nfa"
	"github.com/coregx/logsurgeon/prefilter"
	"github.com/coregx/logsurgeon/schema"
	"github.com/coregx/logsurgeon/stream"
	"github.com/coregx/logsurgeon/token"
)

// buildDFA compiles each pattern as a distinct variable ID in slice order
// and unions them into one DFA, mirroring the top-level facade's wiring.
func buildDFA(t *testing.T, patterns ...string) *automaton.DFA {
	t.Helper()
	nfas := make([]*nfa.NFA, len(patterns))
	for i, p := range patterns {
		node, err := ast.FromPattern(p)
		if err != nil {
			t.Fatalf("FromPattern(%q): %v", p, err)
		}
		n, err := nfa.Compile(node, i, i)
		if err != nil {
			t.Fatalf("Compile(%q): %v", p, err)
		}
		nfas[i] = n
	}
	d, err := automaton.Determinize(nfas, 0)
	if err != nil {
		t.Fatalf("Determinize: %v", err)
	}
	return d
}

func drain(t *testing.T, l *Lexer) []token.Token {
	t.Helper()
	var toks []token.Token
	for {
		tok, err := l.Next()
		if errors.Is(err, io.EOF) {
			return toks
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		toks = append(toks, tok)
	}
}

func TestLexerEmitsVariableTokens(t *testing.T) {
	d := buildDFA(t, "[0-9]+")
	l := New(context.Background(), d, stream.NewReader(strings.NewReader("42")), nil)
	toks := drain(t, l)
	if len(toks) != 1 || toks[0].VariableID != 0 || string(toks[0].Lexeme) != "42" {
		t.Fatalf("tokens = %+v", toks)
	}
	if toks[0].StartOffset != 0 || toks[0].EndOffset != 2 {
		t.Fatalf("offsets = %+v", toks[0])
	}
}

func TestLexerCoalescesStaticRuns(t *testing.T) {
	d := buildDFA(t, "[0-9]+")
	l := New(context.Background(), d, stream.NewReader(strings.NewReader("id=42!")), nil)
	toks := drain(t, l)
	want := []struct {
		variableID int
		lexeme     string
	}{
		{token.Static, "id="},
		{0, "42"},
		{token.Static, "!"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].VariableID != w.variableID || string(toks[i].Lexeme) != w.lexeme {
			t.Errorf("token %d = %+v, want {%d %q}", i, toks[i], w.variableID, w.lexeme)
		}
	}
}

func TestLexerLongestMatchWins(t *testing.T) {
	// "a" and "a+" both accept on a run of a's; the lexer must not stop
	// after the first accepting byte.
	d := buildDFA(t, "a", "a+")
	l := New(context.Background(), d, stream.NewReader(strings.NewReader("aaa")), nil)
	toks := drain(t, l)
	if len(toks) != 1 || string(toks[0].Lexeme) != "aaa" || toks[0].VariableID != 1 {
		t.Fatalf("tokens = %+v", toks)
	}
}

func TestLexerPriorityOrdering(t *testing.T) {
	// Keyword (lower priority value, declared first) beats the generic
	// identifier pattern on an exact tie.
	d := buildDFA(t, "foo", "[a-z]+")
	l := New(context.Background(), d, stream.NewReader(strings.NewReader("foo")), nil)
	toks := drain(t, l)
	if len(toks) != 1 || toks[0].VariableID != 0 {
		t.Fatalf("expected variable 0 (keyword) to win, got %+v", toks)
	}
}

func TestLexerEmptyStreamIsImmediateEOF(t *testing.T) {
	d := buildDFA(t, "[0-9]+")
	l := New(context.Background(), d, stream.NewReader(strings.NewReader("")), nil)
	if _, err := l.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on empty stream, got %v", err)
	}
}

func TestLexerWithExhaustivePrefilter(t *testing.T) {
	d := buildDFA(t, "ERROR")
	s, err := schema.NewBuilder().AddVariable("level", "ERROR", false).Build()
	if err != nil {
		t.Fatal(err)
	}
	pf := prefilter.Build(s)
	if !pf.Exhaustive() {
		t.Fatal("expected an all-literal schema to build an exhaustive prefilter")
	}
	l := New(context.Background(), d, stream.NewReader(strings.NewReader("xx ERROR yy")), pf)
	toks := drain(t, l)
	want := []struct {
		variableID int
		lexeme     string
	}{
		{token.Static, "xx "},
		{0, "ERROR"},
		{token.Static, " yy"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].VariableID != w.variableID || string(toks[i].Lexeme) != w.lexeme {
			t.Errorf("token %d = %+v, want {%d %q}", i, toks[i], w.variableID, w.lexeme)
		}
	}
}
