package event

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/coregx/logsurgeon/ast"
	"github.com/coregx/logsurgeon/automaton"
	"github.com/coregx/logsurgeon/lexer"
	"github.com/coregx/logsurgeon/nfa"
	"github.com/coregx/logsurgeon/stream"
	"github.com/coregx/logsurgeon/token"
)

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

func newAssembler(t *testing.T, input string, timestampID int, patterns ...string) *Assembler {
	t.Helper()
	d := buildDFA(t, patterns...)
	lx := lexer.New(context.Background(), d, stream.NewReader(strings.NewReader(input)), nil)
	return New(lx, timestampID)
}

func TestAssemblerSingleEvent(t *testing.T) {
	a := newAssembler(t, "2022-10-10 12:30:02 I hello\n", 0,
		`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`, `[IWE]`)

	ev, err := a.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(ev.TimestampToken.Lexeme) != "2022-10-10 12:30:02" {
		t.Fatalf("timestamp lexeme = %q", ev.TimestampToken.Lexeme)
	}
	want := []struct {
		variableID int
		lexeme     string
	}{
		{token.Static, " "},
		{1, "I"},
		{token.Static, " hello\n"},
	}
	if len(ev.BodyTokens) != len(want) {
		t.Fatalf("body tokens = %+v, want %d entries", ev.BodyTokens, len(want))
	}
	for i, w := range want {
		got := ev.BodyTokens[i]
		if got.VariableID != w.variableID || string(got.Lexeme) != w.lexeme {
			t.Errorf("body[%d] = %+v, want {%d %q}", i, got, w.variableID, w.lexeme)
		}
	}

	if _, err := a.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the only event, got %v", err)
	}
}

func TestAssemblerMultilineEvents(t *testing.T) {
	a := newAssembler(t, "T1 line1\nline2\nT2 line3", 0, `T\d+`)

	ev1, err := a.Next()
	if err != nil {
		t.Fatalf("Next (1st event): %v", err)
	}
	if string(ev1.TimestampToken.Lexeme) != "T1" {
		t.Fatalf("1st timestamp = %q", ev1.TimestampToken.Lexeme)
	}
	if len(ev1.BodyTokens) != 1 || string(ev1.BodyTokens[0].Lexeme) != " line1\nline2\n" {
		t.Fatalf("1st event body = %+v", ev1.BodyTokens)
	}

	ev2, err := a.Next()
	if err != nil {
		t.Fatalf("Next (2nd event): %v", err)
	}
	if string(ev2.TimestampToken.Lexeme) != "T2" {
		t.Fatalf("2nd timestamp = %q", ev2.TimestampToken.Lexeme)
	}
	if len(ev2.BodyTokens) != 1 || string(ev2.BodyTokens[0].Lexeme) != " line3" {
		t.Fatalf("2nd event body = %+v", ev2.BodyTokens)
	}

	if _, err := a.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after both events, got %v", err)
	}
}

func TestAssemblerDiscardsPrologue(t *testing.T) {
	a := newAssembler(t, "garbage T1 body", 0, `T\d+`)
	ev, err := a.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(ev.TimestampToken.Lexeme) != "T1" {
		t.Fatalf("expected prologue before T1 to be discarded, got timestamp %q", ev.TimestampToken.Lexeme)
	}
}

// errAfter returns "12" and then a sentinel error, modeling a stream that
// fails mid-token.
type errAfter struct {
	data []byte
	err  error
	sent bool
}

func (r *errAfter) Read(p []byte) (int, error) {
	if !r.sent {
		n := copy(p, r.data)
		r.sent = true
		return n, nil
	}
	return 0, r.err
}

func TestAssemblerStreamErrorMidToken(t *testing.T) {
	boom := errors.New("connection reset")
	d := buildDFA(t, `T\d+`, `\d+`)
	lx := lexer.New(context.Background(), d, stream.NewReader(&errAfter{data: []byte("T1 12"), err: boom}), nil)
	a := New(lx, 0)

	// The event accumulated before the failure (timestamp plus whatever
	// body tokens were lexed) is still delivered; the error surfaces as
	// the terminal element of the sequence, not lost or merged away.
	ev, err := a.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(ev.TimestampToken.Lexeme) != "T1" {
		t.Fatalf("timestamp = %q", ev.TimestampToken.Lexeme)
	}

	_, err = a.Next()
	var serr *stream.Error
	if !errors.As(err, &serr) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped stream error, got %v", err)
	}
}
