package logsurgeon

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/coregx/logsurgeon/schema"
	"github.com/coregx/logsurgeon/token"
)

func buildSchema(t *testing.T, timestampName string, vars ...[2]string) *schema.Schema {
	t.Helper()
	b := schema.NewBuilder()
	for _, v := range vars {
		b.AddVariable(v[0], v[1], v[0] == timestampName)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("schema build: %v", err)
	}
	return s
}

// A single well-formed event with a static prefix/suffix around a
// variable occurrence.
func TestParseSingleEvent(t *testing.T) {
	s := buildSchema(t, "ts",
		[2]string{"ts", `\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`},
		[2]string{"level", `[IWE]`})
	compiled, err := Compile(s, DefaultConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	events := Parse(compiled, strings.NewReader("2022-10-10 12:30:02 I hello\n"))
	ev, err := events.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(ev.TimestampToken.Lexeme) != "2022-10-10 12:30:02" {
		t.Fatalf("timestamp = %q", ev.TimestampToken.Lexeme)
	}
	if len(ev.BodyTokens) != 3 ||
		string(ev.BodyTokens[0].Lexeme) != " " ||
		string(ev.BodyTokens[1].Lexeme) != "I" ||
		string(ev.BodyTokens[2].Lexeme) != " hello\n" {
		t.Fatalf("body = %+v", ev.BodyTokens)
	}
	if _, err := events.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

// A multi-line event where newline bytes are ordinary body bytes, not
// event delimiters; only the timestamp variable segments events.
func TestParseMultilineEvents(t *testing.T) {
	s := buildSchema(t, "ts", [2]string{"ts", `T\d+`})
	compiled, err := Compile(s, DefaultConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	events := Parse(compiled, strings.NewReader("T1 line1\nline2\nT2 line3"))
	ev1, err := events.Next()
	if err != nil {
		t.Fatalf("Next (1st): %v", err)
	}
	if string(ev1.TimestampToken.Lexeme) != "T1" || len(ev1.BodyTokens) != 1 ||
		string(ev1.BodyTokens[0].Lexeme) != " line1\nline2\n" {
		t.Fatalf("1st event = %+v %+v", ev1.TimestampToken, ev1.BodyTokens)
	}

	ev2, err := events.Next()
	if err != nil {
		t.Fatalf("Next (2nd): %v", err)
	}
	if string(ev2.TimestampToken.Lexeme) != "T2" || len(ev2.BodyTokens) != 1 ||
		string(ev2.BodyTokens[0].Lexeme) != " line3" {
		t.Fatalf("2nd event = %+v %+v", ev2.TimestampToken, ev2.BodyTokens)
	}

	if _, err := events.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

// A stream failure mid-token must not be silently dropped; everything
// emitted before the failure stays valid and the failure is the terminal
// element of the sequence.
type errAfterN struct {
	data []byte
	err  error
	sent bool
}

func (r *errAfterN) Read(p []byte) (int, error) {
	if !r.sent {
		n := copy(p, r.data)
		r.sent = true
		return n, nil
	}
	return 0, r.err
}

func TestLexStreamErrorMidToken(t *testing.T) {
	s := buildSchema(t, "", [2]string{"int", `\d+`})
	compiled, err := Compile(s, DefaultConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	boom := errors.New("connection reset")
	lx := Lex(compiled, &errAfterN{data: []byte("12"), err: boom})

	tok, err := lx.Next()
	if err == nil {
		if tok.VariableID != 0 || string(tok.Lexeme) != "12" {
			t.Fatalf("unexpected token before error: %+v", tok)
		}
		_, err = lx.Next()
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected the stream error to surface, got %v", err)
	}
}

func TestSchemaWithoutTimestampNeverEmitsEvents(t *testing.T) {
	s := buildSchema(t, "", [2]string{"int", `\d+`})
	compiled, err := Compile(s, DefaultConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	events := Parse(compiled, strings.NewReader("a 1 b 2"))
	if _, err := events.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF with no timestamp variable, got %v", err)
	}
}

func TestMustCompilePanicsOnBadSchema(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustCompile to panic on a determinization failure")
		}
	}()
	s := buildSchema(t, "", [2]string{"huge", `a{1,500}`})
	MustCompile(s, Config{MaxDFAStates: 10000, DeterminizationLimit: 1, EnablePrefilter: true})
}

func TestStaticTokenIsTagged(t *testing.T) {
	s := buildSchema(t, "", [2]string{"num", `[0-9]+`})
	compiled, err := Compile(s, DefaultConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	lx := Lex(compiled, strings.NewReader("x"))
	tok, err := lx.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !tok.IsStatic() || tok.VariableID != token.Static {
		t.Fatalf("expected a STATIC token, got %+v", tok)
	}
}
