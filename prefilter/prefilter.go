// Package prefilter accelerates lexing over spans of input no schema
// variable can start matching in, by running an Aho-Corasick automaton over
// the literal-shaped variables in a schema ahead of the DFA.
//
// Multi-pattern literal matching via github.com/coregx/ahocorasick is
// cheaper than driving a general DFA when most of a schema's signal is
// fixed strings (keywords, log levels, delimiters).
package prefilter

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/logsurgeon/ast"
	"github.com/coregx/logsurgeon/schema"
)

// Prefilter reports candidate offsets where a literal-shaped schema
// variable could begin matching. A Prefilter with no literal variables at
// all is a legal no-op: NextCandidate always reports nothing, and the
// lexer falls back to testing every byte against the DFA.
type Prefilter struct {
	automaton  *ahocorasick.Automaton
	exhaustive bool
	maxLen     int
}

// Build inspects every variable in s and extracts the ones whose AST is a
// literal byte or a concatenation of literal bytes (no alternation,
// repetition, or character class), feeding them to an Aho-Corasick
// automaton. Schemas with no literal-shaped variables build a no-op
// Prefilter.
func Build(s *schema.Schema) *Prefilter {
	b := ahocorasick.NewBuilder()
	count := 0
	exhaustive := true
	maxLen := 0

	for _, v := range s.Variables {
		lit, ok := literalBytes(v.AST)
		if !ok {
			exhaustive = false
			continue
		}
		if len(lit) == 0 {
			continue
		}
		b.AddPattern(lit)
		count++
		if len(lit) > maxLen {
			maxLen = len(lit)
		}
	}

	if count == 0 {
		return &Prefilter{}
	}
	auto, err := b.Build()
	if err != nil {
		// An accelerator that fails to build degrades to a no-op rather
		// than failing schema compilation over it.
		return &Prefilter{}
	}
	return &Prefilter{automaton: auto, exhaustive: exhaustive, maxLen: maxLen}
}

// literalBytes returns the fixed byte string node represents, and true, if
// node is entirely literal bytes (a bare Literal, or a Concat/Group nesting
// of them). Any Class, AnyByte, Alt, or Repeat node anywhere inside makes
// the variable not literal-shaped.
func literalBytes(node ast.Node) ([]byte, bool) {
	switch node.Kind {
	case ast.Literal:
		return []byte{node.Byte}, true
	case ast.Group:
		return literalBytes(*node.Child)
	case ast.Concat:
		out := make([]byte, 0, len(node.Children))
		for _, c := range node.Children {
			b, ok := literalBytes(c)
			if !ok {
				return nil, false
			}
			out = append(out, b...)
		}
		return out, true
	default:
		return nil, false
	}
}

// NextCandidate reports the next offset at or after from in buf that could
// begin a literal-variable match, or false if none remain in the buffered
// window (which, for a no-op Prefilter, is always).
func (p *Prefilter) NextCandidate(buf []byte, from int) (int, bool) {
	if p == nil || p.automaton == nil || from >= len(buf) {
		return 0, false
	}
	m := p.automaton.Find(buf[from:], 0)
	if m == nil {
		return 0, false
	}
	return from + m.Start, true
}

// MaxLiteralLen returns the length of the longest literal fed to the
// automaton, or 0 for a no-op Prefilter. A caller scanning a bounded window
// must treat the final MaxLiteralLen()-1 bytes of a candidate-free window
// as undecided: an occurrence starting there could finish past the window's
// edge, invisible to NextCandidate.
func (p *Prefilter) MaxLiteralLen() int {
	if p == nil {
		return 0
	}
	return p.maxLen
}

// Exhaustive reports whether every schema variable was literal-shaped. When
// true, a NextCandidate window with no candidate means no variable at all
// — literal or not — can start matching there, which licenses the lexer to
// skip DFA evaluation over that span entirely rather than just using the
// answer as a hint.
func (p *Prefilter) Exhaustive() bool {
	return p != nil && p.exhaustive
}
