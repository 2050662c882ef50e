// Package ast defines the regular-expression abstract syntax tree consumed
// by the nfa package.
//
// Nodes are produced by normalizing the standard library's regexp/syntax
// parser output (see FromPattern) rather than by a hand-written grammar in
// this package: regexp/syntax is the "external regex-syntax collaborator"
// this module builds on. ast only owns the normalized, ASCII/byte-oriented
// tree shape and the rules for constructing it directly (used by tests and
// by callers that already have a parsed pattern in some other form).
package ast

import "fmt"

// Kind identifies the variant of a Node.
type Kind uint8

const (
	// Literal matches exactly one specific byte.
	Literal Kind = iota
	// Class matches any byte in (or, if Negated, outside) a set of ranges.
	Class
	// AnyByte matches any single byte, including '\n'.
	AnyByte
	// Empty matches the zero-length string. Produced when normalizing
	// regexp/syntax.OpEmptyMatch and empty alternation branches ("a|").
	Empty
	// Concat matches its children in sequence.
	Concat
	// Alt matches any one of its children.
	Alt
	// Repeat matches its single child between Min and Max times (Max == Unbounded
	// for an unbounded upper end).
	Repeat
	// Group matches its single child; carries no capture semantics at this
	// layer (the whole lexeme of the enclosing variable is the capture).
	Group
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "Literal"
	case Class:
		return "Class"
	case AnyByte:
		return "AnyByte"
	case Empty:
		return "Empty"
	case Concat:
		return "Concat"
	case Alt:
		return "Alt"
	case Repeat:
		return "Repeat"
	case Group:
		return "Group"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Unbounded marks a Repeat node's Max as infinite ({n,} or '*'/'+').
const Unbounded = -1

// Range is an inclusive byte range [Lo, Hi].
type Range struct {
	Lo, Hi byte
}

// Contains reports whether b falls inside the range.
func (r Range) Contains(b byte) bool {
	return b >= r.Lo && b <= r.Hi
}

// Node is an immutable regex AST node. Which fields are meaningful depends
// on Kind; see the Kind constants above. Nodes are built through the
// constructor functions below (NewLiteral, NewClass, ...) rather than by
// populating the struct directly, so that invariants (Alt/Concat have at
// least one child, Repeat has Min <= Max) are enforced in one place.
type Node struct {
	Kind Kind

	// Literal
	Byte byte

	// Class
	Ranges  []Range
	Negated bool

	// Concat, Alt
	Children []Node

	// Repeat, Group
	Child *Node

	// Repeat
	Min, Max int
}

// NewLiteral returns a node matching exactly the byte b.
func NewLiteral(b byte) Node {
	return Node{Kind: Literal, Byte: b}
}

// NewAnyByte returns a node matching any single byte.
func NewAnyByte() Node {
	return Node{Kind: AnyByte}
}

// NewEmpty returns a node matching the zero-length string.
func NewEmpty() Node {
	return Node{Kind: Empty}
}

// NewClass returns a node matching any byte in ranges, or, if negated, any
// byte not in ranges. Ranges need not be sorted or disjoint; NewClass
// normalizes them. An empty, non-negated class matches nothing.
func NewClass(ranges []Range, negated bool) Node {
	return Node{Kind: Class, Ranges: normalizeRanges(ranges), Negated: negated}
}

// NewConcat returns a node matching children in sequence. Nested Concat
// children are flattened. A call with no children returns Empty, matching
// the convention that the empty product of a sequence is the identity.
func NewConcat(children ...Node) Node {
	flat := make([]Node, 0, len(children))
	for _, c := range children {
		if c.Kind == Empty {
			continue
		}
		if c.Kind == Concat {
			flat = append(flat, c.Children...)
			continue
		}
		flat = append(flat, c)
	}
	if len(flat) == 0 {
		return NewEmpty()
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Node{Kind: Concat, Children: flat}
}

// NewAlt returns a node matching any one of children. Nested Alt children
// are flattened. A call with no children returns Empty (there is no useful
// "matches nothing" alternation in this AST; use NewClass(nil, false) for
// that).
func NewAlt(children ...Node) Node {
	flat := make([]Node, 0, len(children))
	for _, c := range children {
		if c.Kind == Alt {
			flat = append(flat, c.Children...)
			continue
		}
		flat = append(flat, c)
	}
	if len(flat) == 0 {
		return NewEmpty()
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Node{Kind: Alt, Children: flat}
}

// NewRepeat returns a node matching child between min and max times
// (max == Unbounded for no upper bound). Returns a *BadRepeatError if
// min > max (when max is bounded), or if min or max is negative.
func NewRepeat(child Node, min, max int) (Node, error) {
	if min < 0 {
		return Node{}, &BadRepeatError{Min: min, Max: max, Reason: "min must be >= 0"}
	}
	if max != Unbounded && max < min {
		return Node{}, &BadRepeatError{Min: min, Max: max, Reason: "max must be >= min"}
	}
	return Node{Kind: Repeat, Child: &child, Min: min, Max: max}, nil
}

// NewGroup returns a node matching child with no additional semantics.
func NewGroup(child Node) Node {
	return Node{Kind: Group, Child: &child}
}

// normalizeRanges sorts ranges and merges overlapping or adjacent ones so
// that the NFA builder never has to deal with redundant transitions.
func normalizeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Lo > sorted[j].Lo; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	merged := sorted[:1]
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if int(r.Lo) <= int(last.Hi)+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
