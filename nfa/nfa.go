// Package nfa implements Thompson-style construction of a byte-oriented NFA
// from an ast.Node, and the arena representation that construction shares
// with the automaton package's subset construction.
//
// States are entries in a dense slice addressed by StateID rather than
// heap-linked nodes: NFAs built here are cyclic (repetition introduces
// loops), and an arena with integer handles makes the graph trivially
// copyable and renumberable when the automaton package unions many
// variables' NFAs into one before determinizing.
package nfa

import (
	"fmt"

	"github.com/coregx/logsurgeon/ast"
)

// StateID indexes a State within an NFA's arena.
type StateID uint32

// InvalidState marks an unset/dangling StateID field.
const InvalidState StateID = 0xFFFFFFFF

// StateKind identifies the shape of a State's outgoing transitions.
type StateKind uint8

const (
	// KindByteRange consumes one input byte in Ranges and moves to Next.
	// An empty Ranges list never matches (used for e.g. an impossible
	// negated character class).
	KindByteRange StateKind = iota
	// KindEpsilon moves to Next without consuming input.
	KindEpsilon
	// KindSplit moves to either Left or Right without consuming input;
	// this is the only branching point in a Thompson NFA (alternation
	// and repetition both compile down to it).
	KindSplit
	// KindAccept is a terminal state tagged with the identity of the
	// variable it accepts and that variable's priority rank. It has no
	// outgoing transitions.
	KindAccept
)

func (k StateKind) String() string {
	switch k {
	case KindByteRange:
		return "ByteRange"
	case KindEpsilon:
		return "Epsilon"
	case KindSplit:
		return "Split"
	case KindAccept:
		return "Accept"
	default:
		return fmt.Sprintf("StateKind(%d)", k)
	}
}

// State is a single NFA node. Which fields are meaningful depends on Kind.
type State struct {
	Kind StateKind

	// KindByteRange
	Ranges []ast.Range
	Next   StateID

	// KindEpsilon reuses Next above.

	// KindSplit
	Left, Right StateID

	// KindAccept
	VariableID int
	Priority   int
}

// NFA is the compiled result of Thompson-constructing a single variable's
// AST. Start and Accept name the entry and terminal states; Accept carries
// the variable's identity and priority so that, once this NFA is unioned
// with others and determinized, a DFA accept state can recover which
// variable(s) matched.
type NFA struct {
	States []State
	Start  StateID
	Accept StateID
}

// State returns a pointer to the state with the given ID. Panics if id is
// out of range, which indicates a programming error (malformed transition)
// rather than a recoverable condition.
func (n *NFA) State(id StateID) *State {
	return &n.States[id]
}

// Len returns the number of states in the NFA.
func (n *NFA) Len() int {
	return len(n.States)
}

// VariableID returns the variable identity tagged on this NFA's accept
// state.
func (n *NFA) VariableID() int {
	return n.States[n.Accept].VariableID
}

// Priority returns the priority rank tagged on this NFA's accept state.
func (n *NFA) Priority() int {
	return n.States[n.Accept].Priority
}
