package nfa

import "fmt"

// TooComplexError indicates an AST nested deeper than the builder is willing
// to recurse into, guarding against stack overflow on adversarial schemas.
type TooComplexError struct {
	VariableID int
	Depth      int
}

func (e *TooComplexError) Error() string {
	return fmt.Sprintf("nfa: variable %d exceeds max construction depth %d", e.VariableID, e.Depth)
}

// BadRepeatError indicates a Repeat node whose bounds are malformed (built
// by hand rather than through ast.NewRepeat, which rejects this earlier).
type BadRepeatError struct {
	VariableID int
	Min, Max   int
}

func (e *BadRepeatError) Error() string {
	return fmt.Sprintf("nfa: variable %d has invalid repeat bounds {%d,%d}", e.VariableID, e.Min, e.Max)
}

// patchError indicates an attempt to patch a state that has no dangling
// outgoing transition left to fill. It signals a bug in fragment
// construction (every out-list entry should have exactly one open slot),
// not malformed user input, so callers treat it as a panic-worthy invariant
// violation rather than a returned error.
type patchError struct {
	id StateID
}

func (e *patchError) Error() string {
	return fmt.Sprintf("nfa: state %d has no dangling transition to patch", e.id)
}
