// Package schema models the ordered set of named variables a log format is
// parsed against: each variable pairs a name with a regular expression, and
// at most one variable is distinguished as the timestamp that delimits log
// events.
package schema

import "github.com/coregx/logsurgeon/ast"

// NoTimestamp is the sentinel TimestampID value when no variable in the
// schema is distinguished as the timestamp.
const NoTimestamp = -1

// Variable is one named, compiled pattern in a schema. ID is its dense
// index in declaration order, which doubles as its priority rank (lower ID,
// higher priority) per the automaton package's accept-set ordering.
type Variable struct {
	ID      int
	Name    string
	Pattern string
	AST     ast.Node
}

// Schema is the immutable, validated result of a Builder.Build call: an
// ordered list of variables plus the distinguished timestamp variable, if
// any. Variable IDs are dense, 0..len(Variables)-1, in declaration order.
type Schema struct {
	Variables   []Variable
	TimestampID int
}

// ByName returns the variable with the given name, or false if none
// matches.
func (s *Schema) ByName(name string) (Variable, bool) {
	for _, v := range s.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// HasTimestamp reports whether the schema designates a timestamp variable.
func (s *Schema) HasTimestamp() bool {
	return s.TimestampID != NoTimestamp
}
