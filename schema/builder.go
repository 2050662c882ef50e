package schema

import "github.com/coregx/logsurgeon/ast"

// Builder accumulates variable declarations in order and validates them on
// Build. A zero-value Builder is ready to use.
type Builder struct {
	pending []pendingVar
}

type pendingVar struct {
	name        string
	pattern     string
	isTimestamp bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddVariable declares a variable in the order it should receive its
// priority rank. Validation (duplicate names, multiple timestamps, bad
// regex) is deferred to Build.
func (b *Builder) AddVariable(name, pattern string, isTimestamp bool) *Builder {
	b.pending = append(b.pending, pendingVar{name: name, pattern: pattern, isTimestamp: isTimestamp})
	return b
}

// Build validates the accumulated declarations and parses each pattern into
// an ast.Node, returning the finished Schema.
func (b *Builder) Build() (*Schema, error) {
	seen := make(map[string]bool, len(b.pending))
	s := &Schema{
		Variables:   make([]Variable, 0, len(b.pending)),
		TimestampID: NoTimestamp,
	}

	for id, p := range b.pending {
		if seen[p.name] {
			return nil, &Error{Kind: DuplicateName, Name: p.name}
		}
		seen[p.name] = true

		node, err := ast.FromPattern(p.pattern)
		if err != nil {
			return nil, &Error{Kind: BadRegex, Name: p.name, Pattern: p.pattern, err: err}
		}

		if p.isTimestamp {
			if s.TimestampID != NoTimestamp {
				return nil, &Error{Kind: MultipleTimestamps, Name: p.name}
			}
			s.TimestampID = id
		}

		s.Variables = append(s.Variables, Variable{ID: id, Name: p.name, Pattern: p.pattern, AST: node})
	}
	return s, nil
}
