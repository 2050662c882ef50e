package nfa

import "github.com/coregx/logsurgeon/ast"

// builder incrementally constructs an NFA's state arena. It is unexported:
// callers use Compile, which drives a builder from an ast.Node and returns
// the finished NFA.
type builder struct {
	states []State
}

func newBuilder() *builder {
	return &builder{states: make([]State, 0, 16)}
}

func (b *builder) addByteRange(ranges []ast.Range) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{Kind: KindByteRange, Ranges: ranges, Next: InvalidState})
	return id
}

func (b *builder) addEpsilon() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{Kind: KindEpsilon, Next: InvalidState})
	return id
}

func (b *builder) addSplit(left, right StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{Kind: KindSplit, Left: left, Right: right})
	return id
}

func (b *builder) addAccept(variableID, priority int) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{Kind: KindAccept, VariableID: variableID, Priority: priority})
	return id
}

// patch fills the single dangling outgoing transition of state id with
// target. A ByteRange or Epsilon state dangles on Next; a Split state
// dangles on whichever of Left/Right is still InvalidState. Panics if id
// has no dangling slot left, which indicates a fragment-construction bug.
func (b *builder) patch(id, target StateID) {
	s := &b.states[id]
	switch s.Kind {
	case KindByteRange, KindEpsilon:
		if s.Next != InvalidState {
			panic(&patchError{id: id})
		}
		s.Next = target
	case KindSplit:
		switch InvalidState {
		case s.Left:
			s.Left = target
		case s.Right:
			s.Right = target
		default:
			panic(&patchError{id: id})
		}
	default:
		panic(&patchError{id: id})
	}
}

// patchAll patches every id in outs to target.
func (b *builder) patchAll(outs []StateID, target StateID) {
	for _, id := range outs {
		b.patch(id, target)
	}
}

// frag is a partially-built NFA fragment: a start state and the list of
// states with one dangling outgoing transition each ("the out list" in the
// classic Thompson-construction literature). Concatenation patches the
// previous fragment's out list to the next fragment's start; the final out
// list of the whole pattern is patched to the accept state.
type frag struct {
	start StateID
	out   []StateID
}
