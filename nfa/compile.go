package nfa

import "github.com/coregx/logsurgeon/ast"

// MaxDepth bounds compile's recursion over an ast.Node tree.
const MaxDepth = 1000

// Compile builds a Thompson NFA for node, tagging its single accept state
// with variableID and priority (priority is the variable's declaration
// rank in the schema; lower is higher priority). The returned NFA has
// exactly one start state and one accept state, per the data model this
// module is built around: a single NFA covers one schema variable, and the
// automaton package unions many such NFAs before determinizing.
func Compile(node ast.Node, variableID, priority int) (*NFA, error) {
	b := newBuilder()
	f, err := b.compileNode(node, variableID, 0)
	if err != nil {
		return nil, err
	}
	accept := b.addAccept(variableID, priority)
	b.patchAll(f.out, accept)
	return &NFA{States: b.states, Start: f.start, Accept: accept}, nil
}

func (b *builder) compileNode(node ast.Node, variableID, depth int) (frag, error) {
	if depth > MaxDepth {
		return frag{}, &TooComplexError{VariableID: variableID, Depth: depth}
	}

	switch node.Kind {
	case ast.Literal:
		return b.byteRangeFrag([]ast.Range{{Lo: node.Byte, Hi: node.Byte}}), nil

	case ast.Class:
		ranges := node.Ranges
		if node.Negated {
			ranges = complement(ranges)
		}
		return b.byteRangeFrag(ranges), nil

	case ast.AnyByte:
		return b.byteRangeFrag([]ast.Range{{Lo: 0, Hi: 0xFF}}), nil

	case ast.Empty:
		return b.emptyFrag(), nil

	case ast.Concat:
		return b.compileConcat(node.Children, variableID, depth)

	case ast.Alt:
		return b.compileAlt(node.Children, variableID, depth)

	case ast.Repeat:
		if node.Min < 0 || (node.Max != ast.Unbounded && node.Max < node.Min) {
			return frag{}, &BadRepeatError{VariableID: variableID, Min: node.Min, Max: node.Max}
		}
		return b.compileRepeat(*node.Child, node.Min, node.Max, variableID, depth)

	case ast.Group:
		return b.compileNode(*node.Child, variableID, depth+1)

	default:
		// ast.FromPattern never produces an unrecognized Kind; a caller
		// constructing a Node by hand with a bad Kind hits this.
		return frag{}, &TooComplexError{VariableID: variableID, Depth: depth}
	}
}

func (b *builder) byteRangeFrag(ranges []ast.Range) frag {
	id := b.addByteRange(ranges)
	return frag{start: id, out: []StateID{id}}
}

func (b *builder) emptyFrag() frag {
	id := b.addEpsilon()
	return frag{start: id, out: []StateID{id}}
}

func (b *builder) compileConcat(children []ast.Node, variableID, depth int) (frag, error) {
	first, err := b.compileNode(children[0], variableID, depth+1)
	if err != nil {
		return frag{}, err
	}
	result := first
	for _, child := range children[1:] {
		next, err := b.compileNode(child, variableID, depth+1)
		if err != nil {
			return frag{}, err
		}
		b.patchAll(result.out, next.start)
		result = frag{start: result.start, out: next.out}
	}
	return result, nil
}

func (b *builder) compileAlt(children []ast.Node, variableID, depth int) (frag, error) {
	frags := make([]frag, len(children))
	for i, child := range children {
		f, err := b.compileNode(child, variableID, depth+1)
		if err != nil {
			return frag{}, err
		}
		frags[i] = f
	}
	combined := frags[len(frags)-1]
	for i := len(frags) - 2; i >= 0; i-- {
		s := b.addSplit(frags[i].start, combined.start)
		out := make([]StateID, 0, len(frags[i].out)+len(combined.out))
		out = append(out, frags[i].out...)
		out = append(out, combined.out...)
		combined = frag{start: s, out: out}
	}
	return combined, nil
}

// compileRepeat implements the unrolling scheme from the component design:
// a mandatory prefix of `min` copies, followed by a tail that is either a
// Kleene loop (max unbounded) or a right-nested chain of `max-min`
// individually-skippable optional copies.
func (b *builder) compileRepeat(child ast.Node, min, max, variableID, depth int) (frag, error) {
	if max == ast.Unbounded {
		if min == 0 {
			return b.compileStar(child, variableID, depth)
		}
		prefix, err := b.compileMandatory(child, min-1, variableID, depth)
		if err != nil {
			return frag{}, err
		}
		plus, err := b.compilePlus(child, variableID, depth)
		if err != nil {
			return frag{}, err
		}
		if prefix == nil {
			return plus, nil
		}
		b.patchAll(prefix.out, plus.start)
		return frag{start: prefix.start, out: plus.out}, nil
	}

	prefix, err := b.compileMandatory(child, min, variableID, depth)
	if err != nil {
		return frag{}, err
	}
	tail, err := b.compileOptionalChain(child, max-min, variableID, depth)
	if err != nil {
		return frag{}, err
	}
	if prefix == nil {
		return tail, nil
	}
	b.patchAll(prefix.out, tail.start)
	return frag{start: prefix.start, out: tail.out}, nil
}

// compileMandatory chains n fresh copies of child in sequence. Returns nil
// (not an error) when n == 0, since there is no fragment to return and the
// caller special-cases that.
func (b *builder) compileMandatory(child ast.Node, n, variableID, depth int) (*frag, error) {
	if n <= 0 {
		return nil, nil
	}
	first, err := b.compileNode(child, variableID, depth+1)
	if err != nil {
		return nil, err
	}
	result := first
	for i := 1; i < n; i++ {
		next, err := b.compileNode(child, variableID, depth+1)
		if err != nil {
			return nil, err
		}
		b.patchAll(result.out, next.start)
		result = frag{start: result.start, out: next.out}
	}
	return &result, nil
}

// compileStar builds the classic Kleene-star fragment: a split that either
// enters a fresh copy of child (looping back to itself) or exits directly.
func (b *builder) compileStar(child ast.Node, variableID, depth int) (frag, error) {
	body, err := b.compileNode(child, variableID, depth+1)
	if err != nil {
		return frag{}, err
	}
	s := b.addSplit(body.start, InvalidState)
	b.patchAll(body.out, s)
	return frag{start: s, out: []StateID{s}}, nil
}

// compilePlus builds child followed by compileStar(child): one mandatory
// match, then zero or more additional matches.
func (b *builder) compilePlus(child ast.Node, variableID, depth int) (frag, error) {
	first, err := b.compileNode(child, variableID, depth+1)
	if err != nil {
		return frag{}, err
	}
	star, err := b.compileStar(child, variableID, depth)
	if err != nil {
		return frag{}, err
	}
	b.patchAll(first.out, star.start)
	return frag{start: first.start, out: star.out}, nil
}

// compileOptionalChain builds k right-nested optional copies of child, so
// that e{0,3} compiles as (e(e(e)?)?)? : skipping the outermost optional
// skips every copy after it, which is exactly {n,m} semantics.
func (b *builder) compileOptionalChain(child ast.Node, k, variableID, depth int) (frag, error) {
	if k <= 0 {
		return b.emptyFrag(), nil
	}
	rest, err := b.compileOptionalChain(child, k-1, variableID, depth)
	if err != nil {
		return frag{}, err
	}
	inner, err := b.compileNode(child, variableID, depth+1)
	if err != nil {
		return frag{}, err
	}
	b.patchAll(inner.out, rest.start)
	body := frag{start: inner.start, out: rest.out}

	s := b.addSplit(body.start, InvalidState)
	out := make([]StateID, 0, len(body.out)+1)
	out = append(out, body.out...)
	out = append(out, s)
	return frag{start: s, out: out}, nil
}

// complement returns the sorted, merged ranges covering [0,255] minus
// ranges. ranges is assumed already sorted and merged (ast.NewClass
// guarantees this).
func complement(ranges []ast.Range) []ast.Range {
	var out []ast.Range
	next := 0
	for _, r := range ranges {
		if int(r.Lo) > next {
			out = append(out, ast.Range{Lo: byte(next), Hi: r.Lo - 1})
		}
		if int(r.Hi)+1 > next {
			next = int(r.Hi) + 1
		}
	}
	if next <= 0xFF {
		out = append(out, ast.Range{Lo: byte(next), Hi: 0xFF})
	}
	return out
}
