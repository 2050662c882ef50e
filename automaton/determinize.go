package automaton

import (
	"sort"
	"strconv"
	"strings"

	"github.com/coregx/logsurgeon/internal/conv"
	"github.com/coregx/logsurgeon/internal/sparse"
	"github.com/coregx/logsurgeon/nfa"
)

// Determinize unions nfas — one per schema variable — and subset-constructs
// a DFA recognizing, at every position, every variable that NFA set could
// accept. It fails closed with ErrDeterminizationLimit rather than building
// an unbounded number of states when limit > 0.
func Determinize(nfas []*nfa.NFA, limit int) (*DFA, error) {
	u := newUniverse(nfas)

	start := sparse.NewSet(u.total)
	starts := make([]uint32, len(nfas))
	for i, n := range nfas {
		starts[i] = u.offsets[i] + uint32(n.Start)
	}
	u.closure(start, starts)

	d := &DFA{}
	ids := map[string]StateID{}
	var queue []string // interning keys, in construction order
	key := keyOf(start.Sorted())
	ids[key] = Start
	queue = append(queue, key)
	sets := map[string][]uint32{key: start.Sorted()}

	for i := 0; i < len(queue); i++ {
		if limit > 0 && len(d.States)+1 > limit {
			return nil, &ErrDeterminizationLimit{Limit: limit}
		}
		set := sets[queue[i]]
		st := u.buildState(set, func(targetSet []uint32) StateID {
			k := keyOf(targetSet)
			if id, ok := ids[k]; ok {
				return id
			}
			id := StateID(conv.IntToUint32(len(queue)))
			ids[k] = id
			sets[k] = targetSet
			queue = append(queue, k)
			return id
		})
		d.States = append(d.States, st)
	}
	return d, nil
}

// universe renumbers every state of every unioned NFA into one flat global
// ID space, so that the sparse.Set used for epsilon-closures and
// state-set interning has a single bounded universe to work over instead of
// one per NFA.
type universe struct {
	nfas    []*nfa.NFA
	offsets []uint32 // offsets[i] is the first global ID belonging to nfas[i]
	total   int
}

func newUniverse(nfas []*nfa.NFA) *universe {
	u := &universe{nfas: nfas, offsets: make([]uint32, len(nfas))}
	var total uint32
	for i, n := range nfas {
		u.offsets[i] = total
		total += conv.IntToUint32(n.Len())
	}
	u.total = int(total)
	return u
}

// ownerAt returns the index of the NFA that global ID id belongs to.
func (u *universe) ownerAt(id uint32) int {
	i := sort.Search(len(u.offsets), func(i int) bool { return u.offsets[i] > id }) - 1
	if i < 0 {
		i = 0
	}
	return i
}

func (u *universe) state(id uint32) *nfa.State {
	oi := u.ownerAt(id)
	local := nfa.StateID(id - u.offsets[oi])
	return u.nfas[oi].State(local)
}

func (u *universe) globalNext(owner int, local nfa.StateID) uint32 {
	return u.offsets[owner] + uint32(local)
}

// closure computes the epsilon-closure of the given seed global IDs in
// place, inserting every state reachable without consuming a byte.
func (u *universe) closure(set *sparse.Set, seeds []uint32) {
	stack := append([]uint32(nil), seeds...)
	for _, s := range seeds {
		set.Insert(s)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		oi := u.ownerAt(id)
		local := nfa.StateID(id - u.offsets[oi])
		st := u.nfas[oi].State(local)
		switch st.Kind {
		case nfa.KindEpsilon:
			t := u.globalNext(oi, st.Next)
			if set.Insert(t) {
				stack = append(stack, t)
			}
		case nfa.KindSplit:
			for _, next := range [2]nfa.StateID{st.Left, st.Right} {
				if next == nfa.InvalidState {
					continue
				}
				t := u.globalNext(oi, next)
				if set.Insert(t) {
					stack = append(stack, t)
				}
			}
		}
	}
}

// buildState computes one DFA state's total transition table and accept set
// from the (already epsilon-closed) set of global NFA-state IDs it
// represents. intern maps an epsilon-closed target set of global IDs to a
// StateID, assigning a fresh one (and enqueuing it for processing) the
// first time a given set is seen.
func (u *universe) buildState(set []uint32, intern func([]uint32) StateID) State {
	var accepts []Accept
	var boundaries []int
	byteStates := make([]uint32, 0, len(set))

	for _, id := range set {
		st := u.state(id)
		switch st.Kind {
		case nfa.KindAccept:
			accepts = append(accepts, Accept{VariableID: st.VariableID, Priority: st.Priority})
		case nfa.KindByteRange:
			if len(st.Ranges) == 0 {
				continue
			}
			byteStates = append(byteStates, id)
			for _, r := range st.Ranges {
				boundaries = append(boundaries, int(r.Lo), int(r.Hi)+1)
			}
		}
	}
	sort.Slice(accepts, func(i, j int) bool { return accepts[i].Priority < accepts[j].Priority })

	if len(byteStates) == 0 {
		// Dead end: no byte-consuming state survives in this set, so every
		// byte leads to the state for the empty NFA-state set. intern(nil)
		// resolves to that one canonical dead state; when this set is
		// itself empty, that is this very state, which then loops to
		// itself on every byte.
		self := intern(nil)
		return State{Accept: accepts, Transitions: []Transition{{Lo: 0, Hi: 0xFF, Next: self}}}
	}

	cuts := uniqueSortedBounded(boundaries)
	var trans []Transition
	for i := 0; i+1 < len(cuts); i++ {
		lo, hiExclusive := cuts[i], cuts[i+1]
		rep := byte(lo)
		var raw []uint32
		for _, id := range byteStates {
			st := u.state(id)
			for _, r := range st.Ranges {
				if r.Contains(rep) {
					raw = append(raw, u.globalNext(u.ownerAt(id), st.Next))
					break
				}
			}
		}
		closed := sparse.NewSet(u.total)
		if len(raw) > 0 {
			u.closure(closed, raw)
		}
		target := intern(closed.Sorted())
		trans = append(trans, Transition{Lo: byte(lo), Hi: byte(hiExclusive - 1), Next: target})
	}
	trans = coalesce(trans)
	return State{Accept: accepts, Transitions: trans}
}

// uniqueSortedBounded sorts and dedupes cut points, and clamps the sweep to
// the closed byte range [0, 256] so the resulting intervals are total.
func uniqueSortedBounded(cuts []int) []int {
	cuts = append(cuts, 0, 256)
	sort.Ints(cuts)
	out := cuts[:0:0]
	for i, c := range cuts {
		if i == 0 || c != cuts[i-1] {
			out = append(out, c)
		}
	}
	return out
}

// coalesce merges adjacent transitions that share a target state, keeping
// the table compact.
func coalesce(trans []Transition) []Transition {
	if len(trans) == 0 {
		return trans
	}
	out := trans[:1]
	for _, t := range trans[1:] {
		last := &out[len(out)-1]
		if last.Next == t.Next && last.Hi+1 == t.Lo {
			last.Hi = t.Hi
			continue
		}
		out = append(out, t)
	}
	return out
}

func keyOf(ids []uint32) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sb.String()
}
