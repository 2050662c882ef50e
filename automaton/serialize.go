package automaton

import (
	"encoding/gob"
	"fmt"
	"io"
)

// Encode writes the DFA's state table to w in encoding/gob format. A
// compiled schema's DFA is immutable, so callers may serialize it once and
// share the bytes across processes instead of re-running subset
// construction per process.
func (d *DFA) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(d.States)
}

// Decode reads a DFA previously written by Encode. The state table is
// validated structurally (non-empty; every state's transitions sorted,
// contiguous and covering all 256 byte values; every transition target in
// range) before being returned, so a truncated or corrupt stream fails here
// rather than as an out-of-range panic during simulation.
func Decode(r io.Reader) (*DFA, error) {
	var states []State
	if err := gob.NewDecoder(r).Decode(&states); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, &DecodeError{Reason: "no states"}
	}
	for i, st := range states {
		if len(st.Transitions) == 0 {
			return nil, &DecodeError{Reason: fmt.Sprintf("state %d has no transitions", i)}
		}
		next := 0
		for _, t := range st.Transitions {
			if int(t.Lo) != next || t.Hi < t.Lo {
				return nil, &DecodeError{Reason: fmt.Sprintf("state %d transitions are not sorted and contiguous", i)}
			}
			next = int(t.Hi) + 1
			if int(t.Next) >= len(states) {
				return nil, &DecodeError{Reason: fmt.Sprintf("state %d targets out-of-range state %d", i, t.Next)}
			}
		}
		if next != 256 {
			return nil, &DecodeError{Reason: fmt.Sprintf("state %d transitions do not cover every byte", i)}
		}
	}
	return &DFA{States: states}, nil
}

// DecodeError indicates a gob stream that decoded cleanly but does not
// describe a structurally valid DFA.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "automaton: invalid serialized DFA: " + e.Reason
}
