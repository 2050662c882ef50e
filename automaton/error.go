package automaton

import "fmt"

// ErrDeterminizationLimit is returned by Determinize when subset
// construction would produce more states than the caller's configured
// limit, which guards against state explosion on pathological schemas
// (many overlapping variable-length patterns).
type ErrDeterminizationLimit struct {
	Limit int
}

func (e *ErrDeterminizationLimit) Error() string {
	return fmt.Sprintf("automaton: determinization exceeded %d states", e.Limit)
}
