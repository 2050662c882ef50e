package logsurgeon

import "fmt"

// Config controls schema compilation: how large the unioned DFA is allowed
// to grow and whether the literal prefilter is built at all.
//
// Example:
//
//	config := logsurgeon.DefaultConfig()
//	config.MaxDFAStates = 50000
//	compiled, err := logsurgeon.Compile(schema, config)
type Config struct {
	// MaxDFAStates caps the size of the finished DFA, checked once
	// construction completes.
	// Default: 10000
	MaxDFAStates uint32

	// DeterminizationLimit is passed through to automaton.Determinize as
	// its state-count safety valve, guarding against pathological schemas
	// (many overlapping variable-length patterns) blowing up subset
	// construction.
	// Default: 10000
	DeterminizationLimit int

	// EnablePrefilter builds the literal Aho-Corasick prefilter (component
	// I) when the schema has any literal-shaped variables. When false, the
	// lexer always drives the DFA directly.
	// Default: true
	EnablePrefilter bool
}

// DefaultConfig returns a Config with sensible defaults: a generous but
// bounded DFA state cap, and the prefilter enabled.
func DefaultConfig() Config {
	return Config{
		MaxDFAStates:         10000,
		DeterminizationLimit: 10000,
		EnablePrefilter:      true,
	}
}

// ConfigError reports an out-of-range Config field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "logsurgeon: invalid config: " + e.Field + ": " + e.Message
}

// Validate checks that c's fields are in usable ranges.
func (c Config) Validate() error {
	if c.MaxDFAStates < 1 {
		return &ConfigError{Field: "MaxDFAStates", Message: fmt.Sprintf("must be >= 1, got %d", c.MaxDFAStates)}
	}
	if c.DeterminizationLimit < 0 {
		return &ConfigError{Field: "DeterminizationLimit", Message: "must be >= 0 (0 disables the limit)"}
	}
	return nil
}
