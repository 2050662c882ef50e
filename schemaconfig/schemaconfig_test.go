package schemaconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coregx/logsurgeon/schema"
)

func TestLoadParsesVariablesAndTimestamp(t *testing.T) {
	doc := `
timestamp: ts
variables:
  - name: ts
    pattern: '\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}'
  - name: level
    pattern: '[IWE]'
`
	s, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.True(t, s.HasTimestamp())

	ts, ok := s.ByName("ts")
	require.True(t, ok)
	require.Equal(t, s.TimestampID, ts.ID)

	level, ok := s.ByName("level")
	require.True(t, ok)
	require.Equal(t, `[IWE]`, level.Pattern)
}

func TestLoadWithoutTimestampField(t *testing.T) {
	doc := `
variables:
  - name: num
    pattern: '[0-9]+'
`
	s, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, schema.NoTimestamp, s.TimestampID)
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	doc := `
variables:
  - name: a
    pattern: 'x'
  - name: a
    pattern: 'y'
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}

func TestLoadRejectsBadRegex(t *testing.T) {
	doc := `
variables:
  - name: a
    pattern: '(unclosed'
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/to/schema.yaml")
	require.Error(t, err)
}
