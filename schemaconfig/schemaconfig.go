// Package schemaconfig loads a schema.Schema from a YAML document, the
// external collaborator that keeps schema authoring out of the core
// library (see schema.Builder, which this package is a thin wrapper
// around).
package schemaconfig

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coregx/logsurgeon/schema"
)

// Document is the on-disk shape of a schema file:
//
//	timestamp: ts
//	variables:
//	  - name: ts
//	    pattern: '\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}'
//	  - name: level
//	    pattern: '[IWE]'
type Document struct {
	Timestamp string         `yaml:"timestamp"`
	Variables []VariableSpec `yaml:"variables"`
}

// VariableSpec is one entry of a Document's variables list.
type VariableSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// Load parses a YAML schema document from r and builds a schema.Schema from
// it, using Document.Timestamp (if set) to mark the matching variable as
// the timestamp.
func Load(r io.Reader) (*schema.Schema, error) {
	bin, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return build(bin)
}

// LoadFile reads and parses the YAML schema document at path.
func LoadFile(path string) (*schema.Schema, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return build(bin)
}

func build(bin []byte) (*schema.Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(bin, &doc); err != nil {
		return nil, err
	}

	b := schema.NewBuilder()
	for _, v := range doc.Variables {
		b.AddVariable(v.Name, v.Pattern, v.Name == doc.Timestamp)
	}
	return b.Build()
}
