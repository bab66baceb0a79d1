// Package parser reads cubist model documents for the model package.
//
// Documents are YAML or JSON with top-level "cubes" and "dimensions"
// sequences. Parsing is structural only: reference resolution and
// validation happen in the model package. Unknown fields are ignored for
// forward compatibility; only the fields the model defines as required
// are enforced, at build time.
//
// # Basic Usage
//
// Parse and build in one step:
//
//	m, err := parser.LoadModel("model.yaml", model.BuildOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or parse the document and build separately:
//
//	doc, err := parser.ParseFile("model.yaml")
//	m, err := model.BuildModel(doc, opts)
//
// # Dependency Isolation
//
// The parser package is the only cubist package that imports the YAML
// machinery. Consumers of parsed documents use model package types, which
// have no serialization dependencies beyond struct tags.
package parser

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/cubist-dev/cubist/pkg/model"
)

// ParseFile reads a model document from a YAML or JSON file.
func ParseFile(path string) (model.Document, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted source
	if err != nil {
		return model.Document{}, fmt.Errorf("reading model file: %w", err)
	}
	return Parse(content)
}

// Parse decodes a model document from YAML or JSON bytes.
func Parse(content []byte) (model.Document, error) {
	var doc model.Document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return model.Document{}, fmt.Errorf("parsing model document: %w", err)
	}
	return doc, nil
}

// LoadModel parses a document file and builds the frozen model from it.
func LoadModel(path string, opts model.BuildOptions) (*model.Model, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return model.BuildModel(doc, opts)
}
