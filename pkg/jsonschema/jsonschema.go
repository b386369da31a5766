// Package jsonschema wraps gojsonschema with compiled schemas and errors that
// can be matched with errors.Is.
package jsonschema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema. It is safe for concurrent use.
type Schema struct {
	name     string
	compiled *gojsonschema.Schema
}

// Compile parses and compiles a schema document. name is used in error messages only.
func Compile(name, document string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidSchema, name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on an invalid schema.
// Use it for schemas that are package-level constants.
func MustCompile(name, document string) *Schema {
	s, err := Compile(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name given at compile time.
func (s *Schema) Name() string { return s.name }

// Validate checks doc against the schema. A document that is not JSON at all is
// reported as a system error by gojsonschema; both cases return a non-nil error.
func (s *Schema) Validate(doc []byte) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(doc))
	return FormatErrors(result, err)
}

// ValidateString is Validate for string documents.
func (s *Schema) ValidateString(doc string) error {
	result, err := s.compiled.Validate(gojsonschema.NewStringLoader(doc))
	return FormatErrors(result, err)
}

// FormatErrors turns a gojsonschema result into a single error.
func FormatErrors(result *gojsonschema.Result, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidationSystem, err)
	}
	if result == nil || result.Valid() {
		return nil
	}
	descs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		descs = append(descs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaValidationFailed, strings.Join(descs, "; "))
}
