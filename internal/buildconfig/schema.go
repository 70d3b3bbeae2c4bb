package buildconfig

import (
	"bytes"
	_ "embed"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

var rootSchema *jsonschema.Schema

func init() {
	js, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	if err := compiler.AddResource("schema.json", js); err != nil {
		panic(err)
	}

	rootSchema, err = compiler.Compile("schema.json")
	if err != nil {
		panic(err)
	}
}

// Schema returns the JSON schema raw documents are validated against.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// validateDocument checks a decoded YAML or JSON document against the schema.
func validateDocument(doc any) error {
	err := rootSchema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Kind: InvalidValue, Field: "(document)", Err: err}
	}

	var errs errorList
	seen := map[string]bool{}
	for _, leaf := range schemaLeaves(ve) {
		field := instanceField(leaf.InstanceLocation)
		if seen[field] {
			continue
		}
		seen[field] = true
		errs.add(InvalidValue, field, "does not match schema", leaf)
	}
	return errs.err()
}

func schemaLeaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		leaves = append(leaves, schemaLeaves(c)...)
	}
	return leaves
}

func instanceField(loc []string) string {
	if len(loc) == 0 {
		return "(document)"
	}
	return strings.Join(loc, ".")
}
