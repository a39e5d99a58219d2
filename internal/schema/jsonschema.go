package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema is the structural contract a generated document must meet.
// Item counts and extra keys are not constrained.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["outfits", "hair", "accessories"],
  "properties": {
    "outfits": {
      "type": "array",
      "items": {"$ref": "#/definitions/named"}
    },
    "hair": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["style", "description", "keywords"],
        "properties": {
          "style": {"type": "string"},
          "description": {"type": "string"},
          "keywords": {"type": "string"}
        }
      }
    },
    "accessories": {
      "type": "array",
      "items": {"$ref": "#/definitions/named"}
    }
  },
  "definitions": {
    "named": {
      "type": "object",
      "required": ["name", "description", "keywords"],
      "properties": {
        "name": {"type": "string"},
        "description": {"type": "string"},
        "keywords": {"type": "string"}
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Document returns the compiled JSON Schema for a RecommendationSet. It is
// compiled on first use and shared afterwards.
func Document() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("recommendations.json", strings.NewReader(documentSchema)); err != nil {
			compileErr = fmt.Errorf("schema: add resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("recommendations.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("schema: compile: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate checks a decoded JSON value (as produced by json.Unmarshal into
// an interface{}) against the document schema.
func Validate(v interface{}) error {
	s, err := Document()
	if err != nil {
		return err
	}
	return s.Validate(v)
}
