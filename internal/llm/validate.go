package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/dshills/stylist/internal/schema"
)

// Validation error fields.
const (
	FieldJSONParse = "json_parse"
	FieldSchema    = "schema"
	FieldDecode    = "decode"
)

// ValidationError records a single validation failure on a provider response.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// ValidationErrors joins several failures into one error value.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// IsParseFailure reports whether errs contain a syntactic decode failure, as
// opposed to a well-formed document that does not match the schema.
func IsParseFailure(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Field == FieldJSONParse {
			return true
		}
	}
	return false
}

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
// Both backtick and tilde fence styles are supported. The content group uses
// `.*?` (not `.+?`) to allow empty bodies inside fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line (no closing fence required).
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

// inlineFenceRe matches a single-line fenced payload such as ```json {...}```.
var inlineFenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})(?:json)?\\s*(.*?)\\s*(?:`{3}|~{3})$")

// StripMarkdownFences removes leading/trailing markdown code fences that
// models sometimes wrap around JSON output (e.g., "```json\n...\n```").
// If only an opening fence is present (e.g., the response was truncated before
// the closing fence), the opening line is stripped so that the JSON content can
// still be parsed.
func StripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := inlineFenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	// Handle truncated fenced responses: strip the opening fence line only.
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// invalidJSONEscapeRe matches a backslash followed by any character that is not
// a valid JSON string escape character ("\/bfnrtu).
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

// fixInvalidJSONEscapes replaces invalid JSON escape sequences in s with their
// correctly double-escaped equivalents.
func fixInvalidJSONEscapes(s string) string {
	return invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
}

// ValidateResponse parses and validates the raw provider response.
// Leading/trailing markdown fences are stripped before parsing. A nil set is
// returned whenever errs is non-empty; partial documents are never returned.
func ValidateResponse(raw string) (*schema.RecommendationSet, []ValidationError) {
	raw = StripMarkdownFences(raw)

	// 1. Syntax. Invalid escape sequences get one sanitisation pass.
	if !gjson.Valid(raw) {
		fixed := fixInvalidJSONEscapes(raw)
		if fixed == raw || !gjson.Valid(fixed) {
			return nil, []ValidationError{{Field: FieldJSONParse, Message: parseErrorMessage(raw)}}
		}
		raw = fixed
	}

	// 2. Structure.
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, []ValidationError{{Field: FieldJSONParse, Message: err.Error()}}
	}
	if err := schema.Validate(doc); err != nil {
		return nil, schemaErrors(err)
	}

	// 3. Decode into the typed set.
	var set schema.RecommendationSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, []ValidationError{{Field: FieldDecode, Message: err.Error()}}
	}
	return &set, nil
}

// parseErrorMessage reports the encoding/json error for raw, which carries an
// offset. gjson only says whether the document is valid.
func parseErrorMessage(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "empty document"
	}
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return err.Error()
	}
	return "invalid JSON"
}

// schemaErrors flattens a jsonschema validation error into one entry per
// leaf cause.
func schemaErrors(err error) []ValidationError {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []ValidationError{{Field: FieldSchema, Message: err.Error()}}
	}
	var out []ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, ValidationError{Field: FieldSchema, Message: loc + ": " + e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}
