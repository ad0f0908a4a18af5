// Package validate turns untrusted input (model replies, user settings) into typed values.
package validate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/tomaslau/focusonly/internal/model"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/verdict.schema.json
var verdictSchemaJSON string

var (
	verdictSchemaOnce sync.Once
	verdictSchema     *gojsonschema.Schema
	verdictSchemaErr  error
)

// FieldError is a single schema violation
type FieldError struct {
	Field   string
	Message string
}

// SchemaError reports a model reply that is not a valid verdict
type SchemaError struct {
	Errors []FieldError
	Cause  error // Set when the input could not be decoded at all
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid verdict: %v", e.Cause)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid verdict: " + strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

func compiledVerdictSchema() (*gojsonschema.Schema, error) {
	verdictSchemaOnce.Do(func() {
		verdictSchema, verdictSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(verdictSchemaJSON))
	})
	return verdictSchema, verdictSchemaErr
}

// Verdict validates a decoded JSON value and returns a verdict whose label
// always agrees with its score. A model claiming "Leave" with score 90 gets "Read".
func Verdict(raw any) (model.Verdict, error) {
	schema, err := compiledVerdictSchema()
	if err != nil {
		return model.Verdict{}, fmt.Errorf("load verdict schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return model.Verdict{}, &SchemaError{Cause: err}
	}
	if !result.Valid() {
		se := &SchemaError{}
		for _, re := range result.Errors() {
			se.Errors = append(se.Errors, FieldError{Field: re.Field(), Message: re.Description()})
		}
		return model.Verdict{}, se
	}

	// Structure is known-good now; decode through JSON to accept maps and structs alike
	data, err := json.Marshal(raw)
	if err != nil {
		return model.Verdict{}, &SchemaError{Cause: err}
	}
	var parsed struct {
		Score   float64  `json:"score"`
		Reasons []string `json:"reasons"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return model.Verdict{}, &SchemaError{Cause: err}
	}

	score := int(math.Round(parsed.Score))
	reasons := parsed.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	return model.Verdict{
		Verdict: model.LabelForScore(score),
		Score:   score,
		Reasons: reasons,
	}, nil
}

// VerdictJSON parses text as JSON and validates it
func VerdictJSON(text string) (model.Verdict, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return model.Verdict{}, &SchemaError{Cause: fmt.Errorf("parse JSON: %w", err)}
	}
	return Verdict(raw)
}
