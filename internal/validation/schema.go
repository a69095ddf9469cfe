// Package validation checks media credit request bodies against the JSON
// schemas embedded under schemas/.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Payload names one of the embedded request schemas.
type Payload string

const (
	CreditUpdate     Payload = "credit_update"
	CreditRender     Payload = "credit_render"
	AttachmentCredit Payload = "attachment_credit"
)

var (
	ErrSchemaInvalid    = errors.New("validation: schema invalid")
	ErrSchemaValidation = errors.New("validation: payload rejected")
	ErrUnknownPayload   = errors.New("validation: unknown payload")
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Issue is one failed keyword, located by JSON pointer.
type Issue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	location := "#" + strings.TrimPrefix(strings.TrimSpace(i.Location), "#")
	if i.Message == "" {
		return location
	}
	return location + ": " + i.Message
}

// Error reports why a body was rejected.
type Error struct {
	Payload Payload
	Issues  []Issue
	Cause   error
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 && e.Cause != nil {
		return e.Cause.Error()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrSchemaValidation }

// Issues returns the issues carried by err, or a single root issue for
// errors that did not come from a schema.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var payloadErr *Error
	if errors.As(err, &payloadErr) {
		return payloadErr.Issues
	}
	var schemaErr *jsonschema.ValidationError
	if errors.As(err, &schemaErr) {
		return leafIssues(schemaErr, nil)
	}
	return []Issue{{Message: err.Error()}}
}

func leafIssues(node *jsonschema.ValidationError, into []Issue) []Issue {
	if len(node.Causes) == 0 {
		return append(into, Issue{
			Location: strings.TrimSpace(node.InstanceLocation),
			Message:  strings.TrimSpace(node.Message),
		})
	}
	for _, cause := range node.Causes {
		into = leafIssues(cause, into)
	}
	return into
}

// Schema is a compiled request schema.
type Schema struct {
	payload  Payload
	compiled *jsonschema.Schema
}

// CompileSchema compiles a draft 2020-12 document.
func CompileSchema(payload Payload, document []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := string(payload) + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, payload, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, payload, err)
	}
	return &Schema{payload: payload, compiled: compiled}, nil
}

// Validate checks an already decoded value.
func (s *Schema) Validate(value any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if value == nil {
		value = map[string]any{}
	}
	if err := s.compiled.Validate(value); err != nil {
		return &Error{Payload: s.payload, Issues: Issues(err), Cause: err}
	}
	return nil
}

// ValidateJSON decodes raw with json.Number semantics and validates it.
func (s *Schema) ValidateJSON(raw []byte) error {
	var value any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return &Error{
			Payload: s.payload,
			Issues:  []Issue{{Message: "body is not valid JSON"}},
			Cause:   err,
		}
	}
	return s.Validate(value)
}

var (
	compiledMu sync.Mutex
	compiled   = map[Payload]*Schema{}
)

// For returns the embedded schema for payload, compiling it on first use.
func For(payload Payload) (*Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if schema, ok := compiled[payload]; ok {
		return schema, nil
	}
	document, err := schemaFiles.ReadFile("schemas/" + string(payload) + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayload, payload)
	}
	schema, err := CompileSchema(payload, document)
	if err != nil {
		return nil, err
	}
	compiled[payload] = schema
	return schema, nil
}

// Check validates raw against the schema for payload.
func Check(payload Payload, raw []byte) error {
	schema, err := For(payload)
	if err != nil {
		return err
	}
	return schema.ValidateJSON(raw)
}
