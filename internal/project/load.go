package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// ConfigurationParseError is returned by Load when the serialized input is
// not valid JSON or does not match the configuration schema.
type ConfigurationParseError struct {
	// Diagnostic is the underlying decoder or schema message.
	Diagnostic string
	Err        error
}

func (e *ConfigurationParseError) Error() string {
	return "configuration parse error: " + e.Diagnostic
}

func (e *ConfigurationParseError) Unwrap() error {
	return e.Err
}

var configSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	s, err := Schema()
	if err != nil {
		return nil, err
	}
	return s.Resolve(nil)
})

// Schema returns the JSON Schema of the serialized configuration format.
func Schema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[Configuration](nil)
	if err != nil {
		return nil, fmt.Errorf("configuration schema: %w", err)
	}
	if ep := s.Properties["entryPoint"]; ep != nil {
		if kind := ep.Properties["kind"]; kind != nil {
			kind.Enum = []any{string(EntryAgent), string(EntryWorkflow)}
		}
	}
	return s, nil
}

// Load parses a serialized configuration for "extend an existing project"
// mode. Any failure is a *ConfigurationParseError.
func Load(data []byte) (*Configuration, error) {
	resolved, err := configSchema()
	if err != nil {
		return nil, &ConfigurationParseError{Diagnostic: err.Error(), Err: err}
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, &ConfigurationParseError{Diagnostic: "invalid JSON: " + err.Error(), Err: err}
	}
	if m, ok := instance.(map[string]any); ok {
		if ep, ok := m["entryPoint"].(map[string]any); ok {
			if kind, ok := ep["kind"]; ok {
				ep["kind"] = FoldEntryKind(kind)
			}
		}
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, &ConfigurationParseError{Diagnostic: "schema: " + err.Error(), Err: err}
	}

	var cfg Configuration
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, &ConfigurationParseError{Diagnostic: "decode: " + err.Error(), Err: err}
	}

	kind, err := ParseEntryKind(string(cfg.EntryPoint.Kind))
	if err != nil {
		return nil, &ConfigurationParseError{Diagnostic: err.Error(), Err: err}
	}
	cfg.EntryPoint.Kind = kind

	return cfg.Clone(), nil
}

// Marshal serializes c as indented JSON. Empty lists are written as [] so
// the output always loads back.
func (c *Configuration) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c.Clone(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal configuration: %w", err)
	}
	return append(data, '\n'), nil
}
