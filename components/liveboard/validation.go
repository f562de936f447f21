package liveboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ArgsValidator checks strict tool arguments before dispatch.
type ArgsValidator interface {
	Validate(def ToolDefinition, args Args) error
}

// JSONSchemaValidator compiles tool parameter schemas and validates argument
// maps against them. Compiled schemas are cached per tool name.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate returns a *RejectionError when args do not satisfy the schema of
// def. Missing required parameters are reported by name.
func (v *JSONSchemaValidator) Validate(def ToolDefinition, args Args) error {
	for _, name := range def.Required() {
		if !args.present(name) {
			return missingParam(def.Name, name, "")
		}
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if len(args) > 0 {
		data, err := json.Marshal(map[string]any(args))
		if err != nil {
			return fmt.Errorf("liveboard: marshal args for %s: %w", def.Name, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("liveboard: normalize args for %s: %w", def.Name, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		var verr *jsonschema.ValidationError
		msg := err.Error()
		if errors.As(err, &verr) && len(verr.Causes) > 0 {
			msg = verr.Causes[0].Message
			if loc := verr.Causes[0].InstanceLocation; loc != "" {
				msg = loc + ": " + msg
			}
		}
		return reject(def.Name, "", "Invalid arguments for %q: %s", def.Name, msg)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def ToolDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema())
	if err != nil {
		return nil, fmt.Errorf("liveboard: marshal schema %s: %w", def.Name, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Name + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("liveboard: load schema %s: %w", def.Name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("liveboard: compile schema %s: %w", def.Name, err)
	}
	v.mu.Lock()
	v.compiled[def.Name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopArgsValidator struct{}

func (noopArgsValidator) Validate(ToolDefinition, Args) error { return nil }
