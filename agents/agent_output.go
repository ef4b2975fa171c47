// Copyright 2025 The NLP Odyssey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agents

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// OutputTypeInterface is implemented by an object that describes an agent's output type.
// Unless the output type is plain text (string), it captures the JSON schema of the output,
// as well as validating/parsing JSON produced by the LLM into the output type.
type OutputTypeInterface interface {
	// IsPlainText reports whether the output type is plain text (versus a JSON object).
	IsPlainText() bool

	// The Name of the output type.
	Name() string

	// JSONSchema returns the JSON schema of the output.
	// It will only be called if the output type is not plain text.
	JSONSchema() (map[string]any, error)

	// IsStrictJSONSchema reports whether the JSON schema is in strict mode.
	// Strict mode constrains the JSON schema features, but guarantees valid JSON.
	IsStrictJSONSchema() bool

	// ValidateJSON validates a JSON string against the output type.
	// You must return the validated object, or a ModelBehaviorError if the JSON is invalid.
	// It will only be called if the output type is not plain text.
	ValidateJSON(jsonStr string) (any, error)
}

type outputTypeImpl[T any] struct {
	// The JSON schema of the output.
	outputSchema map[string]any

	// The compiled schema, used for validation.
	compiled *gojsonschema.Schema

	// Whether the JSON schema is in strict mode.
	strictJSONSchema bool

	isPlainText bool
	name        string
}

// OutputType creates a new output type for T with default options (strict schema).
// It panics in case of errors. For a safer variant, see SafeOutputType.
func OutputType[T any]() OutputTypeInterface {
	result, err := SafeOutputType[T](defaultOutputTypeOpts)
	if err != nil {
		panic(err)
	}
	return result
}

type OutputTypeOpts struct {
	StrictJSONSchema bool
}

var defaultOutputTypeOpts = OutputTypeOpts{
	StrictJSONSchema: true,
}

// SafeOutputType creates a new output type for T with custom options.
// T must be a string (plain text) or a struct type.
func SafeOutputType[T any](opts OutputTypeOpts) (OutputTypeInterface, error) {
	var zero T
	name := fmt.Sprintf("%T", zero)

	if _, isPlainText := any(zero).(string); isPlainText {
		return outputTypeImpl[T]{
			outputSchema: map[string]any{"type": "string"},
			isPlainText:  true,
			name:         name,
		}, nil
	}

	if !isStruct[T]() {
		return nil, UserErrorf("output type %s must be a string or a struct", name)
	}

	reflector := jsonschema.Reflector{
		Anonymous:                 true,
		AllowAdditionalProperties: !opts.StrictJSONSchema,
		ExpandedStruct:            true,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(zero)
	schema.Version = ""

	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to JSON-marshal JSON schema: %w", err)
	}
	var outputSchema map[string]any
	if err = json.Unmarshal(b, &outputSchema); err != nil {
		return nil, fmt.Errorf("failed to JSON-unmarshal JSON schema: %w", err)
	}

	if opts.StrictJSONSchema {
		outputSchema, err = EnsureStrictJSONSchema(outputSchema)
		if err != nil {
			var userError UserError
			if errors.As(err, &userError) {
				return nil, UserErrorf(
					"strict JSON schema is enabled, but the output type is not valid. Either make the "+
						"output type strict, or disable strict JSON schema. Error: %w", userError,
				)
			}
			return nil, err
		}
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(outputSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load and compile output JSON schema: %w", err)
	}

	return outputTypeImpl[T]{
		outputSchema:     outputSchema,
		compiled:         compiled,
		strictJSONSchema: opts.StrictJSONSchema,
		name:             name,
	}, nil
}

// isStruct reports whether T is a struct or pointer to struct.
func isStruct[T any]() bool {
	typ := reflect.TypeFor[T]()
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ.Kind() == reflect.Struct
}

func (t outputTypeImpl[T]) IsPlainText() bool        { return t.isPlainText }
func (t outputTypeImpl[T]) Name() string             { return t.name }
func (t outputTypeImpl[T]) IsStrictJSONSchema() bool { return t.strictJSONSchema }

func (t outputTypeImpl[T]) JSONSchema() (map[string]any, error) {
	if t.isPlainText {
		return nil, NewUserError("output type is plain text, so no JSON schema is available")
	}
	return t.outputSchema, nil
}

func (t outputTypeImpl[T]) ValidateJSON(jsonStr string) (any, error) {
	if t.isPlainText {
		return nil, NewUserError("output type is plain text, so JSON validation is not available")
	}

	if err := ValidateJSON(t.compiled, jsonStr); err != nil {
		return nil, err
	}

	var output T
	if err := json.Unmarshal([]byte(jsonStr), &output); err != nil {
		return nil, ModelBehaviorErrorf("failed to unmarshal JSON output: %w", err)
	}
	return output, nil
}
