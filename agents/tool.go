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
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// A Tool that can be used in an agent.
type Tool interface {
	// ToolName returns the name of the tool, as shown to the LLM.
	ToolName() string

	// ToolDescription returns a description of the tool, as shown to the LLM.
	ToolDescription() string

	// ParamsJSONSchema returns the JSON schema for the tool's parameters.
	ParamsJSONSchema() map[string]any

	// Invoke runs the tool with the arguments from the LLM, as a JSON string,
	// and returns a text representation of its output.
	Invoke(ctx context.Context, arguments string) (string, error)
}

// FunctionTool is a tool that wraps a function.
type FunctionTool struct {
	// The name of the tool, as shown to the LLM. Generally the name of the function.
	Name string

	// A description of the tool, as shown to the LLM.
	Description string

	// The JSON schema for the tool's parameters.
	ParamsSchema map[string]any

	// A function that invokes the tool with the given context and the
	// arguments from the LLM, as a JSON string.
	//
	// You must return a string representation of the tool output.
	// Errors are recorded in the transcript and sent back to the LLM;
	// they do not stop the run.
	OnInvokeTool func(ctx context.Context, arguments string) (string, error)
}

func (t FunctionTool) ToolName() string                 { return t.Name }
func (t FunctionTool) ToolDescription() string          { return t.Description }
func (t FunctionTool) ParamsJSONSchema() map[string]any { return t.ParamsSchema }

func (t FunctionTool) Invoke(ctx context.Context, arguments string) (string, error) {
	if t.OnInvokeTool == nil {
		return "", UserErrorf("tool %q has no OnInvokeTool function", t.Name)
	}
	return t.OnInvokeTool(ctx, arguments)
}

// NewFunctionTool creates a FunctionTool with automatic JSON schema generation.
//
// The schema of the arguments is reflected from T, reading `json` and
// `jsonschema` struct tags. The handler receives the decoded arguments.
// Argument decoding failures are reported as ToolExecutionError.
//
// Example:
//
//	type SearchArgs struct {
//	    Query string `json:"query" jsonschema_description:"What to search for."`
//	}
//
//	tool := NewFunctionTool("search", "Search the web", func(ctx context.Context, args SearchArgs) (string, error) {
//	    return doSearch(ctx, args.Query)
//	})
func NewFunctionTool[T any](
	name string,
	description string,
	handler func(ctx context.Context, args T) (string, error),
) FunctionTool {
	return FunctionTool{
		Name:         name,
		Description:  description,
		ParamsSchema: reflectParamsSchema[T](),
		OnInvokeTool: func(ctx context.Context, arguments string) (string, error) {
			var args T
			if strings.TrimSpace(arguments) == "" {
				arguments = "{}"
			}
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", ToolExecutionErrorf(name, "failed to parse arguments: %w", err)
			}
			return handler(ctx, args)
		},
	}
}

func reflectParamsSchema[T any]() map[string]any {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: false,
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
	}

	var zero T
	schema := reflector.Reflect(&zero)
	schema.Version = ""

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Errorf("failed to JSON-marshal tool parameters schema: %w", err)) // This should never happen
	}
	var schemaMap map[string]any
	if err = json.Unmarshal(schemaBytes, &schemaMap); err != nil {
		panic(fmt.Errorf("failed to JSON-unmarshal tool parameters schema: %w", err)) // This should never happen
	}
	return schemaMap
}

// FindTool returns the tool with the given name, if any.
func FindTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.ToolName() == name {
			return t, true
		}
	}
	return nil, false
}
