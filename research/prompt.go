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

package research

import (
	"fmt"
	"strings"

	"github.com/nlpodyssey/research-assistant-go/agents"
)

// FormatInstructions describes to the model how the final answer must be
// shaped, embedding the JSON schema.
func FormatInstructions(schema map[string]any) (string, error) {
	schemaJSON, err := agents.PrettyJSONMarshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal output schema: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("The output should be formatted as a JSON instance that conforms to the JSON schema below.\n\n")
	sb.WriteString(`As an example, for the schema {"properties": {"foo": {"type": "array", "items": {"type": "string"}}}, "required": ["foo"]}`)
	sb.WriteString("\n")
	sb.WriteString(`the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. `)
	sb.WriteString(`The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.`)
	sb.WriteString("\n\nHere is the output schema:\n```\n")
	sb.WriteString(schemaJSON)
	sb.WriteString("\n```\n\nReply with the JSON instance only, with no other text.")
	return sb.String(), nil
}

// BuildInstructions renders the system prompt: the assistant role, the
// available tools, when to save, and the output format.
func BuildInstructions(tools []agents.Tool, outputType agents.OutputTypeInterface) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are a research assistant that helps with generating research papers.\n")
	sb.WriteString("You have access to the following tools:\n")
	for _, tool := range tools {
		_, _ = fmt.Fprintf(&sb, "- %s: %s\n", tool.ToolName(), tool.ToolDescription())
	}
	sb.WriteString("\nUse these tools to help answer the user's questions and conduct research. ")
	sb.WriteString("List the names of the tools you used in tools_used, and the pages or links you relied on in sources.\n")
	sb.WriteString("Only use the save_text_to_file tool when the user explicitly asks to save, store, write or file the findings.\n")

	if outputType != nil && !outputType.IsPlainText() {
		schema, err := outputType.JSONSchema()
		if err != nil {
			return "", err
		}
		format, err := FormatInstructions(schema)
		if err != nil {
			return "", err
		}
		sb.WriteString("\nFormat your final response according to this structure:\n")
		sb.WriteString(format)
	}
	return sb.String(), nil
}

// PromptTemplate holds the system instructions and builds the input of
// each run. The tool-call scratchpad is appended after the user message by
// the agents.Runner.
type PromptTemplate struct {
	System string
}

func NewPromptTemplate(tools []agents.Tool, outputType agents.OutputTypeInterface) (PromptTemplate, error) {
	system, err := BuildInstructions(tools, outputType)
	if err != nil {
		return PromptTemplate{}, err
	}
	return PromptTemplate{System: system}, nil
}

// Messages returns the run input for query.
func (p PromptTemplate) Messages(query string) []agents.Message {
	return []agents.Message{agents.UserMessage(strings.TrimSpace(query))}
}
