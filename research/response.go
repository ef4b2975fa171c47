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

// Package research turns a free-text query into a structured research
// report: it builds the prompt, drives the agent, parses and renders the
// answer, and runs the interactive loop.
package research

import (
	"fmt"
	"strings"

	"github.com/nlpodyssey/research-assistant-go/agents"
)

// ResearchResponse is the structured answer expected from the model.
type ResearchResponse struct {
	Topic     string   `json:"topic" jsonschema_description:"The research topic."`
	Summary   string   `json:"summary" jsonschema_description:"A summary of the findings."`
	Sources   []string `json:"sources" jsonschema_description:"The sources consulted, e.g. URLs or page titles."`
	ToolsUsed []string `json:"tools_used" jsonschema_description:"Names of the tools used to produce the answer."`
}

var responseOutputType = agents.OutputType[ResearchResponse]()

// OutputType describes ResearchResponse with a strict JSON schema: all
// fields required and no additional properties.
func OutputType() agents.OutputTypeInterface {
	return responseOutputType
}

// SchemaParseError is returned when the final model output does not
// conform to the ResearchResponse schema. Raw holds the text verbatim.
type SchemaParseError struct {
	Raw string
	Err error
}

func (err SchemaParseError) Error() string {
	return fmt.Sprintf("failed to parse research response: %v", err.Err)
}

func (err SchemaParseError) Unwrap() error { return err.Err }

// ParseResearchResponse validates and decodes the final model output.
// Surrounding whitespace and a Markdown code fence are tolerated.
func ParseResearchResponse(raw string) (*ResearchResponse, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, SchemaParseError{Raw: raw, Err: agents.NewModelBehaviorError("empty output")}
	}

	v, err := responseOutputType.ValidateJSON(text)
	if err != nil {
		return nil, SchemaParseError{Raw: raw, Err: err}
	}
	resp, ok := v.(ResearchResponse)
	if !ok {
		return nil, SchemaParseError{Raw: raw, Err: fmt.Errorf("unexpected output value %T", v)}
	}
	return &resp, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if info, body, ok := strings.Cut(s, "\n"); ok && !strings.ContainsAny(info, "{[") {
		s = body
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
