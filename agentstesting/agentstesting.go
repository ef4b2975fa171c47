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

package agentstesting

import (
	"context"

	"github.com/google/uuid"
	"github.com/nlpodyssey/research-assistant-go/agents"
)

func GetTextMessage(content string) agents.Message {
	return agents.AssistantMessage(content)
}

// GetFunctionToolCall returns an assistant message requesting a single tool.
func GetFunctionToolCall(name string, arguments string) agents.Message {
	return agents.AssistantMessage("", agents.ToolCall{
		ID:        "call_" + uuid.NewString(),
		Name:      name,
		Arguments: arguments,
	})
}

func GetFunctionTool(name string, returnValue string) agents.FunctionTool {
	return agents.FunctionTool{
		Name:         name,
		ParamsSchema: emptyArgsSchema(name),
		OnInvokeTool: func(context.Context, string) (string, error) {
			return returnValue, nil
		},
	}
}

func GetFunctionToolErr(name string, returnErr error) agents.FunctionTool {
	return agents.FunctionTool{
		Name:         name,
		ParamsSchema: emptyArgsSchema(name),
		OnInvokeTool: func(context.Context, string) (string, error) {
			return "", returnErr
		},
	}
}

func emptyArgsSchema(name string) map[string]any {
	return map[string]any{
		"title":                name + "_args",
		"type":                 "object",
		"required":             []string{},
		"additionalProperties": false,
		"properties":           map[string]any{},
	}
}
