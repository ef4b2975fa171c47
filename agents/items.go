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

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a request from the model to invoke a tool.
type ToolCall struct {
	// ID assigned by the model, echoed back in the tool result message.
	ID string `json:"id"`

	// Name of the requested tool.
	Name string `json:"name"`

	// Arguments as a JSON string.
	Arguments string `json:"arguments"`
}

// Message is a single entry of the transcript exchanged with the model.
//
// A user message carries the query; an assistant message carries either
// final text or tool calls (or both); a tool message carries the output of
// one tool call, identified by ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`

	// Name of the tool that produced a tool message.
	Name string `json:"name,omitempty"`

	// IsError marks a tool message that records a failed invocation.
	IsError bool `json:"is_error,omitempty"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string, toolCalls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

func ToolResultMessage(call ToolCall, output string) Message {
	return Message{
		Role:       RoleTool,
		Content:    output,
		ToolCallID: call.ID,
		Name:       call.Name,
	}
}

func ToolErrorMessage(call ToolCall, err error) Message {
	return Message{
		Role:       RoleTool,
		Content:    "Error: " + err.Error(),
		ToolCallID: call.ID,
		Name:       call.Name,
		IsError:    true,
	}
}

// HasToolCalls reports whether the message requests at least one tool.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// TextMessageOutputs concatenates the content of all assistant messages.
func TextMessageOutputs(items []Message) string {
	var sb strings.Builder
	for _, item := range items {
		if item.Role == RoleAssistant {
			sb.WriteString(item.Content)
		}
	}
	return sb.String()
}
