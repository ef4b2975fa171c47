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

package traceloop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nlpodyssey/research-assistant-go/agents"
	"github.com/nlpodyssey/research-assistant-go/usage"
	sdk "github.com/traceloop/go-openllmetry/traceloop-sdk"
)

// Hooks implements agents.RunHooks, tracing each run to Traceloop.
//
// Concurrent runs are told apart by the usage tracker the runner stores in
// their context.
type Hooks struct {
	client Client

	// Vendor and model reported with every prompt.
	vendor string
	model  string

	runs map[*usage.Usage]*runTrace
	mu   sync.Mutex
}

type runTrace struct {
	workflow Workflow
	llmTask  Task
	llmSpan  LLMSpan
	tools    map[string]Task
}

type HooksParams struct {
	Client Client

	// Optional. Defaults to "openai".
	Vendor string

	Model string
}

func NewHooks(params HooksParams) *Hooks {
	vendor := params.Vendor
	if vendor == "" {
		vendor = "openai"
	}
	return &Hooks{
		client: params.Client,
		vendor: vendor,
		model:  params.Model,
		runs:   make(map[*usage.Usage]*runTrace),
	}
}

// Shutdown flushes pending data and closes the client.
func (h *Hooks) Shutdown(ctx context.Context) {
	h.client.Shutdown(ctx)
}

func (h *Hooks) run(ctx context.Context) *runTrace {
	key, _ := usage.FromContext(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs[key]
}

func (h *Hooks) OnRunStart(ctx context.Context, agent *agents.Agent, _ []agents.Message) error {
	key, _ := usage.FromContext(ctx)

	name := agent.Name
	if name == "" {
		name = "Agent workflow"
	}
	rt := &runTrace{
		workflow: h.client.NewWorkflow(ctx, name),
		tools:    make(map[string]Task),
	}

	h.mu.Lock()
	h.runs[key] = rt
	h.mu.Unlock()
	return nil
}

func (h *Hooks) OnModelStart(ctx context.Context, _ *agents.Agent, turn uint64, params agents.ModelResponseParams) error {
	rt := h.run(ctx)
	if rt == nil {
		return nil
	}

	rt.llmTask = rt.workflow.NewTask(fmt.Sprintf("llm_turn_%d", turn))
	span, err := rt.llmTask.LogPrompt(sdk.Prompt{
		Vendor:   h.vendor,
		Mode:     "chat",
		Model:    h.model,
		Messages: promptMessages(params),
	})
	if err != nil {
		agents.Logger().Warn("Failed to log prompt to Traceloop", slog.String("error", err.Error()))
		return nil
	}
	rt.llmSpan = span
	return nil
}

func (h *Hooks) OnModelEnd(ctx context.Context, _ *agents.Agent, _ uint64, response *agents.ModelResponse, _ error) error {
	rt := h.run(ctx)
	if rt == nil || rt.llmTask == nil {
		return nil
	}

	if rt.llmSpan != nil && response != nil {
		rt.llmSpan.LogCompletion(
			ctx,
			sdk.Completion{
				Model:    h.model,
				Messages: []sdk.Message{traceloopMessage(0, response.Output)},
			},
			traceloopUsage(response.Usage),
		)
	}
	rt.llmTask.End()
	rt.llmTask, rt.llmSpan = nil, nil
	return nil
}

func (h *Hooks) OnToolStart(ctx context.Context, _ *agents.Agent, call agents.ToolCall) error {
	if rt := h.run(ctx); rt != nil {
		rt.tools[call.ID] = rt.workflow.NewTask("tool_" + call.Name)
	}
	return nil
}

func (h *Hooks) OnToolEnd(ctx context.Context, _ *agents.Agent, call agents.ToolCall, _ string, _ error) error {
	rt := h.run(ctx)
	if rt == nil {
		return nil
	}
	if task, ok := rt.tools[call.ID]; ok {
		delete(rt.tools, call.ID)
		task.End()
	}
	return nil
}

func (h *Hooks) OnRunEnd(ctx context.Context, _ *agents.Agent, _ *agents.RunResult, _ error) error {
	key, _ := usage.FromContext(ctx)

	h.mu.Lock()
	rt, ok := h.runs[key]
	delete(h.runs, key)
	h.mu.Unlock()

	if !ok {
		return nil
	}
	if rt.llmTask != nil {
		rt.llmTask.End()
	}
	for _, task := range rt.tools {
		task.End()
	}
	rt.workflow.End()
	return nil
}

func promptMessages(params agents.ModelResponseParams) []sdk.Message {
	messages := make([]sdk.Message, 0, len(params.Input)+1)
	if params.SystemInstructions != "" {
		messages = append(messages, sdk.Message{Index: 0, Content: params.SystemInstructions, Role: "system"})
	}
	for _, msg := range params.Input {
		messages = append(messages, traceloopMessage(len(messages), msg))
	}
	return messages
}

func traceloopMessage(index int, msg agents.Message) sdk.Message {
	content := msg.Content
	if msg.HasToolCalls() {
		calls := make([]string, len(msg.ToolCalls))
		for i, call := range msg.ToolCalls {
			calls[i] = fmt.Sprintf("%s(%s)", call.Name, call.Arguments)
		}
		content = strings.TrimSpace(content + "\n" + strings.Join(calls, "\n"))
	}
	role := string(msg.Role)
	if role == "" {
		role = string(agents.RoleAssistant)
	}
	return sdk.Message{Index: index, Content: content, Role: role}
}

func traceloopUsage(u *usage.Usage) sdk.Usage {
	if u == nil {
		return sdk.Usage{}
	}
	return sdk.Usage{
		TotalTokens:      int(u.TotalTokens),
		PromptTokens:     int(u.InputTokens),
		CompletionTokens: int(u.OutputTokens),
	}
}
