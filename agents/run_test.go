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

package agents_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nlpodyssey/research-assistant-go/agents"
	"github.com/nlpodyssey/research-assistant-go/agentstesting"
	"github.com/nlpodyssey/research-assistant-go/modelsettings"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerFinalOutputOnFirstTurn(t *testing.T) {
	model := agentstesting.NewFakeModel(&agentstesting.FakeModelTurnOutput{
		Value: agentstesting.GetTextMessage("first"),
	})
	agent := agents.New("test").WithModel(model).WithInstructions("be helpful")

	result, err := agents.Runner{}.Run(t.Context(), agent, "test")
	require.NoError(t, err)

	assert.Equal(t, agents.RunStateDone, result.State)
	assert.Equal(t, "first", result.FinalOutput)
	assert.Equal(t, uint64(1), result.Turns)
	assert.Empty(t, result.ToolsUsed)
	assert.Equal(t, []agents.Message{agents.UserMessage("test")}, result.Input)
	assert.Equal(t, []agents.Message{agents.AssistantMessage("first")}, result.Transcript)

	assert.Equal(t, "be helpful", model.LastTurnArgs.SystemInstructions)
	assert.Equal(t, []agents.Message{agents.UserMessage("test")}, model.LastTurnArgs.Input)
}

func TestRunnerToolCallThenFinalOutput(t *testing.T) {
	model := agentstesting.NewFakeModel(nil)
	agent := agents.New("test").
		WithModel(model).
		WithTools(agentstesting.GetFunctionTool("foo", "tool_result"))

	toolCall := agentstesting.GetFunctionToolCall("foo", `{"a": "b"}`)
	model.AddMultipleTurnOutputs([]agentstesting.FakeModelTurnOutput{
		{Value: toolCall},
		{Value: agentstesting.GetTextMessage("done")},
	})

	result, err := agents.Runner{}.Run(t.Context(), agent, "user_message")
	require.NoError(t, err)

	assert.Equal(t, agents.RunStateDone, result.State)
	assert.Equal(t, "done", result.FinalOutput)
	assert.Equal(t, uint64(2), result.Turns)
	assert.Equal(t, []string{"foo"}, result.ToolsUsed)

	require.Len(t, result.Transcript, 3)
	assert.Equal(t, toolCall, result.Transcript[0])
	assert.Equal(t, agents.ToolResultMessage(toolCall.ToolCalls[0], "tool_result"), result.Transcript[1])
	assert.Equal(t, agents.AssistantMessage("done"), result.Transcript[2])

	// The second model call sees the whole transcript.
	assert.Equal(t, []agents.Message{
		agents.UserMessage("user_message"),
		toolCall,
		agents.ToolResultMessage(toolCall.ToolCalls[0], "tool_result"),
	}, model.LastTurnArgs.Input)
}

func TestRunnerToolErrorIsRecordedAndLoopContinues(t *testing.T) {
	model := agentstesting.NewFakeModel(nil)
	agent := agents.New("test").
		WithModel(model).
		WithTools(agentstesting.GetFunctionToolErr("save_text_to_file", errors.New("disk full")))

	toolCall := agentstesting.GetFunctionToolCall("save_text_to_file", `{}`)
	model.AddMultipleTurnOutputs([]agentstesting.FakeModelTurnOutput{
		{Value: toolCall},
		{Value: agentstesting.GetTextMessage("could not save")},
	})

	result, err := agents.Runner{}.Run(t.Context(), agent, "save it")
	require.NoError(t, err)

	assert.Equal(t, agents.RunStateDone, result.State)
	assert.Equal(t, "could not save", result.FinalOutput)
	assert.Equal(t, []string{"save_text_to_file"}, result.ToolsUsed)

	require.Len(t, result.Transcript, 3)
	toolMsg := result.Transcript[1]
	assert.Equal(t, agents.RoleTool, toolMsg.Role)
	assert.True(t, toolMsg.IsError)
	assert.Equal(t, "Error: disk full", toolMsg.Content)
	assert.Equal(t, toolCall.ToolCalls[0].ID, toolMsg.ToolCallID)
}

func TestRunnerUnknownToolIsRecorded(t *testing.T) {
	model := agentstesting.NewFakeModel(nil)
	agent := agents.New("test").WithModel(model)

	model.AddMultipleTurnOutputs([]agentstesting.FakeModelTurnOutput{
		{Value: agentstesting.GetFunctionToolCall("nope", `{}`)},
		{Value: agentstesting.GetTextMessage("done")},
	})

	result, err := agents.Runner{}.Run(t.Context(), agent, "hi")
	require.NoError(t, err)
	assert.Empty(t, result.ToolsUsed)
	require.Len(t, result.Transcript, 3)
	assert.True(t, result.Transcript[1].IsError)
	assert.Contains(t, result.Transcript[1].Content, "tool nope failed: tool not found")
}

func TestRunnerToolArgumentsDecodeError(t *testing.T) {
	type args struct {
		Query string `json:"query"`
	}
	tool := agents.NewFunctionTool("search", "", func(_ context.Context, a args) (string, error) {
		return "found " + a.Query, nil
	})

	model := agentstesting.NewFakeModel(nil)
	agent := agents.New("test").WithModel(model).WithTools(tool)
	model.AddMultipleTurnOutputs([]agentstesting.FakeModelTurnOutput{
		{Value: agentstesting.GetFunctionToolCall("search", `not json`)},
		{Value: agentstesting.GetFunctionToolCall("search", `{"query":"go"}`)},
		{Value: agentstesting.GetTextMessage("done")},
	})

	result, err := agents.Runner{}.Run(t.Context(), agent, "hi")
	require.NoError(t, err)
	require.Len(t, result.Transcript, 5)
	assert.True(t, result.Transcript[1].IsError)
	assert.Contains(t, result.Transcript[1].Content, "failed to parse arguments")
	assert.Equal(t, "found go", result.Transcript[3].Content)
	assert.Equal(t, []string{"search", "search"}, result.ToolsUsed)
}

func TestRunnerModelErrorFails(t *testing.T) {
	model := agentstesting.NewFakeModel(&agentstesting.FakeModelTurnOutput{
		Error: errors.New("connection refused"),
	})
	agent := agents.New("test").WithModel(model)

	result, err := agents.Runner{}.Run(t.Context(), agent, "hi")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, agents.RunStateFailed, result.State)

	var transportErr agents.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "model", transportErr.Service)
	assert.False(t, transportErr.Timeout())
}

func TestRunnerModelBehaviorErrorIsKept(t *testing.T) {
	model := agentstesting.NewFakeModel(&agentstesting.FakeModelTurnOutput{
		Value: agentstesting.GetTextMessage(""),
	})
	agent := agents.New("test").WithModel(model)

	result, err := agents.Runner{}.Run(t.Context(), agent, "hi")
	assert.ErrorAs(t, err, &agents.ModelBehaviorError{})
	assert.Equal(t, agents.RunStateFailed, result.State)
}

func TestRunnerTimeout(t *testing.T) {
	model := agentstesting.NewFakeModel(&agentstesting.FakeModelTurnOutput{
		Value: agentstesting.GetTextMessage("too late"),
	})
	model.Delay = time.Second
	agent := agents.New("test").WithModel(model)

	runner := agents.Runner{Config: agents.RunConfig{Timeout: 10 * time.Millisecond}}
	result, err := runner.Run(t.Context(), agent, "hi")

	var transportErr agents.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout())
	assert.Equal(t, agents.RunStateFailed, result.State)
	assert.Empty(t, result.FinalOutput)
}

func TestRunnerModelSettingsOverride(t *testing.T) {
	model := agentstesting.NewFakeModel(&agentstesting.FakeModelTurnOutput{
		Value: agentstesting.GetTextMessage("ok"),
	})
	agent := agents.New("test").
		WithModel(model).
		WithModelSettings(modelsettings.ModelSettings{
			Temperature: param.NewOpt(0.0),
			TopP:        param.NewOpt(0.8),
		})

	runner := agents.Runner{Config: agents.RunConfig{
		ModelSettings: modelsettings.ModelSettings{TopP: param.NewOpt(0.5)},
	}}
	_, err := runner.Run(t.Context(), agent, "hi")
	require.NoError(t, err)

	assert.Equal(t, param.NewOpt(0.0), model.LastTurnArgs.ModelSettings.Temperature)
	assert.Equal(t, param.NewOpt(0.5), model.LastTurnArgs.ModelSettings.TopP)
}

func TestRunnerPassesOutputTypeAndTools(t *testing.T) {
	type Out struct {
		Topic string `json:"topic"`
	}
	model := agentstesting.NewFakeModel(&agentstesting.FakeModelTurnOutput{
		Value: agentstesting.GetTextMessage(`{"topic":"x"}`),
	})
	tool := agentstesting.GetFunctionTool("search", "")
	agent := agents.New("test").
		WithModel(model).
		WithTools(tool).
		WithOutputType(agents.OutputType[Out]())

	result, err := agents.Run(t.Context(), agent, "hi")
	require.NoError(t, err)
	assert.Equal(t, `{"topic":"x"}`, result.FinalOutput)

	require.NotNil(t, model.LastTurnArgs.OutputType)
	assert.False(t, model.LastTurnArgs.OutputType.IsPlainText())
	require.Len(t, model.LastTurnArgs.Tools, 1)
	assert.Equal(t, "search", model.LastTurnArgs.Tools[0].ToolName())
}

func TestRunnerInvalidInputs(t *testing.T) {
	_, err := agents.Runner{}.Run(t.Context(), nil, "hi")
	assert.ErrorAs(t, err, &agents.UserError{})

	_, err = agents.Runner{}.Run(t.Context(), agents.New("no-model"), "hi")
	assert.ErrorAs(t, err, &agents.UserError{})

	model := agentstesting.NewFakeModel(nil)
	_, err = agents.RunInputs(t.Context(), agents.New("test").WithModel(model), nil)
	assert.ErrorAs(t, err, &agents.UserError{})
	assert.Zero(t, model.Calls())
}

func TestRunStateString(t *testing.T) {
	assert.Equal(t, "AWAITING_MODEL", agents.RunStateAwaitingModel.String())
	assert.Equal(t, "TOOL_REQUESTED", agents.RunStateToolRequested.String())
	assert.Equal(t, "DONE", agents.RunStateDone.String())
	assert.Equal(t, "FAILED", agents.RunStateFailed.String())
	assert.Equal(t, "ABORTED", agents.RunStateAborted.String())

	assert.False(t, agents.RunStateAwaitingModel.IsTerminal())
	assert.False(t, agents.RunStateToolRequested.IsTerminal())
	assert.True(t, agents.RunStateDone.IsTerminal())
	assert.True(t, agents.RunStateFailed.IsTerminal())
	assert.True(t, agents.RunStateAborted.IsTerminal())
}
