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
	"reflect"
	"sync"
	"time"

	"github.com/nlpodyssey/research-assistant-go/agents"
	"github.com/nlpodyssey/research-assistant-go/modelsettings"
	"github.com/nlpodyssey/research-assistant-go/usage"
)

// FakeModel is an agents.Model returning queued outputs, one per call.
type FakeModel struct {
	TurnOutputs  []FakeModelTurnOutput
	LastTurnArgs FakeModelLastTurnArgs

	// Returned once TurnOutputs is exhausted, indefinitely. If nil, an
	// empty assistant message is returned instead.
	FallbackOutput *FakeModelTurnOutput

	// Optional delay before answering. A context expiring first makes the
	// call fail with the context error.
	Delay time.Duration

	HardcodedUsage *usage.Usage

	mu    sync.Mutex
	calls int
}

type FakeModelTurnOutput struct {
	Value agents.Message
	Error error
}

type FakeModelLastTurnArgs struct {
	SystemInstructions string
	Input              []agents.Message
	ModelSettings      modelsettings.ModelSettings
	Tools              []agents.Tool
	OutputType         agents.OutputTypeInterface
}

func NewFakeModel(initialOutput *FakeModelTurnOutput) *FakeModel {
	var turnOutputs []FakeModelTurnOutput
	if initialOutput != nil && !reflect.ValueOf(*initialOutput).IsZero() {
		turnOutputs = []FakeModelTurnOutput{*initialOutput}
	}
	return &FakeModel{TurnOutputs: turnOutputs}
}

// NewAlwaysToolCallModel returns a FakeModel that requests the named tool on
// every call, never producing a final answer.
func NewAlwaysToolCallModel(toolName, arguments string) *FakeModel {
	return &FakeModel{
		FallbackOutput: &FakeModelTurnOutput{
			Value: GetFunctionToolCall(toolName, arguments),
		},
	}
}

func (m *FakeModel) SetHardcodedUsage(u usage.Usage) {
	m.HardcodedUsage = &u
}

func (m *FakeModel) SetNextOutput(output FakeModelTurnOutput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TurnOutputs = append(m.TurnOutputs, output)
}

func (m *FakeModel) AddMultipleTurnOutputs(outputs []FakeModelTurnOutput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TurnOutputs = append(m.TurnOutputs, outputs...)
}

// Calls returns how many times GetResponse was invoked.
func (m *FakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *FakeModel) GetNextOutput() FakeModelTurnOutput {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.TurnOutputs) == 0 {
		if m.FallbackOutput != nil {
			return *m.FallbackOutput
		}
		return FakeModelTurnOutput{Value: agents.AssistantMessage("")}
	}
	v := m.TurnOutputs[0]
	m.TurnOutputs = m.TurnOutputs[1:]
	return v
}

func (m *FakeModel) GetResponse(ctx context.Context, params agents.ModelResponseParams) (*agents.ModelResponse, error) {
	m.mu.Lock()
	m.calls++
	m.LastTurnArgs = FakeModelLastTurnArgs{
		SystemInstructions: params.SystemInstructions,
		Input:              params.Input,
		ModelSettings:      params.ModelSettings,
		Tools:              params.Tools,
		OutputType:         params.OutputType,
	}
	m.mu.Unlock()

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	output := m.GetNextOutput()
	if err := output.Error; err != nil {
		return nil, err
	}

	u := m.HardcodedUsage
	if u == nil {
		u = &usage.Usage{Requests: 1}
	}

	return &agents.ModelResponse{
		Output: output.Value,
		Usage:  u,
	}, nil
}
