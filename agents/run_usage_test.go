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
	"testing"

	"github.com/nlpodyssey/research-assistant-go/agents"
	"github.com/nlpodyssey/research-assistant-go/agentstesting"
	"github.com/nlpodyssey/research-assistant-go/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAddsUsageToExistingContext(t *testing.T) {
	model := agentstesting.NewFakeModel(&agentstesting.FakeModelTurnOutput{
		Value: agentstesting.GetTextMessage("hello"),
	})
	model.SetHardcodedUsage(usage.Usage{Requests: 1, InputTokens: 5, OutputTokens: 3, TotalTokens: 8})

	agent := agents.New("test").WithModel(model)

	tracker := usage.NewUsage()
	ctx := usage.NewContext(context.Background(), tracker)

	result, err := agents.Run(ctx, agent, "hi")
	require.NoError(t, err)

	expected := &usage.Usage{Requests: 1, InputTokens: 5, OutputTokens: 3, TotalTokens: 8}
	assert.Equal(t, expected, result.Usage)
	assert.Equal(t, expected, tracker)
}

func TestRunAccumulatesUsageAcrossTurns(t *testing.T) {
	model := agentstesting.NewFakeModel(nil)
	model.SetHardcodedUsage(usage.Usage{Requests: 1, InputTokens: 10, OutputTokens: 2, TotalTokens: 12})
	model.AddMultipleTurnOutputs([]agentstesting.FakeModelTurnOutput{
		{Value: agentstesting.GetFunctionToolCall("foo", `{}`)},
		{Value: agentstesting.GetTextMessage("done")},
	})
	agent := agents.New("test").WithModel(model).WithTools(agentstesting.GetFunctionTool("foo", "bar"))

	result, err := agents.Run(t.Context(), agent, "hi")
	require.NoError(t, err)
	assert.Equal(t, &usage.Usage{Requests: 2, InputTokens: 20, OutputTokens: 4, TotalTokens: 24}, result.Usage)
}
