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

	"github.com/nlpodyssey/research-assistant-go/modelsettings"
	"github.com/nlpodyssey/research-assistant-go/usage"
)

// Model is the base interface for calling an LLM.
type Model interface {
	// GetResponse returns the full model response from the model.
	GetResponse(context.Context, ModelResponseParams) (*ModelResponse, error)
}

type ModelResponseParams struct {
	// The system instructions to use.
	SystemInstructions string

	// The conversation so far: the user query followed by any assistant
	// tool calls and their results.
	Input []Message

	// The model settings to use.
	ModelSettings modelsettings.ModelSettings

	// The tools available to the model.
	Tools []Tool

	// Optional output type the final answer must conform to.
	OutputType OutputTypeInterface
}

type ModelResponse struct {
	// The assistant message produced by the model. It either carries tool
	// calls or the final text.
	Output Message

	// The usage information for the response.
	Usage *usage.Usage
}

// ModelProvider is the base interface for a model provider.
// It is responsible for looking up Models by name.
type ModelProvider interface {
	// GetModel returns a model by name.
	GetModel(modelName string) (Model, error)
}
