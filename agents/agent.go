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
	"github.com/nlpodyssey/research-assistant-go/modelsettings"
)

// An Agent is a model configured with instructions, tools and an optional
// output type.
type Agent struct {
	// The name of the agent.
	Name string

	// The system prompt sent to the model on every turn.
	Instructions string

	// The model implementation to use when invoking the LLM.
	Model Model

	// Configures model-specific tuning parameters (e.g. temperature, top_p).
	ModelSettings modelsettings.ModelSettings

	// A list of tools that the agent can use.
	Tools []Tool

	// The type of the final output. If not provided, the output is plain text.
	OutputType OutputTypeInterface
}
