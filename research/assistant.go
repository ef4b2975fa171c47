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
	"context"
	"errors"
	"log/slog"

	"github.com/nlpodyssey/research-assistant-go/agents"
	"github.com/nlpodyssey/research-assistant-go/memory"
	"github.com/nlpodyssey/research-assistant-go/modelsettings"
)

// Saver persists a rendered report and returns a confirmation message.
// It is satisfied by *tools.FileSaver.
type Saver interface {
	Save(ctx context.Context, data string) (string, error)
}

// Archive records parsed research results. It is satisfied by the
// memory archives.
type Archive interface {
	Record(ctx context.Context, entry memory.Entry) error
}

type AssistantParams struct {
	Model         agents.Model
	ModelSettings modelsettings.ModelSettings
	Tools         []agents.Tool
	RunConfig     agents.RunConfig

	// Saver receives the rendered report when the query asks for it.
	Saver Saver

	// Optional.
	Archive Archive
}

// Assistant answers research queries, one at a time.
type Assistant struct {
	agent   *agents.Agent
	runner  agents.Runner
	prompt  PromptTemplate
	saver   Saver
	archive Archive
}

func NewAssistant(params AssistantParams) (*Assistant, error) {
	if params.Model == nil {
		return nil, agents.NewUserError("research assistant requires a model")
	}
	if params.Saver == nil {
		return nil, agents.NewUserError("research assistant requires a saver")
	}

	prompt, err := NewPromptTemplate(params.Tools, OutputType())
	if err != nil {
		return nil, err
	}

	agent := agents.New("Research assistant").
		WithInstructions(prompt.System).
		WithModel(params.Model).
		WithModelSettings(params.ModelSettings).
		WithTools(params.Tools...).
		WithOutputType(OutputType())

	return &Assistant{
		agent:   agent,
		runner:  agents.Runner{Config: params.RunConfig},
		prompt:  prompt,
		saver:   params.Saver,
		archive: params.Archive,
	}, nil
}

// Instructions returns the system prompt sent on every model call.
func (a *Assistant) Instructions() string { return a.agent.Instructions }

// Outcome is the result of one research query.
type Outcome struct {
	Query string

	// The run, possibly partial. Nil only if the run could not start.
	Run *agents.RunResult

	// The parsed answer, or nil if ParseErr is set.
	Response *ResearchResponse
	ParseErr error

	// Confirmation returned by the Saver. Empty if nothing was saved.
	SavedTo string
}

// Research runs a single query through the agent and parses the answer.
// When the answer parses and the query contains a save keyword, the
// rendered report is saved exactly once. A parse failure is not an error:
// it is reported in Outcome.ParseErr and nothing is saved.
func (a *Assistant) Research(ctx context.Context, query string) (*Outcome, error) {
	out := &Outcome{Query: query}

	result, err := a.runner.RunInputs(ctx, a.agent, a.prompt.Messages(query))
	out.Run = result
	if err != nil {
		return out, err
	}

	resp, err := ParseResearchResponse(result.FinalOutput)
	if err != nil {
		agents.Logger().Warn("Unparseable research response", slog.String("error", err.Error()))
		out.ParseErr = err
		return out, nil
	}
	out.Response = resp

	a.record(ctx, out)

	if ShouldSave(query) {
		out.SavedTo, err = a.saver.Save(ctx, RenderReport(*resp))
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// record archives a parsed outcome. Failures are only logged.
func (a *Assistant) record(ctx context.Context, out *Outcome) {
	if a.archive == nil {
		return
	}
	responseJSON, err := agents.PrettyJSONMarshal(out.Response)
	if err == nil {
		entry := memory.NewEntry(out.Query, out.Response.Topic, responseJSON, out.Run.FinalOutput)
		err = a.archive.Record(ctx, entry)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		agents.Logger().Warn("Failed to archive research result", slog.String("error", err.Error()))
	}
}
