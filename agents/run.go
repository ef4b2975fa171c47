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
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/nlpodyssey/research-assistant-go/modelsettings"
	"github.com/nlpodyssey/research-assistant-go/usage"
)

const (
	DefaultMaxTurns = 10
	DefaultTimeout  = 60 * time.Second
)

// DefaultRunner is the default Runner instance used by package-level Run
// helpers.
var DefaultRunner = Runner{}

// Runner executes agents using the configured RunConfig.
//
// The zero value is valid.
type Runner struct {
	Config RunConfig
}

// RunConfig configures settings for the entire agent run.
type RunConfig struct {
	// Optional global model settings. Any non-null or non-zero values will
	// override the agent-specific model settings.
	ModelSettings modelsettings.ModelSettings

	// Optional maximum number of turns to run the agent for.
	// A turn is defined as one AI invocation (including any tool calls that might occur).
	// Default (when left zero): DefaultMaxTurns.
	MaxTurns uint64

	// Optional timeout applied to every single model request.
	// Default (when left zero): DefaultTimeout.
	Timeout time.Duration

	// Optional object that receives callbacks on various lifecycle events.
	Hooks RunHooks
}

// RunState is a state of the tool-calling loop.
type RunState uint8

const (
	// RunStateAwaitingModel: the transcript is about to be sent to the model.
	RunStateAwaitingModel RunState = iota
	// RunStateToolRequested: the last model turn requested one or more tools.
	RunStateToolRequested
	// RunStateDone: the model returned a final answer.
	RunStateDone
	// RunStateFailed: a model call or a hook failed.
	RunStateFailed
	// RunStateAborted: the turn limit was reached without a final answer.
	RunStateAborted
)

func (s RunState) String() string {
	switch s {
	case RunStateAwaitingModel:
		return "AWAITING_MODEL"
	case RunStateToolRequested:
		return "TOOL_REQUESTED"
	case RunStateDone:
		return "DONE"
	case RunStateFailed:
		return "FAILED"
	case RunStateAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("RunState(%d)", uint8(s))
	}
}

// IsTerminal reports whether no further transition is possible from s.
func (s RunState) IsTerminal() bool {
	return s == RunStateDone || s == RunStateFailed || s == RunStateAborted
}

type RunResult struct {
	// The original input items.
	Input []Message

	// The new items generated during the run: assistant turns and tool
	// results, in order.
	Transcript []Message

	// The raw text of the final answer. Empty unless State is RunStateDone.
	FinalOutput string

	// The terminal state of the run.
	State RunState

	// Names of the tools that were invoked, in order of invocation.
	ToolsUsed []string

	// Number of model calls performed.
	Turns uint64

	// Usage accumulated across all model calls.
	Usage *usage.Usage
}

// Run executes startingAgent with the provided input using the DefaultRunner.
func Run(ctx context.Context, startingAgent *Agent, input string) (*RunResult, error) {
	return DefaultRunner.Run(ctx, startingAgent, input)
}

// RunInputs executes startingAgent with the provided list of input items using the DefaultRunner.
func RunInputs(ctx context.Context, startingAgent *Agent, input []Message) (*RunResult, error) {
	return DefaultRunner.RunInputs(ctx, startingAgent, input)
}

// Run a workflow starting at the given agent, with a single user message.
//
// The agent runs in a loop until a final output is generated:
//  1. The agent's model is invoked with the transcript so far.
//  2. If the model requests tools, each one is dispatched by name and its
//     output, or its error, is appended to the transcript. Then go to 1.
//  3. If the model returns text only, that text is the final output.
//
// A failed tool never ends the run: the error is shown to the model, which
// may try again. The run fails if a model call fails, and it is aborted with
// MaxTurnsExceededError once MaxTurns model calls completed without a final
// answer. In both cases the partial RunResult is returned together with the
// error.
func (r Runner) Run(ctx context.Context, startingAgent *Agent, input string) (*RunResult, error) {
	return r.RunInputs(ctx, startingAgent, []Message{UserMessage(input)})
}

// RunInputs is like Run, starting from a list of input items.
func (r Runner) RunInputs(ctx context.Context, startingAgent *Agent, input []Message) (*RunResult, error) {
	if startingAgent == nil {
		return nil, NewUserError("startingAgent must not be nil")
	}
	if startingAgent.Model == nil {
		return nil, UserErrorf("agent %q has no model", startingAgent.Name)
	}
	if len(input) == 0 {
		return nil, NewUserError("run input must not be empty")
	}

	hooks := r.Config.Hooks
	if hooks == nil {
		hooks = NoOpRunHooks{}
	}

	maxTurns := r.Config.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}

	result := &RunResult{
		Input: slices.Clone(input),
		State: RunStateAwaitingModel,
		Usage: usage.NewUsage(),
	}
	// A tracker already in the context, e.g. one per session, gets this
	// run's usage too.
	if tracker, ok := usage.FromContext(ctx); ok {
		defer func() { tracker.Add(result.Usage) }()
	}
	ctx = usage.NewContext(ctx, result.Usage)

	err := hooks.OnRunStart(ctx, startingAgent, result.Input)
	if err != nil {
		result.State = RunStateFailed
	}

	var pending []ToolCall
	for err == nil && !result.State.IsTerminal() {
		switch result.State {
		case RunStateAwaitingModel:
			if result.Turns >= maxTurns {
				Logger().Warn("Max turns exceeded", slog.Uint64("maxTurns", maxTurns))
				result.State = RunStateAborted
				err = MaxTurnsExceededErrorf("max turns (%d) exceeded", maxTurns)
				break
			}

			var output Message
			output, err = r.callModel(ctx, startingAgent, hooks, result)
			if err != nil {
				result.State = RunStateFailed
				break
			}
			result.Transcript = append(result.Transcript, output)

			if output.HasToolCalls() {
				pending = output.ToolCalls
				result.State = RunStateToolRequested
			} else {
				result.FinalOutput = output.Content
				result.State = RunStateDone
			}

		case RunStateToolRequested:
			for _, call := range pending {
				var msg Message
				msg, err = r.runTool(ctx, startingAgent, hooks, call, result)
				if err != nil {
					result.State = RunStateFailed
					break
				}
				result.Transcript = append(result.Transcript, msg)
			}
			pending = nil
			if err == nil {
				result.State = RunStateAwaitingModel
			}
		}
	}

	if hookErr := hooks.OnRunEnd(ctx, startingAgent, result, err); hookErr != nil && err == nil {
		result.State = RunStateFailed
		err = hookErr
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

func (r Runner) callModel(ctx context.Context, agent *Agent, hooks RunHooks, result *RunResult) (Message, error) {
	turn := result.Turns + 1

	params := ModelResponseParams{
		SystemInstructions: agent.Instructions,
		Input:              append(slices.Clone(result.Input), result.Transcript...),
		ModelSettings:      agent.ModelSettings.Resolve(r.Config.ModelSettings),
		Tools:              agent.Tools,
		OutputType:         agent.OutputType,
	}

	if err := hooks.OnModelStart(ctx, agent, turn, params); err != nil {
		return Message{}, err
	}

	timeout := r.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	modelCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	Logger().Debug("Running agent turn", slog.String("agent", agent.Name), slog.Uint64("turn", turn))

	response, err := agent.Model.GetResponse(modelCtx, params)
	result.Turns = turn
	if err != nil {
		err = classifyModelError(err)
	} else if response == nil {
		err = NewModelBehaviorError("model returned a nil response")
	} else if !response.Output.HasToolCalls() && response.Output.Content == "" {
		err = NewModelBehaviorError("model returned neither text nor tool calls")
	}

	if err == nil {
		result.Usage.Add(response.Usage)
	}
	if hookErr := hooks.OnModelEnd(ctx, agent, turn, response, err); hookErr != nil && err == nil {
		err = hookErr
	}
	if err != nil {
		return Message{}, err
	}

	output := response.Output
	output.Role = RoleAssistant
	return output, nil
}

// classifyModelError keeps the errors the model already classified and
// reports anything else as a transport failure.
func classifyModelError(err error) error {
	var transportErr TransportError
	var behaviorErr ModelBehaviorError
	var userErr UserError
	if errors.As(err, &transportErr) || errors.As(err, &behaviorErr) || errors.As(err, &userErr) {
		return err
	}
	return NewTransportError("model", err)
}

func (r Runner) runTool(
	ctx context.Context,
	agent *Agent,
	hooks RunHooks,
	call ToolCall,
	result *RunResult,
) (Message, error) {
	if err := hooks.OnToolStart(ctx, agent, call); err != nil {
		return Message{}, err
	}

	var output string
	var toolErr error

	tool, ok := FindTool(agent.Tools, call.Name)
	if !ok {
		toolErr = ToolExecutionErrorf(call.Name, "tool not found")
	} else {
		result.ToolsUsed = append(result.ToolsUsed, call.Name)
		output, toolErr = tool.Invoke(ctx, call.Arguments)
	}

	if err := hooks.OnToolEnd(ctx, agent, call, output, toolErr); err != nil {
		return Message{}, err
	}

	if toolErr != nil {
		// A canceled run is not something the model can recover from.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, NewTransportError(call.Name, ctxErr)
		}
		Logger().Warn("Tool failed", slog.String("tool", call.Name), slog.String("error", toolErr.Error()))
		return ToolErrorMessage(call, toolErr), nil
	}

	if DontLogModelData {
		Logger().Debug("Tool call completed", slog.String("tool", call.Name))
	} else {
		Logger().Debug("Tool call completed", slog.String("tool", call.Name), slog.String("output", output))
	}
	return ToolResultMessage(call, output), nil
}
