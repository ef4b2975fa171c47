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
)

// RunHooks is implemented by an object that receives callbacks on various
// lifecycle events in an agent run.
//
// A non-nil error returned by a hook fails the run.
type RunHooks interface {
	// OnRunStart is called once, before the first model call.
	OnRunStart(ctx context.Context, agent *Agent, input []Message) error

	// OnModelStart is called before each model call.
	OnModelStart(ctx context.Context, agent *Agent, turn uint64, params ModelResponseParams) error

	// OnModelEnd is called after each model call, with a nil response if it failed.
	OnModelEnd(ctx context.Context, agent *Agent, turn uint64, response *ModelResponse, err error) error

	// OnToolStart is called before a requested tool is dispatched.
	OnToolStart(ctx context.Context, agent *Agent, call ToolCall) error

	// OnToolEnd is called after a tool returns. err is the tool failure, if any.
	OnToolEnd(ctx context.Context, agent *Agent, call ToolCall, output string, err error) error

	// OnRunEnd is called once the run reaches a terminal state.
	OnRunEnd(ctx context.Context, agent *Agent, result *RunResult, err error) error
}

type NoOpRunHooks struct{}

func (NoOpRunHooks) OnRunStart(context.Context, *Agent, []Message) error {
	return nil
}
func (NoOpRunHooks) OnModelStart(context.Context, *Agent, uint64, ModelResponseParams) error {
	return nil
}
func (NoOpRunHooks) OnModelEnd(context.Context, *Agent, uint64, *ModelResponse, error) error {
	return nil
}
func (NoOpRunHooks) OnToolStart(context.Context, *Agent, ToolCall) error {
	return nil
}
func (NoOpRunHooks) OnToolEnd(context.Context, *Agent, ToolCall, string, error) error {
	return nil
}
func (NoOpRunHooks) OnRunEnd(context.Context, *Agent, *RunResult, error) error {
	return nil
}
