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

// Package traceloop exports research runs to Traceloop: one workflow per
// run, with a task for every model call and every tool call.
package traceloop

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/traceloop/go-openllmetry/traceloop-sdk"
)

// DefaultBaseURL is the Traceloop API endpoint used when none is configured.
const DefaultBaseURL = "api.traceloop.com"

// Client is the part of the Traceloop SDK used by Hooks.
type Client interface {
	NewWorkflow(ctx context.Context, name string) Workflow
	Shutdown(ctx context.Context)
}

type Workflow interface {
	NewTask(name string) Task
	End()
}

type Task interface {
	LogPrompt(prompt sdk.Prompt) (LLMSpan, error)
	End()
}

type LLMSpan interface {
	LogCompletion(ctx context.Context, completion sdk.Completion, usage sdk.Usage)
}

type ClientParams struct {
	// Traceloop API key. Required.
	APIKey string

	// Traceloop Base URL. Defaults to DefaultBaseURL.
	BaseURL string
}

// NewClient connects to Traceloop.
func NewClient(ctx context.Context, params ClientParams) (Client, error) {
	if params.APIKey == "" {
		return nil, errors.New("missing Traceloop API key")
	}
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client, err := sdk.NewClient(ctx, sdk.Config{
		BaseURL: baseURL,
		APIKey:  params.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Traceloop client: %w", err)
	}
	return sdkClient{client: client}, nil
}

type sdkClient struct {
	client *sdk.Traceloop
}

func (c sdkClient) NewWorkflow(ctx context.Context, name string) Workflow {
	return sdkWorkflow{workflow: c.client.NewWorkflow(ctx, sdk.WorkflowAttributes{Name: name})}
}

func (c sdkClient) Shutdown(ctx context.Context) {
	c.client.Shutdown(ctx)
}

type sdkWorkflow struct {
	workflow *sdk.Workflow
}

func (w sdkWorkflow) NewTask(name string) Task {
	return sdkTask{task: w.workflow.NewTask(name)}
}

func (w sdkWorkflow) End() { w.workflow.End() }

type sdkTask struct {
	task *sdk.Task
}

func (t sdkTask) LogPrompt(prompt sdk.Prompt) (LLMSpan, error) {
	span, err := t.task.LogPrompt(prompt)
	if err != nil {
		return nil, err
	}
	return &sdkLLMSpan{span: span}, nil
}

func (t sdkTask) End() { t.task.End() }

type sdkLLMSpan struct {
	span sdk.LLMSpan
}

func (s *sdkLLMSpan) LogCompletion(ctx context.Context, completion sdk.Completion, usage sdk.Usage) {
	s.span.LogCompletion(ctx, completion, usage)
}
