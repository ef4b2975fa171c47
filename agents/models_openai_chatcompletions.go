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
	"log/slog"

	"github.com/nlpodyssey/research-assistant-go/usage"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

type OpenAIChatCompletionsModel struct {
	Model  openai.ChatModel
	client OpenaiClient
}

func NewOpenAIChatCompletionsModel(model openai.ChatModel, client OpenaiClient) OpenAIChatCompletionsModel {
	return OpenAIChatCompletionsModel{
		Model:  model,
		client: client,
	}
}

func (m OpenAIChatCompletionsModel) GetResponse(
	ctx context.Context,
	params ModelResponseParams,
) (*ModelResponse, error) {
	body, opts, err := m.prepareRequest(params)
	if err != nil {
		return nil, err
	}

	response, err := m.client.Chat.Completions.New(ctx, *body, opts...)
	if err != nil {
		return nil, NewTransportError("model", err)
	}
	if len(response.Choices) == 0 {
		return nil, NewModelBehaviorError("model returned no choices")
	}

	if DontLogModelData {
		Logger().Debug("LLM responded")
	} else {
		Logger().Debug("LLM responded", slog.String("message", SimplePrettyJSONMarshal(response.Choices[0].Message)))
	}

	u := &usage.Usage{
		Requests:        1,
		InputTokens:     uint64(response.Usage.PromptTokens),
		CachedTokens:    uint64(response.Usage.PromptTokensDetails.CachedTokens),
		OutputTokens:    uint64(response.Usage.CompletionTokens),
		ReasoningTokens: uint64(response.Usage.CompletionTokensDetails.ReasoningTokens),
		TotalTokens:     uint64(response.Usage.TotalTokens),
	}

	output, err := ChatCmplConverter().MessageFromOpenai(response.Choices[0].Message)
	if err != nil {
		return nil, err
	}
	return &ModelResponse{
		Output: output,
		Usage:  u,
	}, nil
}

func (m OpenAIChatCompletionsModel) prepareRequest(
	params ModelResponseParams,
) (*openai.ChatCompletionNewParams, []option.RequestOption, error) {
	convertedMessages, err := ChatCmplConverter().MessagesToOpenai(params.SystemInstructions, params.Input)
	if err != nil {
		return nil, nil, err
	}

	modelSettings := params.ModelSettings

	var parallelToolCalls param.Opt[bool]
	if modelSettings.ParallelToolCalls.Valid() {
		if modelSettings.ParallelToolCalls.Value && len(params.Tools) > 0 {
			parallelToolCalls = param.NewOpt(true)
		} else if !modelSettings.ParallelToolCalls.Value {
			parallelToolCalls = param.NewOpt(false)
		}
	}

	toolChoice := ChatCmplConverter().ConvertToolChoice(modelSettings.ToolChoice)
	responseFormat, err := ChatCmplConverter().ConvertResponseFormat(params.OutputType)
	if err != nil {
		return nil, nil, err
	}

	var convertedTools []openai.ChatCompletionToolUnionParam
	for _, tool := range params.Tools {
		convertedTools = append(convertedTools, ChatCmplConverter().ToolToOpenai(tool))
	}

	if DontLogModelData {
		Logger().Debug("Calling LLM")
	} else {
		Logger().Debug(
			"Calling LLM",
			slog.String("Model", m.Model),
			slog.String("Messages", SimplePrettyJSONMarshal(convertedMessages)),
			slog.String("Tools", SimplePrettyJSONMarshal(convertedTools)),
			slog.String("Tool choice", SimplePrettyJSONMarshal(toolChoice)),
			slog.String("Response format", SimplePrettyJSONMarshal(responseFormat)),
		)
	}

	body := &openai.ChatCompletionNewParams{
		Model:             m.Model,
		Messages:          convertedMessages,
		Tools:             convertedTools,
		Temperature:       modelSettings.Temperature,
		TopP:              modelSettings.TopP,
		MaxTokens:         modelSettings.MaxTokens,
		ToolChoice:        toolChoice,
		ResponseFormat:    responseFormat,
		ParallelToolCalls: parallelToolCalls,
	}

	var opts []option.RequestOption
	for k, v := range modelSettings.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}
	for k, v := range modelSettings.ExtraQuery {
		opts = append(opts, option.WithQuery(k, v))
	}
	return body, opts, nil
}
