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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/nlpodyssey/research-assistant-go/modelsettings"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeOpenaiClientWithStatus(t *testing.T, status int, v any, requests *[]map[string]any) OpenaiClient {
	t.Helper()

	body, err := json.Marshal(v)
	require.NoError(t, err)

	return OpenaiClient{
		BaseURL: "https://fake",
		Client: openai.NewClient(
			option.WithAPIKey("fake-key"),
			option.WithBaseURL("https://fake"),
			option.WithMaxRetries(0),
			option.WithMiddleware(func(req *http.Request, _ option.MiddlewareNext) (*http.Response, error) {
				if err := req.Context().Err(); err != nil {
					return nil, err
				}
				if requests != nil && req.Body != nil {
					raw, err := io.ReadAll(req.Body)
					require.NoError(t, err)
					var decoded map[string]any
					require.NoError(t, json.Unmarshal(raw, &decoded))
					*requests = append(*requests, decoded)
				}
				return &http.Response{
					StatusCode:    status,
					Body:          io.NopCloser(bytes.NewReader(body)),
					ContentLength: int64(len(body)),
					Header: http.Header{
						"Content-Type": []string{"application/json"},
					},
					Request: req,
				}, nil
			}),
		),
	}
}

func makeOpenaiClientWithResponse(t *testing.T, v any) OpenaiClient {
	t.Helper()
	return makeOpenaiClientWithStatus(t, http.StatusOK, v, nil)
}

func chatCompletion(msg map[string]any, u any) map[string]any {
	return map[string]any{
		"id":      "resp-id",
		"created": 0,
		"model":   "fake",
		"object":  "chat.completion",
		"choices": []any{map[string]any{"index": 0, "finish_reason": "stop", "message": msg}},
		"usage":   u,
	}
}

func getModel(t *testing.T, client OpenaiClient) Model {
	t.Helper()
	provider := NewOpenAIProvider(OpenAIProviderParams{OpenaiClient: &client})
	model, err := provider.GetModel("gemini-2.0-flash")
	require.NoError(t, err)
	return model
}

func TestGetResponseWithTextMessage(t *testing.T) {
	type m = map[string]any
	chat := chatCompletion(
		m{"role": "assistant", "content": "Hello"},
		m{"prompt_tokens": 7, "completion_tokens": 5, "total_tokens": 12},
	)
	model := getModel(t, makeOpenaiClientWithResponse(t, chat))

	resp, err := model.GetResponse(t.Context(), ModelResponseParams{
		Input: []Message{UserMessage("hi")},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, AssistantMessage("Hello"), resp.Output)
	assert.False(t, resp.Output.HasToolCalls())

	assert.Equal(t, uint64(1), resp.Usage.Requests)
	assert.Equal(t, uint64(7), resp.Usage.InputTokens)
	assert.Equal(t, uint64(5), resp.Usage.OutputTokens)
	assert.Equal(t, uint64(12), resp.Usage.TotalTokens)
}

func TestGetResponseWithRefusal(t *testing.T) {
	type m = map[string]any
	chat := chatCompletion(m{"role": "assistant", "refusal": "No thanks"}, nil)
	model := getModel(t, makeOpenaiClientWithResponse(t, chat))

	_, err := model.GetResponse(t.Context(), ModelResponseParams{
		Input: []Message{UserMessage("hi")},
	})
	var behaviorErr ModelBehaviorError
	require.ErrorAs(t, err, &behaviorErr)
	assert.ErrorContains(t, err, "No thanks")
}

func TestGetResponseWithToolCall(t *testing.T) {
	type m = map[string]any
	toolCall := m{
		"id":       "call-id",
		"type":     "function",
		"function": m{"name": "do_thing", "arguments": `{"x":1}`},
	}
	chat := chatCompletion(m{"role": "assistant", "content": "Hi", "tool_calls": []any{toolCall}}, nil)
	model := getModel(t, makeOpenaiClientWithResponse(t, chat))

	resp, err := model.GetResponse(t.Context(), ModelResponseParams{
		Input: []Message{UserMessage("hi")},
	})
	require.NoError(t, err)

	require.True(t, resp.Output.HasToolCalls())
	assert.Equal(t, "Hi", resp.Output.Content)
	assert.Equal(t, []ToolCall{{ID: "call-id", Name: "do_thing", Arguments: `{"x":1}`}}, resp.Output.ToolCalls)
}

func TestGetResponseWithNoChoices(t *testing.T) {
	chat := map[string]any{
		"id":      "resp-id",
		"created": 0,
		"model":   "fake",
		"object":  "chat.completion",
		"choices": []any{},
	}
	model := getModel(t, makeOpenaiClientWithResponse(t, chat))

	_, err := model.GetResponse(t.Context(), ModelResponseParams{Input: []Message{UserMessage("hi")}})
	var behaviorErr ModelBehaviorError
	assert.ErrorAs(t, err, &behaviorErr)
}

func TestGetResponseHTTPErrorIsTransportError(t *testing.T) {
	body := map[string]any{"error": map[string]any{"message": "API key not valid", "type": "invalid_request_error"}}
	client := makeOpenaiClientWithStatus(t, http.StatusUnauthorized, body, nil)
	model := getModel(t, client)

	_, err := model.GetResponse(t.Context(), ModelResponseParams{Input: []Message{UserMessage("hi")}})
	var transportErr TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "model", transportErr.Service)
	assert.False(t, transportErr.Timeout())

	var apiErr *openai.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestGetResponseCanceledContext(t *testing.T) {
	chat := chatCompletion(map[string]any{"role": "assistant", "content": "Hello"}, nil)
	model := getModel(t, makeOpenaiClientWithResponse(t, chat))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := model.GetResponse(ctx, ModelResponseParams{Input: []Message{UserMessage("hi")}})
	var transportErr TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGetResponseSendsSettingsToolsAndSchema(t *testing.T) {
	type m = map[string]any
	var requests []map[string]any
	chat := chatCompletion(m{"role": "assistant", "content": `{"answer":"ok"}`}, nil)
	client := makeOpenaiClientWithStatus(t, http.StatusOK, chat, &requests)
	model := getModel(t, client)

	type answer struct {
		Answer string `json:"answer"`
	}
	type args struct {
		Query string `json:"query"`
	}
	tool := NewFunctionTool("search", "Search the web", func(context.Context, args) (string, error) {
		return "", nil
	})

	_, err := model.GetResponse(t.Context(), ModelResponseParams{
		SystemInstructions: "be brief",
		Input:              []Message{UserMessage("hi")},
		ModelSettings: modelsettings.ModelSettings{
			Temperature: param.NewOpt(0.0),
			TopP:        param.NewOpt(0.8),
		},
		Tools:      []Tool{tool},
		OutputType: OutputType[answer](),
	})
	require.NoError(t, err)
	require.Len(t, requests, 1)

	req := requests[0]
	assert.Equal(t, "gemini-2.0-flash", req["model"])
	assert.Equal(t, 0.0, req["temperature"])
	assert.Equal(t, 0.8, req["top_p"])

	messages := req["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(m)["role"])
	assert.Equal(t, "be brief", messages[0].(m)["content"])
	assert.Equal(t, "user", messages[1].(m)["role"])

	tools := req["tools"].([]any)
	require.Len(t, tools, 1)
	assert.Equal(t, "search", tools[0].(m)["function"].(m)["name"])

	responseFormat := req["response_format"].(m)
	assert.Equal(t, "json_schema", responseFormat["type"])
	assert.Equal(t, "final_output", responseFormat["json_schema"].(m)["name"])
}

func TestConvertToolChoice(t *testing.T) {
	conv := ChatCmplConverter()

	assert.Equal(t, openai.ChatCompletionToolChoiceOptionUnionParam{}, conv.ConvertToolChoice(""))
	assert.Equal(t, param.NewOpt("auto"), conv.ConvertToolChoice(modelsettings.ToolChoiceAuto).OfAuto)
	assert.Equal(t, param.NewOpt("required"), conv.ConvertToolChoice(modelsettings.ToolChoiceRequired).OfAuto)
	assert.Equal(t, param.NewOpt("none"), conv.ConvertToolChoice(modelsettings.ToolChoiceNone).OfAuto)

	named := conv.ConvertToolChoice("wikipedia")
	require.NotNil(t, named.OfFunctionToolChoice)
	assert.Equal(t, "wikipedia", named.OfFunctionToolChoice.Function.Name)
}

func TestConvertResponseFormatPlainText(t *testing.T) {
	format, err := ChatCmplConverter().ConvertResponseFormat(nil)
	require.NoError(t, err)
	assert.Nil(t, format.OfJSONSchema)

	format, err = ChatCmplConverter().ConvertResponseFormat(OutputType[string]())
	require.NoError(t, err)
	assert.Nil(t, format.OfJSONSchema)
}

func TestMessagesToOpenai(t *testing.T) {
	call := ToolCall{ID: "call-1", Name: "search", Arguments: ""}
	input := []Message{
		UserMessage("query"),
		AssistantMessage("", call),
		ToolResultMessage(call, "result"),
	}

	messages, err := ChatCmplConverter().MessagesToOpenai("", input)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, param.NewOpt("query"), messages[0].OfUser.Content.OfString)

	require.NotNil(t, messages[1].OfAssistant)
	require.Len(t, messages[1].OfAssistant.ToolCalls, 1)
	fn := messages[1].OfAssistant.ToolCalls[0].OfFunction
	assert.Equal(t, "call-1", fn.ID)
	assert.Equal(t, "search", fn.Function.Name)
	assert.Equal(t, "{}", fn.Function.Arguments)

	assert.Equal(t, &openai.ChatCompletionToolMessageParam{
		Content: openai.ChatCompletionToolMessageParamContentUnion{
			OfString: param.NewOpt("result"),
		},
		ToolCallID: "call-1",
		Role:       constant.ValueOf[constant.Tool](),
	}, messages[2].OfTool)
}

func TestMessagesToOpenaiRejectsToolMessageWithoutID(t *testing.T) {
	_, err := ChatCmplConverter().MessagesToOpenai("", []Message{{Role: RoleTool, Content: "x"}})
	assert.Error(t, err)
}

func TestOpenAIProviderRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIProviderParams{}).GetModel("gemini-2.0-flash")
	var userErr UserError
	assert.ErrorAs(t, err, &userErr)

	_, err = NewOpenAIProvider(OpenAIProviderParams{APIKey: "k"}).GetModel("")
	assert.ErrorAs(t, err, &userErr)

	model, err := NewOpenAIProvider(OpenAIProviderParams{APIKey: "k"}).GetModel("gemini-2.0-flash")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", model.(OpenAIChatCompletionsModel).Model)
}
