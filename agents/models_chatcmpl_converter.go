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
	"errors"

	"github.com/nlpodyssey/research-assistant-go/modelsettings"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared/constant"
)

type chatCmplConverter struct{}

func ChatCmplConverter() chatCmplConverter { return chatCmplConverter{} }

func (chatCmplConverter) ConvertToolChoice(toolChoice modelsettings.ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	switch toolChoice {
	case "":
		return openai.ChatCompletionToolChoiceOptionUnionParam{}
	case modelsettings.ToolChoiceAuto, modelsettings.ToolChoiceRequired, modelsettings.ToolChoiceNone:
		return openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: param.NewOpt(string(toolChoice)),
		}
	default:
		return openai.ChatCompletionToolChoiceOptionUnionParam{
			OfFunctionToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: string(toolChoice),
				},
				Type: constant.ValueOf[constant.Function](),
			},
		}
	}
}

func (chatCmplConverter) ConvertResponseFormat(
	finalOutputType OutputTypeInterface,
) (openai.ChatCompletionNewParamsResponseFormatUnion, error) {
	if finalOutputType == nil || finalOutputType.IsPlainText() {
		return openai.ChatCompletionNewParamsResponseFormatUnion{}, nil
	}
	schema, err := finalOutputType.JSONSchema()
	if err != nil {
		return openai.ChatCompletionNewParamsResponseFormatUnion{}, err
	}

	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   "final_output",
				Strict: param.NewOpt(finalOutputType.IsStrictJSONSchema()),
				Schema: schema,
			},
			Type: constant.ValueOf[constant.JSONSchema](),
		},
	}, nil
}

// MessageFromOpenai converts the assistant message of a chat completion.
func (chatCmplConverter) MessageFromOpenai(message openai.ChatCompletionMessage) (Message, error) {
	if message.Refusal != "" && message.Content == "" && len(message.ToolCalls) == 0 {
		return Message{}, ModelBehaviorErrorf("model refused to answer: %s", message.Refusal)
	}

	out := Message{Role: RoleAssistant, Content: message.Content}
	for _, toolCall := range message.ToolCalls {
		if toolCall.Type != "" && toolCall.Type != "function" {
			return Message{}, ModelBehaviorErrorf("unsupported tool call type %q", toolCall.Type)
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        toolCall.ID,
			Name:      toolCall.Function.Name,
			Arguments: toolCall.Function.Arguments,
		})
	}
	return out, nil
}

// MessagesToOpenai converts the transcript to chat completion messages,
// preceded by the system instructions, if any.
func (chatCmplConverter) MessagesToOpenai(
	systemInstructions string,
	input []Message,
) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(input)+1)

	if systemInstructions != "" {
		result = append(result, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.NewOpt(systemInstructions),
				},
				Role: constant.ValueOf[constant.System](),
			},
		})
	}

	for _, msg := range input {
		switch msg.Role {
		case RoleUser:
			result = append(result, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: param.NewOpt(msg.Content),
					},
					Role: constant.ValueOf[constant.User](),
				},
			})
		case RoleAssistant:
			asst := &openai.ChatCompletionAssistantMessageParam{
				Role: constant.ValueOf[constant.Assistant](),
			}
			if msg.Content != "" {
				asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: param.NewOpt(msg.Content),
				}
			}
			for _, call := range msg.ToolCalls {
				arguments := call.Arguments
				if arguments == "" {
					arguments = "{}"
				}
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Name,
							Arguments: arguments,
						},
						Type: constant.ValueOf[constant.Function](),
					},
				})
			}
			result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: asst})
		case RoleTool:
			if msg.ToolCallID == "" {
				return nil, errors.New("tool message without a tool call ID")
			}
			result = append(result, openai.ChatCompletionMessageParamUnion{
				OfTool: &openai.ChatCompletionToolMessageParam{
					Content: openai.ChatCompletionToolMessageParamContentUnion{
						OfString: param.NewOpt(msg.Content),
					},
					ToolCallID: msg.ToolCallID,
					Role:       constant.ValueOf[constant.Tool](),
				},
			})
		default:
			return nil, UserErrorf("unhandled message role %q", msg.Role)
		}
	}

	return result, nil
}

func (chatCmplConverter) ToolToOpenai(tool Tool) openai.ChatCompletionToolUnionParam {
	var description param.Opt[string]
	if d := tool.ToolDescription(); d != "" {
		description = param.NewOpt(d)
	}
	return openai.ChatCompletionFunctionTool(
		openai.FunctionDefinitionParam{
			Name:        tool.ToolName(),
			Description: description,
			Parameters:  tool.ParamsJSONSchema(),
		},
	)
}
