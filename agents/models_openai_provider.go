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
	"net/http"

	"github.com/openai/openai-go/v3/option"
)

type OpenAIProviderParams struct {
	// The API key to use for the client. Required unless OpenaiClient is set.
	APIKey string

	// The base URL to use for the client. Defaults to GeminiOpenAIBaseURL.
	BaseURL string

	// An optional client to use. If not provided, a new one is created
	// using APIKey and BaseURL.
	OpenaiClient *OpenaiClient

	// Optional HTTP client used by the new client.
	HTTPClient *http.Client
}

type OpenAIProvider struct {
	params OpenAIProviderParams
	client *OpenaiClient
}

// NewOpenAIProvider creates a new provider of chat completions models.
func NewOpenAIProvider(params OpenAIProviderParams) *OpenAIProvider {
	return &OpenAIProvider{
		params: params,
		client: params.OpenaiClient,
	}
}

func (provider *OpenAIProvider) GetModel(modelName string) (Model, error) {
	if modelName == "" {
		return nil, NewUserError("cannot get a model without a name")
	}
	if provider.client == nil && provider.params.APIKey == "" {
		return nil, NewUserError("an API key is required to create the model client")
	}
	return NewOpenAIChatCompletionsModel(modelName, provider.getClient()), nil
}

// We lazy load the client in case you never actually use OpenAIProvider.
func (provider *OpenAIProvider) getClient() OpenaiClient {
	if provider.client == nil {
		baseURL := provider.params.BaseURL
		if baseURL == "" {
			baseURL = GeminiOpenAIBaseURL
		}

		options := []option.RequestOption{
			option.WithAPIKey(provider.params.APIKey),
			// Retries are the caller's responsibility.
			option.WithMaxRetries(0),
		}
		if provider.params.HTTPClient != nil {
			options = append(options, option.WithHTTPClient(provider.params.HTTPClient))
		}

		client := NewOpenaiClient(baseURL, options...)
		provider.client = &client
	}
	return *provider.client
}
