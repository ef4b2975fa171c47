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

package usage

import (
	"context"
	"fmt"
)

type Usage struct {
	// Total requests made to the LLM API.
	Requests uint64 `json:"requests"`

	// Total input tokens sent, across all requests.
	InputTokens uint64 `json:"input_tokens"`

	// Cached input tokens, as reported by the provider.
	CachedTokens uint64 `json:"cached_tokens"`

	// Total output tokens received, across all requests.
	OutputTokens uint64 `json:"output_tokens"`

	// Reasoning tokens, as reported by the provider.
	ReasoningTokens uint64 `json:"reasoning_tokens"`

	// Total tokens sent and received, across all requests.
	TotalTokens uint64 `json:"total_tokens"`
}

func NewUsage() *Usage {
	return new(Usage)
}

func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.Requests += other.Requests
	u.InputTokens += other.InputTokens
	u.CachedTokens += other.CachedTokens
	u.OutputTokens += other.OutputTokens
	u.ReasoningTokens += other.ReasoningTokens
	u.TotalTokens += other.TotalTokens
}

func (u Usage) String() string {
	return fmt.Sprintf(
		"%d request(s), %d input token(s), %d output token(s), %d total",
		u.Requests, u.InputTokens, u.OutputTokens, u.TotalTokens,
	)
}

// usageContextKey is the key type for Usage values in Contexts.
type usageContextKey struct{}

// NewContext returns a new Context that carries the given Usage.
func NewContext(ctx context.Context, u *Usage) context.Context {
	return context.WithValue(ctx, usageContextKey{}, u)
}

// FromContext returns the Usage value stored in ctx, if any.
func FromContext(ctx context.Context) (*Usage, bool) {
	u, ok := ctx.Value(usageContextKey{}).(*Usage)
	return u, ok
}
