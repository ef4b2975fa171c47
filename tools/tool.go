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

// Package tools provides the research tools offered to the model: saving
// text to a file, searching the web and looking up Wikipedia.
package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nlpodyssey/research-assistant-go/agents"
)

const (
	SaveToolName      = "save_text_to_file"
	SearchToolName    = "search"
	WikipediaToolName = "wikipedia"
)

// DefaultUserAgent identifies outgoing HTTP requests.
const DefaultUserAgent = "research-assistant-go/1.0 (https://github.com/nlpodyssey/research-assistant-go)"

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

type queryArgs struct {
	Query string `json:"query" jsonschema_description:"The search query."`
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchProvider runs a web search and returns the top hits.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// NoSearchResults is returned to the model when a search has no hits.
const NoSearchResults = "No good search result found"

// MaxSearchResults caps the number of hits in a search digest.
const MaxSearchResults = 5

// FormatSearchResults renders a numbered digest of at most MaxSearchResults hits.
func FormatSearchResults(results []SearchResult) string {
	if len(results) == 0 {
		return NoSearchResults
	}
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}

	blocks := make([]string, 0, len(results))
	for i, r := range results {
		var sb strings.Builder
		_, _ = fmt.Fprintf(&sb, "%d. %s\n   %s", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			_, _ = fmt.Fprintf(&sb, "\n   %s", r.Snippet)
		}
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

// NewSearchTool returns the "search" tool backed by the given provider.
func NewSearchTool(provider SearchProvider) agents.FunctionTool {
	return agents.NewFunctionTool(
		SearchToolName,
		"Search the web for information. Returns the titles, links and snippets of the top results.",
		func(ctx context.Context, args queryArgs) (string, error) {
			query := strings.TrimSpace(args.Query)
			if query == "" {
				return "", agents.ToolExecutionErrorf(SearchToolName, "query is empty")
			}
			results, err := provider.Search(ctx, query)
			if err != nil {
				return "", err
			}
			return FormatSearchResults(results), nil
		},
	)
}
