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

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nlpodyssey/research-assistant-go/agents"
)

const (
	WikipediaAPIURL     = "https://en.wikipedia.org/w/api.php"
	WikipediaSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary/"

	DefaultWikipediaTopK     = 1
	DefaultWikipediaMaxChars = 1000
)

// NoWikipediaResults is returned to the model when a lookup has no hits.
const NoWikipediaResults = "No good Wikipedia Search Result was found"

// Wikipedia looks up page summaries: the MediaWiki search API finds the
// top titles, then the REST summary endpoint provides each extract.
type Wikipedia struct {
	APIURL     string
	SummaryURL string
	Client     *http.Client
	UserAgent  string

	// Number of pages to summarize.
	TopK int

	// Maximum length of the returned text, in runes.
	MaxChars int
}

func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		APIURL:     WikipediaAPIURL,
		SummaryURL: WikipediaSummaryURL,
		Client:     defaultHTTPClient(),
		UserAgent:  DefaultUserAgent,
		TopK:       DefaultWikipediaTopK,
		MaxChars:   DefaultWikipediaMaxChars,
	}
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiSummaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Lookup returns "Page: <title>\nSummary: <extract>" blocks for the top
// matching pages, or NoWikipediaResults.
func (w *Wikipedia) Lookup(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", agents.ToolExecutionErrorf(WikipediaToolName, "query is empty")
	}

	topK := w.TopK
	if topK <= 0 {
		topK = DefaultWikipediaTopK
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(topK))
	params.Set("format", "json")
	params.Set("utf8", "1")

	var search wikiSearchResponse
	if _, err := w.getJSON(ctx, w.APIURL+"?"+params.Encode(), &search); err != nil {
		return "", err
	}

	var blocks []string
	for _, hit := range search.Query.Search {
		var summary wikiSummaryResponse
		endpoint := w.SummaryURL + url.PathEscape(strings.ReplaceAll(hit.Title, " ", "_"))
		found, err := w.getJSON(ctx, endpoint, &summary)
		if err != nil {
			return "", err
		}
		if !found || summary.Extract == "" {
			continue
		}
		title := summary.Title
		if title == "" {
			title = hit.Title
		}
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", title, summary.Extract))
	}

	if len(blocks) == 0 {
		return NoWikipediaResults, nil
	}
	return truncateRunes(strings.Join(blocks, "\n\n"), w.MaxChars), nil
}

// getJSON decodes the response body into v. A 404 reports found=false.
func (w *Wikipedia) getJSON(ctx context.Context, endpoint string, v any) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, agents.NewTransportError("wikipedia", err)
	}
	req.Header.Set("User-Agent", w.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return false, agents.NewTransportError("wikipedia", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, agents.TransportErrorf("wikipedia", "unexpected HTTP status %d", resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, agents.TransportErrorf("wikipedia", "failed to decode response: %w", err)
	}
	return true, nil
}

func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

// NewWikipediaTool returns the "wikipedia" tool backed by w.
func NewWikipediaTool(w *Wikipedia) agents.FunctionTool {
	return agents.NewFunctionTool(
		WikipediaToolName,
		"Query Wikipedia for information about people, places, companies, facts, historical events, or other subjects.",
		func(ctx context.Context, args queryArgs) (string, error) {
			return w.Lookup(ctx, args.Query)
		},
	)
}
