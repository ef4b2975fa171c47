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
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nlpodyssey/research-assistant-go/agents"
	"golang.org/x/net/html"
)

const (
	DuckDuckGoLiteURL = "https://lite.duckduckgo.com/lite/"

	maxBackoff = 30 * time.Second
)

// rateGate spaces out requests by at least interval.
type rateGate struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
}

// wait blocks until the next request may be sent.
func (g *rateGate) wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if wait := time.Until(g.last.Add(g.interval)); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	g.last = time.Now()
	return nil
}

// ddgGate allows one DuckDuckGo query per second across the process.
var ddgGate = &rateGate{interval: time.Second}

// DuckDuckGo searches through the DuckDuckGo lite HTML page.
type DuckDuckGo struct {
	Endpoint  string
	Client    *http.Client
	UserAgent string

	gate         *rateGate
	initialDelay time.Duration
}

func NewDuckDuckGo() *DuckDuckGo {
	return NewDuckDuckGoWithClient(defaultHTTPClient())
}

// NewDuckDuckGoWithClient creates a DuckDuckGo searcher using the supplied HTTP client.
func NewDuckDuckGoWithClient(client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{
		Endpoint:     DuckDuckGoLiteURL,
		Client:       client,
		UserAgent:    DefaultUserAgent,
		gate:         ddgGate,
		initialDelay: time.Second,
	}
}

// Search posts the query and scrapes at most MaxSearchResults hits.
// A 429 response is retried with exponential backoff, up to 30 seconds
// between attempts.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, agents.ToolExecutionErrorf(SearchToolName, "query is empty")
	}

	form := url.Values{}
	form.Set("q", query)

	var resp *http.Response
	delay := d.initialDelay
	for {
		if err := d.gate.wait(ctx); err != nil {
			return nil, agents.NewTransportError("duckduckgo", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, agents.NewTransportError("duckduckgo", err)
		}
		req.Header.Set("User-Agent", d.UserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err = d.Client.Do(req)
		if err != nil {
			return nil, agents.NewTransportError("duckduckgo", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		_ = resp.Body.Close()

		agents.Logger().Warn("DuckDuckGo rate limited, backing off", slog.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, agents.NewTransportError("duckduckgo", ctx.Err())
		case <-timer.C:
		}
		delay = min(delay*2, maxBackoff)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, agents.TransportErrorf("duckduckgo", "unexpected HTTP status %d", resp.StatusCode)
	}

	results, err := parseDuckDuckGoResults(resp.Body)
	if err != nil {
		return nil, agents.NewTransportError("duckduckgo", err)
	}
	return results, nil
}

// parseDuckDuckGoResults extracts result links and snippets from the lite
// page, where each result is an anchor with class "result-link" followed by
// a cell with class "result-snippet".
func parseDuckDuckGoResults(r io.Reader) ([]SearchResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		switch {
		case n.Data == "a" && hasClass(n, "result-link"):
			href := resultURL(attr(n, "href"))
			title := nodeText(n)
			if href == "" || title == "" {
				continue
			}
			results = append(results, SearchResult{Title: title, URL: href})
		case n.Data == "td" && hasClass(n, "result-snippet"):
			if len(results) > 0 && results[len(results)-1].Snippet == "" {
				results[len(results)-1].Snippet = nodeText(n)
			}
		}
	}

	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}
	return results, nil
}

// resultURL unwraps DuckDuckGo redirect links ("//duckduckgo.com/l/?uddg=...").
func resultURL(href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && u.Path == "/l/" {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for c := range strings.FieldsSeq(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// nodeText concatenates the text below n, collapsing whitespace.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			sb.WriteString(d.Data)
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
