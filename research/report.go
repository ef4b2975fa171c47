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

package research

import (
	"errors"
	"strings"
)

const (
	reportHeader   = "Research Report\n===============\n\n"
	topicPrefix    = "Topic: "
	summaryHeader  = "\n\nSummary\n-------\n"
	sourcesHeader  = "\n\nSources\n-------\n"
	toolsHeader    = "\n\nTools Used\n----------\n"
	emptyListEntry = "(none)"
)

// RenderReport formats resp as the plain-text report written to disk.
func RenderReport(resp ResearchResponse) string {
	var sb strings.Builder
	sb.WriteString(reportHeader)
	sb.WriteString(topicPrefix)
	sb.WriteString(resp.Topic)
	sb.WriteString(summaryHeader)
	sb.WriteString(resp.Summary)
	sb.WriteString(sourcesHeader)
	writeList(&sb, resp.Sources)
	sb.WriteString(toolsHeader)
	writeList(&sb, resp.ToolsUsed)
	return sb.String()
}

func writeList(sb *strings.Builder, items []string) {
	if len(items) == 0 {
		sb.WriteString(emptyListEntry)
		return
	}
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(item)
	}
}

var errMalformedReport = errors.New("malformed research report")

// ParseReport reads back a report produced by RenderReport. Empty lists
// are returned as empty, non-nil slices.
func ParseReport(text string) (ResearchResponse, error) {
	rest, ok := strings.CutPrefix(text, reportHeader+topicPrefix)
	if !ok {
		return ResearchResponse{}, errMalformedReport
	}

	var resp ResearchResponse
	var sources, tools string
	if resp.Topic, rest, ok = strings.Cut(rest, summaryHeader); !ok {
		return ResearchResponse{}, errMalformedReport
	}
	if resp.Summary, rest, ok = strings.Cut(rest, sourcesHeader); !ok {
		return ResearchResponse{}, errMalformedReport
	}
	if sources, tools, ok = strings.Cut(rest, toolsHeader); !ok {
		return ResearchResponse{}, errMalformedReport
	}

	var err error
	if resp.Sources, err = parseList(sources); err != nil {
		return ResearchResponse{}, err
	}
	if resp.ToolsUsed, err = parseList(strings.TrimRight(tools, "\n")); err != nil {
		return ResearchResponse{}, err
	}
	return resp, nil
}

func parseList(section string) ([]string, error) {
	items := []string{}
	if section == emptyListEntry {
		return items, nil
	}
	for line := range strings.SplitSeq(section, "\n") {
		item, ok := strings.CutPrefix(line, "- ")
		if !ok {
			return nil, errMalformedReport
		}
		items = append(items, item)
	}
	return items, nil
}
