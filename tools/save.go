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
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nlpodyssey/research-assistant-go/agents"
)

// DefaultOutputFile is where research is saved unless configured otherwise.
const DefaultOutputFile = "research_output.txt"

// TimestampLayout formats the timestamp line of each saved entry.
const TimestampLayout = "2006-01-02 15:04:05"

// FileSaver appends timestamped entries to a text file.
//
// The file is created if missing and never truncated, so every call grows
// it. Writes are not locked against other processes.
type FileSaver struct {
	Path string

	// Optional clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewFileSaver(path string) *FileSaver {
	if path == "" {
		path = DefaultOutputFile
	}
	return &FileSaver{Path: path}
}

// FormatEntry returns the text appended to the file for data.
func FormatEntry(data string, at time.Time) string {
	return fmt.Sprintf("--- Research Output ---\nTimestamp: %s\n\n%s\n\n", at.Format(TimestampLayout), data)
}

// Save appends data to the file and returns a confirmation message.
// Failures are reported as agents.ToolExecutionError.
func (s *FileSaver) Save(ctx context.Context, data string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", agents.NewToolExecutionError(SaveToolName, err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	entry := FormatEntry(data, now())

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", agents.NewToolExecutionError(SaveToolName, err)
	}
	if _, err = f.WriteString(entry); err != nil {
		_ = f.Close()
		return "", agents.NewToolExecutionError(SaveToolName, err)
	}
	if err = f.Close(); err != nil {
		return "", agents.NewToolExecutionError(SaveToolName, err)
	}

	agents.Logger().Debug("Research saved", slog.String("path", s.Path), slog.Int("bytes", len(entry)))
	return fmt.Sprintf("Data successfully saved to %s", s.Path), nil
}

type saveArgs struct {
	Data string `json:"data" jsonschema_description:"The research text to save."`
}

// NewSaveTool returns the "save_text_to_file" tool backed by saver.
func NewSaveTool(saver *FileSaver) agents.FunctionTool {
	return agents.NewFunctionTool(
		SaveToolName,
		"Saves structured research data to a text file.",
		func(ctx context.Context, args saveArgs) (string, error) {
			return saver.Save(ctx, args.Data)
		},
	)
}
