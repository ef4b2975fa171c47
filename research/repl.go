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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nlpodyssey/research-assistant-go/agents"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	savedColor   = color.New(color.FgGreen)
)

// QuitCommand ends the interactive loop, in any letter case.
const QuitCommand = "quit"

func writeAndFlush(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	if flusher, ok := w.(interface{ Flush() error }); ok {
		_ = flusher.Flush()
	} else if syncer, ok := w.(interface{ Sync() error }); ok {
		_ = syncer.Sync()
	}
	return nil
}

// Ask runs one query and prints the raw and structured responses to w.
// The query error, if any, is printed and returned.
func (a *Assistant) Ask(ctx context.Context, query string, w io.Writer) (*Outcome, error) {
	out, err := a.Research(ctx, query)
	if printErr := PrintOutcome(w, out, err); printErr != nil && err == nil {
		err = printErr
	}
	return out, err
}

// PrintOutcome writes the result of one query: the run summary under
// "Raw Response:", then the parsed answer under "Structured Response:" or
// the parse error followed by the raw output. Both are printed whenever the
// run reached a final answer, even if a later step such as saving failed.
// The error, if any, comes last.
func PrintOutcome(w io.Writer, out *Outcome, err error) error {
	var sb strings.Builder

	if out != nil && out.Run != nil && out.Run.State == agents.RunStateDone {
		sb.WriteString("\n")
		sb.WriteString(headingColor.Sprint("Raw Response:"))
		sb.WriteString("\n")
		sb.WriteString(agents.PrettyPrintResult(*out.Run))
		sb.WriteString("\n")

		switch {
		case out.ParseErr != nil:
			sb.WriteString("\n")
			sb.WriteString(errorColor.Sprint("Error parsing response:"))
			_, _ = fmt.Fprintf(&sb, " %v\n", out.ParseErr)
			_, _ = fmt.Fprintf(&sb, "Raw output: %s\n", out.Run.FinalOutput)
		case out.Response != nil:
			sb.WriteString("\n")
			sb.WriteString(headingColor.Sprint("Structured Response:"))
			sb.WriteString("\n")
			sb.WriteString(agents.SimplePrettyJSONMarshal(out.Response))
			sb.WriteString("\n")
		}
		if out.SavedTo != "" {
			sb.WriteString(savedColor.Sprint(out.SavedTo))
			sb.WriteString("\n")
		}
	}

	if err != nil {
		sb.WriteString(errorColor.Sprint("Error:"))
		_, _ = fmt.Fprintf(&sb, " %v\n", err)
	}

	return writeAndFlush(w, sb.String())
}

// RunLoop reads one query per line from r and answers it on w, until
// "quit", the end of the input, or the cancellation of ctx.
//
// Empty lines re-prompt. Query errors are printed and the loop goes on.
func RunLoop(ctx context.Context, a *Assistant, r io.Reader, w io.Writer) error {
	// Stops the reader once the loop is over.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type readResult struct {
		line string
		err  error
	}

	// Reading happens on its own goroutine so that cancelling ctx is
	// noticed while waiting for input. A line is read only when the loop
	// asks for one, so the reader stays idle after "quit".
	requests := make(chan struct{})
	lines := make(chan readResult)
	go func() {
		bufReader := bufio.NewReader(r)
		for {
			select {
			case <-requests:
			case <-ctx.Done():
				return
			}
			line, err := bufReader.ReadString('\n')
			if line != "" {
				err = nil
			}
			select {
			case lines <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if err := writeAndFlush(w, "> "); err != nil {
			return err
		}

		var res readResult
		select {
		case requests <- struct{}{}:
			select {
			case res = <-lines:
			case <-ctx.Done():
			}
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			_ = writeAndFlush(w, "\n")
			return ctx.Err()
		}
		if errors.Is(res.err, io.EOF) {
			return writeAndFlush(w, "\n")
		}
		if res.err != nil {
			return res.err
		}

		query := strings.TrimSpace(res.line)
		if strings.EqualFold(query, QuitCommand) {
			return nil
		}
		if query == "" {
			continue
		}

		if _, err := a.Ask(ctx, query, w); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
