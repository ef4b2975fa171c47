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
	"fmt"
	"strings"
)

func indent(text string, indentLevel int) string {
	indentString := strings.Repeat("  ", indentLevel)

	var sb strings.Builder
	for line := range strings.Lines(text) {
		sb.WriteString(indentString)
		sb.WriteString(line)
	}
	return sb.String()
}

func PrettyPrintResult(result RunResult) string {
	var sb strings.Builder

	sb.WriteString("RunResult:")
	_, _ = fmt.Fprintf(&sb, "\n- State: %s", result.State)
	_, _ = fmt.Fprintf(&sb, "\n- Turns: %d", result.Turns)

	sb.WriteString("\n- Tools used: ")
	if len(result.ToolsUsed) == 0 {
		sb.WriteString("(none)")
	} else {
		sb.WriteString(strings.Join(result.ToolsUsed, ", "))
	}

	sb.WriteString("\n- Final output:\n")
	finalOutput := strings.TrimSuffix(result.FinalOutput, "\n")
	if finalOutput == "" {
		finalOutput = "None"
	}
	sb.WriteString(indent(finalOutput, 2))

	_, _ = fmt.Fprintf(&sb, "\n- %d new item(s)", len(result.Transcript))
	if result.Usage != nil {
		_, _ = fmt.Fprintf(&sb, "\n- Usage: %s", result.Usage)
	}
	sb.WriteString("\n(See `RunResult` for more details)")

	return sb.String()
}
