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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nlpodyssey/research-assistant-go/agents"
	"github.com/nlpodyssey/research-assistant-go/agentstesting"
	"github.com/nlpodyssey/research-assistant-go/config"
	"github.com/nlpodyssey/research-assistant-go/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solarJSON = `{"topic": "Solar Panel Efficiency", "summary": "About 20%.", "sources": ["https://example.com/solar"], "tools_used": ["search"]}`

type staticSearch struct{}

func (staticSearch) Search(context.Context, string) ([]tools.SearchResult, error) {
	return []tools.SearchResult{{Title: "Solar", URL: "https://example.com/solar"}}, nil
}

func testEnv(t *testing.T, vars map[string]string, model *agentstesting.FakeModel, stdin string) (environment, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	return environment{
		lookup: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		newModel: func(config.Config) (agents.Model, error) {
			return model, nil
		},
		newSearch: func() tools.SearchProvider { return staticSearch{} },
	}, &stdout
}

func solarModel() *agentstesting.FakeModel {
	model := agentstesting.NewFakeModel(nil)
	model.AddMultipleTurnOutputs([]agentstesting.FakeModelTurnOutput{
		{Value: agentstesting.GetFunctionToolCall(tools.SearchToolName, `{"query": "solar panel efficiency"}`)},
		{Value: agentstesting.GetTextMessage(solarJSON)},
	})
	return model
}

func baseVars(t *testing.T) map[string]string {
	dir := t.TempDir()
	return map[string]string{
		"GEMINI_API_KEY":       "test-key",
		"RESEARCH_OUTPUT_FILE": filepath.Join(dir, "research_output.txt"),
		"RESEARCH_HISTORY_DSN": "sqlite:" + filepath.Join(dir, "history.db"),
		"NO_COLOR":             "1",
	}
}

func TestAskCommand(t *testing.T) {
	vars := baseVars(t)
	env, stdout := testEnv(t, vars, solarModel(), "")

	cmd := newRootCmd(env)
	cmd.SetArgs([]string{"ask", "Research", "solar", "panel", "efficiency", "and", "save", "it"})
	require.NoError(t, cmd.ExecuteContext(t.Context()))

	assert.Contains(t, stdout.String(), "Raw Response:")
	assert.Contains(t, stdout.String(), "Structured Response:")

	content, err := os.ReadFile(vars["RESEARCH_OUTPUT_FILE"])
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "Topic: Solar Panel Efficiency"))

	env, stdout = testEnv(t, vars, nil, "")
	cmd = newRootCmd(env)
	cmd.SetArgs([]string{"history"})
	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Contains(t, stdout.String(), `Solar Panel Efficiency  ("Research solar panel efficiency and save it")`)
}

func TestRootCommandLoop(t *testing.T) {
	model := solarModel()
	env, stdout := testEnv(t, baseVars(t), model, "solar panels\n\nQUIT\n")

	cmd := newRootCmd(env)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.ExecuteContext(t.Context()))

	assert.Equal(t, 2, model.Calls())
	assert.Contains(t, stdout.String(), "Structured Response:")
}

func TestConfigurationErrorFailsFast(t *testing.T) {
	model := solarModel()
	env, _ := testEnv(t, map[string]string{}, model, "solar\n")

	cmd := newRootCmd(env)
	cmd.SetArgs([]string{})
	err := cmd.ExecuteContext(t.Context())

	var cfgErr config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "GEMINI_API_KEY", cfgErr.Var)
	assert.Zero(t, model.Calls())
}

func TestHistoryWithoutArchive(t *testing.T) {
	vars := baseVars(t)
	delete(vars, "RESEARCH_HISTORY_DSN")
	env, _ := testEnv(t, vars, nil, "")

	cmd := newRootCmd(env)
	cmd.SetArgs([]string{"history"})
	assert.ErrorContains(t, cmd.ExecuteContext(t.Context()), "RESEARCH_HISTORY_DSN")
}

func TestHistoryEmpty(t *testing.T) {
	env, stdout := testEnv(t, baseVars(t), nil, "")

	cmd := newRootCmd(env)
	cmd.SetArgs([]string{"history", "-n", "5"})
	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Equal(t, "No research results archived yet.\n", stdout.String())
}
