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
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/nlpodyssey/research-assistant-go/agents"
	"github.com/nlpodyssey/research-assistant-go/config"
	"github.com/nlpodyssey/research-assistant-go/memory"
	"github.com/nlpodyssey/research-assistant-go/research"
	"github.com/nlpodyssey/research-assistant-go/tools"
	"github.com/nlpodyssey/research-assistant-go/tracing/traceloop"
)

// environment is everything the commands take from the outside world.
type environment struct {
	lookup config.LookupFunc
	stdin  io.Reader
	stdout io.Writer

	// Builds the chat model. Replaced in tests.
	newModel func(cfg config.Config) (agents.Model, error)

	// Builds the search provider. Replaced in tests.
	newSearch func() tools.SearchProvider
}

func defaultModel(cfg config.Config) (agents.Model, error) {
	provider := agents.NewOpenAIProvider(agents.OpenAIProviderParams{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	})
	return provider.GetModel(cfg.Model)
}

func defaultSearch() tools.SearchProvider {
	return tools.NewDuckDuckGo()
}

// app holds the long-lived components, built once per process.
type app struct {
	cfg       config.Config
	assistant *research.Assistant
	archive   memory.Archive
	hooks     *traceloop.Hooks
}

func loadConfig(env environment) (config.Config, error) {
	cfg, err := config.Load(env.lookup)
	if err != nil {
		return config.Config{}, err
	}

	agents.SetLogger(agents.NewTextLogger(cfg.LogLevel))
	if cfg.NoColor {
		color.NoColor = true
	}
	return cfg, nil
}

func openArchive(ctx context.Context, cfg config.Config) (memory.Archive, error) {
	if cfg.HistoryDSN == "" {
		return nil, nil
	}
	return memory.Open(ctx, cfg.HistoryDSN)
}

func newApp(ctx context.Context, env environment) (_ *app, err error) {
	cfg, err := loadConfig(env)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.close(ctx)
		}
	}()

	model, err := env.newModel(cfg)
	if err != nil {
		return nil, err
	}

	if a.archive, err = openArchive(ctx, cfg); err != nil {
		return nil, err
	}

	runConfig := cfg.RunConfig()
	if cfg.TraceloopAPIKey != "" {
		client, err := traceloop.NewClient(ctx, traceloop.ClientParams{
			APIKey:  cfg.TraceloopAPIKey,
			BaseURL: cfg.TraceloopBaseURL,
		})
		if err != nil {
			return nil, err
		}
		a.hooks = traceloop.NewHooks(traceloop.HooksParams{Client: client, Model: cfg.Model})
		runConfig.Hooks = a.hooks
	}

	params := research.AssistantParams{
		Model:         model,
		ModelSettings: cfg.ModelSettings(),
		RunConfig:     runConfig,
		Saver:         tools.NewFileSaver(cfg.OutputFile),
		Archive:       a.archive,
		Tools: []agents.Tool{
			tools.NewSaveTool(tools.NewFileSaver(cfg.OutputFile)),
			tools.NewSearchTool(env.newSearch()),
			tools.NewWikipediaTool(tools.NewWikipedia()),
		},
	}
	if a.assistant, err = research.NewAssistant(params); err != nil {
		return nil, err
	}
	return a, nil
}

// close releases the archive and flushes traces. Failures are logged.
func (a *app) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if a.hooks != nil {
		a.hooks.Shutdown(ctx)
	}
	if a.archive != nil {
		if err := a.archive.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
			agents.Logger().Warn("Failed to close archive", slog.String("error", err.Error()))
		}
	}
}
