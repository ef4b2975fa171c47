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

// Package config reads the research assistant settings from the
// environment and from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nlpodyssey/research-assistant-go/agents"
	"github.com/nlpodyssey/research-assistant-go/modelsettings"
	"github.com/nlpodyssey/research-assistant-go/tools"
	"github.com/openai/openai-go/v3/packages/param"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = 0.0
	DefaultTopP        = 0.8
	DefaultLogLevel    = slog.LevelWarn
)

// Config holds every setting, resolved once at startup.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	OutputFile string

	MaxTurns uint64
	Timeout  time.Duration

	Temperature float64
	TopP        float64

	LogLevel slog.Level

	// Optional research archive. Disabled when empty.
	HistoryDSN string

	// Optional Traceloop tracing. Disabled when the key is empty.
	TraceloopAPIKey  string
	TraceloopBaseURL string

	NoColor bool
}

// ConfigurationError reports a missing or malformed setting.
type ConfigurationError struct {
	Var string
	Err error
}

func (err ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", err.Var, err.Err)
}

func (err ConfigurationError) Unwrap() error { return err.Err }

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a LookupFunc reading the process environment first,
// then the given .env files in order. Missing files are skipped.
func EnvLookup(dotenvPaths ...string) (LookupFunc, error) {
	fileEnv := make(map[string]string)
	for _, path := range dotenvPaths {
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, ConfigurationError{Var: path, Err: err}
		}
		for k, v := range values {
			if _, exists := fileEnv[k]; !exists {
				fileEnv[k] = v
			}
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}, nil
}

// Load resolves the configuration. All problems are reported together,
// each one as a ConfigurationError.
func Load(lookup LookupFunc) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		APIKey:           get("GEMINI_API_KEY"),
		Model:            get("RESEARCH_MODEL"),
		BaseURL:          get("RESEARCH_BASE_URL"),
		OutputFile:       get("RESEARCH_OUTPUT_FILE"),
		MaxTurns:         agents.DefaultMaxTurns,
		Timeout:          agents.DefaultTimeout,
		Temperature:      DefaultTemperature,
		TopP:             DefaultTopP,
		LogLevel:         DefaultLogLevel,
		HistoryDSN:       get("RESEARCH_HISTORY_DSN"),
		TraceloopAPIKey:  get("TRACELOOP_API_KEY"),
		TraceloopBaseURL: get("TRACELOOP_BASE_URL"),
		NoColor:          get("NO_COLOR") != "",
	}
	if cfg.APIKey == "" {
		cfg.APIKey = get("RESEARCH_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = agents.GeminiOpenAIBaseURL
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = tools.DefaultOutputFile
	}

	var errs []error
	fail := func(key string, err error) {
		errs = append(errs, ConfigurationError{Var: key, Err: err})
	}

	if cfg.APIKey == "" {
		fail("GEMINI_API_KEY", errors.New("not set (RESEARCH_API_KEY is also accepted)"))
	}

	if v := get("RESEARCH_MAX_TURNS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		switch {
		case err != nil:
			fail("RESEARCH_MAX_TURNS", err)
		case n == 0:
			fail("RESEARCH_MAX_TURNS", errors.New("must be positive"))
		default:
			cfg.MaxTurns = n
		}
	}

	if v := get("RESEARCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			fail("RESEARCH_TIMEOUT", err)
		case d <= 0:
			fail("RESEARCH_TIMEOUT", errors.New("must be positive"))
		default:
			cfg.Timeout = d
		}
	}

	if v := get("RESEARCH_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			fail("RESEARCH_TEMPERATURE", err)
		case f < 0 || f > 2:
			fail("RESEARCH_TEMPERATURE", fmt.Errorf("%g is out of range [0, 2]", f))
		default:
			cfg.Temperature = f
		}
	}

	if v := get("RESEARCH_TOP_P"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			fail("RESEARCH_TOP_P", err)
		case f <= 0 || f > 1:
			fail("RESEARCH_TOP_P", fmt.Errorf("%g is out of range (0, 1]", f))
		default:
			cfg.TopP = f
		}
	}

	if v := get("RESEARCH_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			fail("RESEARCH_LOG_LEVEL", err)
		}
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// ModelSettings returns the sampling settings for the model.
func (c Config) ModelSettings() modelsettings.ModelSettings {
	return modelsettings.ModelSettings{
		Temperature: param.NewOpt(c.Temperature),
		TopP:        param.NewOpt(c.TopP),
	}
}

func (c Config) RunConfig() agents.RunConfig {
	return agents.RunConfig{
		MaxTurns: c.MaxTurns,
		Timeout:  c.Timeout,
	}
}
