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
	"log/slog"
	"os"
	"sync/atomic"
)

var agentsLogger atomic.Pointer[slog.Logger]

// DontLogModelData disables logging of prompts, tool arguments and model
// output at debug level. Only the fact that a call happened is logged.
var DontLogModelData = false

func init() {
	ResetLogger()
}

// Logger is the global logger used by the research assistant packages.
// By default, it is a logger with a text handler which writes to stderr,
// with minimum level "warn". You can change it with SetLogger.
func Logger() *slog.Logger {
	return agentsLogger.Load()
}

// SetLogger sets the global logger.
// A nil value is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		agentsLogger.Store(l)
	}
}

func ResetLogger() {
	SetLogger(NewTextLogger(slog.LevelWarn))
}

// NewTextLogger returns a logger with a text handler writing to stderr.
func NewTextLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// EnableVerboseStdoutLogging enables debug logging.
// This is useful for debugging.
func EnableVerboseStdoutLogging() {
	agentsLogger.Store(NewTextLogger(slog.LevelDebug))
}
