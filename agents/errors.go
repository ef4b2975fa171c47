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
	"context"
	"errors"
	"fmt"
	"net"
)

// MaxTurnsExceededError is returned when the maximum number of turns is exceeded.
type MaxTurnsExceededError struct{ error }

func NewMaxTurnsExceededError(message string) MaxTurnsExceededError {
	return MaxTurnsExceededError{errors.New(message)}
}

func MaxTurnsExceededErrorf(format string, a ...any) MaxTurnsExceededError {
	return MaxTurnsExceededError{fmt.Errorf(format, a...)}
}

func (err MaxTurnsExceededError) Unwrap() error { return err.error }

// ModelBehaviorError is returned when the model does something unexpected,
// e.g. returning an empty response, or providing malformed JSON.
type ModelBehaviorError struct{ error }

func NewModelBehaviorError(message string) ModelBehaviorError {
	return ModelBehaviorError{errors.New(message)}
}

func ModelBehaviorErrorf(format string, a ...any) ModelBehaviorError {
	return ModelBehaviorError{fmt.Errorf(format, a...)}
}

func (err ModelBehaviorError) Unwrap() error { return err.error }

// UserError is returned when the package is used incorrectly,
// e.g. running an agent without a model.
type UserError struct{ error }

func NewUserError(message string) UserError {
	return UserError{errors.New(message)}
}

func UserErrorf(format string, a ...any) UserError {
	return UserError{fmt.Errorf(format, a...)}
}

func (err UserError) Unwrap() error { return err.error }

// TransportError is returned when talking to a remote service fails:
// network errors, authentication failures, non-success HTTP statuses and
// request timeouts.
type TransportError struct {
	// Service names the remote collaborator, e.g. "model" or "wikipedia".
	Service string
	Err     error
}

func NewTransportError(service string, err error) TransportError {
	return TransportError{Service: service, Err: err}
}

func TransportErrorf(service string, format string, a ...any) TransportError {
	return TransportError{Service: service, Err: fmt.Errorf(format, a...)}
}

func (err TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", err.Service, err.Err)
}

func (err TransportError) Unwrap() error { return err.Err }

// Timeout reports whether the error was caused by a deadline.
func (err TransportError) Timeout() bool {
	if errors.Is(err.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err.Err, &netErr) && netErr.Timeout()
}

// ToolExecutionError is returned by a tool adapter that could not complete,
// e.g. because a file could not be written or the arguments were malformed.
// The runner records it in the transcript and keeps going.
type ToolExecutionError struct {
	ToolName string
	Err      error
}

func NewToolExecutionError(toolName string, err error) ToolExecutionError {
	return ToolExecutionError{ToolName: toolName, Err: err}
}

func ToolExecutionErrorf(toolName string, format string, a ...any) ToolExecutionError {
	return ToolExecutionError{ToolName: toolName, Err: fmt.Errorf(format, a...)}
}

func (err ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", err.ToolName, err.Err)
}

func (err ToolExecutionError) Unwrap() error { return err.Err }
