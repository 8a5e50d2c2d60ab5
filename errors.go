// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"fmt"
)

// TaskNotFoundError is returned when a task ID is unknown.
type TaskNotFoundError struct {
	TaskID string
}

// Error implements error.
func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// IsTaskNotFound reports whether err is or wraps a [TaskNotFoundError].
func IsTaskNotFound(err error) bool {
	var nf TaskNotFoundError
	return errors.As(err, &nf)
}

// AsJSONRPCError converts err into a [*JSONRPCError], mapping well known errors to A2A codes.
func AsJSONRPCError(err error) *JSONRPCError {
	if err == nil {
		return nil
	}
	var rpcErr *JSONRPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if IsTaskNotFound(err) {
		return NewTaskNotFoundError().WithMessage("%s", err.Error())
	}
	return NewInternalError().WithMessage("%s", err.Error())
}
