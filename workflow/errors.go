// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"errors"
	"fmt"
)

// ErrResponseTooLarge is returned when a successful workflow response exceeds the size limit.
var ErrResponseTooLarge = errors.New("workflow response too large")

// StatusError is returned when a workflow answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	return fmt.Sprintf("workflow request failed with status %d: %s", e.StatusCode, e.Body)
}

