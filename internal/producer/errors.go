// SPDX-License-Identifier: MIT

package producer

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a producer does not exist.
	ErrNotFound = errors.New("producer not found")
	// ErrInvalidID is returned for identifiers that are not UUIDs.
	ErrInvalidID = errors.New("producer id is invalid")
	// ErrAlreadySending guards against overlapping activations.
	ErrAlreadySending = errors.New("already sending messages")
	// ErrShuttingDown rejects activations once Shutdown has begun.
	ErrShuttingDown = errors.New("producer service is shutting down")
	// ErrInvalidArgs wraps field validation failures.
	ErrInvalidArgs = errors.New("invalid producer arguments")
)

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgs
}
