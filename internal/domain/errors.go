package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrModelUnavailable means the classifier artifact could not be located
	// or deserialized. It is fatal to the request and never retried.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrSchemaMismatch means the feature vector and the loaded classifier
	// disagree on width or column layout, i.e. encoder/model version skew.
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrOutOfRange means an input value lies outside its declared range.
	ErrOutOfRange = errors.New("input out of range")
)

// ValidationError collects per-field input problems, keyed by field key
// ("treatment" for the categorical field).
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
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid assessment: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrOutOfRange) hold for validation failures.
func (e *ValidationError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Add records a problem for key, keeping the first message per field.
func (e *ValidationError) Add(key, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[key]; !ok {
		e.Fields[key] = msg
	}
}

// OrNil returns nil when no problems were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
