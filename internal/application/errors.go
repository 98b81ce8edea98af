package application

import (
	"errors"
	"sort"
	"strings"
)

// ErrUserNotFound is returned when an identifier is malformed or matches no
// record. Callers are expected to handle it; it is not exceptional.
var ErrUserNotFound = errors.New("user not found")

// ValidationError reports input that violates the user schema. Fields maps
// JSON field names to human-readable messages.
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
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
