package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSubmitInProgress is returned when a submit arrives while another one
// for the same form is still running.
var ErrSubmitInProgress = errors.New("forms: submission already in progress")

// errSubmitAborted is recorded when the submit function panics.
var errSubmitAborted = errors.New("forms: submission aborted")

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConfigurationError reports a form family, type or field the server does
// not know how to build.
type ConfigurationError struct {
	Family string
	Type   string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("forms: configuration error")
	if e.Family != "" || e.Type != "" {
		fmt.Fprintf(&b, " for %s/%s", e.Family, e.Type)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	return b.String()
}
