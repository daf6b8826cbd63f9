package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrScreenNotFound is returned when a session points at a screen the document does not define.
var ErrScreenNotFound = errors.New("screen not found")

// ErrInvalidDocument wraps every structural problem found while loading a quest document.
var ErrInvalidDocument = errors.New("invalid quest document")

// ErrInternal wraps unexpected failures (recovered panics) while handling an event.
var ErrInternal = errors.New("internal engine failure")

// ConfigError is a single structural defect of the quest document.
type ConfigError struct {
	Screen string // Screen id, empty for document-level problems
	Path   string // Location inside the screen, e.g. "buttons.rows[1].go_left"
	Reason string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Screen == "" && e.Path == "":
		return e.Reason
	case e.Screen == "":
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	case e.Path == "":
		return fmt.Sprintf("screen %q: %s", e.Screen, e.Reason)
	}
	return fmt.Sprintf("screen %q: %s: %s", e.Screen, e.Path, e.Reason)
}

// ConfigErrors aggregates every defect found in one pass.
type ConfigErrors struct {
	Errors []*ConfigError
}

func (e *ConfigErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d configuration errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap lets callers match ErrInvalidDocument with errors.Is.
func (e *ConfigErrors) Unwrap() error {
	return ErrInvalidDocument
}
