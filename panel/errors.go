// ABOUTME: Error values returned by panel dispatch operations.
// ABOUTME: Hosts branch on them with errors.Is / errors.As to pick a status code.

package panel

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotFound is wrapped when a dispatch names an unregistered model
	ErrModelNotFound = errors.New("model not found")

	// ErrNoHandler is wrapped when a model or the config lacks the handler
	// an operation needs
	ErrNoHandler = errors.New("no handler defined")
)

// ActionKind names the handler table an action was looked up in
type ActionKind string

const (
	ActionRecord ActionKind = "action"
	ActionGlobal ActionKind = "global action"
	ActionBatch  ActionKind = "batch action"
)

// UnknownActionError reports an action name missing from a model's handler table
type UnknownActionError struct {
	Kind   ActionKind
	Model  string
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("no action: %s defined", e.Action)
}

func modelNotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrModelNotFound, name)
}

func noHandler(model, op string) error {
	if model == "" {
		return fmt.Errorf("%w: %s", ErrNoHandler, op)
	}
	return fmt.Errorf("%w: %s for model %s", ErrNoHandler, op, model)
}
