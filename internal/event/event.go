// Package event implements the synchronous dispatcher that fans a named
// event out to every handler registered for it.
//
// Handlers run one after another in registration order. The first handler
// that fails stops the fan-out and its error is returned to the caller as a
// *HandlerError; the remaining handlers are not invoked.
package event

import (
	"context"
	"errors"
	"fmt"
)

// Handler reacts to a triggered event. args are the values passed to Trigger.
type Handler func(ctx context.Context, args ...any) error

// HandlerError is the first failure observed during a Trigger call.
type HandlerError struct {
	Event  string
	Plugin string
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: plugin %s: %v", e.Event, e.Plugin, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// ErrMissingArgument is returned by StringArg when the expected argument is absent.
var ErrMissingArgument = errors.New("missing event argument")

// StringArg returns args[i] as a string.
func StringArg(args []any, i int) (string, error) {
	if i < 0 || i >= len(args) {
		return "", fmt.Errorf("%w: index %d", ErrMissingArgument, i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("event argument %d: expected string, got %T", i, args[i])
	}
	return s, nil
}
