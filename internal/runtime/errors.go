package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrNavigationCanceled is the cause recorded on a transition's coordinator
	// when the transition is rolled back.
	ErrNavigationCanceled = errors.New("navigation canceled")

	// ErrIllegalContentTransition reports a content lifecycle move the state
	// machine does not allow.
	ErrIllegalContentTransition = errors.New("illegal content state transition")
)

// HookError wraps an error returned by a component hook or router guard.
type HookError struct {
	Viewport  string
	Component string
	Hook      string
	Err       error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s of %q in viewport %q: %v", e.Hook, e.Component, e.Viewport, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
