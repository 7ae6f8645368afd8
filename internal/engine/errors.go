package engine

import (
	"fmt"
)

// ResourceError reports a component that could not be loaded. errors.Is with
// loader.ErrNotFound holds when the component does not exist.
type ResourceError struct {
	Component string
	Extension string
	Err       error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("component '%s' (%s): %v", e.Component, e.Extension, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// EvaluationError reports an expression that failed to compile or evaluate.
type EvaluationError struct {
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("error evaluating expression '%s': %v", e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// DirectiveError reports a misused directive tag.
type DirectiveError struct {
	Tag       string
	Attribute string // empty when the problem is not tied to one attribute
	Message   string
}

func (e *DirectiveError) Error() string {
	if e.Attribute == "" {
		return fmt.Sprintf("<%s>: %s", e.Tag, e.Message)
	}
	return fmt.Sprintf("<%s %s>: %s", e.Tag, e.Attribute, e.Message)
}

func directiveErr(tag, attr, format string, args ...any) *DirectiveError {
	return &DirectiveError{Tag: tag, Attribute: attr, Message: fmt.Sprintf(format, args...)}
}
