package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound        = errors.New("not found")
	ErrPendingNotFound = errors.New("pending item not found")
	ErrNotLoaded       = errors.New("history not loaded")
	ErrInvalidID       = errors.New("invalid ID")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ItemError ties a failure to a history item
type ItemError struct {
	ID     string
	Reason string
	Err    error
}

func (e *ItemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("item %s: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("item %s: %s", e.ID, e.Reason)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
