package models

import "fmt"

// ValidationError rejects a payload before it reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

func invalid(field, value string) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("invalid value %q", value)}
}
