// Package headlines provides the per-session headline list and its import rules.
package headlines

import "fmt"

// DecodeError represents uploaded file content that is not valid UTF-8 text
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("could not read uploaded file: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("could not read uploaded file: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
