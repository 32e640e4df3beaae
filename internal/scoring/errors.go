package scoring

import "fmt"

// ValidationError indicates there was nothing to submit
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// BackendError represents a non-200 response from the scoring backend
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// SchemaError represents a response body that does not match the expected shape
type SchemaError struct {
	Message string
	Cause   error
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unexpected response format: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("unexpected response format: %s", e.Message)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// TransportError represents a failure to reach the backend or read its reply,
// including the request timeout firing
type TransportError struct {
	Endpoint string
	Timeout  bool
	Cause    error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request to backend %s timed out: %v", e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("request to backend %s failed: %v", e.Endpoint, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
