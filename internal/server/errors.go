// Package server provides the HTTP front end of the headline scorer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/headline-scorer/internal/headlines"
	"github.com/jonathan/headline-scorer/internal/scoring"
)

// Error kinds reported by the JSON API
const (
	KindValidation = "validation_error"
	KindDecode     = "decode_error"
	KindSchema     = "schema_error"
	KindBackend    = "backend_error"
	KindTransport  = "transport_error"
	KindInternal   = "internal_error"
)

// ErrorKind names the taxonomy entry an error belongs to
func ErrorKind(err error) string {
	var (
		validationErr *scoring.ValidationError
		decodeErr     *headlines.DecodeError
		schemaErr     *scoring.SchemaError
		backendErr    *scoring.BackendError
		transportErr  *scoring.TransportError
	)

	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &schemaErr):
		return KindSchema
	case errors.As(err, &backendErr):
		return KindBackend
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindInternal
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch ErrorKind(err) {
	case KindValidation, KindDecode:
		return http.StatusBadRequest
	case KindSchema, KindBackend:
		return http.StatusBadGateway
	case KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the inline message shown for a failed action.
func UserMessage(err error) string {
	var (
		decodeErr    *headlines.DecodeError
		backendErr   *scoring.BackendError
		transportErr *scoring.TransportError
	)

	switch ErrorKind(err) {
	case KindValidation:
		return "No headlines to score. Add headlines first."
	case KindDecode:
		errors.As(err, &decodeErr)
		return fmt.Sprintf("Could not read uploaded file: %s", decodeErr.Message)
	case KindSchema:
		return "Unexpected response format from backend."
	case KindBackend:
		errors.As(err, &backendErr)
		return fmt.Sprintf("Backend returned %d: %s", backendErr.StatusCode, backendErr.Body)
	case KindTransport:
		errors.As(err, &transportErr)
		return fmt.Sprintf("Request to backend failed: %v", transportErr.Cause)
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}
