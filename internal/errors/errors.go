// Package errors provides custom error types for monachat.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrUnknownContact    = errors.New("unknown contact")
	ErrPersistenceRead   = errors.New("persisted data unreadable")
	ErrReplyRetrieval    = errors.New("reply retrieval failed")
	ErrEmptyReply        = errors.New("reply service returned no text")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMessageNotFound   = errors.New("message not found")
)

// UnknownContactError is returned when an operation names a contact
// outside the fixed registry. It indicates a programming error.
type UnknownContactError struct {
	ContactID string
}

func (e *UnknownContactError) Error() string {
	return fmt.Sprintf("unknown contact: %q", e.ContactID)
}

// Is allows comparison with sentinel errors
func (e *UnknownContactError) Is(target error) bool {
	if target == ErrUnknownContact {
		return true
	}
	_, ok := target.(*UnknownContactError)
	return ok
}

// NewUnknownContactError creates a new UnknownContactError
func NewUnknownContactError(id string) *UnknownContactError {
	return &UnknownContactError{ContactID: id}
}

// PersistenceReadError represents a missing-or-malformed durable record.
// The persistence layer recovers from it by keeping defaults.
type PersistenceReadError struct {
	Key string
	Err error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *PersistenceReadError) Is(target error) bool {
	if target == ErrPersistenceRead {
		return true
	}
	_, ok := target.(*PersistenceReadError)
	return ok
}

// NewPersistenceReadError creates a new PersistenceReadError
func NewPersistenceReadError(key string, err error) *PersistenceReadError {
	return &PersistenceReadError{Key: key, Err: err}
}

// APIError represents a non-success response from the reply service
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// Is allows comparison with sentinel errors
func (e *APIError) Is(target error) bool {
	return target == ErrReplyRetrieval
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NetworkError represents a transport failure talking to the reply service
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	return target == ErrReplyRetrieval
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// ParseError represents a reply body that could not be understood
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	return target == ErrReplyRetrieval
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// IsUnknownContact reports whether err stems from an unregistered contact id
func IsUnknownContact(err error) bool {
	return errors.Is(err, ErrUnknownContact)
}

// IsReplyError reports whether err is any failure of the reply boundary
func IsReplyError(err error) bool {
	return errors.Is(err, ErrReplyRetrieval) || errors.Is(err, ErrEmptyReply)
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsAPIError reports whether err is a non-success response
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
