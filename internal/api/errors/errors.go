package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindBadRequest         ErrorKind = "bad_request"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
)

// APIError is the JSON body of every failed request. Success is always
// false so clients can branch on one field for both outcomes.
type APIError struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Kind      ErrorKind `json:"kind"`
	RequestID string    `json:"request_id,omitempty"`
	Code      string    `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewInternalError(message string) *APIError {
	return &APIError{Kind: KindInternal, Message: message}
}

func NewServiceUnavailableError(message string) *APIError {
	return &APIError{Kind: KindServiceUnavailable, Message: message}
}

// WrapError turns err into an APIError of the given kind. The message is
// prefix followed by the error text; an APIError keeps its code.
func WrapError(err error, kind ErrorKind, prefix string) *APIError {
	if err == nil {
		return nil
	}

	apiErr := &APIError{
		Kind:    kind,
		Message: prefix + err.Error(),
	}

	var orig *APIError
	if errors.As(err, &orig) && orig.Code != "" {
		apiErr.Code = orig.Code
	}
	return apiErr
}
