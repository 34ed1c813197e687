package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRequest      = errors.New("request failed")
)

// Kind classifies an APIError.
type Kind int

const (
	// KindRequest is any non-2xx response other than 401.
	KindRequest Kind = iota
	// KindAuth is a 401 response; the stored credential has been cleared.
	KindAuth
	// KindNetwork is a transport failure; no response was received.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	default:
		return "request"
	}
}

// NetworkErrorMessage is shown for transport failures.
const NetworkErrorMessage = "Network error. Please check your connection and try again."

// APIError is the single failure shape of every Client operation.
type APIError struct {
	Kind   Kind
	Status int
	// Message is user-facing: the server's message or a generic fallback.
	Message string
	// Detail is the message exactly as the server sent it, if any.
	Detail string
	Err    error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets callers match on the taxonomy with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrUnavailable:
		return e.Kind == KindNetwork
	case ErrRequest:
		return e.Kind == KindRequest
	}
	return false
}

func networkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: NetworkErrorMessage, Err: err}
}

func statusError(status int, message string) *APIError {
	kind := KindRequest
	if status == 401 {
		kind = KindAuth
	}
	e := &APIError{Kind: kind, Status: status, Message: message, Detail: message}
	if message == "" {
		e.Message = fmt.Sprintf("Request failed with status %d", status)
	}
	return e
}
