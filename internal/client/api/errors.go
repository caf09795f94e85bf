package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/jara/internal/common"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("unexpected response")
	// ErrResponseTooLarge is returned for successful responses whose body
	// exceeds the read limit.
	ErrResponseTooLarge = errors.New("response too large")
)

// ParseError reports a response body that does not fit its result type.
type ParseError struct {
	Endpoint string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrParse, e.Endpoint, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// APIError is a non-2xx response. Body keeps the raw payload; Message is
// safe to show to a user.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap maps well-known statuses onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrNotFound
	default:
		return nil
	}
}

func friendlyMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Requested resource was not found"
	case http.StatusUnauthorized:
		return "You are not authorized. Please sign in."
	case http.StatusInternalServerError:
		return "Something went wrong on the server"
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Request failed"
}
