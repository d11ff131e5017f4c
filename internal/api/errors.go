package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julianstephens/nutrisnap/internal/constants"
)

// Kind classifies a failed API call
type Kind int

const (
	// KindNetwork means the request never produced a response
	KindNetwork Kind = iota + 1
	// KindHTTP means the server answered with a non-2xx status
	KindHTTP
	// KindProtocol means a 2xx response was not JSON
	KindProtocol
	// KindMalformed means the JSON decoded but is missing required data
	KindMalformed
	// KindValidation means the input was rejected, usually with suggestions
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindProtocol:
		return "protocol"
	case KindMalformed:
		return "malformed"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method
type Error struct {
	Kind        Kind
	Op          string
	Status      int
	Message     string
	Suggestions []string
	Err         error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the banner text for this failure
func (e *Error) UserMessage() string { return e.Message }

// SuggestionList returns backend-provided hints, if any
func (e *Error) SuggestionList() []string { return e.Suggestions }

// IsKind reports whether err is an *Error of kind k
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// IsCanceled reports whether err stems from a cancelled request context
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// StatusCode returns the HTTP status of err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func networkError(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Message: constants.MsgConnectionError, Err: err}
}

func protocolError(op string, status int, contentType string) *Error {
	return &Error{
		Kind:    KindProtocol,
		Op:      op,
		Status:  status,
		Message: constants.MsgNonJSONResponse,
		Err:     fmt.Errorf("content type %q", contentType),
	}
}

func malformedError(op string, err error) *Error {
	return &Error{Kind: KindMalformed, Op: op, Message: fmt.Sprintf("Malformed %s response", op), Err: err}
}

func httpError(op string, status int, body errorBody) *Error {
	e := &Error{Kind: KindHTTP, Op: op, Status: status, Message: body.Error}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}
	suggestions := append([]string{}, body.Suggestions...)
	if body.ValidationResult != nil {
		suggestions = append(suggestions, body.ValidationResult.Suggestions...)
	}
	if len(suggestions) > 0 {
		e.Kind = KindValidation
		e.Suggestions = suggestions
	}
	return e
}

// ValidationError builds a validation failure raised on the client side
func ValidationError(op, message string, suggestions []string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Suggestions: suggestions}
}
