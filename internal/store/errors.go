package store

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrRelationNotFound = errors.New("relation not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
)

// Kind classifies a gateway or validation failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindAuth
	KindNotFound
	KindValidation
	KindConflict
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "TRANSPORT_ERROR"
	case KindAuth:
		return "UNAUTHORIZED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindRemote:
		return "REMOTE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error carries a classified failure together with a message fit for an operator.
type Error struct {
	Kind    Kind
	Op      string
	Status  int // HTTP status reported by the remote, 0 if none
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrInvalidInput:
		return e.Kind == KindValidation
	}
	return false
}

// Validation returns a local validation error. It never reaches a gateway.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf classifies any error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrRelationNotFound), errors.Is(err, ErrAccountNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindAuth
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTransport
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}
	return KindUnknown
}

// Message maps an error to a human-readable sentence for display next to the
// action that triggered it.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		switch e.Kind {
		case KindValidation, KindNotFound, KindConflict:
			return e.Message
		}
	}
	switch KindOf(err) {
	case KindTransport:
		return "Could not reach the backend. Check your connection and try again."
	case KindAuth:
		return "The backend rejected the credentials. Check the service key."
	case KindNotFound:
		return "The requested relation or account does not exist."
	case KindValidation:
		return err.Error()
	case KindConflict:
		return "The change conflicts with existing data."
	case KindRemote:
		if e != nil && e.Message != "" {
			return "The backend reported an error: " + e.Message
		}
		return "The backend reported an error."
	}
	return "Unexpected error: " + err.Error()
}
