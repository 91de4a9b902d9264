package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindUnauthorized
	KindConflict
	KindNotFound
	KindUpstream
	KindUploadTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindUnauthorized:
		return "Unauthorized"
	case KindConflict:
		return "Conflict"
	case KindNotFound:
		return "NotFound"
	case KindUpstream:
		return "UpstreamFailure"
	case KindUploadTimeout:
		return "UploadTimeout"
	default:
		return "UnexpectedError"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the failure reason of a pipeline run or any service operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Fields carries per-field validation messages.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Unexpected(msg string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: msg, Err: err}
}

// KindOf classifies any error. Store sentinels map onto NotFound and
// Conflict; everything unknown is Unexpected.
func KindOf(err error) Kind {
	var pe *Error
	switch {
	case err == nil:
		return KindUnexpected
	case errors.As(err, &pe):
		return pe.Kind
	case errors.Is(err, types.ErrNotFound):
		return KindNotFound
	case errors.Is(err, types.ErrDuplicate):
		return KindConflict
	default:
		return KindUnexpected
	}
}

// Classify returns err as an *Error, keeping an existing classification and
// otherwise using fallback with msg.
func Classify(err error, fallback Kind, msg string) *Error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	switch {
	case errors.Is(err, types.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, types.ErrDuplicate):
		return &Error{Kind: KindConflict, Message: msg, Err: err}
	}

	return &Error{Kind: fallback, Message: msg, Err: err}
}
