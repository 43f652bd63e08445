package kit

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Status is the HTTP status a Kind is reported with.
// Conflicts are 400 for compatibility with existing clients.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// WriteErr translates err into a JSON error response. Server-side failures
// are logged and answered with a generic message.
func WriteErr(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindInternal, Message: "internal server error", Err: err}
	}

	status := e.Kind.Status()
	msg := e.Message
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				zap.String("path", r.URL.Path),
				zap.Stringer("kind", e.Kind),
				zap.Error(err),
			)
		}
		if e.Kind == KindStorage {
			msg = "storage unavailable"
		} else {
			msg = "internal server error"
		}
	}

	WriteError(w, r, status, msg)
}
