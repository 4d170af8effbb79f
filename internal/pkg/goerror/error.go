package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that the requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates that the request could not be completed due to a conflict.
	ErrConflict = errors.New("resource conflict")
)

// Kind is the closed set of error categories the application knows how to
// translate into a response. Any error that is not an *Error is treated as
// KindInternal at the boundary.
type Kind int

const (
	// KindInternal represents an unexpected server-side failure.
	KindInternal Kind = iota
	// KindValidation indicates malformed or missing input, including weak passwords.
	KindValidation
	// KindAuthentication indicates a missing, invalid, or expired session token.
	KindAuthentication
	// KindAuthorization indicates the caller is not allowed to proceed
	// (setup not completed, wrong credential).
	KindAuthorization
	// KindConflict indicates a one-time operation was attempted twice.
	KindConflict
	// KindConfiguration indicates the master key is absent or malformed where it is required.
	KindConfiguration
	// KindDecryption indicates tampering or a wrong key was detected while opening an envelope.
	KindDecryption
	// KindNotFound indicates a missing resource.
	KindNotFound
	// KindTooManyRequests indicates the caller was rate limited.
	KindTooManyRequests
)

// Kinds lists every known kind in declaration order.
var Kinds = []Kind{
	KindInternal,
	KindValidation,
	KindAuthentication,
	KindAuthorization,
	KindConflict,
	KindConfiguration,
	KindDecryption,
	KindNotFound,
	KindTooManyRequests,
}

// String returns the stable machine-readable title for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindAuthentication:
		return "AUTHENTICATION_ERROR"
	case KindAuthorization:
		return "AUTHORIZATION_ERROR"
	case KindConflict:
		return "CONFLICT_ERROR"
	case KindConfiguration:
		return "CONFIGURATION_ERROR"
	case KindDecryption:
		return "DECRYPTION_ERROR"
	case KindNotFound:
		return "NOT_FOUND_ERROR"
	case KindTooManyRequests:
		return "TOO_MANY_REQUESTS_ERROR"
	case KindInternal:
		return "INTERNAL_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// StatusCode maps the kind to an HTTP status code.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindConfiguration, KindDecryption, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying a human-readable detail,
// a kind discriminant, and optional per-field messages.
type Error struct {
	err        error
	detail     string
	kind       Kind
	fields     map[string]string
	retryAfter int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		if e.detail != "" {
			return e.detail + ": " + e.err.Error()
		}
		return e.err.Error()
	}

	if e.detail != "" {
		return e.detail
	}

	return e.kind.String()
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf("Kind: %s, Detail: %s, Underlying Error: %v", e.kind, e.detail, e.err)
}

// Kind returns the error kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// Title returns the stable machine-readable title.
func (e *Error) Title() string {
	return e.kind.String()
}

// Detail returns the human-readable detail that is safe to show to clients.
func (e *Error) Detail() string {
	return e.detail
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// RetryAfter returns the seconds a rate-limited caller should wait, or 0.
func (e *Error) RetryAfter() int {
	return e.retryAfter
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error kind to an HTTP status code.
func (e *Error) StatusCode() int {
	return e.kind.StatusCode()
}

// New creates an error of the given kind with a client-safe detail.
func New(kind Kind, detail string) error {
	return &Error{kind: kind, detail: detail}
}

// Wrap creates an error of the given kind that keeps err as its cause.
// The cause is never rendered to clients.
func Wrap(kind Kind, detail string, err error) error {
	return &Error{kind: kind, detail: detail, err: err}
}

// KindOf returns the kind of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.kind == kind
}

// NewServer creates an internal error with the provided cause.
func NewServer(err error) error {
	return Wrap(KindInternal, "Internal server error", err)
}

// NewValidation creates a validation error with the given detail and field messages.
// kv is read as alternating field, message pairs.
func NewValidation(detail string, kv ...string) error {
	e := &Error{kind: KindValidation, detail: detail}
	if len(kv) >= 2 {
		e.fields = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.fields[kv[i]] = kv[i+1]
		}
	}
	return e
}

// NewValidationFields creates a validation error from a field to message map.
func NewValidationFields(detail string, fields map[string]string) error {
	return &Error{kind: KindValidation, detail: detail, fields: fields}
}

// NewInvalidInput creates a validation error that wraps a validator error.
// Field messages are taken from err when it exposes them.
func NewInvalidInput(err error) error {
	e := &Error{kind: KindValidation, detail: "Validation error", err: err}

	var fe interface{ Values() map[string]string }
	if errors.As(err, &fe) {
		e.fields = fe.Values()
	}

	return e
}

// NewInvalidFormat creates a validation error for an invalid request body format.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return New(KindValidation, "Invalid request body")
	}
	return New(KindValidation, msgs[0])
}

// NewAuthentication creates an authentication error.
func NewAuthentication(detail string) error {
	return New(KindAuthentication, detail)
}

// NewAuthorization creates an authorization error.
func NewAuthorization(detail string) error {
	return New(KindAuthorization, detail)
}

// NewConflict creates a conflict error.
func NewConflict(detail string) error {
	return New(KindConflict, detail)
}

// NewConfiguration creates a configuration error that keeps err as its cause.
func NewConfiguration(detail string, err error) error {
	return Wrap(KindConfiguration, detail, err)
}

// NewDecryption creates a decryption error that keeps err as its cause.
func NewDecryption(err error) error {
	return Wrap(KindDecryption, "Stored data could not be decrypted", err)
}

// NewNotFound creates a not-found error.
func NewNotFound(detail string) error {
	return Wrap(KindNotFound, detail, ErrNotFound)
}

// NewTooManyRequests creates a rate-limit error that tells the caller to
// retry after the given number of seconds.
func NewTooManyRequests(detail string, retryAfter int) error {
	return &Error{kind: KindTooManyRequests, detail: detail, retryAfter: max(retryAfter, 0)}
}
