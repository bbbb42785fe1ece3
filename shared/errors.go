package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// ApiErrorKind is the closed set of remote client failure categories.
type ApiErrorKind string

const (
	ApiErrUnreachable  ApiErrorKind = "UNREACHABLE"
	ApiErrBadRequest   ApiErrorKind = "BAD_REQUEST"
	ApiErrUnauthorized ApiErrorKind = "UNAUTHORIZED"
	ApiErrForbidden    ApiErrorKind = "FORBIDDEN"
	ApiErrClient       ApiErrorKind = "CLIENT_ERROR"
	ApiErrServer       ApiErrorKind = "SERVER_ERROR"
	ApiErrUnknown      ApiErrorKind = "UNKNOWN_ERROR"
	ApiErrTransport    ApiErrorKind = "TRANSPORT_ERROR"
	ApiErrParse        ApiErrorKind = "PARSE_ERROR"
)

// ApiError carries the category, the HTTP status when one was received and
// the underlying cause.
type ApiError struct {
	Kind   ApiErrorKind
	Status int
	Err    error
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d", e.Kind, e.Status)
	}
	return string(e.Kind)
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func NewApiError(kind ApiErrorKind, err error) *ApiError {
	return &ApiError{Kind: kind, Err: err}
}

// ApiErrorFromStatus maps a non-2xx HTTP status onto the taxonomy.
func ApiErrorFromStatus(status int) *ApiError {
	var kind ApiErrorKind
	switch {
	case status == http.StatusBadRequest:
		kind = ApiErrBadRequest
	case status == http.StatusUnauthorized:
		kind = ApiErrUnauthorized
	case status == http.StatusForbidden:
		kind = ApiErrForbidden
	case status >= 400 && status < 500:
		kind = ApiErrClient
	case status >= 500 && status < 600:
		kind = ApiErrServer
	default:
		kind = ApiErrUnknown
	}
	return &ApiError{Kind: kind, Status: status}
}

// IsApiErrorKind reports whether err is an ApiError of the given kind.
func IsApiErrorKind(err error, kind ApiErrorKind) bool {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// StoreError is a failed store mutation. Read failures are never surfaced
// as errors (fail-soft policy), so the only operations that produce one
// are writes and bulk deletes.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreWriteError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// Media fetch failures. These never propagate past the prefetch task
// boundary; on-demand callers use them to decide on a placeholder.
var (
	ErrInvalidPayload = errors.New("media payload is not a supported image")
)

// FetchError wraps a media fetch failure with its source URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
