package serviceerr

import "net/http"

type Code string

const (
	CodeInvalidRequest Code = "invalid_request"
	CodeNotFound       Code = "not_found"
	CodeConflict       Code = "conflict"
	CodeUnknown        Code = "unknown"
)

var (
	ErrInvalidRequest = &Error{Err: CodeInvalidRequest}
	ErrNotFound       = &Error{Err: CodeNotFound, Description: "not found"}
	ErrConflict       = &Error{Err: CodeConflict, Description: "already exists"}
	ErrUnknown        = &Error{Err: CodeUnknown, Description: "unknown error"}
)

// Error is an error with a machine readable code that maps onto an HTTP status.
type Error struct {
	Err         Code
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}
	return string(e.Err) + ": " + e.Description
}

// HTTPStatus returns the HTTP status code the error is reported with.
func (e *Error) HTTPStatus() int {
	switch e.Err {
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// InvalidRequest returns an invalid_request error with the given description.
func InvalidRequest(description string) *Error {
	return &Error{Err: CodeInvalidRequest, Description: description}
}

// Is makes errors.Is match any *Error carrying the same code, so a described
// InvalidRequest still matches ErrInvalidRequest.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Err == t.Err
}
