// Package apperr holds the error kinds shared by repositories, services and
// controllers, plus the single table that maps them to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindIDMismatch
	KindInvalid
	KindAlreadyOwned
	KindConflict
	KindParseFailure
	KindDependencyFailure
	KindUnauthorized
)

var (
	ErrNotFound          = errors.New("entity not found")
	ErrIDMismatch        = errors.New("path id and body id do not match")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrAlreadyOwned      = errors.New("book already owned by user")
	ErrNotOwned          = errors.New("book not owned by user")
	ErrMissingPasswords  = errors.New("old password, new password and confirmation are required")
	ErrPasswordsMismatch = errors.New("new password and confirmation do not match")
	ErrPasswordMismatch  = errors.New("old password does not match")
	ErrParseFailure      = errors.New("remote book record could not be parsed")
	ErrDependencyFailure = errors.New("remote book service request failed")
	ErrUnauthorized      = errors.New("authentication required")
	ErrUserNotFound      = errors.New("user not found")
	ErrBadCredentials    = errors.New("provided password doesn't match user's password")
	ErrBadSort           = errors.New("unsupported sort field")
)

// order matters: the first match wins
var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUserNotFound, KindUnauthorized},
	{ErrBadCredentials, KindUnauthorized},
	{ErrUnauthorized, KindUnauthorized},
	{ErrNotFound, KindNotFound},
	{ErrNotOwned, KindNotFound},
	{ErrIDMismatch, KindIDMismatch},
	{ErrInvalidArgument, KindInvalid},
	{ErrMissingPasswords, KindInvalid},
	{ErrPasswordsMismatch, KindInvalid},
	{ErrBadSort, KindInvalid},
	{ErrAlreadyOwned, KindAlreadyOwned},
	{ErrPasswordMismatch, KindConflict},
	{ErrParseFailure, KindParseFailure},
	{ErrDependencyFailure, KindDependencyFailure},
}

func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

var statusByKind = map[Kind]int{
	KindInternal:          http.StatusInternalServerError,
	KindNotFound:          http.StatusNotFound,
	KindIDMismatch:        http.StatusBadRequest,
	KindInvalid:           http.StatusBadRequest,
	KindAlreadyOwned:      http.StatusConflict,
	KindConflict:          http.StatusConflict,
	KindParseFailure:      http.StatusNotAcceptable,
	KindDependencyFailure: http.StatusFailedDependency,
	KindUnauthorized:      http.StatusUnauthorized,
}

// StatusOf maps err to the status code the API answers with.
func StatusOf(err error) int {
	return statusByKind[KindOf(err)]
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindIDMismatch:
		return "ID_MISMATCH"
	case KindInvalid:
		return "BAD_REQUEST"
	case KindAlreadyOwned:
		return "ALREADY_OWNED"
	case KindConflict:
		return "CONFLICT"
	case KindParseFailure:
		return "PARSE_FAILURE"
	case KindDependencyFailure:
		return "DEPENDENCY_FAILURE"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}
