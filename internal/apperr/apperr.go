// Package apperr classifies failures so the HTTP layer can map them to
// stable status codes without inspecting messages.
package apperr

import (
	"errors"
)

// Kind identifies the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindStorage
	KindExternalService
	KindPersistence
	KindNotFound
	KindRateLimited
	KindInvalidReference
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	case KindExternalService:
		return "external_service"
	case KindPersistence:
		return "persistence"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidReference:
		return "invalid_reference"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error tags a cause with a Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind. A nil err yields nil.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func Validation(err error) error       { return New(KindValidation, err) }
func Storage(err error) error          { return New(KindStorage, err) }
func ExternalService(err error) error  { return New(KindExternalService, err) }
func Persistence(err error) error      { return New(KindPersistence, err) }
func NotFound(err error) error         { return New(KindNotFound, err) }
func RateLimited(err error) error      { return New(KindRateLimited, err) }
func InvalidReference(err error) error { return New(KindInvalidReference, err) }
func Unauthorized(err error) error     { return New(KindUnauthorized, err) }

// KindOf returns the outermost Kind found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
