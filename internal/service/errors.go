package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/video-rental/internal/repository"
)

// Kind classifies a domain failure.  The HTTP layer maps each Kind to a
// status code; nothing else about the error decides the status.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindInvalidToken
	KindForbidden
	KindNotFound
	KindOutOfStock
	KindAlreadyReturned
	KindConflict
	KindInvalidCredentials
	KindStoreTimeout
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidToken:
		return "invalid_token"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindOutOfStock:
		return "out_of_stock"
	case KindAlreadyReturned:
		return "already_returned"
	case KindConflict:
		return "conflict"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindStoreTimeout:
		return "store_timeout"
	default:
		return "internal"
	}
}

// Error is the typed failure returned by every service operation.  Message
// is safe to show to clients; Err keeps the underlying cause for logs only.
type Error struct {
	Kind     Kind
	Resource string            // "genre", "movie", ... for KindNotFound
	Message  string            // client-facing text
	Fields   map[string]string // per-field detail for KindValidation
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a *Error of kind k.
func IsKind(err error, k Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == k
}

// Validation reports malformed input; fields maps each bad field to a message.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Invalid input.", Fields: fields}
}

// InvalidID is the validation failure for a malformed identifier.
func InvalidID(field string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Invalid ID entered.",
		Fields:  map[string]string{field: "must be a valid id"},
	}
}

// NotFound reports a well-formed id that matched nothing.
func NotFound(resource string) *Error {
	msg := "Resource not found."
	if resource != "" {
		msg = fmt.Sprintf("The %s with the given ID was not found.", resource)
	}
	return &Error{Kind: KindNotFound, Resource: resource, Message: msg}
}

func OutOfStock() *Error {
	return &Error{Kind: KindOutOfStock, Resource: "movie", Message: "Movie not in stock."}
}

func AlreadyReturned() *Error {
	return &Error{Kind: KindAlreadyReturned, Resource: "rental", Message: "Rental is already returned."}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid email or password."}
}

func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Access denied. No token provided."}
}

func InvalidToken(cause error) *Error {
	return &Error{Kind: KindInvalidToken, Message: "Invalid token.", Err: cause}
}

func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "Access denied."}
}

// Internal wraps an unexpected failure.  Its message is never the cause.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Something failed.", Err: cause}
}

func storeTimeout(cause error) *Error {
	return &Error{Kind: KindStoreTimeout, Message: "Something failed.", Err: cause}
}

// fromStore translates repository sentinels and context errors into *Error.
func fromStore(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, repository.ErrGenreNotFound):
		return NotFound("genre")
	case errors.Is(err, repository.ErrMovieNotFound):
		return NotFound("movie")
	case errors.Is(err, repository.ErrCustomerNotFound):
		return NotFound("customer")
	case errors.Is(err, repository.ErrRentalNotFound):
		return NotFound("rental")
	case errors.Is(err, repository.ErrUserNotFound):
		return NotFound("user")
	case errors.Is(err, repository.ErrNotFound):
		return NotFound("")
	case errors.Is(err, repository.ErrOutOfStock):
		return OutOfStock()
	case errors.Is(err, repository.ErrAlreadyReturned):
		return AlreadyReturned()
	case errors.Is(err, repository.ErrEmailExists):
		return Conflict("User already registered.")
	case errors.Is(err, context.DeadlineExceeded):
		return storeTimeout(err)
	default:
		return Internal(err)
	}
}
