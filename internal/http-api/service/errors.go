package service

import (
	"context"
	"errors"
	"fmt"

	"libraryhub/internal/http-api/repository"
)

// Error kinds. Callers match with errors.Is; the HTTP layer maps each kind to a status.
var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("insufficient permissions")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("invalid request")
	ErrStoreUnavailable = errors.New("store temporarily unavailable")
)

// Specific errors, each belonging to one kind.
var (
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid credentials")
	ErrInvalidToken       = newError(ErrUnauthenticated, "invalid or expired token")

	ErrBookNotFound        = newError(ErrNotFound, "book not found")
	ErrLoanNotFound        = newError(ErrNotFound, "active borrowing record not found")
	ErrReservationNotFound = newError(ErrNotFound, "pending reservation not found")
	ErrUserNotFound        = newError(ErrNotFound, "user not found")

	ErrBookUnavailable = newError(ErrConflict, "book is not available")
	ErrBookNotBorrowed = newError(ErrConflict, "book is available, borrow it instead")
	ErrAlreadyReserved = newError(ErrConflict, "you already have a pending reservation for this book")
	ErrBookOnLoan      = newError(ErrConflict, "cannot delete a book that is currently borrowed")
	ErrEmailInUse      = newError(ErrConflict, "email already registered")
	ErrISBNInUse       = newError(ErrConflict, "a book with this isbn already exists")

	ErrRoleNotAllowed = newError(ErrValidation, "role must be librarian or student")
)

// Error is a kind plus a message safe to show to clients.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

// Validationf builds a validation error with a client-facing message.
func Validationf(format string, args ...any) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

// PublicMessage returns the message of the most specific service error in
// err's chain, or the kind's message. Unknown errors get a generic text.
func PublicMessage(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.msg
	}
	for _, kind := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrValidation, ErrStoreUnavailable} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}

// translate turns repository outcomes into service kinds. notFound and
// conflict are the specific errors to use for this operation (nil falls
// back to the bare kind).
func translate(op string, err error, notFound, conflict error) error {
	if err == nil {
		return nil
	}
	if notFound == nil {
		notFound = ErrNotFound
	}
	if conflict == nil {
		conflict = ErrConflict
	}

	// already translated, e.g. returned from inside a transaction
	var se *Error
	if errors.As(err, &se) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, notFound, err)
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrStaleState),
		errors.Is(err, repository.ErrInUse):
		return fmt.Errorf("%s: %w: %w", op, conflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
