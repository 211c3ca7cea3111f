// Package repository holds the MySQL-backed stores.  The sentinel errors
// below are shared by every store (including memstore) so that the service
// layer can tell "valid id, no match" apart from driver failures without
// knowing which backend is in use.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is the root of every "no such row" error.  Entity-specific
// variants wrap it so callers can match either.
var ErrNotFound = errors.New("not found")

var (
	ErrGenreNotFound    = fmt.Errorf("genre %w", ErrNotFound)
	ErrMovieNotFound    = fmt.Errorf("movie %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrRentalNotFound   = fmt.Errorf("rental %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
)

// ErrEmailExists is returned when registering an address that is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrOutOfStock is returned by Checkout when the movie has no units left.
// Nothing has been written when it is returned.
var ErrOutOfStock = errors.New("movie out of stock")

// ErrAlreadyReturned is returned by Return when the matching rental has
// already been closed.
var ErrAlreadyReturned = errors.New("rental already returned")
