package service

import (
	"context"
	"time"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
)

// The store interfaces below are satisfied by the MySQL repositories in
// internal/repository and by internal/repository/memstore.

type GenreStore interface {
	List(ctx context.Context, s repository.Sort) ([]model.Genre, error)
	GetByID(ctx context.Context, id string) (*model.Genre, error)
	Create(ctx context.Context, g *model.Genre) error
	Update(ctx context.Context, g *model.Genre) error
	Delete(ctx context.Context, id string) (*model.Genre, error)
}

type MovieStore interface {
	List(ctx context.Context, s repository.Sort) ([]model.Movie, error)
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) error
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id string) (*model.Movie, error)
}

type CustomerStore interface {
	List(ctx context.Context, s repository.Sort) ([]model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
	Delete(ctx context.Context, id string) (*model.Customer, error)
}

// RentalStore owns the two stock-moving operations.  Checkout and Return
// must each be atomic with respect to the movie's stock counter.
type RentalStore interface {
	List(ctx context.Context) ([]model.Rental, error)
	GetByID(ctx context.Context, id string) (*model.Rental, error)
	Checkout(ctx context.Context, rt *model.Rental) error
	Return(ctx context.Context, customerID, movieID string, at time.Time, fee repository.FeeFunc) (*model.Rental, error)
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Stores bundles every backend a Catalog, RentalService and AuthService need.
type Stores struct {
	Genres    GenreStore
	Movies    MovieStore
	Customers CustomerStore
	Rentals   RentalStore
	Users     UserStore
}

// callStore runs op under the per-call store deadline and translates its
// error.  A non-positive timeout leaves ctx unchanged.
func callStore[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	v, err := op(ctx)
	if err != nil {
		var zero T
		return zero, fromStore(err)
	}
	return v, nil
}

// execStore is callStore for operations without a result.
func execStore(ctx context.Context, timeout time.Duration, op func(ctx context.Context) error) error {
	_, err := callStore(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

var (
	_ GenreStore    = (*repository.GenreRepo)(nil)
	_ MovieStore    = (*repository.MovieRepo)(nil)
	_ CustomerStore = (*repository.CustomerRepo)(nil)
	_ RentalStore   = (*repository.RentalRepo)(nil)
	_ UserStore     = (*repository.UserRepo)(nil)
)
