// Package memstore is an in-process implementation of every store, used
// with STORE_DRIVER=memory for local runs and as the backing store in
// service and handler tests.  All collections live on one Store value
// guarded by a single mutex, which gives Checkout and Return the same
// all-or-nothing behaviour as the MySQL transactions.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
)

// Store holds every collection.
type Store struct {
	mu        sync.Mutex
	genres    map[string]model.Genre
	movies    map[string]model.Movie
	customers map[string]model.Customer
	rentals   map[string]model.Rental
	users     map[string]model.User
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		genres:    map[string]model.Genre{},
		movies:    map[string]model.Movie{},
		customers: map[string]model.Customer{},
		rentals:   map[string]model.Rental{},
		users:     map[string]model.User{},
	}
}

func (s *Store) Genres() *Genres       { return &Genres{s} }
func (s *Store) Movies() *Movies       { return &Movies{s} }
func (s *Store) Customers() *Customers { return &Customers{s} }
func (s *Store) Rentals() *Rentals     { return &Rentals{s} }
func (s *Store) Users() *Users         { return &Users{s} }

// sortBy orders items by the value key extracts for the requested field,
// falling back to def when the field is unknown.  Ties break on id.
func sortBy[T any](items []T, srt repository.Sort, def string, keys map[string]func(T) string, id func(T) string) {
	key, ok := keys[srt.Field]
	desc := srt.Desc
	if !ok {
		key, desc = keys[def], false
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if a == b {
			return id(items[i]) < id(items[j])
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

func checkCtx(ctx context.Context) error { return ctx.Err() }

// Genres is the genre view of a Store.
type Genres struct{ s *Store }

var genreKeys = map[string]func(model.Genre) string{
	"name": func(g model.Genre) string { return g.Name },
}

func (r *Genres) List(ctx context.Context, srt repository.Sort) ([]model.Genre, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	out := make([]model.Genre, 0, len(r.s.genres))
	for _, g := range r.s.genres {
		out = append(out, g)
	}
	r.s.mu.Unlock()
	sortBy(out, srt, "name", genreKeys, func(g model.Genre) string { return g.ID })
	return out, nil
}

func (r *Genres) GetByID(ctx context.Context, id string) (*model.Genre, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.genres[id]
	if !ok {
		return nil, repository.ErrGenreNotFound
	}
	return &g, nil
}

func (r *Genres) Create(ctx context.Context, g *model.Genre) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.genres[g.ID] = *g
	return nil
}

func (r *Genres) Update(ctx context.Context, g *model.Genre) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.genres[g.ID]; !ok {
		return repository.ErrGenreNotFound
	}
	r.s.genres[g.ID] = *g
	return nil
}

func (r *Genres) Delete(ctx context.Context, id string) (*model.Genre, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.genres[id]
	if !ok {
		return nil, repository.ErrGenreNotFound
	}
	delete(r.s.genres, id)
	return &g, nil
}

// Movies is the movie view of a Store.
type Movies struct{ s *Store }

var movieKeys = map[string]func(model.Movie) string{
	"title":           func(m model.Movie) string { return m.Title },
	"numberInStock":   func(m model.Movie) string { return padInt(m.NumberInStock) },
	"dailyRentalRate": func(m model.Movie) string { return padFloat(m.DailyRentalRate) },
}

func (r *Movies) List(ctx context.Context, srt repository.Sort) ([]model.Movie, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	out := make([]model.Movie, 0, len(r.s.movies))
	for _, m := range r.s.movies {
		out = append(out, m)
	}
	r.s.mu.Unlock()
	sortBy(out, srt, "title", movieKeys, func(m model.Movie) string { return m.ID })
	return out, nil
}

func (r *Movies) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &m, nil
}

func (r *Movies) Create(ctx context.Context, m *model.Movie) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movies[m.ID] = *m
	return nil
}

func (r *Movies) Update(ctx context.Context, m *model.Movie) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[m.ID]; !ok {
		return repository.ErrMovieNotFound
	}
	r.s.movies[m.ID] = *m
	return nil
}

func (r *Movies) Delete(ctx context.Context, id string) (*model.Movie, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	delete(r.s.movies, id)
	return &m, nil
}

// Customers is the customer view of a Store.
type Customers struct{ s *Store }

var customerKeys = map[string]func(model.Customer) string{
	"name":      func(c model.Customer) string { return c.Name },
	"phone":     func(c model.Customer) string { return c.Phone },
	"isPremium": func(c model.Customer) string { return boolKey(c.IsPremium) },
}

func (r *Customers) List(ctx context.Context, srt repository.Sort) ([]model.Customer, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	out := make([]model.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		out = append(out, c)
	}
	r.s.mu.Unlock()
	sortBy(out, srt, "name", customerKeys, func(c model.Customer) string { return c.ID })
	return out, nil
}

func (r *Customers) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *Customers) Create(ctx context.Context, c *model.Customer) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = *c
	return nil
}

func (r *Customers) Update(ctx context.Context, c *model.Customer) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[c.ID]; !ok {
		return repository.ErrCustomerNotFound
	}
	r.s.customers[c.ID] = *c
	return nil
}

func (r *Customers) Delete(ctx context.Context, id string) (*model.Customer, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	delete(r.s.customers, id)
	return &c, nil
}

// Rentals is the rental view of a Store.
type Rentals struct{ s *Store }

func (r *Rentals) List(ctx context.Context) ([]model.Rental, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	out := make([]model.Rental, 0, len(r.s.rentals))
	for _, rt := range r.s.rentals {
		out = append(out, rt)
	}
	r.s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateOut.Equal(out[j].DateOut) {
			return out[i].ID < out[j].ID
		}
		return out[i].DateOut.After(out[j].DateOut)
	})
	return out, nil
}

func (r *Rentals) GetByID(ctx context.Context, id string) (*model.Rental, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	return &rt, nil
}

// Checkout mirrors RentalRepo.Checkout under the store mutex.
func (r *Rentals) Checkout(ctx context.Context, rt *model.Rental) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movies[rt.Movie.ID]
	if !ok {
		return repository.ErrMovieNotFound
	}
	if m.NumberInStock <= 0 {
		return repository.ErrOutOfStock
	}
	m.NumberInStock--
	r.s.movies[m.ID] = m
	r.s.rentals[rt.ID] = *rt
	return nil
}

// Return mirrors RentalRepo.Return under the store mutex.
func (r *Rentals) Return(ctx context.Context, customerID, movieID string, at time.Time, fee repository.FeeFunc) (*model.Rental, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var (
		open, latest *model.Rental
	)
	for _, rt := range r.s.rentals {
		if rt.Customer.ID != customerID || rt.Movie.ID != movieID {
			continue
		}
		rt := rt
		if rt.Open() && (open == nil || rt.DateOut.After(open.DateOut)) {
			open = &rt
		}
		if latest == nil || rt.DateOut.After(latest.DateOut) {
			latest = &rt
		}
	}
	if open == nil {
		if latest != nil {
			return nil, repository.ErrAlreadyReturned
		}
		return nil, repository.ErrRentalNotFound
	}
	m, ok := r.s.movies[movieID]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}

	returned := at.UTC()
	amount := fee(*open, returned)
	open.DateReturned = &returned
	open.RentalFee = &amount
	m.NumberInStock++
	r.s.movies[m.ID] = m
	r.s.rentals[open.ID] = *open
	return open, nil
}

// Put stores rt as-is.  Tests use it to seed rentals with a chosen DateOut.
func (r *Rentals) Put(rt model.Rental) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rentals[rt.ID] = rt
}

// Users is the credential view of a Store.
type Users struct{ s *Store }

func (r *Users) Create(ctx context.Context, u *model.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *Users) GetByID(ctx context.Context, id string) (*model.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}
