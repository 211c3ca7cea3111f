package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/validator"
)

// Field bounds shared by create and update.
const (
	genreNameMin, genreNameMax       = 3, 50
	movieTitleMin, movieTitleMax     = 1, 100
	customerNameMin, customerNameMax = 3, 30
	phoneLen                         = 10
	maxStock                         = 100000
	maxRate                          = 100000.0
)

var (
	genreSorts    = []string{"name"}
	movieSorts    = []string{"title", "numberInStock", "dailyRentalRate"}
	customerSorts = []string{"name", "phone", "isPremium"}
)

type GenreInput struct {
	Name string
}

// MovieInput leaves NumberInStock and DailyRentalRate nil when the client
// omitted them, which fails validation.
type MovieInput struct {
	Title           string
	GenreID         string
	NumberInStock   *int
	DailyRentalRate *float64
}

type CustomerInput struct {
	Name      string
	Phone     string
	IsPremium bool
}

// Catalog is the CRUD service for genres, movies and customers.
type Catalog struct {
	genres    GenreStore
	movies    MovieStore
	customers CustomerStore
	timeout   time.Duration
}

func NewCatalog(st Stores, storeTimeout time.Duration) *Catalog {
	return &Catalog{genres: st.Genres, movies: st.Movies, customers: st.Customers, timeout: storeTimeout}
}

// parseSort accepts "", "field" or "-field" where field is in allowed.
func parseSort(raw string, allowed []string) (repository.Sort, error) {
	srt := repository.ParseSort(raw)
	if srt.Field == "" || validator.In(srt.Field, allowed...) {
		return srt, nil
	}
	return repository.Sort{}, Validation(map[string]string{
		"sort": "must be one of " + strings.Join(allowed, ", "),
	})
}

// ---- genres ----

func validateGenre(in GenreInput) error {
	v := validator.New()
	v.Check(validator.Length(in.Name, genreNameMin, genreNameMax), "name", "must be between 3 and 50 characters")
	if !v.Valid() {
		return Validation(v.Errors)
	}
	return nil
}

func (c *Catalog) ListGenres(ctx context.Context, sort string) ([]model.Genre, error) {
	srt, err := parseSort(sort, genreSorts)
	if err != nil {
		return nil, err
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) ([]model.Genre, error) {
		return c.genres.List(ctx, srt)
	})
}

func (c *Catalog) GetGenre(ctx context.Context, id string) (*model.Genre, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) (*model.Genre, error) {
		return c.genres.GetByID(ctx, id)
	})
}

func (c *Catalog) CreateGenre(ctx context.Context, in GenreInput) (*model.Genre, error) {
	if err := validateGenre(in); err != nil {
		return nil, err
	}
	g := &model.Genre{ID: uuid.NewString(), Name: in.Name}
	if err := execStore(ctx, c.timeout, func(ctx context.Context) error {
		return c.genres.Create(ctx, g)
	}); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *Catalog) UpdateGenre(ctx context.Context, id string, in GenreInput) (*model.Genre, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	if err := validateGenre(in); err != nil {
		return nil, err
	}
	g := &model.Genre{ID: id, Name: in.Name}
	if err := execStore(ctx, c.timeout, func(ctx context.Context) error {
		return c.genres.Update(ctx, g)
	}); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *Catalog) DeleteGenre(ctx context.Context, id string) (*model.Genre, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) (*model.Genre, error) {
		return c.genres.Delete(ctx, id)
	})
}

// ---- movies ----

func validateMovie(in MovieInput) error {
	v := validator.New()
	v.Check(validator.Length(in.Title, movieTitleMin, movieTitleMax), "title", "must be between 1 and 100 characters")
	v.Check(validator.IsID(in.GenreID), "genreId", "must be a valid id")
	if in.NumberInStock == nil {
		v.AddError("numberInStock", "is required")
	} else {
		v.Check(validator.Between(*in.NumberInStock, 0, maxStock), "numberInStock", "must be between 0 and 100000")
	}
	if in.DailyRentalRate == nil {
		v.AddError("dailyRentalRate", "is required")
	} else {
		v.Check(validator.Between(*in.DailyRentalRate, 0, maxRate), "dailyRentalRate", "must be between 0 and 100000")
	}
	if !v.Valid() {
		return Validation(v.Errors)
	}
	return nil
}

// resolveMovie validates in and embeds the current genre snapshot.
func (c *Catalog) resolveMovie(ctx context.Context, id string, in MovieInput) (*model.Movie, error) {
	if err := validateMovie(in); err != nil {
		return nil, err
	}
	genre, err := callStore(ctx, c.timeout, func(ctx context.Context) (*model.Genre, error) {
		return c.genres.GetByID(ctx, in.GenreID)
	})
	if err != nil {
		return nil, err
	}
	return &model.Movie{
		ID:              id,
		Title:           in.Title,
		Genre:           genre.Snapshot(),
		NumberInStock:   *in.NumberInStock,
		DailyRentalRate: *in.DailyRentalRate,
	}, nil
}

func (c *Catalog) ListMovies(ctx context.Context, sort string) ([]model.Movie, error) {
	srt, err := parseSort(sort, movieSorts)
	if err != nil {
		return nil, err
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) ([]model.Movie, error) {
		return c.movies.List(ctx, srt)
	})
}

func (c *Catalog) GetMovie(ctx context.Context, id string) (*model.Movie, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) (*model.Movie, error) {
		return c.movies.GetByID(ctx, id)
	})
}

func (c *Catalog) CreateMovie(ctx context.Context, in MovieInput) (*model.Movie, error) {
	m, err := c.resolveMovie(ctx, uuid.NewString(), in)
	if err != nil {
		return nil, err
	}
	if err := execStore(ctx, c.timeout, func(ctx context.Context) error {
		return c.movies.Create(ctx, m)
	}); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Catalog) UpdateMovie(ctx context.Context, id string, in MovieInput) (*model.Movie, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	m, err := c.resolveMovie(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if err := execStore(ctx, c.timeout, func(ctx context.Context) error {
		return c.movies.Update(ctx, m)
	}); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Catalog) DeleteMovie(ctx context.Context, id string) (*model.Movie, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) (*model.Movie, error) {
		return c.movies.Delete(ctx, id)
	})
}

// ---- customers ----

func validateCustomer(in CustomerInput) error {
	v := validator.New()
	v.Check(validator.Length(in.Name, customerNameMin, customerNameMax), "name", "must be between 3 and 30 characters")
	v.Check(validator.Length(in.Phone, phoneLen, phoneLen), "phone", "must be exactly 10 characters")
	v.Check(validator.IsPhone(in.Phone), "phone", "must contain only digits and phone punctuation")
	if !v.Valid() {
		return Validation(v.Errors)
	}
	return nil
}

func (c *Catalog) ListCustomers(ctx context.Context, sort string) ([]model.Customer, error) {
	srt, err := parseSort(sort, customerSorts)
	if err != nil {
		return nil, err
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) ([]model.Customer, error) {
		return c.customers.List(ctx, srt)
	})
}

func (c *Catalog) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) (*model.Customer, error) {
		return c.customers.GetByID(ctx, id)
	})
}

func (c *Catalog) CreateCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	cu := &model.Customer{ID: uuid.NewString(), IsPremium: in.IsPremium, Name: in.Name, Phone: in.Phone}
	if err := execStore(ctx, c.timeout, func(ctx context.Context) error {
		return c.customers.Create(ctx, cu)
	}); err != nil {
		return nil, err
	}
	return cu, nil
}

func (c *Catalog) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*model.Customer, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	cu := &model.Customer{ID: id, IsPremium: in.IsPremium, Name: in.Name, Phone: in.Phone}
	if err := execStore(ctx, c.timeout, func(ctx context.Context) error {
		return c.customers.Update(ctx, cu)
	}); err != nil {
		return nil, err
	}
	return cu, nil
}

func (c *Catalog) DeleteCustomer(ctx context.Context, id string) (*model.Customer, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	return callStore(ctx, c.timeout, func(ctx context.Context) (*model.Customer, error) {
		return c.customers.Delete(ctx, id)
	})
}
