package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/repository/memstore"
	"github.com/iliyamo/video-rental/internal/service"
)

func newCatalog(t *testing.T) *service.Catalog {
	t.Helper()
	return service.NewCatalog(stores(memstore.New()), time.Second)
}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestGenreNameLength(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"", false},
		{"ab", false},
		{"abc", true},
		{"drama", true},
		{strings.Repeat("x", 50), true},
		{strings.Repeat("x", 51), false},
	}
	c := newCatalog(t)
	for _, tc := range cases {
		g, err := c.CreateGenre(context.Background(), service.GenreInput{Name: tc.name})
		if !tc.ok {
			se := requireKind(t, err, service.KindValidation)
			assert.Contains(t, se.Fields, "name")
			continue
		}
		require.NoError(t, err, "name %q", tc.name)
		assert.Equal(t, tc.name, g.Name)
		assert.True(t, len(g.ID) == 36)

		got, err := c.GetGenre(context.Background(), g.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.name, got.Name)
	}
}

func TestGenreLifecycle(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	g, err := c.CreateGenre(ctx, service.GenreInput{Name: "drama"})
	require.NoError(t, err)

	_, err = c.GetGenre(ctx, "not-an-id")
	requireKind(t, err, service.KindValidation)

	_, err = c.GetGenre(ctx, uuid.NewString())
	se := requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "genre", se.Resource)

	up, err := c.UpdateGenre(ctx, g.ID, service.GenreInput{Name: "comedy"})
	require.NoError(t, err)
	assert.Equal(t, "comedy", up.Name)

	_, err = c.UpdateGenre(ctx, uuid.NewString(), service.GenreInput{Name: "comedy"})
	requireKind(t, err, service.KindNotFound)

	del, err := c.DeleteGenre(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, del.ID)

	_, err = c.GetGenre(ctx, g.ID)
	requireKind(t, err, service.KindNotFound)
}

func TestListGenresSort(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	for _, n := range []string{"drama", "action", "comedy"} {
		_, err := c.CreateGenre(ctx, service.GenreInput{Name: n})
		require.NoError(t, err)
	}

	asc, err := c.ListGenres(ctx, "name")
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "action", asc[0].Name)

	desc, err := c.ListGenres(ctx, "-name")
	require.NoError(t, err)
	assert.Equal(t, "drama", desc[0].Name)

	_, err = c.ListGenres(ctx, "password")
	se := requireKind(t, err, service.KindValidation)
	assert.Contains(t, se.Fields, "sort")
}

func TestMovieEmbedsGenreSnapshot(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	g, err := c.CreateGenre(ctx, service.GenreInput{Name: "horror"})
	require.NoError(t, err)

	m, err := c.CreateMovie(ctx, service.MovieInput{
		Title: "Alien", GenreID: g.ID, NumberInStock: intPtr(4), DailyRentalRate: floatPtr(1.5),
	})
	require.NoError(t, err)
	assert.Equal(t, g.Snapshot(), m.Genre)

	_, err = c.UpdateGenre(ctx, g.ID, service.GenreInput{Name: "sci-fi"})
	require.NoError(t, err)

	got, err := c.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "horror", got.Genre.Name)
}

func TestMovieValidation(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.CreateMovie(ctx, service.MovieInput{Title: "", GenreID: "x"})
	se := requireKind(t, err, service.KindValidation)
	for _, f := range []string{"title", "genreId", "numberInStock", "dailyRentalRate"} {
		assert.Contains(t, se.Fields, f)
	}

	_, err = c.CreateMovie(ctx, service.MovieInput{
		Title: "Alien", GenreID: uuid.NewString(), NumberInStock: intPtr(-1), DailyRentalRate: floatPtr(100001),
	})
	se = requireKind(t, err, service.KindValidation)
	assert.Contains(t, se.Fields, "numberInStock")
	assert.Contains(t, se.Fields, "dailyRentalRate")

	_, err = c.CreateMovie(ctx, service.MovieInput{
		Title: "Alien", GenreID: uuid.NewString(), NumberInStock: intPtr(1), DailyRentalRate: floatPtr(1),
	})
	se = requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "genre", se.Resource)
}

func TestMovieUpdateAndDelete(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	g, err := c.CreateGenre(ctx, service.GenreInput{Name: "horror"})
	require.NoError(t, err)
	m, err := c.CreateMovie(ctx, service.MovieInput{
		Title: "Alien", GenreID: g.ID, NumberInStock: intPtr(1), DailyRentalRate: floatPtr(2),
	})
	require.NoError(t, err)

	up, err := c.UpdateMovie(ctx, m.ID, service.MovieInput{
		Title: "Aliens", GenreID: g.ID, NumberInStock: intPtr(5), DailyRentalRate: floatPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aliens", up.Title)
	assert.Equal(t, 5, up.NumberInStock)

	_, err = c.UpdateMovie(ctx, uuid.NewString(), service.MovieInput{
		Title: "Aliens", GenreID: g.ID, NumberInStock: intPtr(5), DailyRentalRate: floatPtr(3),
	})
	se := requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "movie", se.Resource)

	_, err = c.DeleteMovie(ctx, m.ID)
	require.NoError(t, err)
	_, err = c.DeleteMovie(ctx, m.ID)
	requireKind(t, err, service.KindNotFound)
}

func TestCustomerValidationAndCRUD(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.CreateCustomer(ctx, service.CustomerInput{Name: "Jo", Phone: "12345"})
	se := requireKind(t, err, service.KindValidation)
	assert.Contains(t, se.Fields, "name")
	assert.Contains(t, se.Fields, "phone")

	cu, err := c.CreateCustomer(ctx, service.CustomerInput{Name: "Jane", Phone: "0123456789", IsPremium: true})
	require.NoError(t, err)
	assert.True(t, cu.IsPremium)

	up, err := c.UpdateCustomer(ctx, cu.ID, service.CustomerInput{Name: "Janet", Phone: "9876543210"})
	require.NoError(t, err)
	assert.False(t, up.IsPremium)

	list, err := c.ListCustomers(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Janet", list[0].Name)

	_, err = c.DeleteCustomer(ctx, cu.ID)
	require.NoError(t, err)
	_, err = c.GetCustomer(ctx, cu.ID)
	se = requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "customer", se.Resource)
}
