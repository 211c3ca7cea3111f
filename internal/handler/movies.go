package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/service"
)

// MovieHandler serves /api/movies.
type MovieHandler struct {
	Catalog *service.Catalog
}

func NewMovieHandler(c *service.Catalog) *MovieHandler { return &MovieHandler{Catalog: c} }

// movieReq matches JSON keys case-insensitively, so the older "genreID"
// spelling binds too.  Numbers are pointers to tell "0" from "missing".
type movieReq struct {
	Title           string   `json:"title"`
	GenreID         string   `json:"genreId"`
	NumberInStock   *int     `json:"numberInStock"`
	DailyRentalRate *float64 `json:"dailyRentalRate"`
}

func (r movieReq) input() service.MovieInput {
	return service.MovieInput{
		Title:           r.Title,
		GenreID:         r.GenreID,
		NumberInStock:   r.NumberInStock,
		DailyRentalRate: r.DailyRentalRate,
	}
}

func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.Catalog.ListMovies(c.Request().Context(), c.QueryParam("sort"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *MovieHandler) Get(c echo.Context) error {
	m, err := h.Catalog.GetMovie(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	m, err := h.Catalog.CreateMovie(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Update(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	m, err := h.Catalog.UpdateMovie(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Delete(c echo.Context) error {
	m, err := h.Catalog.DeleteMovie(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}
