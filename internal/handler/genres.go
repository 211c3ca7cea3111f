package handler // handler package contains the HTTP handlers for every resource

import (
	"net/http" // http provides status code constants

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/video-rental/internal/service" // service holds validation and store access
)

// GenreHandler serves /api/genres.
type GenreHandler struct {
	Catalog *service.Catalog
}

func NewGenreHandler(c *service.Catalog) *GenreHandler { return &GenreHandler{Catalog: c} }

type genreReq struct {
	Name string `json:"name"`
}

// List handles GET /api/genres?sort=name|-name
func (h *GenreHandler) List(c echo.Context) error {
	genres, err := h.Catalog.ListGenres(c.Request().Context(), c.QueryParam("sort"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, genres)
}

// Get handles GET /api/genres/:id
func (h *GenreHandler) Get(c echo.Context) error {
	g, err := h.Catalog.GetGenre(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Create handles POST /api/genres (token required)
func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil { // reject malformed JSON before validation
		return badBody(err)
	}
	g, err := h.Catalog.CreateGenre(c.Request().Context(), service.GenreInput{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Update handles PUT /api/genres/:id
func (h *GenreHandler) Update(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	g, err := h.Catalog.UpdateGenre(c.Request().Context(), c.Param("id"), service.GenreInput{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Delete handles DELETE /api/genres/:id (token + admin) and returns the
// removed genre.
func (h *GenreHandler) Delete(c echo.Context) error {
	g, err := h.Catalog.DeleteGenre(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}
