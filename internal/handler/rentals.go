package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/service"
)

// RentalHandler serves /api/rentals and /api/returns.
type RentalHandler struct {
	Rentals *service.RentalService
}

func NewRentalHandler(r *service.RentalService) *RentalHandler { return &RentalHandler{Rentals: r} }

// rentalReq binds {customerId, movieId}.  JSON keys match case-insensitively,
// so {customerID, movieID} binds as well.
type rentalReq struct {
	CustomerID string `json:"customerId"`
	MovieID    string `json:"movieId"`
}

// List handles GET /api/rentals, newest checkout first.
func (h *RentalHandler) List(c echo.Context) error {
	rentals, err := h.Rentals.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rentals)
}

// Get handles GET /api/rentals/:id
func (h *RentalHandler) Get(c echo.Context) error {
	rt, err := h.Rentals.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rt)
}

// Create handles POST /api/rentals: checks one unit of the movie out.
func (h *RentalHandler) Create(c echo.Context) error {
	var req rentalReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	rt, err := h.Rentals.Create(c.Request().Context(), req.CustomerID, req.MovieID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rt)
}

// Return handles POST /api/returns (token required): closes the open
// rental for the pair and returns it with its fee.
func (h *RentalHandler) Return(c echo.Context) error {
	var req rentalReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	rt, err := h.Rentals.ProcessReturn(c.Request().Context(), req.CustomerID, req.MovieID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rt)
}
