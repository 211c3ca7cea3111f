package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/service"
)

// CustomerHandler serves /api/customers.  None of its routes require a token.
type CustomerHandler struct {
	Catalog *service.Catalog
}

func NewCustomerHandler(c *service.Catalog) *CustomerHandler { return &CustomerHandler{Catalog: c} }

type customerReq struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	IsPremium bool   `json:"isPremium"`
}

func (r customerReq) input() service.CustomerInput {
	return service.CustomerInput{Name: r.Name, Phone: r.Phone, IsPremium: r.IsPremium}
}

func (h *CustomerHandler) List(c echo.Context) error {
	customers, err := h.Catalog.ListCustomers(c.Request().Context(), c.QueryParam("sort"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	cu, err := h.Catalog.GetCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cu)
}

func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	cu, err := h.Catalog.CreateCustomer(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cu)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	cu, err := h.Catalog.UpdateCustomer(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cu)
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	cu, err := h.Catalog.DeleteCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cu)
}
