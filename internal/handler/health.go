package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe used by load balancers.  It returns plain
// "ok" with 200 and touches no store.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
