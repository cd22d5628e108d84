// Package handler contains the HTTP handlers for the reservation
// service.  Handlers bind requests, call into the engine and translate
// engine errors to status codes; they hold no business logic.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by load balancers and monitoring
// systems.  It returns a plain "ok" with HTTP 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
