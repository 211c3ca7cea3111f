package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/video-rental/internal/service"
)

// genericFailure is the only body a 5xx ever carries.
const genericFailure = "Something failed."

// statusOf maps a domain failure kind to its HTTP status.
func statusOf(k service.Kind) int {
	switch k {
	case service.KindValidation, service.KindInvalidToken, service.KindOutOfStock,
		service.KindAlreadyReturned, service.KindConflict, service.KindInvalidCredentials:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// render turns any error returned by a handler or middleware into a status
// and a JSON body.  Internal detail never reaches the body.
func render(err error) (int, echo.Map) {
	var se *service.Error
	if errors.As(err, &se) {
		status := statusOf(se.Kind)
		if status >= http.StatusInternalServerError {
			return status, echo.Map{"error": genericFailure}
		}
		body := echo.Map{"error": se.Message}
		if len(se.Fields) > 0 {
			body["fields"] = se.Fields
		}
		return status, body
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, echo.Map{"error": genericFailure}
		}
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		return he.Code, echo.Map{"error": msg}
	}
	return http.StatusInternalServerError, echo.Map{"error": genericFailure}
}

// ErrorHandler is installed as echo's HTTPErrorHandler.  Server-side
// failures are logged with their cause; clients get the generic body.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := render(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Msg("request failed")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}

// badBody is the validation failure for a request body that is not JSON of
// the expected shape.
func badBody(err error) error {
	return &service.Error{
		Kind:    service.KindValidation,
		Message: "Invalid request body.",
		Fields:  map[string]string{"body": "must be a JSON object of the expected shape"},
		Err:     err,
	}
}
