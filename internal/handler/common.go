// Package handler contains the HTTP handlers for the marketplace API.
// Handlers bind and validate request shapes, delegate to the service
// layer, and translate service errors into HTTP status codes.
package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/middleware"
	"github.com/ticketbari/ticketbari-api/internal/repository"
	"github.com/ticketbari/ticketbari-api/internal/service"
)

// actor returns the resolved actor or writes a 401.  The second
// return value reports whether the handler may proceed.
func actor(c echo.Context) (service.Actor, bool) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	return a, ok
}

// optionalActor returns the resolved actor, or the zero Actor for
// unauthenticated requests.
func optionalActor(c echo.Context) service.Actor {
	a, _ := middleware.CurrentActor(c)
	return a
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrValidation
	}
	return id, nil
}

// writeServiceError maps service and repository errors onto HTTP
// responses.  Unknown errors are logged and answered with a generic
// 500 so internals never leak to clients.
func writeServiceError(c echo.Context, err error) error {
	switch err {
	case service.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	case service.ErrPaymentNotVerified:
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment not verified"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case repository.ErrTicketNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case repository.ErrBookingNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case repository.ErrTransactionNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
	case repository.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case repository.ErrInvalidTransition:
		return c.JSON(http.StatusConflict, echo.Map{"error": "operation conflicts with current status"})
	case repository.ErrInsufficientQuantity:
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient ticket quantity"})
	case repository.ErrDuplicateReference:
		return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate payment reference"})
	case service.ErrRefCodeExhausted:
		log.Printf("handler: booking reference generation exhausted: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not allocate booking reference"})
	}
	log.Printf("handler: internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
