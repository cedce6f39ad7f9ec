package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/service"
)

// BookingHandler exposes the booking lifecycle endpoints: creation,
// the vendor decision step, cancellation and scoped reads.
type BookingHandler struct {
	bookings *service.BookingService
}

// NewBookingHandler wires a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	TicketID uint64 `json:"ticket_id"`
	Quantity uint32 `json:"quantity"`
}

// Create books a ticket for the calling user.
func (h *BookingHandler) Create(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	b, err := h.bookings.Create(c.Request().Context(), a, req.TicketID, req.Quantity)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

type decideBookingRequest struct {
	Status string `json:"status"`
}

// Decide lets the owning vendor approve or reject a pending booking.
func (h *BookingHandler) Decide(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req decideBookingRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	b, err := h.bookings.Decide(c.Request().Context(), a, id, model.BookingStatus(req.Status))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel deletes a booking the caller owns (or any booking for an
// admin).  Paid bookings cannot be cancelled by their owner.
func (h *BookingHandler) Cancel(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := h.bookings.Cancel(c.Request().Context(), a, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get returns a booking visible to the caller.
func (h *BookingHandler) Get(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	b, err := h.bookings.Get(c.Request().Context(), a, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Mine returns the caller's own bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	bookings, err := h.bookings.ListForUser(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Requests returns the booking requests against the calling vendor's
// tickets.
func (h *BookingHandler) Requests(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	bookings, err := h.bookings.ListForVendor(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// ListAll returns every booking for admin screens.
func (h *BookingHandler) ListAll(c echo.Context) error {
	bookings, err := h.bookings.ListAll(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}
