package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/repository"
	"github.com/ticketbari/ticketbari-api/internal/service"
)

// TicketHandler exposes the public browse endpoints, the vendor
// listing CRUD, and the admin moderation and advertising controls.
type TicketHandler struct {
	tickets *service.TicketService
}

// NewTicketHandler wires a TicketHandler.
func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

type ticketRequest struct {
	Title       string   `json:"title"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Transport   string   `json:"transport_type"`
	PriceCents  int64    `json:"price_cents"`
	Quantity    uint32   `json:"quantity"`
	DepartureAt string   `json:"departure_at"`
	Perks       []string `json:"perks"`
	ImageURL    string   `json:"image_url"`
}

func (r ticketRequest) toInput() (service.TicketInput, error) {
	dep, err := time.Parse(time.RFC3339, r.DepartureAt)
	if err != nil {
		return service.TicketInput{}, service.ErrValidation
	}
	return service.TicketInput{
		Title:       r.Title,
		From:        r.From,
		To:          r.To,
		Transport:   r.Transport,
		PriceCents:  r.PriceCents,
		Quantity:    r.Quantity,
		DepartureAt: dep,
		Perks:       r.Perks,
		ImageURL:    r.ImageURL,
	}, nil
}

// Create lists a new ticket for the calling vendor.
func (h *TicketHandler) Create(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	in, err := req.toInput()
	if err != nil {
		return writeServiceError(c, err)
	}
	t, err := h.tickets.Create(c.Request().Context(), a, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Update overwrites the calling vendor's own listing.
func (h *TicketHandler) Update(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	in, err := req.toInput()
	if err != nil {
		return writeServiceError(c, err)
	}
	t, err := h.tickets.Update(c.Request().Context(), a, id, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Delete removes the calling vendor's own listing.
func (h *TicketHandler) Delete(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := h.tickets.Delete(c.Request().Context(), a, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get returns a single ticket, honoring visibility rules.
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	// Public callers carry no actor; the zero actor sees only
	// approved, visible tickets.
	a := optionalActor(c)
	t, err := h.tickets.Get(c.Request().Context(), a, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Browse returns the filtered public listing with pagination info.
func (h *TicketHandler) Browse(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	f := repository.ApprovedFilter{
		Search:    c.QueryParam("search"),
		Transport: c.QueryParam("transport_type"),
		Sort:      c.QueryParam("sort"),
		Page:      page,
		Limit:     limit,
	}
	tickets, total, err := h.tickets.Browse(c.Request().Context(), f)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tickets": tickets,
		"total":   total,
	})
}

// Advertised returns the homepage carousel tickets.
func (h *TicketHandler) Advertised(c echo.Context) error {
	tickets, err := h.tickets.Advertised(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// Latest returns the newest approved tickets.
func (h *TicketHandler) Latest(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	tickets, err := h.tickets.Latest(c.Request().Context(), limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// Mine returns all of the calling vendor's listings.
func (h *TicketHandler) Mine(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	tickets, err := h.tickets.ListForVendor(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// ListAll returns every ticket for admin moderation.
func (h *TicketHandler) ListAll(c echo.Context) error {
	tickets, err := h.tickets.ListAll(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

type moderateRequest struct {
	Status string `json:"verification_status"`
}

// Moderate sets a ticket's verification status.  Admin only.
func (h *TicketHandler) Moderate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req moderateRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	if err := h.tickets.Moderate(c.Request().Context(), id, model.VerificationStatus(req.Status)); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "verification_status": req.Status})
}

type advertiseRequest struct {
	Advertised bool `json:"is_advertised"`
}

// Advertise toggles the homepage flag on a ticket.  Admin only.
func (h *TicketHandler) Advertise(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req advertiseRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	if err := h.tickets.SetAdvertised(c.Request().Context(), id, req.Advertised); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_advertised": req.Advertised})
}
