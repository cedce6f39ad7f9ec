package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/repository"
	"github.com/ticketbari/ticketbari-api/internal/service"
)

type memTickets struct {
	byID map[uint64]*model.Ticket
}

func (m *memTickets) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

type memBookings struct {
	mu   sync.Mutex
	seq  uint64
	byID map[uint64]*model.Booking
}

func (m *memBookings) Insert(ctx context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.ID = m.seq
	b.Status = model.BookingPending
	cp := *b
	m.byID[b.ID] = &cp
	return nil
}

func (m *memBookings) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != from {
		return repository.ErrInvalidTransition
	}
	b.Status = to
	return nil
}

func (m *memBookings) MarkPaid(ctx context.Context, bookingID uint64, txn *model.Transaction) error {
	return repository.ErrInvalidTransition
}

func (m *memBookings) Delete(ctx context.Context, id uint64, guardNotPaid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if guardNotPaid && b.Status == model.BookingPaid {
		return repository.ErrInvalidTransition
	}
	delete(m.byID, id)
	return nil
}

func (m *memBookings) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return nil, nil
}

func (m *memBookings) ListByVendor(ctx context.Context, vendorID uint64) ([]model.Booking, error) {
	return nil, nil
}

func (m *memBookings) ListPaidByVendor(ctx context.Context, vendorID uint64) ([]model.Booking, error) {
	return nil, nil
}

func (m *memBookings) ListAll(ctx context.Context) ([]model.Booking, error) {
	return nil, nil
}

func newBookingHandlerFixture() (*BookingHandler, *memBookings) {
	tickets := &memTickets{byID: map[uint64]*model.Ticket{
		10: {
			ID:           10,
			Title:        "Dhaka to Khulna",
			PriceCents:   40_000,
			Quantity:     12,
			DepartureAt:  time.Now().UTC().Add(24 * time.Hour),
			VendorID:     2,
			Verification: model.VerificationApproved,
		},
	}}
	bookings := &memBookings{byID: map[uint64]*model.Booking{}}
	svc := service.NewBookingService(tickets, bookings, 10)
	return NewBookingHandler(svc), bookings
}

func doJSON(h echo.HandlerFunc, method, target, body string, a *service.Actor, params ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if a != nil {
		c.Set("actor", *a)
	}
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	_ = h(c)
	return rec
}

func TestCreateBookingEndpoint(t *testing.T) {
	h, _ := newBookingHandlerFixture()
	a := &service.Actor{ID: 1, Name: "Rahim", Email: "rahim@example.com", Role: model.RoleUser}

	rec := doJSON(h.Create, http.MethodPost, "/v1/bookings", `{"ticket_id":10,"quantity":2}`, a)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, int64(80_000), got.TotalPriceCents)
	require.Equal(t, model.BookingPending, got.Status)
	require.Regexp(t, `^UR-[A-Z0-9]{6}$`, got.RefCode)
}

func TestCreateBookingEndpointErrors(t *testing.T) {
	h, _ := newBookingHandlerFixture()
	a := &service.Actor{ID: 1, Role: model.RoleUser}

	rec := doJSON(h.Create, http.MethodPost, "/v1/bookings", `{"ticket_id":10,"quantity":0}`, a)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(h.Create, http.MethodPost, "/v1/bookings", `{"ticket_id":99,"quantity":1}`, a)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(h.Create, http.MethodPost, "/v1/bookings", `{"ticket_id":10,"quantity":1}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDecideEndpoint(t *testing.T) {
	h, bookings := newBookingHandlerFixture()
	buyer := &service.Actor{ID: 1, Role: model.RoleUser}
	vendor := &service.Actor{ID: 2, Role: model.RoleVendor}

	rec := doJSON(h.Create, http.MethodPost, "/v1/bookings", `{"ticket_id":10,"quantity":1}`, buyer)
	require.Equal(t, http.StatusCreated, rec.Code)

	// A non-owning caller is rejected.
	rec = doJSON(h.Decide, http.MethodPatch, "/v1/bookings/1/status", `{"status":"approved"}`, buyer, "id", "1")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(h.Decide, http.MethodPatch, "/v1/bookings/1/status", `{"status":"approved"}`, vendor, "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)

	b, err := bookings.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.BookingApproved, b.Status)

	// Deciding an already decided booking conflicts.
	rec = doJSON(h.Decide, http.MethodPatch, "/v1/bookings/1/status", `{"status":"rejected"}`, vendor, "id", "1")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelEndpoint(t *testing.T) {
	h, bookings := newBookingHandlerFixture()
	buyer := &service.Actor{ID: 1, Role: model.RoleUser}

	rec := doJSON(h.Create, http.MethodPost, "/v1/bookings", `{"ticket_id":10,"quantity":1}`, buyer)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Paid bookings cannot be cancelled by their owner.
	bookings.byID[1].Status = model.BookingPaid
	rec = doJSON(h.Cancel, http.MethodDelete, "/v1/bookings/1", "", buyer, "id", "1")
	require.Equal(t, http.StatusConflict, rec.Code)

	bookings.byID[1].Status = model.BookingPending
	rec = doJSON(h.Cancel, http.MethodDelete, "/v1/bookings/1", "", buyer, "id", "1")
	require.Equal(t, http.StatusNoContent, rec.Code)
}
