package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/payment"
	"github.com/ticketbari/ticketbari-api/internal/service"
)

// PaymentHandler exposes payment capture: gateway intent creation and
// confirmation, the manual fallback, direct ledger records and the
// vendor revenue report.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler wires a PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createIntentRequest struct {
	BookingID   uint64 `json:"booking_id"`
	AmountCents int64  `json:"amount_cents"`
}

// CreateIntent registers a gateway payment.  With a booking id the
// intent is minted for that approved booking; without one the caller
// supplies a BDT amount and the intent is tagged as a direct payment.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	var req createIntentRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	var (
		intent *payment.Intent
		err    error
	)
	if req.BookingID != 0 {
		intent, err = h.payments.CreateIntent(c.Request().Context(), a, req.BookingID)
	} else {
		intent, err = h.payments.CreateDirectIntent(c.Request().Context(), a, req.AmountCents)
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"provider_ref":  intent.Ref,
		"client_secret": intent.ClientSecret,
		"amount_cents":  intent.AmountCents,
		"currency":      intent.Currency,
	})
}

type confirmRequest struct {
	BookingID   uint64 `json:"booking_id"`
	ProviderRef string `json:"provider_ref"`
	Method      string `json:"payment_method"`
}

// Confirm finalizes a gateway payment after server-side verification.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	txn, err := h.payments.Confirm(c.Request().Context(), a, req.BookingID, req.ProviderRef, model.PaymentMethod(req.Method))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, txn)
}

type manualRequest struct {
	BookingID uint64 `json:"booking_id"`
}

// Manual settles an approved booking outside the gateway.
func (h *PaymentHandler) Manual(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	var req manualRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	txn, err := h.payments.ManualPayment(c.Request().Context(), a, req.BookingID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, txn)
}

type directRequest struct {
	ProviderRef string `json:"provider_ref"`
	Method      string `json:"payment_method"`
	TicketTitle string `json:"ticket_title"`
}

// Direct records a gateway payment not tied to a booking.
func (h *PaymentHandler) Direct(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	var req directRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	txn, err := h.payments.RecordDirect(c.Request().Context(), a, req.ProviderRef, req.TicketTitle, model.PaymentMethod(req.Method))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, txn)
}

// Revenue returns the calling vendor's settled-sales report.
func (h *PaymentHandler) Revenue(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	report, err := h.payments.VendorRevenue(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
