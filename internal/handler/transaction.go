package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/service"
)

// TransactionHandler exposes read-only ledger views.
type TransactionHandler struct {
	txns *service.TransactionService
}

// NewTransactionHandler wires a TransactionHandler.
func NewTransactionHandler(txns *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txns: txns}
}

// Get returns one of the caller's transactions.
func (h *TransactionHandler) Get(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	txn, err := h.txns.Get(c.Request().Context(), a, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, txn)
}

// Mine returns the caller's transactions, newest first.
func (h *TransactionHandler) Mine(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	txns, err := h.txns.ListForUser(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txns})
}

// Sales returns the transactions settling bookings against the
// calling vendor's tickets.
func (h *TransactionHandler) Sales(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	txns, err := h.txns.ListForVendor(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txns})
}

// Stats aggregates the caller's ledger.
func (h *TransactionHandler) Stats(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	stats, err := h.txns.Stats(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
