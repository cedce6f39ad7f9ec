// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to operate on a resource owned by someone else, while
// ErrDuplicateReference signals that a payment confirmation has
// already been recorded and must not produce a second ledger entry.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own or lack the role for. Handlers
// should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is returned when a booking status change
// violates the state machine (e.g. paying a booking that was never
// approved, or approving a booking twice). Handlers should
// translate this into an HTTP 409 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInsufficientQuantity is returned when a ticket does not have
// enough remaining units to satisfy a booking or a sale commit.
// The conditional decrement guarantees quantity never goes
// negative even under concurrent payment confirmations.
var ErrInsufficientQuantity = errors.New("insufficient ticket quantity")

// ErrDuplicateReference is returned when an insert collides with a
// store-level uniqueness constraint: a booking reference code that
// is already taken, or a payment provider reference that has
// already been recorded in the transaction ledger.
var ErrDuplicateReference = errors.New("duplicate reference")

// ErrTicketNotFound is returned when the referenced ticket does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrBookingNotFound is returned when the referenced booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrTransactionNotFound is returned when the referenced transaction does not exist.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrUserNotFound is returned when the referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")
