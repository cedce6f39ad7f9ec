// Package service implements the marketplace business rules on top
// of the repository layer: the booking lifecycle, payment capture,
// listing moderation and account administration.  Services depend on
// small store interfaces so the rules can be exercised without a
// database.
package service

import "errors"

var (
	// ErrValidation is returned when request input fails a business
	// rule before any state is touched.
	ErrValidation = errors.New("validation failed")

	// ErrRefCodeExhausted is returned when a unique booking reference
	// could not be generated within the attempt budget.
	ErrRefCodeExhausted = errors.New("booking reference generation exhausted")

	// ErrPaymentNotVerified is returned when the payment provider did
	// not report the payment as succeeded.  Pending and failed
	// outcomes both map here; the booking is left untouched.
	ErrPaymentNotVerified = errors.New("payment not verified by provider")
)
