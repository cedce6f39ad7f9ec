package model

import "time"

// TransactionStatus is the terminal outcome recorded for a payment
// attempt.
type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
	TransactionPending TransactionStatus = "pending"
)

// PaymentMethod enumerates the payment instruments accepted by the
// marketplace.  Stripe covers card payments through the gateway;
// Manual covers the fallback flow that bypasses the gateway.
type PaymentMethod string

const (
	MethodBkash      PaymentMethod = "bKash"
	MethodNagad      PaymentMethod = "Nagad"
	MethodVisa       PaymentMethod = "Visa"
	MethodMastercard PaymentMethod = "Mastercard"
	MethodStripe     PaymentMethod = "Stripe"
	MethodManual     PaymentMethod = "Manual"
)

// ValidPaymentMethod reports whether s is a known payment method.
func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case MethodBkash, MethodNagad, MethodVisa, MethodMastercard, MethodStripe, MethodManual:
		return true
	}
	return false
}

// Transaction is an immutable record of a completed money movement.
// Exactly one transaction exists per successfully captured payment;
// the external provider reference is unique across all rows and acts
// as the idempotency key for ledger appends.  Rows are never mutated
// after creation.  The ledger, not booking state, is the source of
// truth for completed payments.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who paid.
//  BookingID   – booking the payment settles; nil for direct
//                payments not tied to a booking.
//  BookingRef  – booking reference snapshot for display.
//  TicketTitle – ticket title snapshot for display.
//  AmountCents – captured amount in cents.
//  Method      – payment instrument used.
//  ProviderRef – unique external payment-provider reference id.
//  Status      – success, failed or pending.
//  CreatedAt   – creation timestamp.
type Transaction struct {
	ID          uint64            `json:"id"`
	UserID      uint64            `json:"user_id"`
	BookingID   *uint64           `json:"booking_id,omitempty"`
	BookingRef  string            `json:"booking_ref,omitempty"`
	TicketTitle string            `json:"ticket_title"`
	AmountCents int64             `json:"amount_cents"`
	Method      PaymentMethod     `json:"payment_method"`
	ProviderRef string            `json:"provider_ref"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TransactionStats aggregates a user's ledger for display: total
// row count, total captured amount and per-status counts.
type TransactionStats struct {
	Total       int64 `json:"total_transactions"`
	AmountCents int64 `json:"total_amount_cents"`
	Succeeded   int64 `json:"successful_transactions"`
	Failed      int64 `json:"failed_transactions"`
	Pending     int64 `json:"pending_transactions"`
}
