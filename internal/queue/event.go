// Package queue defines message payloads exchanged over the message broker
// plus the publisher and background consumer that move them.
package queue

// BookingPaidEvent is published when a booking payment is captured.
// It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type BookingPaidEvent struct {
	BookingID     uint64 `json:"booking_id"`
	BookingRef    string `json:"booking_ref"`
	UserID        uint64 `json:"user_id"`
	VendorID      uint64 `json:"vendor_id"`
	TicketID      uint64 `json:"ticket_id"`
	TicketTitle   string `json:"ticket_title"`
	Quantity      uint32 `json:"quantity"`
	AmountCents   int64  `json:"amount_cents"`
	PaymentMethod string `json:"payment_method"`
	ProviderRef   string `json:"provider_ref"`
	PaidAt        string `json:"paid_at"`
}
