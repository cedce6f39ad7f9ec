package model

import "time"

// BookingStatus is the lifecycle state of a booking.  The only legal
// transitions are pending -> approved, pending -> rejected and
// approved -> paid.  Rejected and paid are terminal; cancellation is
// a delete operation, not a status transition.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
	BookingPaid     BookingStatus = "paid"
)

// Booking records a user's reservation against a ticket's inventory.
// It owns its denormalized snapshot fields: ticket title and user
// name/email are captured at creation time so later ticket or
// profile edits never retroactively alter booking records.
// TotalPriceCents is computed as quantity times the ticket's unit
// price at creation and is frozen thereafter.
//
// Fields:
//  ID              – primary key identifier.
//  RefCode         – human-readable unique reference (UR-XXXXXX),
//                    distinct from the storage id.
//  UserID          – user who created the booking.
//  VendorID        – owning vendor, copied from the ticket.
//  TicketID        – ticket the booking is made against.
//  UserName        – user display name snapshot.
//  UserEmail       – user email snapshot.
//  TicketTitle     – ticket title snapshot.
//  Quantity        – number of units booked.
//  TotalPriceCents – frozen total price in cents.
//  Status          – lifecycle state (pending, approved, rejected, paid).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64        `json:"id"`
	RefCode         string        `json:"booking_ref"`
	UserID          uint64        `json:"user_id"`
	VendorID        uint64        `json:"vendor_id"`
	TicketID        uint64        `json:"ticket_id"`
	UserName        string        `json:"user_name"`
	UserEmail       string        `json:"user_email"`
	TicketTitle     string        `json:"ticket_title"`
	Quantity        uint32        `json:"quantity"`
	TotalPriceCents int64         `json:"total_price_cents"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
