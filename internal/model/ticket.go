package model

import "time"

// TransportType enumerates the kinds of transport a ticket can be
// sold for.
type TransportType string

const (
	TransportBus    TransportType = "bus"
	TransportTrain  TransportType = "train"
	TransportLaunch TransportType = "launch"
	TransportPlane  TransportType = "plane"
)

// ValidTransportType reports whether s is a known transport type.
func ValidTransportType(s string) bool {
	switch TransportType(s) {
	case TransportBus, TransportTrain, TransportLaunch, TransportPlane:
		return true
	}
	return false
}

// VerificationStatus is the admin moderation state of a ticket.
// Only approved tickets appear in public listings.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Ticket is a sellable unit of transport capacity listed by a
// vendor.  The ticket row is the sole owner of the live inventory
// count; Quantity is never negative and is decremented only by the
// conditional commit-sale update that runs when a booking is paid.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – display title of the listing.
//  From, To       – route endpoints.
//  Transport      – transport mode (bus, train, launch, plane).
//  PriceCents     – price per unit in cents.
//  Quantity       – units still available for sale (>= 0).
//  DepartureAt    – departure date and time in UTC.
//  Perks          – optional list of included perks.
//  ImageURL       – listing image.
//  VendorID       – owning vendor.
//  VendorName     – vendor display name snapshot.
//  VendorEmail    – vendor email snapshot.
//  Verification   – moderation state (pending, approved, rejected).
//  Advertised     – featured on the homepage (at most 6 at a time).
//  Hidden         – excluded from public listings, e.g. after the
//                   vendor is fraud-flagged.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Ticket struct {
	ID           uint64             `json:"id"`
	Title        string             `json:"title"`
	From         string             `json:"from"`
	To           string             `json:"to"`
	Transport    TransportType      `json:"transport_type"`
	PriceCents   int64              `json:"price_cents"`
	Quantity     uint32             `json:"quantity"`
	DepartureAt  time.Time          `json:"departure_at"`
	Perks        []string           `json:"perks"`
	ImageURL     string             `json:"image_url"`
	VendorID     uint64             `json:"vendor_id"`
	VendorName   string             `json:"vendor_name"`
	VendorEmail  string             `json:"vendor_email"`
	Verification VerificationStatus `json:"verification_status"`
	Advertised   bool               `json:"is_advertised"`
	Hidden       bool               `json:"is_hidden"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
