package service

import (
	"context"
	"time"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/repository"
)

// Actor is the authenticated caller a service operation runs on
// behalf of, resolved from the request token by the middleware.
type Actor struct {
	ID    uint64
	Name  string
	Email string
	Role  model.Role
	Fraud bool
}

// TicketReader is the slice of the ticket store the booking rules
// need.
type TicketReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
}

// BookingStore is the persistence surface for bookings.
type BookingStore interface {
	Insert(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error
	MarkPaid(ctx context.Context, bookingID uint64, txn *model.Transaction) error
	Delete(ctx context.Context, id uint64, guardNotPaid bool) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	ListByVendor(ctx context.Context, vendorID uint64) ([]model.Booking, error)
	ListPaidByVendor(ctx context.Context, vendorID uint64) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
}

// BookingService implements the booking lifecycle: creation against
// live inventory, the vendor decision step, cancellation, and reads
// scoped to the caller's role.  Payment capture lives in
// PaymentService.
type BookingService struct {
	tickets  TicketReader
	bookings BookingStore

	// refAttempts bounds the regenerate-and-retry loop on booking
	// reference collisions.
	refAttempts int

	now func() time.Time
}

// NewBookingService wires a BookingService.  refAttempts values
// below one fall back to ten.
func NewBookingService(tickets TicketReader, bookings BookingStore, refAttempts int) *BookingService {
	if refAttempts < 1 {
		refAttempts = 10
	}
	return &BookingService{
		tickets:     tickets,
		bookings:    bookings,
		refAttempts: refAttempts,
		now:         time.Now,
	}
}

// Create books quantity units of a ticket for the actor.  The ticket
// must be approved, publicly visible and not yet departed.  The total
// price is computed from the ticket's current unit price and frozen
// on the booking.  The reference code is regenerated on collision up
// to the attempt budget.
func (s *BookingService) Create(ctx context.Context, actor Actor, ticketID uint64, quantity uint32) (*model.Booking, error) {
	if quantity < 1 {
		return nil, ErrValidation
	}
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Verification != model.VerificationApproved || t.Hidden {
		return nil, ErrValidation
	}
	if !t.DepartureAt.After(s.now().UTC()) {
		return nil, ErrValidation
	}
	// Inventory only moves at payment capture, but booking more than
	// the remaining quantity would be unpayable from the start.
	if quantity > t.Quantity {
		return nil, repository.ErrInsufficientQuantity
	}

	b := &model.Booking{
		UserID:          actor.ID,
		VendorID:        t.VendorID,
		TicketID:        t.ID,
		UserName:        actor.Name,
		UserEmail:       actor.Email,
		TicketTitle:     t.Title,
		Quantity:        quantity,
		TotalPriceCents: t.PriceCents * int64(quantity),
	}
	for attempt := 0; attempt < s.refAttempts; attempt++ {
		code, err := GenerateRefCode()
		if err != nil {
			return nil, err
		}
		b.RefCode = code
		err = s.bookings.Insert(ctx, b)
		if err == nil {
			return b, nil
		}
		if err != repository.ErrDuplicateReference {
			return nil, err
		}
	}
	return nil, ErrRefCodeExhausted
}

// Decide records the vendor's decision on a pending booking: approve
// or reject.  Only the vendor the booking targets may decide, admins
// included; and only pending bookings are decidable, anything else
// surfaces ErrInvalidTransition from the conditional update.
func (s *BookingService) Decide(ctx context.Context, actor Actor, bookingID uint64, to model.BookingStatus) (*model.Booking, error) {
	if to != model.BookingApproved && to != model.BookingRejected {
		return nil, ErrValidation
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.VendorID != actor.ID {
		return nil, repository.ErrForbidden
	}
	if err := s.bookings.UpdateStatus(ctx, bookingID, model.BookingPending, to); err != nil {
		return nil, err
	}
	b.Status = to
	return b, nil
}

// Cancel deletes a booking.  The owning user may cancel any booking
// that is not paid; admins may remove any booking.  Cancellation
// never restores ticket inventory: quantity only moves on payment
// capture, so there is nothing to give back.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, bookingID uint64) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if actor.Role == model.RoleAdmin {
		return s.bookings.Delete(ctx, bookingID, false)
	}
	if b.UserID != actor.ID {
		return repository.ErrForbidden
	}
	return s.bookings.Delete(ctx, bookingID, true)
}

// Get returns a booking visible to the actor: its creator, the
// vendor it targets, or an admin.
func (s *BookingService) Get(ctx context.Context, actor Actor, bookingID uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin && b.UserID != actor.ID && b.VendorID != actor.ID {
		return nil, repository.ErrForbidden
	}
	return b, nil
}

// ListForUser returns the actor's own bookings.
func (s *BookingService) ListForUser(ctx context.Context, actor Actor) ([]model.Booking, error) {
	return s.bookings.ListByUser(ctx, actor.ID)
}

// ListForVendor returns the booking requests against the actor's
// tickets.
func (s *BookingService) ListForVendor(ctx context.Context, actor Actor) ([]model.Booking, error) {
	return s.bookings.ListByVendor(ctx, actor.ID)
}

// ListAll returns every booking, for admin screens.
func (s *BookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
	return s.bookings.ListAll(ctx)
}
