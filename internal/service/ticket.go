package service

import (
	"context"
	"time"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/repository"
)

// maxAdvertised caps the homepage carousel.
const maxAdvertised = 6

// TicketStore is the persistence surface for ticket listings.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	Update(ctx context.Context, id, vendorID uint64, t *model.Ticket) error
	Delete(ctx context.Context, id, vendorID uint64) error
	ListApproved(ctx context.Context, f repository.ApprovedFilter) ([]model.Ticket, int, error)
	ListAdvertised(ctx context.Context, limit int) ([]model.Ticket, error)
	ListLatest(ctx context.Context, limit int) ([]model.Ticket, error)
	ListByVendor(ctx context.Context, vendorID uint64) ([]model.Ticket, error)
	ListAll(ctx context.Context) ([]model.Ticket, error)
	UpdateVerification(ctx context.Context, id uint64, status model.VerificationStatus) error
	SetAdvertised(ctx context.Context, id uint64, advertised bool) error
	CountAdvertised(ctx context.Context) (int, error)
}

// TicketInput carries the vendor-editable listing fields.
type TicketInput struct {
	Title       string
	From        string
	To          string
	Transport   string
	PriceCents  int64
	Quantity    uint32
	DepartureAt time.Time
	Perks       []string
	ImageURL    string
}

// TicketService implements listing rules: vendor CRUD over their own
// tickets, public browse queries, and the admin moderation and
// advertising controls.
type TicketService struct {
	tickets TicketStore

	now func() time.Time
}

// NewTicketService wires a TicketService.
func NewTicketService(tickets TicketStore) *TicketService {
	return &TicketService{tickets: tickets, now: time.Now}
}

func validateTicketInput(in TicketInput, now time.Time) error {
	if in.Title == "" || in.From == "" || in.To == "" {
		return ErrValidation
	}
	if !model.ValidTransportType(in.Transport) {
		return ErrValidation
	}
	if in.PriceCents <= 0 || in.Quantity < 1 {
		return ErrValidation
	}
	if !in.DepartureAt.After(now) {
		return ErrValidation
	}
	return nil
}

// Create lists a new ticket for the vendor.  New listings start in
// pending verification and stay out of public listings until an
// admin approves them.
func (s *TicketService) Create(ctx context.Context, actor Actor, in TicketInput) (*model.Ticket, error) {
	if err := validateTicketInput(in, s.now().UTC()); err != nil {
		return nil, err
	}
	t := &model.Ticket{
		Title:       in.Title,
		From:        in.From,
		To:          in.To,
		Transport:   model.TransportType(in.Transport),
		PriceCents:  in.PriceCents,
		Quantity:    in.Quantity,
		DepartureAt: in.DepartureAt.UTC(),
		Perks:       in.Perks,
		ImageURL:    in.ImageURL,
		VendorID:    actor.ID,
		VendorName:  actor.Name,
		VendorEmail: actor.Email,
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update overwrites the listing fields of the actor's own ticket.
// Rejected listings are final and cannot be edited back into review.
func (s *TicketService) Update(ctx context.Context, actor Actor, id uint64, in TicketInput) (*model.Ticket, error) {
	if err := validateTicketInput(in, s.now().UTC()); err != nil {
		return nil, err
	}
	cur, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.VendorID != actor.ID {
		return nil, repository.ErrForbidden
	}
	if cur.Verification == model.VerificationRejected {
		return nil, ErrValidation
	}
	t := &model.Ticket{
		Title:       in.Title,
		From:        in.From,
		To:          in.To,
		Transport:   model.TransportType(in.Transport),
		PriceCents:  in.PriceCents,
		Quantity:    in.Quantity,
		DepartureAt: in.DepartureAt.UTC(),
		Perks:       in.Perks,
		ImageURL:    in.ImageURL,
	}
	if err := s.tickets.Update(ctx, id, actor.ID, t); err != nil {
		return nil, err
	}
	return s.tickets.GetByID(ctx, id)
}

// Delete removes the actor's own ticket.
func (s *TicketService) Delete(ctx context.Context, actor Actor, id uint64) error {
	return s.tickets.Delete(ctx, id, actor.ID)
}

// Get returns a single ticket.  Hidden or unapproved tickets are
// visible only to their vendor and admins.
func (s *TicketService) Get(ctx context.Context, actor Actor, id uint64) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := t.Verification == model.VerificationApproved && !t.Hidden
	if !public && actor.Role != model.RoleAdmin && t.VendorID != actor.ID {
		return nil, repository.ErrTicketNotFound
	}
	return t, nil
}

// Browse returns the public approved-ticket listing with the filter
// applied, plus the total row count for pagination.
func (s *TicketService) Browse(ctx context.Context, f repository.ApprovedFilter) ([]model.Ticket, int, error) {
	return s.tickets.ListApproved(ctx, f)
}

// Advertised returns the homepage carousel tickets.
func (s *TicketService) Advertised(ctx context.Context) ([]model.Ticket, error) {
	return s.tickets.ListAdvertised(ctx, maxAdvertised)
}

// Latest returns the newest approved tickets.
func (s *TicketService) Latest(ctx context.Context, limit int) ([]model.Ticket, error) {
	if limit <= 0 || limit > 50 {
		limit = 8
	}
	return s.tickets.ListLatest(ctx, limit)
}

// ListForVendor returns all of the actor's own tickets, every
// moderation state included.
func (s *TicketService) ListForVendor(ctx context.Context, actor Actor) ([]model.Ticket, error) {
	return s.tickets.ListByVendor(ctx, actor.ID)
}

// ListAll returns every ticket, for admin moderation screens.
func (s *TicketService) ListAll(ctx context.Context) ([]model.Ticket, error) {
	return s.tickets.ListAll(ctx)
}

// Moderate sets a ticket's verification status to approved or
// rejected.
func (s *TicketService) Moderate(ctx context.Context, id uint64, status model.VerificationStatus) error {
	if status != model.VerificationApproved && status != model.VerificationRejected {
		return ErrValidation
	}
	return s.tickets.UpdateVerification(ctx, id, status)
}

// SetAdvertised toggles the advertised flag.  Only approved tickets
// can be advertised, and at most six at a time.
func (s *TicketService) SetAdvertised(ctx context.Context, id uint64, advertised bool) error {
	if advertised {
		t, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t.Verification != model.VerificationApproved {
			return ErrValidation
		}
		if t.Advertised {
			return nil
		}
		n, err := s.tickets.CountAdvertised(ctx)
		if err != nil {
			return err
		}
		if n >= maxAdvertised {
			return ErrValidation
		}
	}
	return s.tickets.SetAdvertised(ctx, id, advertised)
}
