package service

import (
	"context"
	"strings"

	"github.com/ticketbari/ticketbari-api/internal/model"
)

// UserStore is the persistence surface for accounts.
type UserStore interface {
	Upsert(ctx context.Context, name, email, photoURL string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id uint64, role model.Role) error
	SetFraudFlag(ctx context.Context, id uint64) error
}

// TicketHider hides a vendor's listings when the account is
// fraud-flagged.
type TicketHider interface {
	HideByVendor(ctx context.Context, vendorID uint64) error
}

// UserService implements account upsert on login plus the admin
// controls: role changes and fraud flagging.
type UserService struct {
	users   UserStore
	tickets TicketHider
}

// NewUserService wires a UserService.
func NewUserService(users UserStore, tickets TicketHider) *UserService {
	return &UserService{users: users, tickets: tickets}
}

// Upsert records a federated login: first sight of the email creates
// the account with the user role, later logins refresh name and
// photo.
func (s *UserService) Upsert(ctx context.Context, name, email, photoURL string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || name == "" {
		return nil, ErrValidation
	}
	return s.users.Upsert(ctx, name, email, photoURL)
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListAll returns every user, for admin screens.
func (s *UserService) ListAll(ctx context.Context) ([]model.User, error) {
	return s.users.ListAll(ctx)
}

// SetRole changes a user's role.
func (s *UserService) SetRole(ctx context.Context, id uint64, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, ErrValidation
	}
	if err := s.users.UpdateRole(ctx, id, model.Role(role)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// FlagFraud marks an account fraudulent and hides every ticket the
// account has listed.  The flag blocks the account's write
// operations at the middleware layer.
func (s *UserService) FlagFraud(ctx context.Context, id uint64) (*model.User, error) {
	if err := s.users.SetFraudFlag(ctx, id); err != nil {
		return nil, err
	}
	if err := s.tickets.HideByVendor(ctx, id); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}
