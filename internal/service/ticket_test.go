package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/repository"
)

// fakeTicketStore is an in-memory TicketStore.
type fakeTicketStore struct {
	mu   sync.Mutex
	seq  uint64
	byID map[uint64]*model.Ticket
}

func newFakeTicketStore(ts ...*model.Ticket) *fakeTicketStore {
	f := &fakeTicketStore{byID: map[uint64]*model.Ticket{}}
	for _, t := range ts {
		f.byID[t.ID] = t
		if t.ID > f.seq {
			f.seq = t.ID
		}
	}
	return f
}

func (f *fakeTicketStore) Create(ctx context.Context, t *model.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.ID = f.seq
	t.Verification = model.VerificationPending
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTicketStore) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTicketStore) Update(ctx context.Context, id, vendorID uint64, t *model.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if cur.VendorID != vendorID {
		return repository.ErrForbidden
	}
	cur.Title, cur.From, cur.To = t.Title, t.From, t.To
	cur.Transport, cur.PriceCents, cur.Quantity = t.Transport, t.PriceCents, t.Quantity
	cur.DepartureAt, cur.Perks, cur.ImageURL = t.DepartureAt, t.Perks, t.ImageURL
	return nil
}

func (f *fakeTicketStore) Delete(ctx context.Context, id, vendorID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if cur.VendorID != vendorID {
		return repository.ErrForbidden
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTicketStore) ListApproved(ctx context.Context, fl repository.ApprovedFilter) ([]model.Ticket, int, error) {
	out := f.listWhere(func(t *model.Ticket) bool {
		return t.Verification == model.VerificationApproved && !t.Hidden
	})
	return out, len(out), nil
}

func (f *fakeTicketStore) ListAdvertised(ctx context.Context, limit int) ([]model.Ticket, error) {
	out := f.listWhere(func(t *model.Ticket) bool {
		return t.Advertised && t.Verification == model.VerificationApproved && !t.Hidden
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTicketStore) ListLatest(ctx context.Context, limit int) ([]model.Ticket, error) {
	out, _, err := f.ListApproved(ctx, repository.ApprovedFilter{})
	return out, err
}

func (f *fakeTicketStore) ListByVendor(ctx context.Context, vendorID uint64) ([]model.Ticket, error) {
	return f.listWhere(func(t *model.Ticket) bool { return t.VendorID == vendorID }), nil
}

func (f *fakeTicketStore) ListAll(ctx context.Context) ([]model.Ticket, error) {
	return f.listWhere(func(*model.Ticket) bool { return true }), nil
}

func (f *fakeTicketStore) UpdateVerification(ctx context.Context, id uint64, status model.VerificationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t.Verification = status
	return nil
}

func (f *fakeTicketStore) SetAdvertised(ctx context.Context, id uint64, advertised bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t.Advertised = advertised
	return nil
}

func (f *fakeTicketStore) CountAdvertised(ctx context.Context) (int, error) {
	return len(f.listWhere(func(t *model.Ticket) bool { return t.Advertised })), nil
}

func (f *fakeTicketStore) HideByVendor(ctx context.Context, vendorID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byID {
		if t.VendorID == vendorID {
			t.Hidden = true
		}
	}
	return nil
}

func (f *fakeTicketStore) listWhere(match func(*model.Ticket) bool) []model.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Ticket{}
	for _, t := range f.byID {
		if match(t) {
			out = append(out, *t)
		}
	}
	return out
}

func validInput() TicketInput {
	return TicketInput{
		Title:       "Dhaka to Sylhet",
		From:        "Dhaka",
		To:          "Sylhet",
		Transport:   "train",
		PriceCents:  30_000,
		Quantity:    40,
		DepartureAt: time.Now().UTC().Add(72 * time.Hour),
		Perks:       []string{"AC", "snacks"},
	}
}

func TestTicketCreate(t *testing.T) {
	store := newFakeTicketStore()
	svc := NewTicketService(store)

	tk, err := svc.Create(context.Background(), seller, validInput())
	require.NoError(t, err)
	require.Equal(t, model.VerificationPending, tk.Verification)
	require.Equal(t, seller.ID, tk.VendorID)
	require.Equal(t, seller.Email, tk.VendorEmail)
}

func TestTicketCreateValidation(t *testing.T) {
	store := newFakeTicketStore()
	svc := NewTicketService(store)

	cases := map[string]func(*TicketInput){
		"empty title":       func(in *TicketInput) { in.Title = "" },
		"empty route":       func(in *TicketInput) { in.From = "" },
		"unknown transport": func(in *TicketInput) { in.Transport = "rocket" },
		"zero price":        func(in *TicketInput) { in.PriceCents = 0 },
		"zero quantity":     func(in *TicketInput) { in.Quantity = 0 },
		"past departure":    func(in *TicketInput) { in.DepartureAt = time.Now().UTC().Add(-time.Hour) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), seller, in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTicketUpdate(t *testing.T) {
	tk := approvedTicket(1, seller.ID, 10_000, 5)
	store := newFakeTicketStore(tk)
	svc := NewTicketService(store)
	ctx := context.Background()

	in := validInput()
	in.PriceCents = 35_000
	got, err := svc.Update(ctx, seller, 1, in)
	require.NoError(t, err)
	require.Equal(t, int64(35_000), got.PriceCents)

	// A foreign vendor cannot edit the listing.
	_, err = svc.Update(ctx, Actor{ID: 77, Role: model.RoleVendor}, 1, in)
	require.ErrorIs(t, err, repository.ErrForbidden)

	// Rejected listings are final.
	require.NoError(t, store.UpdateVerification(ctx, 1, model.VerificationRejected))
	_, err = svc.Update(ctx, seller, 1, in)
	require.ErrorIs(t, err, ErrValidation)
}

func TestTicketGetVisibility(t *testing.T) {
	hidden := approvedTicket(1, seller.ID, 10_000, 5)
	hidden.Hidden = true
	pending := approvedTicket(2, seller.ID, 10_000, 5)
	pending.Verification = model.VerificationPending
	public := approvedTicket(3, seller.ID, 10_000, 5)

	store := newFakeTicketStore(hidden, pending, public)
	svc := NewTicketService(store)
	ctx := context.Background()

	// Anonymous and foreign callers see only the public ticket.
	for _, id := range []uint64{1, 2} {
		_, err := svc.Get(ctx, Actor{}, id)
		require.ErrorIs(t, err, repository.ErrTicketNotFound)
		_, err = svc.Get(ctx, buyer, id)
		require.ErrorIs(t, err, repository.ErrTicketNotFound)
	}
	_, err := svc.Get(ctx, Actor{}, 3)
	require.NoError(t, err)

	// The vendor and admins see everything.
	_, err = svc.Get(ctx, seller, 1)
	require.NoError(t, err)
	_, err = svc.Get(ctx, root, 2)
	require.NoError(t, err)
}

func TestSetAdvertisedCap(t *testing.T) {
	store := newFakeTicketStore()
	svc := NewTicketService(store)
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 7; i++ {
		tk := approvedTicket(0, seller.ID, 10_000, 5)
		tk.ID = 0
		require.NoError(t, store.Create(ctx, tk))
		require.NoError(t, store.UpdateVerification(ctx, tk.ID, model.VerificationApproved))
		ids = append(ids, tk.ID)
	}

	for _, id := range ids[:6] {
		require.NoError(t, svc.SetAdvertised(ctx, id, true))
	}
	// The seventh slot does not exist.
	require.ErrorIs(t, svc.SetAdvertised(ctx, ids[6], true), ErrValidation)

	// Re-advertising an already advertised ticket is a no-op, not a
	// slot claim.
	require.NoError(t, svc.SetAdvertised(ctx, ids[0], true))

	// Freeing a slot makes room again.
	require.NoError(t, svc.SetAdvertised(ctx, ids[0], false))
	require.NoError(t, svc.SetAdvertised(ctx, ids[6], true))
}

func TestSetAdvertisedRequiresApproval(t *testing.T) {
	tk := approvedTicket(1, seller.ID, 10_000, 5)
	tk.Verification = model.VerificationPending
	store := newFakeTicketStore(tk)
	svc := NewTicketService(store)

	require.ErrorIs(t, svc.SetAdvertised(context.Background(), 1, true), ErrValidation)
}

func TestModerate(t *testing.T) {
	tk := approvedTicket(1, seller.ID, 10_000, 5)
	tk.Verification = model.VerificationPending
	store := newFakeTicketStore(tk)
	svc := NewTicketService(store)
	ctx := context.Background()

	require.ErrorIs(t, svc.Moderate(ctx, 1, "published"), ErrValidation)
	require.NoError(t, svc.Moderate(ctx, 1, model.VerificationApproved))

	got, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.VerificationApproved, got.Verification)
}
