package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/payment"
	"github.com/ticketbari/ticketbari-api/internal/queue"
	"github.com/ticketbari/ticketbari-api/internal/repository"
)

// fakeProvider serves canned verifications by reference and records
// the last intent it minted.
type fakeProvider struct {
	intents       int
	lastAmount    int64
	lastMetadata  map[string]string
	verifications map[string]*payment.Verification
}

func (f *fakeProvider) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	f.intents++
	f.lastAmount = amountCents
	f.lastMetadata = metadata
	return &payment.Intent{
		Ref:          "pi_test",
		ClientSecret: "pi_test_secret",
		AmountCents:  amountCents,
		Currency:     currency,
	}, nil
}

// succeededFor builds the verification the gateway would report for
// an intent minted against the given booking.
func succeededFor(b *model.Booking, conv Converter) *payment.Verification {
	return &payment.Verification{
		Status:      payment.StatusSucceeded,
		AmountCents: conv.ToUSDCents(b.TotalPriceCents),
		Metadata: map[string]string{
			"booking_id":            strconv.FormatUint(b.ID, 10),
			"booking_ref":           b.RefCode,
			"user_id":               strconv.FormatUint(b.UserID, 10),
			"original_amount_cents": strconv.FormatInt(b.TotalPriceCents, 10),
		},
	}
}

func (f *fakeProvider) Verify(ctx context.Context, ref string) (*payment.Verification, error) {
	if v, ok := f.verifications[ref]; ok {
		return v, nil
	}
	return &payment.Verification{Status: payment.StatusPending}, nil
}

// fakeTxns is an in-memory TransactionStore for direct payments.
type fakeTxns struct {
	mu   sync.Mutex
	refs map[string]bool
	rows []model.Transaction
}

func newFakeTxns() *fakeTxns {
	return &fakeTxns{refs: map[string]bool{}}
}

func (f *fakeTxns) Append(ctx context.Context, t *model.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refs[t.ProviderRef] {
		return repository.ErrDuplicateReference
	}
	f.refs[t.ProviderRef] = true
	t.ID = uint64(len(f.rows) + 1)
	f.rows = append(f.rows, *t)
	return nil
}

func (f *fakeTxns) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id && r.UserID == userID {
			cp := r
			return &cp, nil
		}
	}
	return nil, repository.ErrTransactionNotFound
}

func (f *fakeTxns) ListByUser(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Transaction{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTxns) ListByVendor(ctx context.Context, vendorID uint64) ([]model.Transaction, error) {
	return nil, nil
}

func (f *fakeTxns) Stats(ctx context.Context, userID uint64) (*model.TransactionStats, error) {
	rows, _ := f.ListByUser(ctx, userID)
	s := &model.TransactionStats{Total: int64(len(rows))}
	for _, r := range rows {
		s.AmountCents += r.AmountCents
		switch r.Status {
		case model.TransactionSuccess:
			s.Succeeded++
		case model.TransactionFailed:
			s.Failed++
		default:
			s.Pending++
		}
	}
	return s, nil
}

// recordingPublisher captures published events and optionally fails.
type recordingPublisher struct {
	events []queue.BookingPaidEvent
	err    error
}

func (p *recordingPublisher) PublishBookingPaid(ctx context.Context, ev queue.BookingPaidEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type paymentFixture struct {
	svc      *PaymentService
	bookings *fakeBookings
	tickets  *fakeTickets
	provider *fakeProvider
	txns     *fakeTxns
	pub      *recordingPublisher
	booking  *model.Booking
}

func newPaymentFixture(t *testing.T, status model.BookingStatus) *paymentFixture {
	t.Helper()
	tk := approvedTicket(10, seller.ID, 55_000, 5)
	tickets := newFakeTickets(tk)
	bookings := newFakeBookings(tickets)
	bookingSvc := NewBookingService(tickets, bookings, 10)

	b, err := bookingSvc.Create(context.Background(), buyer, 10, 2)
	require.NoError(t, err)
	if status != model.BookingPending {
		require.NoError(t, bookings.UpdateStatus(context.Background(), b.ID, model.BookingPending, status))
		b.Status = status
	}

	provider := &fakeProvider{verifications: map[string]*payment.Verification{}}
	txns := newFakeTxns()
	pub := &recordingPublisher{}
	svc := NewPaymentService(bookings, txns, tickets, provider, Converter{BDTPerUSD: 110}, pub)
	return &paymentFixture{
		svc: svc, bookings: bookings, tickets: tickets,
		provider: provider, txns: txns, pub: pub, booking: b,
	}
}

func TestConverterToUSDCents(t *testing.T) {
	c := Converter{BDTPerUSD: 110}
	require.Equal(t, int64(0), c.ToUSDCents(0))
	require.Equal(t, int64(1), c.ToUSDCents(50))   // floors at one cent
	require.Equal(t, int64(1000), c.ToUSDCents(110_000))
	require.Equal(t, int64(100), c.ToUSDCents(11_000))
	require.Equal(t, int64(1), c.ToUSDCents(110))
}

func TestCreateIntent(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)

	intent, err := f.svc.CreateIntent(context.Background(), buyer, f.booking.ID)
	require.NoError(t, err)
	require.Equal(t, "usd", intent.Currency)
	// 110000 BDT cents at 110 BDT/USD -> 1000 USD cents.
	require.Equal(t, int64(1000), intent.AmountCents)
}

func TestCreateIntentRequiresApprovedBooking(t *testing.T) {
	f := newPaymentFixture(t, model.BookingPending)
	_, err := f.svc.CreateIntent(context.Background(), buyer, f.booking.ID)
	require.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestCreateIntentRejectsDepartedTicket(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	f.tickets.byID[10].DepartureAt = time.Now().UTC().Add(-time.Hour)

	_, err := f.svc.CreateIntent(context.Background(), buyer, f.booking.ID)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateIntentRequiresOwnership(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	_, err := f.svc.CreateIntent(context.Background(), seller, f.booking.ID)
	require.ErrorIs(t, err, repository.ErrForbidden)
}

func TestConfirmCapturesPayment(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	f.provider.verifications["pi_ok"] = succeededFor(f.booking, f.svc.conv)

	txn, err := f.svc.Confirm(context.Background(), buyer, f.booking.ID, "pi_ok", model.MethodStripe)
	require.NoError(t, err)
	require.Equal(t, model.TransactionSuccess, txn.Status)
	require.Equal(t, f.booking.TotalPriceCents, txn.AmountCents)

	b, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.BookingPaid, b.Status)

	// Inventory moved at capture time.
	tk, err := f.tickets.GetByID(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, uint32(3), tk.Quantity)

	require.Len(t, f.pub.events, 1)
	require.Equal(t, f.booking.RefCode, f.pub.events[0].BookingRef)
}

func TestConfirmRejectsUnverifiedPayment(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	f.provider.verifications["pi_pending"] = &payment.Verification{Status: payment.StatusPending}
	f.provider.verifications["pi_failed"] = &payment.Verification{Status: payment.StatusFailed}

	for _, ref := range []string{"pi_pending", "pi_failed", "pi_unknown"} {
		_, err := f.svc.Confirm(context.Background(), buyer, f.booking.ID, ref, model.MethodStripe)
		require.ErrorIs(t, err, ErrPaymentNotVerified, ref)
	}

	// Nothing changed.
	b, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.BookingApproved, b.Status)
	require.Empty(t, f.bookings.ledger)
	require.Empty(t, f.pub.events)
}

func TestConfirmIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	f.provider.verifications["pi_ok"] = succeededFor(f.booking, f.svc.conv)

	_, err := f.svc.Confirm(context.Background(), buyer, f.booking.ID, "pi_ok", model.MethodStripe)
	require.NoError(t, err)

	// A replayed confirmation conflicts instead of double-charging.
	_, err = f.svc.Confirm(context.Background(), buyer, f.booking.ID, "pi_ok", model.MethodStripe)
	require.Error(t, err)
	require.True(t, errors.Is(err, repository.ErrInvalidTransition) || errors.Is(err, repository.ErrDuplicateReference))

	require.Len(t, f.bookings.ledger, 1)
	tk, err := f.tickets.GetByID(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, uint32(3), tk.Quantity)
}

func TestConfirmRejectsMismatchedIntent(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	ctx := context.Background()

	other, err := NewBookingService(f.tickets, f.bookings, 10).Create(ctx, buyer, 10, 1)
	require.NoError(t, err)
	require.NoError(t, f.bookings.UpdateStatus(ctx, other.ID, model.BookingPending, model.BookingApproved))

	// A success minted for one booking cannot settle another.
	f.provider.verifications["pi_other"] = succeededFor(other, f.svc.conv)
	_, err = f.svc.Confirm(ctx, buyer, f.booking.ID, "pi_other", model.MethodStripe)
	require.ErrorIs(t, err, ErrPaymentNotVerified)

	// Nor can a success for the right booking at the wrong amount.
	cheap := succeededFor(f.booking, f.svc.conv)
	cheap.AmountCents = 9
	f.provider.verifications["pi_cheap"] = cheap
	_, err = f.svc.Confirm(ctx, buyer, f.booking.ID, "pi_cheap", model.MethodStripe)
	require.ErrorIs(t, err, ErrPaymentNotVerified)

	b, err := f.bookings.GetByID(ctx, f.booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.BookingApproved, b.Status)
	require.Empty(t, f.bookings.ledger)
}

func TestConfirmValidatesInput(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	_, err := f.svc.Confirm(context.Background(), buyer, f.booking.ID, "", model.MethodStripe)
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Confirm(context.Background(), buyer, f.booking.ID, "pi_x", "PayPal")
	require.ErrorIs(t, err, ErrValidation)
}

func TestManualPayment(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)

	txn, err := f.svc.ManualPayment(context.Background(), buyer, f.booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.MethodManual, txn.Method)
	require.Regexp(t, `^DUMMY-`, txn.ProviderRef)

	b, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.BookingPaid, b.Status)
}

func TestManualPaymentRequiresApproval(t *testing.T) {
	f := newPaymentFixture(t, model.BookingPending)
	_, err := f.svc.ManualPayment(context.Background(), buyer, f.booking.ID)
	require.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestPublishFailureDoesNotFailPayment(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	f.pub.err = errors.New("broker down")
	f.provider.verifications["pi_ok"] = succeededFor(f.booking, f.svc.conv)

	_, err := f.svc.Confirm(context.Background(), buyer, f.booking.ID, "pi_ok", model.MethodStripe)
	require.NoError(t, err)
}

func TestCreateDirectIntent(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)

	intent, err := f.svc.CreateDirectIntent(context.Background(), buyer, 11_000)
	require.NoError(t, err)
	// 11000 BDT cents at 110 BDT/USD -> 100 USD cents.
	require.Equal(t, int64(100), intent.AmountCents)
	require.Equal(t, "true", f.provider.lastMetadata["direct_payment"])
	require.Equal(t, "11000", f.provider.lastMetadata["original_amount_cents"])

	_, err = f.svc.CreateDirectIntent(context.Background(), buyer, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestRecordDirect(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	f.provider.verifications["pi_direct"] = &payment.Verification{
		Status:      payment.StatusSucceeded,
		AmountCents: 4200,
		Metadata:    map[string]string{"original_amount_cents": "462000"},
	}

	txn, err := f.svc.RecordDirect(context.Background(), buyer, "pi_direct", "Gift voucher", model.MethodStripe)
	require.NoError(t, err)
	require.Equal(t, model.TransactionSuccess, txn.Status)
	// The ledger row holds the original BDT amount, not the converted
	// USD cents the gateway charged.
	require.Equal(t, int64(462_000), txn.AmountCents)
	require.Nil(t, txn.BookingID)

	// Pending and failed outcomes are recorded as such.
	f.provider.verifications["pi_bad"] = &payment.Verification{Status: payment.StatusFailed}
	txn, err = f.svc.RecordDirect(context.Background(), buyer, "pi_bad", "Gift voucher", model.MethodStripe)
	require.NoError(t, err)
	require.Equal(t, model.TransactionFailed, txn.Status)

	txn, err = f.svc.RecordDirect(context.Background(), buyer, "pi_mystery", "Gift voucher", model.MethodStripe)
	require.NoError(t, err)
	require.Equal(t, model.TransactionPending, txn.Status)

	// Replaying a reference conflicts.
	_, err = f.svc.RecordDirect(context.Background(), buyer, "pi_direct", "Gift voucher", model.MethodStripe)
	require.ErrorIs(t, err, repository.ErrDuplicateReference)
}

func TestVendorRevenue(t *testing.T) {
	f := newPaymentFixture(t, model.BookingApproved)
	f.provider.verifications["pi_ok"] = succeededFor(f.booking, f.svc.conv)
	_, err := f.svc.Confirm(context.Background(), buyer, f.booking.ID, "pi_ok", model.MethodStripe)
	require.NoError(t, err)

	report, err := f.svc.VendorRevenue(context.Background(), seller)
	require.NoError(t, err)
	require.Equal(t, 1, report.PaidBookings)
	require.Equal(t, uint64(2), report.UnitsSold)
	require.Equal(t, int64(110_000), report.RevenueCents)
	require.Equal(t, int64(1), report.TicketsListed)

	// Other vendors see nothing.
	other, err := f.svc.VendorRevenue(context.Background(), Actor{ID: 77, Role: model.RoleVendor})
	require.NoError(t, err)
	require.Zero(t, other.PaidBookings)
	require.Zero(t, other.TicketsListed)
}
