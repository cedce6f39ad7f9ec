package service

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/payment"
	"github.com/ticketbari/ticketbari-api/internal/queue"
	"github.com/ticketbari/ticketbari-api/internal/repository"
)

// Converter turns ledger amounts held in BDT cents into the USD
// cents the gateway charges in, at a pinned rate.
type Converter struct {
	// BDTPerUSD is the pinned exchange rate.  It must be positive.
	BDTPerUSD int64
}

// ToUSDCents converts an amount in BDT cents to USD cents, rounding
// half up and never below one cent for positive inputs.
func (c Converter) ToUSDCents(bdtCents int64) int64 {
	rate := c.BDTPerUSD
	if rate <= 0 {
		rate = 110
	}
	if bdtCents <= 0 {
		return 0
	}
	usd := (bdtCents + rate/2) / rate
	if usd < 1 {
		usd = 1
	}
	return usd
}

// PaymentTicketStore is the slice of the ticket store the payment
// rules need: departure checks and the vendor listing count for the
// revenue report.
type PaymentTicketStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	CountByVendor(ctx context.Context, vendorID uint64) (int64, error)
}

// TransactionStore is the persistence surface for the payment ledger.
type TransactionStore interface {
	Append(ctx context.Context, t *model.Transaction) error
	GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Transaction, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Transaction, error)
	ListByVendor(ctx context.Context, vendorID uint64) ([]model.Transaction, error)
	Stats(ctx context.Context, userID uint64) (*model.TransactionStats, error)
}

// Publisher emits domain events after a successful capture.  Event
// delivery is best effort: failures are logged and never fail the
// payment.
type Publisher interface {
	PublishBookingPaid(ctx context.Context, ev queue.BookingPaidEvent) error
}

// QueuePublisher is the broker-backed Publisher.
type QueuePublisher struct{}

// PublishBookingPaid forwards the event to the booking.paid queue.
func (QueuePublisher) PublishBookingPaid(ctx context.Context, ev queue.BookingPaidEvent) error {
	return queue.PublishBookingPaid(ctx, ev)
}

// PaymentService owns payment capture.  Confirmation never trusts
// the client: the payment is re-verified against the provider, and
// only a provider-reported success flips the booking to paid.  The
// paid flip, ledger append and inventory decrement run as one atomic
// MarkPaid unit in the booking store.
type PaymentService struct {
	bookings BookingStore
	txns     TransactionStore
	tickets  PaymentTicketStore
	provider payment.Provider
	conv     Converter
	pub      Publisher

	now func() time.Time
}

// NewPaymentService wires a PaymentService.  pub may be nil to
// disable event publishing.
func NewPaymentService(bookings BookingStore, txns TransactionStore, tickets PaymentTicketStore, provider payment.Provider, conv Converter, pub Publisher) *PaymentService {
	return &PaymentService{
		bookings: bookings,
		txns:     txns,
		tickets:  tickets,
		provider: provider,
		conv:     conv,
		pub:      pub,
		now:      time.Now,
	}
}

// CreateIntent registers a gateway payment for an approved booking
// owned by the actor.  The booking's frozen BDT total is converted
// to USD cents at the pinned rate before it reaches the gateway.
func (s *PaymentService) CreateIntent(ctx context.Context, actor Actor, bookingID uint64) (*payment.Intent, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID {
		return nil, repository.ErrForbidden
	}
	if b.Status != model.BookingApproved {
		return nil, repository.ErrInvalidTransition
	}
	t, err := s.tickets.GetByID(ctx, b.TicketID)
	if err != nil {
		return nil, err
	}
	if !t.DepartureAt.After(s.now().UTC()) {
		return nil, ErrValidation
	}
	amount := s.conv.ToUSDCents(b.TotalPriceCents)
	if amount <= 0 {
		return nil, ErrValidation
	}
	meta := map[string]string{
		"booking_id":            strconv.FormatUint(b.ID, 10),
		"booking_ref":           b.RefCode,
		"user_id":               strconv.FormatUint(b.UserID, 10),
		"original_amount_cents": strconv.FormatInt(b.TotalPriceCents, 10),
	}
	return s.provider.CreateIntent(ctx, amount, "usd", meta)
}

// CreateDirectIntent registers a gateway payment that is not tied to
// any booking.  The caller supplies the BDT amount; the intent is
// tagged as a direct payment so confirmation can tell the two flows
// apart, and carries the original BDT amount for the ledger.
func (s *PaymentService) CreateDirectIntent(ctx context.Context, actor Actor, amountCents int64) (*payment.Intent, error) {
	if amountCents <= 0 {
		return nil, ErrValidation
	}
	meta := map[string]string{
		"direct_payment":        "true",
		"user_id":               strconv.FormatUint(actor.ID, 10),
		"original_amount_cents": strconv.FormatInt(amountCents, 10),
	}
	return s.provider.CreateIntent(ctx, s.conv.ToUSDCents(amountCents), "usd", meta)
}

// Confirm finalizes a gateway payment for a booking.  The provider
// reference is verified server side; anything short of a reported
// success returns ErrPaymentNotVerified and leaves the booking
// untouched.  On success the ledger row, the approved -> paid flip
// and the inventory decrement commit together.
func (s *PaymentService) Confirm(ctx context.Context, actor Actor, bookingID uint64, providerRef string, method model.PaymentMethod) (*model.Transaction, error) {
	if providerRef == "" || !model.ValidPaymentMethod(string(method)) {
		return nil, ErrValidation
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID {
		return nil, repository.ErrForbidden
	}

	v, err := s.provider.Verify(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	if v.Status != payment.StatusSucceeded {
		return nil, ErrPaymentNotVerified
	}
	// The succeeded intent must be the one minted for this booking at
	// this booking's converted amount, or the reference could settle a
	// different (or more expensive) booking the same user owns.
	if v.Metadata["booking_id"] != strconv.FormatUint(b.ID, 10) {
		return nil, ErrPaymentNotVerified
	}
	if v.AmountCents != s.conv.ToUSDCents(b.TotalPriceCents) {
		return nil, ErrPaymentNotVerified
	}

	txn := &model.Transaction{
		UserID:      b.UserID,
		BookingID:   &b.ID,
		BookingRef:  b.RefCode,
		TicketTitle: b.TicketTitle,
		AmountCents: b.TotalPriceCents,
		Method:      method,
		ProviderRef: providerRef,
		Status:      model.TransactionSuccess,
	}
	if err := s.bookings.MarkPaid(ctx, b.ID, txn); err != nil {
		return nil, err
	}
	s.publishPaid(ctx, b, txn)
	return txn, nil
}

// ManualPayment settles an approved booking outside the gateway.  A
// synthetic provider reference is generated for the ledger row; the
// capture path is otherwise identical to Confirm.
func (s *PaymentService) ManualPayment(ctx context.Context, actor Actor, bookingID uint64) (*model.Transaction, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID {
		return nil, repository.ErrForbidden
	}
	if b.Status != model.BookingApproved {
		return nil, repository.ErrInvalidTransition
	}

	txn := &model.Transaction{
		UserID:      b.UserID,
		BookingID:   &b.ID,
		BookingRef:  b.RefCode,
		TicketTitle: b.TicketTitle,
		AmountCents: b.TotalPriceCents,
		Method:      model.MethodManual,
		ProviderRef: payment.ManualReference(),
		Status:      model.TransactionSuccess,
	}
	if err := s.bookings.MarkPaid(ctx, b.ID, txn); err != nil {
		return nil, err
	}
	s.publishPaid(ctx, b, txn)
	return txn, nil
}

// RecordDirect records a gateway payment that is not tied to a
// booking.  The provider outcome is verified server side and written
// to the ledger; no booking or inventory state changes.
func (s *PaymentService) RecordDirect(ctx context.Context, actor Actor, providerRef, ticketTitle string, method model.PaymentMethod) (*model.Transaction, error) {
	if providerRef == "" || !model.ValidPaymentMethod(string(method)) {
		return nil, ErrValidation
	}
	v, err := s.provider.Verify(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	// The ledger holds BDT cents; the gateway charged converted USD
	// cents.  The intent carries the original BDT amount in metadata,
	// so the row stays in the same currency as booking payments.
	amount := v.AmountCents
	if raw, ok := v.Metadata["original_amount_cents"]; ok {
		if n, perr := strconv.ParseInt(raw, 10, 64); perr == nil && n > 0 {
			amount = n
		}
	}
	txn := &model.Transaction{
		UserID:      actor.ID,
		TicketTitle: ticketTitle,
		AmountCents: amount,
		Method:      method,
		ProviderRef: providerRef,
	}
	switch v.Status {
	case payment.StatusSucceeded:
		txn.Status = model.TransactionSuccess
	case payment.StatusFailed:
		txn.Status = model.TransactionFailed
	default:
		txn.Status = model.TransactionPending
	}
	if err := s.txns.Append(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// RevenueReport summarizes a vendor's settled sales.
type RevenueReport struct {
	PaidBookings  int    `json:"paid_bookings"`
	UnitsSold     uint64 `json:"units_sold"`
	RevenueCents  int64  `json:"revenue_cents"`
	TicketsListed int64  `json:"tickets_listed"`
}

// VendorRevenue aggregates the actor's paid bookings into a revenue
// report.
func (s *PaymentService) VendorRevenue(ctx context.Context, actor Actor) (*RevenueReport, error) {
	paid, err := s.bookings.ListPaidByVendor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	listed, err := s.tickets.CountByVendor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	r := &RevenueReport{PaidBookings: len(paid), TicketsListed: listed}
	for _, b := range paid {
		r.UnitsSold += uint64(b.Quantity)
		r.RevenueCents += b.TotalPriceCents
	}
	return r, nil
}

func (s *PaymentService) publishPaid(ctx context.Context, b *model.Booking, txn *model.Transaction) {
	if s.pub == nil {
		return
	}
	ev := queue.BookingPaidEvent{
		BookingID:     b.ID,
		BookingRef:    b.RefCode,
		UserID:        b.UserID,
		VendorID:      b.VendorID,
		TicketID:      b.TicketID,
		TicketTitle:   b.TicketTitle,
		Quantity:      b.Quantity,
		AmountCents:   txn.AmountCents,
		PaymentMethod: string(txn.Method),
		ProviderRef:   txn.ProviderRef,
		PaidAt:        s.now().UTC().Format(time.RFC3339),
	}
	if err := s.pub.PublishBookingPaid(ctx, ev); err != nil {
		log.Printf("payment: publish booking.paid for %d failed: %v", b.ID, err)
	}
}
