package repository

import (
	"context"
	"database/sql"

	"github.com/ticketbari/ticketbari-api/internal/model"
)

// BookingRepo provides persistence for bookings.  The bookings table
// carries a UNIQUE constraint on ref_code; inserts that collide
// surface ErrDuplicateReference so the caller can regenerate the
// code and retry.  Status transitions are conditional updates
// guarded by the expected current status, which is what resolves
// races between concurrent transitions (approve vs approve, cancel
// vs pay): exactly one writer's guard matches.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, ref_code, user_id, vendor_id, ticket_id, user_name, user_email,
               ticket_title, quantity, total_price_cents, status, created_at, updated_at`

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.RefCode, &b.UserID, &b.VendorID, &b.TicketID, &b.UserName,
		&b.UserEmail, &b.TicketTitle, &b.Quantity, &b.TotalPriceCents,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Insert persists a new booking in pending status and populates the
// generated ID.  A ref_code collision returns ErrDuplicateReference;
// the service layer owns the regenerate-and-retry loop.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (ref_code, user_id, vendor_id, ticket_id, user_name, user_email,
                ticket_title, quantity, total_price_cents, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')`
	res, err := r.db.ExecContext(ctx, q,
		b.RefCode, b.UserID, b.VendorID, b.TicketID, b.UserName, b.UserEmail,
		b.TicketTitle, b.Quantity, b.TotalPriceCents,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingPending
	return nil
}

// GetByID returns a single booking.  ErrBookingNotFound is returned
// when no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// UpdateStatus transitions a booking from the expected current
// status to a new one.  The WHERE guard makes the transition
// conditional: when zero rows match, either the booking is missing
// (ErrBookingNotFound) or it is no longer in the expected status
// (ErrInvalidTransition).
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE id = ?`, id).Scan(&exists); err == sql.ErrNoRows {
			return ErrBookingNotFound
		} else if err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

// MarkPaid executes the payment capture as a single atomic unit:
// the ledger row is appended (its UNIQUE provider reference is the
// idempotency guard), the booking transitions approved -> paid, and
// the ticket quantity is conditionally decremented.  A failure in
// any step rolls back all three, so a crash or a losing racer can
// never leave a paid booking without a transaction record or a
// double-decremented ticket.  The transaction's ID is populated on
// success.
func (r *BookingRepo) MarkPaid(ctx context.Context, bookingID uint64, txn *model.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the booking row for the duration of the capture.
	const q = `SELECT ticket_id, quantity, status FROM bookings WHERE id = ? FOR UPDATE`
	var ticketID uint64
	var qty uint32
	var status string
	if err := tx.QueryRowContext(ctx, q, bookingID).Scan(&ticketID, &qty, &status); err != nil {
		if err == sql.ErrNoRows {
			return ErrBookingNotFound
		}
		return err
	}
	if model.BookingStatus(status) != model.BookingApproved {
		return ErrInvalidTransition
	}

	// Idempotency guard: the provider reference is UNIQUE, so a
	// duplicate confirmation fails here before any state changes.
	if err := appendTransactionTx(ctx, tx, txn); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'paid' WHERE id = ?`, bookingID); err != nil {
		return err
	}

	if err := commitSaleTx(ctx, tx, ticketID, qty); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a booking.  When guardNotPaid is set (non-admin
// callers), paid bookings are left untouched and the caller gets
// ErrInvalidTransition; this is the same conditional-update guard
// that stops a cancel from racing a payment confirmation.  Deleting
// never restores ticket inventory.
func (r *BookingRepo) Delete(ctx context.Context, id uint64, guardNotPaid bool) error {
	q := `DELETE FROM bookings WHERE id = ?`
	args := []interface{}{id}
	if guardNotPaid {
		q += ` AND status <> 'paid'`
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE id = ?`, id).Scan(&exists); err == sql.ErrNoRows {
			return ErrBookingNotFound
		} else if err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

// ListByUser returns all bookings created by a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListByVendor returns all booking requests against a vendor's
// tickets, newest first.
func (r *BookingRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE vendor_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, vendorID)
}

// ListPaidByVendor returns a vendor's paid bookings, used for
// revenue aggregation.
func (r *BookingRepo) ListPaidByVendor(ctx context.Context, vendorID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE vendor_id = ? AND status = 'paid' ORDER BY created_at DESC`
	return r.list(ctx, q, vendorID)
}

// ListAll returns every booking, newest first, for admin screens.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
