package repository

import (
	"context"
	"database/sql"

	"github.com/ticketbari/ticketbari-api/internal/model"
)

// TransactionRepo provides access to the append-only transaction
// ledger.  Rows are inserted exactly once per captured payment and
// never mutated afterwards; the provider_ref column carries a
// UNIQUE constraint that enforces the one-entry-per-payment
// invariant at the store level rather than by convention.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo returns a new TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, user_id, booking_id, booking_ref, ticket_title, amount_cents,
               payment_method, provider_ref, status, created_at`

func scanTransaction(row interface {
	Scan(dest ...interface{}) error
}) (*model.Transaction, error) {
	var t model.Transaction
	var bookingID sql.NullInt64
	err := row.Scan(
		&t.ID, &t.UserID, &bookingID, &t.BookingRef, &t.TicketTitle,
		&t.AmountCents, &t.Method, &t.ProviderRef, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if bookingID.Valid {
		id := uint64(bookingID.Int64)
		t.BookingID = &id
	}
	return &t, nil
}

// Append inserts a ledger entry.  A provider reference that was
// already recorded returns ErrDuplicateReference and writes nothing.
func (r *TransactionRepo) Append(ctx context.Context, t *model.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := appendTransactionTx(ctx, tx, t); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// appendTransactionTx inserts a ledger entry within an existing
// transaction.  Shared by Append and by BookingRepo.MarkPaid so both
// payment paths go through identical bookkeeping.
func appendTransactionTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	const q = `INSERT INTO transactions
               (user_id, booking_id, booking_ref, ticket_title, amount_cents,
                payment_method, provider_ref, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var bookingID interface{}
	if t.BookingID != nil {
		bookingID = *t.BookingID
	}
	res, err := tx.ExecContext(ctx, q,
		t.UserID, bookingID, t.BookingRef, t.TicketTitle, t.AmountCents,
		string(t.Method), t.ProviderRef, string(t.Status),
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
	t.ID = uint64(id)
	return nil
}

// GetByIDForUser returns a single transaction, restricted to the
// owning user.  ErrTransactionNotFound is returned when no matching
// row exists; ownership is enforced in the query so missing and
// foreign rows are indistinguishable to the caller.
func (r *TransactionRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Transaction, error) {
	const q = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, q, id, userID))
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	return t, err
}

// ListByUser returns a user's transactions, newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	const q = `SELECT ` + transactionColumns + ` FROM transactions
               WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListByVendor returns the transactions settling bookings against a
// vendor's tickets, joined through the bookings table, newest first.
func (r *TransactionRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.Transaction, error) {
	const q = `SELECT t.id, t.user_id, t.booking_id, t.booking_ref, t.ticket_title,
                      t.amount_cents, t.payment_method, t.provider_ref, t.status, t.created_at
               FROM transactions t
               JOIN bookings b ON b.id = t.booking_id
               WHERE b.vendor_id = ?
               ORDER BY t.created_at DESC`
	return r.list(ctx, q, vendorID)
}

// Stats aggregates a user's ledger: row count, total amount and
// per-status counts.
func (r *TransactionRepo) Stats(ctx context.Context, userID uint64) (*model.TransactionStats, error) {
	const q = `SELECT COUNT(*),
                      COALESCE(SUM(amount_cents), 0),
                      COALESCE(SUM(status = 'success'), 0),
                      COALESCE(SUM(status = 'failed'), 0),
                      COALESCE(SUM(status = 'pending'), 0)
               FROM transactions WHERE user_id = ?`
	var s model.TransactionStats
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&s.Total, &s.AmountCents, &s.Succeeded, &s.Failed, &s.Pending,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *TransactionRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
