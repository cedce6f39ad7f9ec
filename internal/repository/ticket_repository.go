package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/ticketbari/ticketbari-api/internal/model"
)

// TicketRepo provides persistence for ticket listings and owns the
// conditional inventory updates.  All timestamp columns are stored
// in UTC; the connection is opened with parseTime so DATETIME
// columns scan directly into time.Time.  Perks are serialized as a
// JSON array into a TEXT column.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, title, from_location, to_location, transport_type, price_cents,
               quantity, departure_at, perks, image_url, vendor_id, vendor_name,
               vendor_email, verification_status, is_advertised, is_hidden,
               created_at, updated_at`

func scanTicket(row interface {
	Scan(dest ...interface{}) error
}) (*model.Ticket, error) {
	var t model.Ticket
	var perks sql.NullString
	err := row.Scan(
		&t.ID, &t.Title, &t.From, &t.To, &t.Transport, &t.PriceCents,
		&t.Quantity, &t.DepartureAt, &perks, &t.ImageURL, &t.VendorID,
		&t.VendorName, &t.VendorEmail, &t.Verification, &t.Advertised,
		&t.Hidden, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Perks = []string{}
	if perks.Valid && perks.String != "" {
		// Tolerate malformed perks rather than failing the whole read.
		_ = json.Unmarshal([]byte(perks.String), &t.Perks)
	}
	return &t, nil
}

// Create inserts a new ticket in pending verification status and
// populates the generated ID on the model.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	const q = `INSERT INTO tickets
               (title, from_location, to_location, transport_type, price_cents, quantity,
                departure_at, perks, image_url, vendor_id, vendor_name, vendor_email,
                verification_status, is_advertised, is_hidden)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', 0, 0)`
	res, err := r.db.ExecContext(ctx, q,
		t.Title, t.From, t.To, t.Transport, t.PriceCents, t.Quantity,
		t.DepartureAt.UTC().Format("2006-01-02 15:04:05"), encodePerks(t.Perks),
		t.ImageURL, t.VendorID, t.VendorName, t.VendorEmail,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Verification = model.VerificationPending
	return nil
}

// GetByID returns a single ticket.  ErrTicketNotFound is returned
// when no row exists.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// Update overwrites the mutable listing fields of a ticket owned by
// vendorID.  It refuses to touch rows belonging to other vendors
// (ErrForbidden) and reports ErrTicketNotFound for missing rows.
// Moderation columns are not updatable through this method.
func (r *TicketRepo) Update(ctx context.Context, id, vendorID uint64, t *model.Ticket) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx, `SELECT vendor_id FROM tickets WHERE id = ?`, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrTicketNotFound
	}
	if err != nil {
		return err
	}
	if owner != vendorID {
		return ErrForbidden
	}
	const q = `UPDATE tickets
               SET title = ?, from_location = ?, to_location = ?, transport_type = ?,
                   price_cents = ?, quantity = ?, departure_at = ?, perks = ?, image_url = ?
               WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q,
		t.Title, t.From, t.To, t.Transport, t.PriceCents, t.Quantity,
		t.DepartureAt.UTC().Format("2006-01-02 15:04:05"), encodePerks(t.Perks),
		t.ImageURL, id,
	)
	return err
}

// Delete removes a ticket owned by vendorID.
func (r *TicketRepo) Delete(ctx context.Context, id, vendorID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx, `SELECT vendor_id FROM tickets WHERE id = ?`, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrTicketNotFound
	}
	if err != nil {
		return err
	}
	if owner != vendorID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	return err
}

// ApprovedFilter narrows the public approved-ticket listing.  Search
// matches either route endpoint.  Sort accepts "price-asc",
// "price-desc" or defaults to newest first.
type ApprovedFilter struct {
	Search    string
	Transport string
	Sort      string
	Page      int
	Limit     int
}

// ListApproved returns publicly visible tickets (approved and not
// hidden) with the filter applied, plus the total row count for
// pagination.
func (r *TicketRepo) ListApproved(ctx context.Context, f ApprovedFilter) ([]model.Ticket, int, error) {
	where := `WHERE verification_status = 'approved' AND is_hidden = 0`
	args := []interface{}{}
	if f.Search != "" {
		where += ` AND (from_location LIKE ? OR to_location LIKE ?)`
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
	}
	if f.Transport != "" && f.Transport != "all" {
		where += ` AND transport_type = ?`
		args = append(args, f.Transport)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := ` ORDER BY created_at DESC`
	switch f.Sort {
	case "price-asc":
		order = ` ORDER BY price_cents ASC`
	case "price-desc":
		order = ` ORDER BY price_cents DESC`
	}
	if f.Limit <= 0 {
		f.Limit = 9
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit
	q := `SELECT ` + ticketColumns + ` FROM tickets ` + where + order + ` LIMIT ? OFFSET ?`
	args = append(args, f.Limit, offset)

	out, err := r.list(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAdvertised returns up to limit approved, advertised, visible
// tickets for the homepage.
func (r *TicketRepo) ListAdvertised(ctx context.Context, limit int) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets
               WHERE verification_status = 'approved' AND is_advertised = 1 AND is_hidden = 0
               LIMIT ?`
	return r.list(ctx, q, limit)
}

// ListLatest returns the newest approved, visible tickets.
func (r *TicketRepo) ListLatest(ctx context.Context, limit int) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets
               WHERE verification_status = 'approved' AND is_hidden = 0
               ORDER BY created_at DESC LIMIT ?`
	return r.list(ctx, q, limit)
}

// ListByVendor returns all tickets owned by a vendor, newest first.
func (r *TicketRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE vendor_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, vendorID)
}

// ListAll returns every ticket regardless of status, for admin
// moderation screens.
func (r *TicketRepo) ListAll(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *TicketRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
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

// UpdateVerification sets the moderation status of a ticket.
func (r *TicketRepo) UpdateVerification(ctx context.Context, id uint64, status model.VerificationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET verification_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// The status may already match; only report missing rows.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM tickets WHERE id = ?`, id).Scan(&exists); err == sql.ErrNoRows {
			return ErrTicketNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SetAdvertised toggles the advertised flag on a ticket.
func (r *TicketRepo) SetAdvertised(ctx context.Context, id uint64, advertised bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET is_advertised = ? WHERE id = ?`, advertised, id)
	return err
}

// CountAdvertised returns how many tickets are currently advertised.
// The homepage carousel caps at six.
func (r *TicketRepo) CountAdvertised(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE is_advertised = 1`).Scan(&n)
	return n, err
}

// CountByVendor returns how many tickets a vendor has listed.
func (r *TicketRepo) CountByVendor(ctx context.Context, vendorID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE vendor_id = ?`, vendorID).Scan(&n)
	return n, err
}

// HideByVendor hides every ticket belonging to a vendor.  Used when
// an admin fraud-flags a vendor account.
func (r *TicketRepo) HideByVendor(ctx context.Context, vendorID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET is_hidden = 1 WHERE vendor_id = ?`, vendorID)
	return err
}

// commitSaleTx decrements a ticket's available quantity within the
// provided transaction.  The decrement is conditional on sufficient
// remaining quantity so concurrent payment confirmations can never
// oversell: the losing writer gets ErrInsufficientQuantity and must
// roll back.
func commitSaleTx(ctx context.Context, tx *sql.Tx, ticketID uint64, qty uint32) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		qty, ticketID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM tickets WHERE id = ?`, ticketID).Scan(&exists); err == sql.ErrNoRows {
			return ErrTicketNotFound
		} else if err != nil {
			return err
		}
		return ErrInsufficientQuantity
	}
	return nil
}

func encodePerks(perks []string) string {
	if len(perks) == 0 {
		return "[]"
	}
	b, err := json.Marshal(perks)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// error (code 1062) raised by a uniqueness constraint.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
