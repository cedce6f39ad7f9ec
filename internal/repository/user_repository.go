package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ticketbari/ticketbari-api/internal/model"
)

// UserRepo provides access to the users table.  Identity federation
// is handled by an external provider; this store only keeps the
// resolved profile plus the role and fraud flag that authorization
// is based on.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, COALESCE(photo_url, ''), role, fraud_flag, created_at, updated_at`

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhotoURL, &u.Role, &u.FraudFlag, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates a user on first sight of the email and refreshes
// the mutable profile fields afterwards.  Role and fraud flag are
// never touched here; those change only through the admin
// operations.  The stored row is returned.
func (r *UserRepo) Upsert(ctx context.Context, name, email, photoURL string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `INSERT INTO users (name, email, photo_url, role, fraud_flag)
               VALUES (?, ?, ?, 'user', 0)
               ON DUPLICATE KEY UPDATE name = VALUES(name), photo_url = VALUES(photo_url)`
	if _, err := r.db.ExecContext(ctx, q, name, email, photoURL); err != nil {
		return nil, err
	}
	return r.GetByEmail(ctx, email)
}

// GetByID fetches a user by id.  ErrUserNotFound is returned when
// no row exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ListAll returns every user, for admin screens.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRole sets a user's role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return err
	}
	return r.checkExists(ctx, res, id)
}

// SetFraudFlag flags a user as fraudulent.  Hiding the vendor's
// tickets is a separate step handled by the caller.
func (r *UserRepo) SetFraudFlag(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET fraud_flag = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return r.checkExists(ctx, res, id)
}

func (r *UserRepo) checkExists(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, id).Scan(&exists); err == sql.ErrNoRows {
			return ErrUserNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
