package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"dhamen.org/internal/auth"
	"dhamen.org/internal/authz"
)

const userColumns = `id, email, password_hash, role, provider_id, insurer_id,
	first_name, last_name, phone, mfa_enabled, is_active, last_login_at,
	created_at, updated_at`

// Users is the pg-backed auth.UserStore.
type Users struct {
	db *sql.DB
}

var _ auth.UserStore = (*Users)(nil)

// Users returns the user store view of s.
func (s *Store) Users() *Users { return &Users{db: s.db} }

func (u *Users) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := u.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where lower(email) = $1`, email)
	return scanUser(row)
}

func (u *Users) FindByID(ctx context.Context, id string) (*auth.User, error) {
	row := u.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id = $1`, id)
	return scanUser(row)
}

func (u *Users) RecordLogin(ctx context.Context, id string, at time.Time) error {
	_, err := u.db.ExecContext(ctx,
		`update users set last_login_at = $2, updated_at = now() where id = $1`, id, at)
	return err
}

func scanUser(row *sql.Row) (*auth.User, error) {
	var (
		user                         auth.User
		role                         string
		providerID, insurerID, phone sql.NullString
		lastLoginAt                  sql.NullTime
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &role,
		&providerID, &insurerID,
		&user.FirstName, &user.LastName, &phone,
		&user.MFAEnabled, &user.IsActive, &lastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Role = authz.Role(role)
	user.ProviderID = providerID.String
	user.InsurerID = insurerID.String
	user.Phone = phone.String
	user.LastLoginAt = lastLoginAt.Time
	return &user, nil
}
