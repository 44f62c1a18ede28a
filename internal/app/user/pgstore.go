package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, username, email, full_name, profile_image, role, created_at"

// PGStore is the PostgreSQL-backed implementation of Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.ProfileImage, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user: scan row: %w", err)
	}
	return &u, nil
}

// FindByName returns the account with the given username, or nil if none exists.
func (s *PGStore) FindByName(ctx context.Context, username string) (*User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username)
	return scanUser(row)
}

// FindByID returns the account with the given id, or nil if none exists.
func (s *PGStore) FindByID(ctx context.Context, id string) (*User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// FindByEmail returns the account with the given email, or nil if none exists.
func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

// ListAll returns every registered account ordered by creation time.
func (s *PGStore) ListAll(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("user: list all: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.ProfileImage, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("user: scan row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new account and returns it with the store-assigned id.
func (s *PGStore) Create(ctx context.Context, u User, passwordHash string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, full_name, password_hash, profile_image, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.Username, u.Email, u.FullName, passwordHash, u.ProfileImage, u.Role)
	return scanUser(row)
}

// PasswordHash returns the stored bcrypt hash for the given account id.
func (s *PGStore) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.pool.QueryRow(ctx,
		"SELECT password_hash FROM users WHERE id = $1", id).Scan(&hash)
	if err != nil {
		return "", fmt.Errorf("user: fetch password hash: %w", err)
	}
	return hash, nil
}

// UpdateProfile updates the mutable profile fields and returns the updated account,
// or nil if the account does not exist.
func (s *PGStore) UpdateProfile(ctx context.Context, id string, fullName string, email string, profileImage string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET full_name = $2, email = $3, profile_image = $4
		WHERE id = $1
		RETURNING `+userColumns,
		id, fullName, email, profileImage)
	return scanUser(row)
}

// UpdateRole replaces the account's role.
func (s *PGStore) UpdateRole(ctx context.Context, id string, role string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET role = $2 WHERE id = $1", id, role)
	if err != nil {
		return fmt.Errorf("user: update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user: update role: no such user %s", id)
	}
	return nil
}

// Delete removes the account with the given id.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("user: delete: %w", err)
	}
	return nil
}
