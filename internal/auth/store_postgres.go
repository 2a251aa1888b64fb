// Copyright (c) 2026 Aegis. All rights reserved.

package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aegis-id/aegis/internal/platform/dberr"
)

// # SQL Statements

const (
	sqlInsertUser = `
		INSERT INTO users (id, username, password_hash, phone, role, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING created_at, updated_at`

	sqlSelectUserByCredential = `
		SELECT id, username, password_hash, COALESCE(phone, ''), role, is_active, created_at, updated_at
		FROM users
		WHERE username = $1 OR phone = $1`

	sqlSelectUserByID = `
		SELECT id, username, password_hash, COALESCE(phone, ''), role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`

	sqlUpdateUserPhone = `
		UPDATE users
		SET phone = NULLIF($2, '')
		WHERE id = $1
		RETURNING id, username, password_hash, COALESCE(phone, ''), role, is_active, created_at, updated_at`
)

// uniqueConflictMessage is the client-facing message for any uniqueness
// violation on the users table. Deliberately does not reveal which column
// collided.
const uniqueConflictMessage = "Username or Phone already exists"

// # Repository

// PostgresUserRepository implements UserRepository on a pgx connection pool.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates the Postgres-backed account repository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create inserts a new account row.

Parameters:
  - ctx: context.Context
  - user: *User (ID, Username, PasswordHash, Phone, Role, IsActive must be set)

Returns:
  - error: apperr.Conflict on a username/phone collision, apperr.Internal otherwise
*/
func (r *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	err := r.pool.QueryRow(ctx, sqlInsertUser,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Phone,
		user.Role,
		user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, uniqueConflictMessage)
	}
	return nil
}

/*
FindByCredential resolves an account by username or phone number.

The single-parameter OR lets login accept either identifier without the
handler having to guess which one the client sent.
*/
func (r *PostgresUserRepository) FindByCredential(ctx context.Context, credential string) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, sqlSelectUserByCredential, credential))
}

// FindByID resolves an account by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, sqlSelectUserByID, id))
}

// UpdatePhone sets the phone number and returns the fresh row.
func (r *PostgresUserRepository) UpdatePhone(ctx context.Context, id, phone string) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, sqlUpdateUserPhone, id, phone))
}

// rowScanner is satisfied by pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser maps one users row into the entity, translating driver errors.
func (r *PostgresUserRepository) scanUser(row rowScanner) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Phone,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, uniqueConflictMessage)
	}
	return &user, nil
}
