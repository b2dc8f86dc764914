package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/postpos/internal/services/pos/storage"
	"github.com/louisbranch/postpos/internal/services/pos/user"
)

const userColumns = "id, email, password, name, role, permissions, created_at, last_login, deleted_at"

// CreateUser validates input, hashes the password and inserts the account.
func (s *Store) CreateUser(ctx context.Context, input user.CreateUserInput) (user.User, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, err
	}
	u, err := user.NewUser(input, s.timestamp)
	if err != nil {
		return user.User{}, err
	}
	permissions, err := u.Permissions.Encode()
	if err != nil {
		return user.User{}, err
	}

	res, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO users (email, password, name, role, permissions, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.Email, u.PasswordHash, u.Name, string(u.Role), permissions, formatTime(u.CreatedAt),
	)
	if err != nil {
		return user.User{}, storeError("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return user.User{}, fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	return u, nil
}

// GetUser fetches a user by id, including soft-deleted accounts.
func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err != nil {
		return user.User{}, storeError("get user", err)
	}
	return u, nil
}

// GetUserByEmail fetches an active user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, err
	}
	normalized, err := user.NormalizeEmail(email)
	if err != nil {
		return user.User{}, storage.ErrNotFound
	}
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? AND deleted_at IS NULL", normalized)
	u, err := scanUser(row)
	if err != nil {
		return user.User{}, storeError("get user by email", err)
	}
	return u, nil
}

// Authenticate checks credentials for an active account and records the
// login. A plaintext password left by an older build is replaced with a
// hash on the first successful login.
func (s *Store) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, user.ErrInvalidCredentials
	}
	if err != nil {
		return user.User{}, err
	}
	ok, rehash, err := user.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return user.User{}, err
	}
	if !ok {
		return user.User{}, user.ErrInvalidCredentials
	}

	now := s.timestamp()
	if rehash {
		hash, err := user.HashPassword(password)
		if err != nil {
			return user.User{}, err
		}
		if _, err := s.sqlDB.ExecContext(ctx,
			"UPDATE users SET password = ?, last_login = ? WHERE id = ?", hash, formatTime(now), u.ID); err != nil {
			return user.User{}, storeError("upgrade user password", err)
		}
		s.logger.Info().Int64("user_id", u.ID).Msg("upgraded plaintext password")
		u.PasswordHash = hash
	} else if err := s.RecordLogin(ctx, u.ID); err != nil {
		return user.User{}, err
	}
	u.LastLogin = &now
	return u, nil
}

// ListUsers returns users ordered by id.
func (s *Store) ListUsers(ctx context.Context, includeDeleted bool) ([]user.User, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := "SELECT " + userColumns + " FROM users"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	rows, err := s.sqlDB.QueryContext(ctx, query+" ORDER BY id")
	if err != nil {
		return nil, storeError("list users", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

// RecordLogin stamps last_login with the current time.
func (s *Store) RecordLogin(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, "UPDATE users SET last_login = ? WHERE id = ?", formatTime(s.timestamp()), id)
	if err != nil {
		return storeError("record login", err)
	}
	return requireAffected(res, "record login")
}

// DeleteUser soft-deletes an account. Orders keep their user_id.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		"UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", formatTime(s.timestamp()), id)
	if err != nil {
		return storeError("delete user", err)
	}
	return requireAffected(res, "delete user")
}

func scanUser(row scanner) (user.User, error) {
	var (
		u           user.User
		role        string
		permissions string
		createdAt   sql.NullString
		lastLogin   sql.NullString
		deletedAt   sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &permissions, &createdAt, &lastLogin, &deletedAt); err != nil {
		return user.User{}, err
	}
	u.Role = user.Role(role)
	parsed, err := user.ParsePermissions(permissions)
	if err != nil {
		return user.User{}, err
	}
	u.Permissions = parsed
	if created, err := parseOptionalTime(createdAt); err != nil {
		return user.User{}, err
	} else if created != nil {
		u.CreatedAt = *created
	}
	if u.LastLogin, err = parseOptionalTime(lastLogin); err != nil {
		return user.User{}, err
	}
	if u.DeletedAt, err = parseOptionalTime(deletedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
