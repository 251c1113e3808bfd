/*
Package account persists user accounts in PostgreSQL.

Accounts are the durable identity behind the live presence registry: a user
must register and sign in before the transport will open a connection under
their name. Usernames are matched case-insensitively, the same folding the
presence registry applies.
*/
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no account matches the query.
var ErrNotFound = errors.New("account not found")

// User is one stored account.
type User struct {
	ID           string
	Username     string
	Nickname     string
	AvatarKey    string
	PasswordHash string
	CreatedAt    time.Time
	LastSeenAt   *time.Time
}

// Store provides account persistence on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id::text, username, nickname, avatar_key, password_hash, created_at, last_seen_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Nickname,
		&u.AvatarKey,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.LastSeenAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to scan account row: %w", err)
	}
	return u, nil
}

// Create inserts a new account. A case-insensitive duplicate username
// surfaces as a unique violation (see db.IsUniqueViolation).
func (s *Store) Create(ctx context.Context, username, passwordHash, nickname string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash, nickname)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		uuid.NewString(), username, passwordHash, nickname,
	)
	return scanUser(row)
}

// GetByUsername fetches an account by username, matched case-insensitively.
func (s *Store) GetByUsername(ctx context.Context, username string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(username) = LOWER($1)`,
		username,
	)
	return scanUser(row)
}

// GetByID fetches an account by id.
func (s *Store) GetByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// UpdateLastSeen stamps the account's last_seen_at with the current time.
func (s *Store) UpdateLastSeen(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET last_seen_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update last_seen_at: %w", err)
	}
	return nil
}

// UpdateProfile updates the nickname and avatar key and returns the updated
// account.
func (s *Store) UpdateProfile(ctx context.Context, id, nickname, avatarKey string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET nickname = $2, avatar_key = $3
		WHERE id = $1
		RETURNING `+userColumns,
		id, nickname, avatarKey,
	)
	return scanUser(row)
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
