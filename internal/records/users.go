// apps/go-server/internal/records/users.go
//
// User accounts.
// Responsibilities:
//   - Creating users with case-insensitively unique usernames.
//   - Loading users by username (login) or ID (token check, stats).
//   - Carrying per-user stats (games played, best score) maintained by games.go.

package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUsernameTaken = errors.New("username taken")
	ErrUserNotFound  = errors.New("user not found")
)

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	BestScore    int       `json:"bestScore"`
}

// CreateUser inserts a user. Usernames are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, id, username, passwordHash string) (*User, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, username, passwordHash, now.Format(time.RFC3339),
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// UserByUsername loads a user by case-insensitive username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at, games_played, best_score
        FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

// UserByID loads a user by ID.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at, games_played, best_score
        FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.BestScore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}
