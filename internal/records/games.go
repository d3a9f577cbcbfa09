// apps/go-server/internal/records/games.go
//
// Play log for match-3 games.
// A row is written when a game starts and updated after every committed swap.
// Rows are history only: a live game cannot be restored from them.

package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrGameNotFound is returned for IDs with no game record.
var ErrGameNotFound = errors.New("game record not found")

// Store wraps the SQLite handle used for users and game records.
type Store struct{ db *sql.DB }

// NewStore returns a Store over db. Migrate must have run.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Owner identifies who played a game: a signed-in user or an anonymous cookie.
type Owner struct {
	UserID string
	AnonID string
}

// GameRow is one entry of a player's game history.
type GameRow struct {
	ID        string `json:"id"`
	Mode      string `json:"mode"`
	Moves     int    `json:"moves"`
	Score     int    `json:"score"`
	StartedAt string `json:"startedAt"`
	UpdatedAt string `json:"updatedAt"`
}

// StartGame inserts the record for a new game and counts it against the
// user's games played.
func (s *Store) StartGame(ctx context.Context, id, mode string, owner Owner) error {
	now := nowString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO games (id, user_id, anonymous_id, mode, started_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		id, nullable(owner.UserID), nullable(owner.AnonID), mode, now, now,
	); err != nil {
		return fmt.Errorf("insert game %s: %w", id, err)
	}
	if owner.UserID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET games_played = games_played + 1 WHERE id=?`, owner.UserID,
		); err != nil {
			return fmt.Errorf("bump games_played: %w", err)
		}
	}
	return tx.Commit()
}

// RecordMove counts a committed swap, stores the game's running score and
// raises the owner's best score if it was beaten. The stored score never
// goes down; only ResetGame zeroes it.
func (s *Store) RecordMove(ctx context.Context, id string, score int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET moves = moves + 1, score = MAX(score, ?), updated_at=? WHERE id=?`,
		score, nowString(), id,
	); err != nil {
		return fmt.Errorf("update game %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE users SET best_score = MAX(best_score, ?)
        WHERE id = (SELECT user_id FROM games WHERE id=?)`,
		score, id,
	); err != nil {
		return fmt.Errorf("update best_score: %w", err)
	}
	return tx.Commit()
}

// ResetGame zeroes moves and score after the player asked for a new board.
func (s *Store) ResetGame(ctx context.Context, id string) error {
	now := nowString()
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET moves=0, score=0, started_at=?, updated_at=? WHERE id=?`, now, now, id)
	return err
}

// GameOwner returns who started game id.
func (s *Store) GameOwner(ctx context.Context, id string) (Owner, error) {
	var user, anon sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, anonymous_id FROM games WHERE id=?`, id).Scan(&user, &anon)
	if errors.Is(err, sql.ErrNoRows) {
		return Owner{}, ErrGameNotFound
	}
	if err != nil {
		return Owner{}, fmt.Errorf("game owner %s: %w", id, err)
	}
	return Owner{UserID: user.String, AnonID: anon.String}, nil
}

// Mine lists a user's most recent games, newest first.
// Default limit is 50 if not specified.
func (s *Store) Mine(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, mode, moves, score, started_at, updated_at
        FROM games
        WHERE user_id=?
        ORDER BY started_at DESC, rowid DESC
        LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var r GameRow
		if err := rows.Scan(&r.ID, &r.Mode, &r.Moves, &r.Score, &r.StartedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnon transfers any anonymous games to a user account after auth.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func nowString() string { return time.Now().UTC().Format(timeLayout) }

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
