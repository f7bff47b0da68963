package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guitarworks/api/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, token string, userID int64) (models.Session, error) {
	const query = `
		INSERT INTO sessions (id, user_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, user_id, created_at, updated_at
	`

	var session models.Session
	if err := r.pool.QueryRow(ctx, query, token, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return models.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) FindWithUser(ctx context.Context, token string) (models.SessionWithUser, error) {
	const query = `
		SELECT s.id, s.user_id, s.created_at, s.updated_at,
		       u.id, u.username, u.password, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`

	var (
		found models.SessionWithUser
		hash  string
	)
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&found.ID,
		&found.UserID,
		&found.CreatedAt,
		&found.UpdatedAt,
		&found.User.ID,
		&found.User.Username,
		&hash,
		&found.User.CreatedAt,
		&found.User.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SessionWithUser{}, ErrSessionNotFound
		}
		return models.SessionWithUser{}, fmt.Errorf("find session: %w", err)
	}
	found.User.PasswordHash = []byte(hash)
	return found, nil
}

func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	const query = `
		SELECT id, user_id, created_at, updated_at
		FROM sessions
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var session models.Session
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteOlderThan drops sessions created before cutoff and returns how many went.
func (r *SessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE created_at < $1`
	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return cmd.RowsAffected(), nil
}
