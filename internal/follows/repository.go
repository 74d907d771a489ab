package follows

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/circlehub/backend/internal/models"
)

// Repository handles follow relationship persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a follows repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Follow creates a directed edge: follower starts following user. Following
// someone already followed is a no-op.
func (r *Repository) Follow(ctx context.Context, followerID, userID int64) error {
	var exists int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO follow_relationships (follower_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		followerID, userID)
	if err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

// Unfollow removes the edge. A no-op when it does not exist.
func (r *Repository) Unfollow(ctx context.Context, followerID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM follow_relationships WHERE follower_id = $1 AND user_id = $2`,
		followerID, userID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// ListFollowed returns the users the follower follows.
func (r *Repository) ListFollowed(ctx context.Context, followerID int64) ([]models.UserRef, error) {
	const q = `SELECT u.id, u.username FROM follow_relationships f
		JOIN users u ON f.user_id = u.id
		WHERE f.follower_id = $1
		ORDER BY u.username`
	rows, err := r.pool.Query(ctx, q, followerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.UserRef
	for rows.Next() {
		var u models.UserRef
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
