package flags

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/circlehub/backend/internal/models"
)

// Repository handles flag persistence and the moderation queue query.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a flags repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Raise records one user's abuse report against a circle. Any authenticated
// user may flag any circle, the host included; repeat flags accumulate.
func (r *Repository) Raise(ctx context.Context, actorID, circleID int64) error {
	var exists int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM circles WHERE id = $1`, circleID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load circle: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `INSERT INTO flags (circle_id, flag_user_id) VALUES ($1, $2)`, circleID, actorID); err != nil {
		return fmt.Errorf("insert flag: %w", err)
	}
	return nil
}

// ListByCircle returns all flags for a circle.
func (r *Repository) ListByCircle(ctx context.Context, circleID int64) ([]models.Flag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, circle_id, flag_user_id, created_at FROM flags WHERE circle_id = $1 ORDER BY id`, circleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Flag
	for rows.Next() {
		var f models.Flag
		if err := rows.Scan(&f.ID, &f.CircleID, &f.FlagUserID, &f.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// ClearOwn removes only the caller's flags on a circle. No-op when none exist.
func (r *Repository) ClearOwn(ctx context.Context, actorID, circleID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM flags WHERE circle_id = $1 AND flag_user_id = $2`, circleID, actorID)
	if err != nil {
		return fmt.Errorf("delete own flags: %w", err)
	}
	return nil
}

// ClearAll removes every flag for a circle.
func (r *Repository) ClearAll(ctx context.Context, circleID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM flags WHERE circle_id = $1`, circleID)
	if err != nil {
		return fmt.Errorf("delete flags: %w", err)
	}
	return nil
}

// CountByCircle returns the flag count for a circle.
func (r *Repository) CountByCircle(ctx context.Context, circleID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM flags WHERE circle_id = $1`, circleID).Scan(&count)
	return count, err
}

// ModerationQueue returns flagged circles with host username and flag count,
// most-flagged first; ties break by circle id.
func (r *Repository) ModerationQueue(ctx context.Context) ([]models.FlaggedCircle, error) {
	const q = `SELECT c.id, c.host_id, c.title, c.description, c.participants_limit, c.start_date, c.is_live, c.is_ended, c.created_at, c.updated_at, u.username, COUNT(f.id) AS flag_count
		FROM circles c
		JOIN flags f ON f.circle_id = c.id
		JOIN users u ON c.host_id = u.id
		GROUP BY c.id, u.username
		ORDER BY flag_count DESC, c.id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.FlaggedCircle
	for rows.Next() {
		var fc models.FlaggedCircle
		if err := rows.Scan(&fc.ID, &fc.HostID, &fc.Title, &fc.Description, &fc.ParticipantsLimit,
			&fc.StartDate, &fc.IsLive, &fc.IsEnded, &fc.CreatedAt, &fc.UpdatedAt, &fc.HostUsername, &fc.FlagCount); err != nil {
			return nil, err
		}
		list = append(list, fc)
	}
	return list, rows.Err()
}
